// Package recognition reads serial numbers off equipment label photos.
package recognition

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNoSerial is returned when the model finds no serial number on the photo.
var ErrNoSerial = errors.New("no serial number on photo")

const prompt = `You read equipment labels. Find the serial number (S/N, Serial No, Service Tag) on the photo.
Answer with the serial number only, without any prefix or explanation.
If there is no readable serial number, answer NONE.`

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

type OpenAIRecognizer struct {
	client *openai.Client
	model  string
}

// NewOpenAIRecognizer talks to any OpenAI compatible endpoint that accepts image input.
func NewOpenAIRecognizer(cfg Config) *OpenAIRecognizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAIRecognizer{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

func (r *OpenAIRecognizer) RecognizeSerial(ctx context.Context, image []byte) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", http.DetectContentType(image), base64.StdEncoding.EncodeToString(image))

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: 0,
		MaxTokens:   32,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailHigh}},
				},
			},
		},
	})
	if err != nil {
		log.Println("[recognition] OpenAI error:", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoSerial
	}

	return parseReply(resp.Choices[0].Message.Content)
}

func parseReply(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "`\"'.")
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "NONE") {
		return "", ErrNoSerial
	}
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s, nil
}
