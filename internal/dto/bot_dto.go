package dto

import "itinvent-bot/pkg/render"

type BotEventRequest struct {
	UserId string   `json:"user_id" validate:"required,max=64"`
	Groups []string `json:"groups" validate:"omitempty,dive,required,max=64"`
	Kind   string   `json:"kind" validate:"required,oneof=text photo action"`
	Text   string   `json:"text" validate:"required_if=Kind text,max=4096"`
	// Photo is the base64-encoded image of a photo event.
	Photo  string `json:"photo" validate:"required_if=Kind photo"`
	Action string `json:"action" validate:"required_if=Kind action,max=128"`
}

type BotEventResponse struct {
	Render *render.Render `json:"render"`
}

type DatabaseResponse struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"active"`
}
