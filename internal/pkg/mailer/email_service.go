package mailer

import (
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"
)

// ActMail is one notification about a confirmed workflow.
type ActMail struct {
	To          []string
	Subject     string
	Lines       []string
	Attachments []string
}

type IEmailService interface {
	SendAct(mail ActMail) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

func (s *emailService) SendAct(mail ActMail) error {
	if len(mail.To) == 0 {
		return fmt.Errorf("act mail has no recipients")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", mail.To...)
	m.SetHeader("Subject", mail.Subject)
	m.SetBody("text/html", actBody(mail.Lines))
	for _, path := range mail.Attachments {
		m.Attach(path)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send act to %s: %v\n", strings.Join(mail.To, ", "), err)
		return err
	}

	fmt.Printf("[MAILER] Act sent to %s\n", strings.Join(mail.To, ", "))
	return nil
}

func actBody(lines []string) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">`)
	b.WriteString("<h2>IT-Invent</h2>")
	for _, l := range lines {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(l))
		b.WriteString("</p>")
	}
	b.WriteString("</div>")
	return b.String()
}
