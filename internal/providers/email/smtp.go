package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"
)

//go:embed templates/*.html
var templateFS embed.FS

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPProvider struct {
	cfg Config
}

func NewSMTP(cfg Config) *SMTPProvider {
	return &SMTPProvider{cfg: cfg}
}

func (p *SMTPProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	auth := smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)
	addr := fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port)

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n%s\r\n%s", to[0], subject, mime, htmlBody))

	return smtp.SendMail(addr, auth, p.cfg.From, to, msg)
}

func (p *SMTPProvider) SendTemplate(ctx context.Context, to []string, templateName string, data interface{}) error {
	body, err := renderTemplate(templateName, data)
	if err != nil {
		return err
	}
	return p.Send(ctx, to, subjectFor(templateName, data), body)
}

func renderTemplate(templateName string, data interface{}) (string, error) {
	t, err := template.ParseFS(templateFS, "templates/"+templateName+".html")
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return body.String(), nil
}

func subjectFor(templateName string, data interface{}) string {
	subject := "Notification from PulseHub"
	dataMap, ok := data.(map[string]interface{})
	if !ok {
		return subject
	}

	if subj, exists := dataMap["subject"]; exists {
		if subjStr, ok := subj.(string); ok {
			return subjStr
		}
		return subject
	}

	switch templateName {
	case "event_reminder":
		if title, ok := dataMap["event_title"].(string); ok {
			return fmt.Sprintf("Reminder: %s is starting soon", title)
		}
		return "Your event is starting soon"
	case "purchase_receipt":
		return "Your PulseHub receipt"
	}
	return subject
}
