package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v3"

	"janmitra/internal/config"
	"janmitra/internal/domain"
	"janmitra/internal/logging"
)

type Service interface {
	SendUrgentAlert(ctx context.Context, to *domain.Official, complaint *domain.Complaint, level domain.UrgencyLevel, reason string) error
}

type service struct {
	client *resend.Client
	config *config.Config
}

func NewService(cfg *config.Config) Service {
	var client *resend.Client
	if cfg.ResendAPIKey != "" {
		client = resend.NewClient(cfg.ResendAPIKey)
	}
	return &service{
		client: client,
		config: cfg,
	}
}

var layout = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2933;">
  <h2>{{.Title}}</h2>
  {{template "content" .}}
  <p style="color: #7b8794; font-size: 12px;">JANMITRA civic complaints</p>
</body>
</html>`))

var urgentAlert = template.Must(template.Must(layout.Clone()).New("content").Parse(`
  <p>Dear {{.Name}},</p>
  <p>Complaint <strong>{{.Number}}</strong> in {{.Area}}, {{.City}} has been marked <strong>{{.Level}}</strong> urgency.</p>
  <p>{{.Description}}</p>
  {{if .Reason}}<p><em>Reason:</em> {{.Reason}}</p>{{end}}
  <p>Current danger score: {{printf "%.1f" .DangerScore}}</p>
`))

func (s *service) sendEmail(ctx context.Context, toEmail, subject string, tmpl *template.Template, data interface{}) error {
	var body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&body, "layout", data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	if s.client == nil {
		logging.Debug().Str("to", toEmail).Str("subject", subject).Msg("email delivery disabled, skipping")
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("JANMITRA <%s>", s.config.FromEmail),
		To:      []string{toEmail},
		Html:    body.String(),
		Subject: subject,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	return err
}

func (s *service) SendUrgentAlert(ctx context.Context, to *domain.Official, complaint *domain.Complaint, level domain.UrgencyLevel, reason string) error {
	data := struct {
		Title       string
		Name        string
		Number      string
		Area        string
		City        string
		Level       domain.UrgencyLevel
		Description string
		Reason      string
		DangerScore float64
	}{
		Title:       "Urgent complaint in your department",
		Name:        to.Name,
		Number:      complaint.ComplaintNumber,
		Area:        complaint.Area,
		City:        complaint.City,
		Level:       level,
		Description: complaint.Description,
		Reason:      reason,
		DangerScore: complaint.DangerScore,
	}
	subject := fmt.Sprintf("[%s] Complaint %s marked urgent", level, complaint.ComplaintNumber)
	return s.sendEmail(ctx, to.Email, subject, urgentAlert, data)
}
