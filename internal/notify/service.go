package notify

import (
	"context"
	"fmt"

	"github.com/kaswaterproofing/site-backend/internal/clients"
	"github.com/kaswaterproofing/site-backend/internal/leads"
	"github.com/kaswaterproofing/site-backend/pkg/logging"
)

// Service emails staff about new leads and contact submissions. All sends
// are best-effort: failures are logged and never propagated to the visitor
// path that triggered them.
type Service struct {
	email  EmailSender
	to     string
	logger *logging.Logger
}

// NewService creates a notification service. Returns nil when no recipient
// or sender is configured, so callers can treat notifications as disabled.
func NewService(email EmailSender, to string, logger *logging.Logger) *Service {
	if email == nil || to == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:  email,
		to:     to,
		logger: logger,
	}
}

// LeadCaptured emails staff about a lead collected by the chat assistant.
func (s *Service) LeadCaptured(ctx context.Context, lead *leads.Lead) {
	if s == nil || lead == nil {
		return
	}

	subject := fmt.Sprintf("New Lead: %s (%s)", lead.Name, lead.Service)
	body := fmt.Sprintf("Name: %s\nPhone: %s\nService: %s\nMessage: %s\nSource: %s",
		lead.Name, lead.Phone, lead.Service, lead.Message, lead.Source)

	msg := EmailMessage{
		To:      s.to,
		Subject: subject,
		Body:    body,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("notify: failed to send lead email", "error", err, "lead_id", lead.ID)
		return
	}
	s.logger.Info("notify: lead email sent", "lead_id", lead.ID)
}

// ContactReceived emails staff about a contact-form submission.
func (s *Service) ContactReceived(ctx context.Context, client *clients.Client) {
	if s == nil || client == nil {
		return
	}

	subject := fmt.Sprintf("New Lead: %s (%s)", client.Name, client.Service)
	body := fmt.Sprintf("Name: %s\nEmail: %s\nService: %s\nMessage: %s",
		client.Name, client.Email, client.Service, client.Message)

	msg := EmailMessage{
		To:      s.to,
		Subject: subject,
		Body:    body,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("notify: failed to send contact email", "error", err, "client_id", client.ID)
		return
	}
	s.logger.Info("notify: contact email sent", "client_id", client.ID)
}
