package services

import (
	"context"
	"fmt"
	"log"

	"lumaregistrar/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendBulkSummary reports the outcome of a bulk run using the "bulk_summary" template.
func (s *emailService) SendBulkSummary(ctx context.Context, data *domain.BulkSummaryEmailData) error {
	if data == nil {
		return fmt.Errorf("bulk summary data is nil")
	}
	if data.Email == "" {
		return fmt.Errorf("%w: bulk summary recipient is empty", domain.ErrInvalidInput)
	}
	subject, htmlBody, textBody, err := s.renderer.Render("bulk_summary", data)
	if err != nil {
		return fmt.Errorf("failed to render bulk_summary template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send bulk summary email: %w", err)
	}
	log.Printf("[EMAIL] Bulk summary for run %s sent to %s", data.RunID, data.Email)
	return nil
}
