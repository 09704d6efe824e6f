package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// BulkSummaryEmailData holds data for the end-of-run summary email.
type BulkSummaryEmailData struct {
	Email      string
	RunID      string
	EventID    string
	Total      int
	Successful []*Registration
	Failed     []BulkFailure
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendBulkSummary(ctx context.Context, data *BulkSummaryEmailData) error
}
