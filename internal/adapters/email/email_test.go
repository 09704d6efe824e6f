package email

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumaregistrar/internal/domain"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESMailer_Send(t *testing.T) {
	client := &fakeSES{}
	m := newSESMailer(client, "bot@x.com", "Registrar")

	require.NoError(t, m.Send("ops@x.com", "Subject", "<p>hi</p>", ""))
	require.NotNil(t, client.input)
	assert.Equal(t, "Registrar <bot@x.com>", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"ops@x.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "Subject", aws.ToString(client.input.Message.Subject.Data))
	assert.Equal(t, "<p>hi</p>", aws.ToString(client.input.Message.Body.Html.Data))
	assert.Nil(t, client.input.Message.Body.Text)
}

func TestSESMailer_SendErrors(t *testing.T) {
	client := &fakeSES{err: errors.New("throttled")}
	m := newSESMailer(client, "bot@x.com", "")

	err := m.Send("ops@x.com", "Subject", "", "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
	assert.Equal(t, "bot@x.com", aws.ToString(client.input.Source))

	require.Error(t, m.Send("ops@x.com", "Subject", "", ""))
}

func TestNewMailer(t *testing.T) {
	m, err := NewMailer(MailerConfig{Provider: ProviderNoop})
	require.NoError(t, err)
	assert.NoError(t, m.Send("a@x.com", "s", "", "t"))

	m, err = NewMailer(MailerConfig{Provider: "carrier-pigeon"})
	require.NoError(t, err)
	assert.IsType(t, &noopMailer{}, m)

	_, err = NewMailer(MailerConfig{Provider: ProviderSES, SES: SESConfig{Region: "eu-west-1"}})
	require.Error(t, err)

	m, err = NewMailer(MailerConfig{Provider: ProviderSES, FromAddress: "bot@x.com", SES: SESConfig{Region: "eu-west-1"}})
	require.NoError(t, err)
	assert.IsType(t, &sesMailer{}, m)
}

func TestTemplateRenderer_BulkSummary(t *testing.T) {
	r := NewTemplateRenderer()
	data := &domain.BulkSummaryEmailData{
		Email:      "ops@x.com",
		RunID:      "run-1",
		EventID:    "evt-1",
		Total:      2,
		Successful: []*domain.Registration{{Email: "a@x.com"}},
		Failed:     []domain.BulkFailure{{Email: "bad@x.com", Error: "registration failed: <dup>"}},
	}

	subject, html, text, err := r.Render("bulk_summary", data)
	require.NoError(t, err)
	assert.Equal(t, "Registration run run-1: 1 of 2 completed", subject)
	assert.Contains(t, html, "<li>a@x.com</li>")
	assert.Contains(t, html, "registration failed: &lt;dup&gt;")
	assert.Contains(t, text, "- bad@x.com: registration failed: <dup>")
	assert.Contains(t, text, "Completed: 1 of 2")

	_, _, _, err = r.Render("missing", data)
	require.Error(t, err)
}
