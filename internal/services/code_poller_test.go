package services

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"lumaregistrar/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func enc(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

type searchResult struct {
	ids []string
	err error
}

// fakeMailbox implements domain.Mailbox for tests. The i-th Search returns results[i];
// once results run out the last one repeats.
type fakeMailbox struct {
	results   []searchResult
	messages  map[string]*domain.MailMessage
	fetchErr  error
	searches  int
	fetches   int
	lastQuery domain.MailboxQuery
}

func (f *fakeMailbox) Search(ctx context.Context, q domain.MailboxQuery) ([]string, error) {
	f.lastQuery = q
	i := f.searches
	f.searches++
	if len(f.results) == 0 {
		return nil, nil
	}
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	return f.results[i].ids, f.results[i].err
}

func (f *fakeMailbox) Fetch(ctx context.Context, id string) (*domain.MailMessage, error) {
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	msg, ok := f.messages[id]
	if !ok {
		return nil, errors.New("no such message")
	}
	return msg, nil
}

func newTestPoller(mb domain.Mailbox) (*codePoller, *[]time.Duration) {
	var slept []time.Duration
	p := NewCodePoller(mb, CodePollerConfig{}, discardLogger()).(*codePoller)
	p.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return p, &slept
}

func plainMessage(id, body string) *domain.MailMessage {
	return &domain.MailMessage{ID: id, Payload: domain.MessagePart{MimeType: "text/plain", Data: enc(body)}}
}

func TestCodePoller_FindsCodeOnThirdAttempt(t *testing.T) {
	mb := &fakeMailbox{
		results: []searchResult{{}, {}, {ids: []string{"m1"}}},
		messages: map[string]*domain.MailMessage{
			"m1": plainMessage("m1", "Your code is 123456"),
		},
	}
	p, slept := newTestPoller(mb)

	code, err := p.RetrieveCode(context.Background(), "a@x.com", 3, 0)
	require.NoError(t, err)
	assert.Equal(t, "123456", code)
	assert.Equal(t, 3, mb.searches)
	assert.Len(t, *slept, 2)
}

func TestCodePoller_ReturnsEarly(t *testing.T) {
	mb := &fakeMailbox{
		results:  []searchResult{{ids: []string{"m1", "m0"}}},
		messages: map[string]*domain.MailMessage{"m1": plainMessage("m1", "Code: 654321.")},
	}
	p, slept := newTestPoller(mb)

	code, err := p.RetrieveCode(context.Background(), "a@x.com", 10, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "654321", code)
	assert.Equal(t, 1, mb.searches)
	assert.Equal(t, 1, mb.fetches)
	assert.Empty(t, *slept)
}

func TestCodePoller_ExhaustsAttempts(t *testing.T) {
	mb := &fakeMailbox{}
	p, slept := newTestPoller(mb)

	_, err := p.RetrieveCode(context.Background(), "a@x.com", 2, 3*time.Second)
	require.ErrorIs(t, err, domain.ErrCodeNotFound)
	assert.Equal(t, 2, mb.searches)
	assert.Equal(t, []time.Duration{3 * time.Second}, *slept)
}

func TestCodePoller_TransientFailuresAreNotFatal(t *testing.T) {
	mb := &fakeMailbox{
		results: []searchResult{
			{err: errors.New("gmail api returned status: 503")},
			{ids: []string{"broken"}},
			{ids: []string{"m1"}},
		},
		messages: map[string]*domain.MailMessage{"m1": plainMessage("m1", "Your code is 777888")},
	}
	p, slept := newTestPoller(mb)

	code, err := p.RetrieveCode(context.Background(), "a@x.com", 5, 0)
	require.NoError(t, err)
	assert.Equal(t, "777888", code)
	assert.Equal(t, 3, mb.searches)
	assert.Len(t, *slept, 2)
}

func TestCodePoller_MalformedBodyCountsAsNoCode(t *testing.T) {
	mb := &fakeMailbox{
		results: []searchResult{{ids: []string{"m1"}}},
		messages: map[string]*domain.MailMessage{
			"m1": {ID: "m1", Payload: domain.MessagePart{MimeType: "text/plain", Data: "!!!not base64!!!"}},
		},
	}
	p, _ := newTestPoller(mb)

	_, err := p.RetrieveCode(context.Background(), "a@x.com", 2, 0)
	require.ErrorIs(t, err, domain.ErrCodeNotFound)
	assert.Equal(t, 2, mb.fetches)
}

func TestCodePoller_QueryFilter(t *testing.T) {
	mb := &fakeMailbox{}
	p, _ := newTestPoller(mb)

	_, _ = p.RetrieveCode(context.Background(), "a@x.com", 1, 0)
	assert.Equal(t, domain.MailboxQuery{
		From:            DefaultCodeSender,
		To:              "a@x.com",
		SubjectContains: DefaultCodeSubject,
		NewerThan:       DefaultSearchWindow,
	}, mb.lastQuery)
}

func TestCodePoller_InvalidArguments(t *testing.T) {
	p, _ := newTestPoller(&fakeMailbox{})

	_, err := p.RetrieveCode(context.Background(), "a@x.com", 0, 0)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = p.RetrieveCode(context.Background(), "a@x.com", 1, -time.Second)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCodePoller_ContextCancelledDuringWait(t *testing.T) {
	mb := &fakeMailbox{}
	p := NewCodePoller(mb, CodePollerConfig{}, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.RetrieveCode(ctx, "a@x.com", 5, time.Hour)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, mb.searches)
}

func TestMessageText(t *testing.T) {
	tests := []struct {
		name    string
		payload domain.MessagePart
		want    string
		wantErr bool
	}{
		{
			name:    "single body",
			payload: domain.MessagePart{MimeType: "text/plain", Data: enc("hello 123456")},
			want:    "hello 123456",
		},
		{
			name:    "padded standard alphabet",
			payload: domain.MessagePart{Data: base64.StdEncoding.EncodeToString([]byte("code>>> 999000 ???"))},
			want:    "code>>> 999000 ???",
		},
		{
			name: "multipart concatenates text parts only",
			payload: domain.MessagePart{MimeType: "multipart/mixed", Parts: []domain.MessagePart{
				{MimeType: "text/plain", Data: enc("plain ")},
				{MimeType: "image/png", Data: "ignored-not-base64!"},
				{MimeType: "multipart/alternative", Parts: []domain.MessagePart{
					{MimeType: "text/html", Data: enc("<b>html</b>")},
				}},
			}},
			want: "plain \n<b>html</b>",
		},
		{
			name:    "broken text part",
			payload: domain.MessagePart{Parts: []domain.MessagePart{{MimeType: "text/plain", Data: "%%%"}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := messageText(tt.payload)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCodePoller_DigitsAcrossPartsDoNotJoin(t *testing.T) {
	mb := &fakeMailbox{
		results: []searchResult{{ids: []string{"m1"}}},
		messages: map[string]*domain.MailMessage{
			"m1": {ID: "m1", Payload: domain.MessagePart{MimeType: "multipart/alternative", Parts: []domain.MessagePart{
				{MimeType: "text/plain", Data: enc("Ref 123")},
				{MimeType: "text/html", Data: enc("456 <p>Your code is 999999</p>")},
			}}},
		},
	}
	p, _ := newTestPoller(mb)

	code, err := p.RetrieveCode(context.Background(), "a@x.com", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "999999", code)
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Your code is 123456", "123456"},
		{"123456", "123456"},
		{"<b>482913</b>", "482913"},
		{"Order 1234567 ref", ""},
		{"ref 1234567, code 246810.", "246810"},
		{"first 111111 then 222222", "111111"},
		{"no code here", ""},
		{"12345", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractCode(tt.text), tt.text)
	}
}
