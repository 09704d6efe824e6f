package services

import (
	"strings"
	"testing"

	"lumaregistrar/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntries(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		input   string
		want    []domain.EmailEntry
		wantErr bool
	}{
		{
			name:   "json array",
			format: EntryFormatJSON,
			input:  `[{"email":"a@x.com","firstName":"Ada","lastName":"L"},{"email":" b@x.com "}]`,
			want: []domain.EmailEntry{
				{Email: "a@x.com", FirstName: "Ada", LastName: "L"},
				{Email: "b@x.com"},
			},
		},
		{
			name:   "empty json body",
			format: EntryFormatJSON,
			input:  "",
			want:   []domain.EmailEntry{},
		},
		{
			name:   "json keeps entries with invalid email",
			format: EntryFormatJSON,
			input:  `[{"email":"a@x.com"},{"email":" not-an-email "},{"firstName":"NoMail"}]`,
			want: []domain.EmailEntry{
				{Email: "a@x.com"},
				{Email: "not-an-email"},
				{FirstName: "NoMail"},
			},
		},
		{
			name:    "truncated json",
			format:  EntryFormatJSON,
			input:   `[{"email":"a@x.com"`,
			wantErr: true,
		},
		{
			name:    "json object instead of array",
			format:  EntryFormatJSON,
			input:   `{"email":"a@x.com"}`,
			wantErr: true,
		},
		{
			name:   "csv with header in any order",
			format: EntryFormatCSV,
			input:  "first_name,Email,Last Name\nAda,a@x.com,L\nBob,b@x.com,\n",
			want: []domain.EmailEntry{
				{Email: "a@x.com", FirstName: "Ada", LastName: "L"},
				{Email: "b@x.com", FirstName: "Bob"},
			},
		},
		{
			name:   "csv without header",
			format: EntryFormatCSV,
			input:  "a@x.com,Ada,L\nb@x.com\n",
			want: []domain.EmailEntry{
				{Email: "a@x.com", FirstName: "Ada", LastName: "L"},
				{Email: "b@x.com"},
			},
		},
		{
			name:   "csv keeps rows with invalid email",
			format: EntryFormatCSV,
			input:  "email,first_name\na@x.com,Ada\nbroken,Bob\n",
			want: []domain.EmailEntry{
				{Email: "a@x.com", FirstName: "Ada"},
				{Email: "broken", FirstName: "Bob"},
			},
		},
		{
			name:   "csv without header starting with invalid email",
			format: EntryFormatCSV,
			input:  "broken,Ada\nb@x.com,Bob\n",
			want: []domain.EmailEntry{
				{Email: "broken", FirstName: "Ada"},
				{Email: "b@x.com", FirstName: "Bob"},
			},
		},
		{
			name:    "csv header without email column",
			format:  EntryFormatCSV,
			input:   "first_name,last_name\nAda,L\n",
			wantErr: true,
		},
		{
			name:    "unknown format",
			format:  "xml",
			input:   "<entries/>",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEntries(strings.NewReader(tt.input), tt.format)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
