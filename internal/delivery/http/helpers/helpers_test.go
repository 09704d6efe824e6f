package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query string
		want  PageParams
	}{
		{"", PageParams{Page: 1, PageSize: DefaultPageSize}},
		{"page=3&page_size=10", PageParams{Page: 3, PageSize: 10}},
		{"page=0&page_size=-1", PageParams{Page: 1, PageSize: DefaultPageSize}},
		{"page=x&page_size=100000", PageParams{Page: 1, PageSize: MaxPageSize}},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/registrations?"+tt.query, nil)
		assert.Equal(t, tt.want, ParsePagination(r), tt.query)
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	got, meta := Paginate(items, PageParams{Page: 2, PageSize: 2})
	assert.Equal(t, []int{3, 4}, got)
	assert.Equal(t, PaginationMeta{Page: 2, PageSize: 2, Total: 5, TotalPages: 3}, meta)

	got, _ = Paginate(items, PageParams{Page: 3, PageSize: 2})
	assert.Equal(t, []int{5}, got)

	got, meta = Paginate(items, PageParams{Page: 9, PageSize: 2})
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 3, meta.TotalPages)
}

type createReq struct {
	Email string `json:"email"`
}

func (r *createReq) Validate() []string {
	if r.Email == "" {
		return []string{"email is required"}
	}
	return nil
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantOK   bool
		wantCode int
	}{
		{"valid", `{"email":"a@x.com"}`, true, http.StatusOK},
		{"unknown field", `{"email":"a@x.com","extra":1}`, false, http.StatusBadRequest},
		{"malformed", `{`, false, http.StatusBadRequest},
		{"fails validation", `{}`, false, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var req createReq
			ok := DecodeAndValidate(w, r, &req)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				assert.Equal(t, tt.wantCode, w.Code)
				var resp APIResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				require.NotNil(t, resp.Error)
				assert.Equal(t, ErrCodeBadRequest, resp.Error.Code)
			}
		})
	}
}
