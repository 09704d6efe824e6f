package controllers

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"lumaregistrar/internal/delivery/http/helpers"
	"lumaregistrar/internal/domain"
	"lumaregistrar/internal/pkg/validate"
	"lumaregistrar/internal/services"
)

// ContentTypeNDJSON selects streamed progress on the bulk endpoint.
const ContentTypeNDJSON = "application/x-ndjson"

const maxEntryListBytes = 8 << 20

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateRegistrationRequest is the request body for POST /registrations.
type CreateRegistrationRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	EventID   string `json:"event_api_id"`
}

// Validate implements helpers.Validator.
func (r *CreateRegistrationRequest) Validate() []string {
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return []string{"email is required"}
	}
	if !validate.Email(r.Email) {
		return []string{"email is not a valid address"}
	}
	return nil
}

// RegistrationSuccessResponse is the success envelope for endpoints returning one registration.
type RegistrationSuccessResponse struct {
	Data  *domain.Registration `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// BulkSuccessResponse is the success envelope for POST /registrations/bulk without streaming.
type BulkSuccessResponse struct {
	Data  *domain.BulkResult `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// ListRegistrationsData is the data object for GET /registrations.
type ListRegistrationsData struct {
	Registrations []*domain.Registration `json:"registrations"`
	Pagination    helpers.PaginationMeta `json:"pagination"`
}

// ListRegistrationsSuccessResponse is the success envelope for GET /registrations.
type ListRegistrationsSuccessResponse struct {
	Data  ListRegistrationsData `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// BulkEvent is one line of the streamed bulk response. Type is "progress" or "result".
type BulkEvent struct {
	Type   string             `json:"type"`
	Email  string             `json:"email,omitempty"`
	Phase  string             `json:"phase,omitempty"`
	Result *domain.BulkResult `json:"result,omitempty"`
}

// Create godoc
// @Summary Register one entry
// @Description Runs the full flow for one email: create record, register, send code, read the code from the mailbox, sign in. Blocks until the entry completes or fails.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CreateRegistrationRequest true "Entry; event_api_id defaults to the configured event"
// @Success 201 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 502 {object} helpers.APIResponse "error.code: provider_rejected"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable"
// @Failure 504 {object} helpers.APIResponse "error.code: verification_code_not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations [post]
func (c *RegistrationController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRegistrationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	entry := domain.EmailEntry{Email: req.Email, FirstName: req.FirstName, LastName: req.LastName}
	reg, err := c.Service.ProcessOne(r.Context(), entry, strings.TrimSpace(req.EventID), nil)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// Bulk godoc
// @Summary Register a list of entries
// @Description Processes entries one at a time in input order. One entry failing never stops the run. The body is a JSON array of {email, firstName, lastName} or CSV (Content-Type text/csv). With Accept application/x-ndjson the response streams one progress event per line and ends with a result event.
// @Tags registrations
// @Accept json
// @Accept text/csv
// @Produce json
// @Produce application/x-ndjson
// @Security BearerAuth
// @Param event_id query string false "Event API id; defaults to the configured event"
// @Success 200 {object} controllers.BulkSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 415 {object} helpers.APIResponse "error.code: unsupported_media_type"
// @Router /registrations/bulk [post]
func (c *RegistrationController) Bulk(w http.ResponseWriter, r *http.Request) {
	format, ok := entryFormat(r.Header.Get("Content-Type"))
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnsupportedMediaType, helpers.ErrCodeUnsupportedMedia, "body must be application/json or text/csv")
		return
	}
	entries, err := services.ParseEntries(http.MaxBytesReader(w, r.Body, maxEntryListBytes), format)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	eventID := strings.TrimSpace(r.URL.Query().Get("event_id"))

	if !strings.Contains(r.Header.Get("Accept"), ContentTypeNDJSON) {
		result := c.Service.ProcessMany(r.Context(), entries, eventID, nil)
		helpers.WriteJSONSuccess(w, http.StatusOK, result)
		return
	}

	w.Header().Set("Content-Type", ContentTypeNDJSON)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	rc := http.NewResponseController(w)
	enc := json.NewEncoder(w)
	emit := func(ev BulkEvent) {
		if err := enc.Encode(ev); err != nil {
			c.Logger.DebugContext(r.Context(), "bulk stream write failed", "err", err)
			return
		}
		_ = rc.Flush()
	}
	result := c.Service.ProcessMany(r.Context(), entries, eventID, func(email, phase string) {
		emit(BulkEvent{Type: "progress", Email: email, Phase: phase})
	})
	emit(BulkEvent{Type: "result", Result: result})
}

// List godoc
// @Summary List registrations
// @Description Returns stored registration records, newest first.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 50, max 500)"
// @Success 200 {object} controllers.ListRegistrationsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable"
// @Router /registrations [get]
func (c *RegistrationController) List(w http.ResponseWriter, r *http.Request) {
	regs, err := c.Service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	page, meta := helpers.Paginate(regs, helpers.ParsePagination(r))
	helpers.WriteJSONSuccess(w, http.StatusOK, ListRegistrationsData{Registrations: page, Pagination: meta})
}

// Get godoc
// @Summary Get a registration
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Success 200 {object} controllers.RegistrationSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /registrations/{id} [get]
func (c *RegistrationController) Get(w http.ResponseWriter, r *http.Request) {
	reg, err := c.Service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// Delete godoc
// @Summary Delete a registration
// @Tags registrations
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Success 204 "Deleted"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /registrations/{id} [delete]
func (c *RegistrationController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// entryFormat picks the entry list parser from a Content-Type header. An empty header means JSON.
func entryFormat(contentType string) (string, bool) {
	if contentType == "" {
		return services.EntryFormatJSON, true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	switch mediaType {
	case "application/json":
		return services.EntryFormatJSON, true
	case "text/csv", "application/csv":
		return services.EntryFormatCSV, true
	}
	return "", false
}
