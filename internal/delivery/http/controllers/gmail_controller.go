package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"

	"lumaregistrar/internal/delivery/http/helpers"
	"lumaregistrar/internal/domain"
)

// GmailController serves the one-time OAuth consent used to obtain the mailbox refresh token.
type GmailController struct {
	Logger     *slog.Logger
	Authorizer domain.MailboxAuthorizer
}

// NewGmailController returns a controller; a nil authorizer makes every endpoint answer 503.
func NewGmailController(logger *slog.Logger, authorizer domain.MailboxAuthorizer) *GmailController {
	return &GmailController{
		Logger:     logger,
		Authorizer: authorizer,
	}
}

// AuthURLData is the data object for GET /gmail/auth-url.
type AuthURLData struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state"`
}

// AuthURLSuccessResponse is the success envelope for GET /gmail/auth-url.
type AuthURLSuccessResponse struct {
	Data  AuthURLData       `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ExchangeCodeRequest is the request body for POST /gmail/token.
type ExchangeCodeRequest struct {
	Code string `json:"code"`
}

// Validate implements helpers.Validator.
func (r *ExchangeCodeRequest) Validate() []string {
	r.Code = strings.TrimSpace(r.Code)
	if r.Code == "" {
		return []string{"code is required"}
	}
	return nil
}

// RefreshTokenData is the data object for POST /gmail/token.
type RefreshTokenData struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshTokenSuccessResponse is the success envelope for POST /gmail/token.
type RefreshTokenSuccessResponse struct {
	Data  RefreshTokenData  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// AuthURL godoc
// @Summary Get the Gmail consent URL
// @Description Returns the Google consent URL requesting offline, read-only Gmail access. Open it, approve, then post the returned code to /gmail/token.
// @Tags gmail
// @Produce json
// @Security BearerAuth
// @Param state query string false "Opaque state echoed back by Google; generated when empty"
// @Success 200 {object} controllers.AuthURLSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable"
// @Router /gmail/auth-url [get]
func (c *GmailController) AuthURL(w http.ResponseWriter, r *http.Request) {
	if !c.configured(w) {
		return
	}
	state := r.URL.Query().Get("state")
	if state == "" {
		b := make([]byte, 16)
		if _, err := rand.Read(b); err != nil {
			c.Logger.ErrorContext(r.Context(), "failed to generate oauth state", "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to generate state")
			return
		}
		state = hex.EncodeToString(b)
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, AuthURLData{AuthURL: c.Authorizer.AuthURL(state), State: state})
}

// ExchangeCode godoc
// @Summary Exchange an authorization code for a refresh token
// @Description Trades the code from the consent redirect for a long-lived refresh token. Store it as GMAIL_REFRESH_TOKEN.
// @Tags gmail
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.ExchangeCodeRequest true "Authorization code"
// @Success 200 {object} controllers.RefreshTokenSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 502 {object} helpers.APIResponse "error.code: provider_rejected"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable"
// @Router /gmail/token [post]
func (c *GmailController) ExchangeCode(w http.ResponseWriter, r *http.Request) {
	if !c.configured(w) {
		return
	}
	var req ExchangeCodeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	refresh, err := c.Authorizer.Exchange(r.Context(), req.Code)
	if err != nil {
		c.Logger.WarnContext(r.Context(), "gmail code exchange failed", "err", err)
		helpers.WriteJSONError(w, http.StatusBadGateway, helpers.ErrCodeProviderRejected, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, RefreshTokenData{RefreshToken: refresh})
}

func (c *GmailController) configured(w http.ResponseWriter) bool {
	if c.Authorizer == nil {
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeServiceUnavailable, "gmail oauth is not configured")
		return false
	}
	return true
}
