package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/siteadmin/internal/auth/service"
	"github.com/aussiebroadwan/siteadmin/pkg/httpx"
	"github.com/aussiebroadwan/siteadmin/pkg/slogx"
)

const maxAuthBody = 64 << 10

// AuthAdminHandler serves /auth-admin: password login, refresh rotation and
// logout.
type AuthAdminHandler struct {
	Sessions *service.SessionService
	ClientIP httpx.KeyExtractor
}

// ServeHTTP godoc
//
//	@Summary		Admin login and token refresh
//	@Description	grant_type=password (default) checks the admin password, optional TOTP code and anti-automation fields, then issues an access/refresh pair.
//	@Description	grant_type=refresh_token rotates a refresh token; each refresh token works once.
//	@Description	Five failed attempts from one address within a minute lock that address out for five minutes.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AuthAdminRequest		true	"Credentials or refresh token"
//	@Success		200		{object}	TokenResponse			"tokens, token_type, expires_in"
//	@Failure		400		{object}	httpx.ErrorResponse		"invalid_request, unsupported_grant_type, validation_failed"
//	@Failure		401		{object}	httpx.ErrorResponse		"invalid_credentials, invalid_refresh_token"
//	@Failure		429		{object}	httpx.ErrorResponse		"too_many_attempts, rate_limit_exceeded"
//	@Failure		500		{object}	httpx.ErrorResponse		"server_misconfigured"
//	@Failure		503		{object}	httpx.ErrorResponse		"store_unavailable"
//	@Header			200		{string}	Cache-Control			"no-store"
//	@Router			/auth-admin [post].
func (h *AuthAdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req AuthAdminRequest
	if err := decodeJSON(w, r, &req); err != nil {
		invalidRequest(err.Error()).WriteError(w)
		return
	}

	switch req.GrantType {
	case "", "password":
		h.handlePassword(w, r, req)
	case "refresh_token":
		h.handleRefresh(w, r, req)
	default:
		ErrUnsupportedGrantType.WriteError(w)
	}
}

func (h *AuthAdminHandler) handlePassword(w http.ResponseWriter, r *http.Request, req AuthAdminRequest) {
	if req.Password == "" {
		invalidRequest("password is required").WriteError(w)
		return
	}

	pair, err := h.Sessions.Login(r.Context(), service.LoginRequest{
		Password:     req.Password,
		TwoFACode:    strings.TrimSpace(req.TwoFACode),
		CaptchaToken: req.CaptchaToken,
		Honeypot:     req.Honeypot,
		IP:           h.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
	if err != nil {
		writeServiceError(w, r, err, h.Sessions.Attempts.LockTTL)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, TokenResponse{
		Tokens:    pair,
		TokenType: "Bearer",
		ExpiresIn: pair.ExpiresIn,
	})
}

func (h *AuthAdminHandler) handleRefresh(w http.ResponseWriter, r *http.Request, req AuthAdminRequest) {
	if req.RefreshToken == "" {
		invalidRequest("refresh_token is required").WriteError(w)
		return
	}

	pair, err := h.Sessions.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err, 0)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, TokenResponse{
		Tokens:    pair,
		TokenType: "Bearer",
		ExpiresIn: pair.ExpiresIn,
	})
}

// HandleRevoke godoc
//
//	@Summary		Admin logout
//	@Description	Revokes the refresh token issued alongside the presented access token. The access token itself stays valid until it expires.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Success		204
//	@Failure		401	{object}	httpx.ErrorResponse	"unauthenticated"
//	@Failure		429	{object}	httpx.ErrorResponse	"rate_limit_exceeded"
//	@Failure		503	{object}	httpx.ErrorResponse	"store_unavailable"
//	@Router			/auth-admin [delete].
func (h *AuthAdminHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := httpx.ClaimsFromContext(ctx)
	if !ok {
		httpx.ErrUnauthenticated.WriteError(w)
		return
	}

	if err := h.Sessions.Revoke(ctx, claims.ID); err != nil {
		writeServiceError(w, r, err, 0)
		return
	}

	slogx.FromContext(ctx).Info("session revoked", "jti", claims.ID)
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// decodeJSON reads a bounded JSON body into v. An empty body decodes as {}.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return errors.New("content type must be application/json")
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAuthBody))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errors.New("request body is not valid JSON")
	}
	return nil
}
