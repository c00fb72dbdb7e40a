package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/siteadmin/pkg/jwtx"
	"github.com/aussiebroadwan/siteadmin/pkg/slogx"
)

// AdminTokenHeader is the custom header admin clients may use instead of
// Authorization.
const AdminTokenHeader = "X-Admin-Token"

// TokenFromRequest returns the bearer token from X-Admin-Token, falling back
// to "Authorization: Bearer <token>". It returns "" when neither is present.
func TokenFromRequest(r *http.Request) string {
	if tok := strings.TrimSpace(r.Header.Get(AdminTokenHeader)); tok != "" {
		return tok
	}

	authz := r.Header.Get("Authorization")
	scheme, tok, ok := strings.Cut(authz, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}

// AuthnMiddleware is the authentication half of the request gate: it requires
// a valid access token and puts its claims in the request context. Missing,
// malformed, forged, expired and wrong-type tokens all produce the same 401.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := TokenFromRequest(r)
			if raw == "" {
				writeBearerError(w)
				return
			}

			claims, err := v.Verify(raw)
			if errors.Is(err, jwtx.ErrNoSecret) {
				log.Error("access token secret not configured")
				ErrMisconfigured.WriteError(w)
				return
			}
			if err != nil {
				log.Warn("admin token rejected", "err", err)
				writeBearerError(w)
				return
			}

			if err := claims.ValidateType(jwtx.TypeAccess); err != nil {
				log.Warn("admin token rejected", "err", err, "type", claims.Type)
				writeBearerError(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithClaims(ctx, claims)))
		})
	}
}

// writeBearerError replies 401 with an RFC 6750 challenge and JSON body.
func writeBearerError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	ErrUnauthenticated.WriteError(w)
}
