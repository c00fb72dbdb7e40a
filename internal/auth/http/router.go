package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/siteadmin/internal/auth/service"
	"github.com/aussiebroadwan/siteadmin/internal/auth/store"
	"github.com/aussiebroadwan/siteadmin/pkg/httpx"
	"github.com/aussiebroadwan/siteadmin/pkg/jwtx"
	"github.com/aussiebroadwan/siteadmin/pkg/kv"
	"github.com/aussiebroadwan/siteadmin/pkg/slogx"

	_ "github.com/aussiebroadwan/siteadmin/api/siteadmin" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Route names used in shared-store rate limit keys.
const (
	routeLoginLogs = "admin-login-logs"
	routeRevoke    = "auth-admin-revoke"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	access       *jwtx.HS256Codec
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	kv    kv.Store

	Sessions *service.SessionService

	// RouteLimit is the per-subject, per-IP budget on gated routes.
	RouteLimit RateLimit
	// TrustProxy takes the client address from X-Forwarded-For/X-Real-IP.
	TrustProxy bool
	// RefreshSecretShared is reported by /readyz.
	RefreshSecretShared bool
}

// RateLimit is a route budget and the store timeout that bounds it.
type RateLimit struct {
	Config  httpx.RateLimitConfig
	Timeout time.Duration
}

func NewRouter(
	access *jwtx.HS256Codec,
	buildVersion string,
	st store.Store,
	kvStore kv.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		access:       access,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		kv:           kvStore,
		logger:       logger,
		RouteLimit: RateLimit{
			Config:  httpx.RateLimitConfig{RequestsPerWindow: 40, Window: time.Minute},
			Timeout: 2 * time.Second,
		},
	}

	// Preflights are answered by CORS before they reach any route.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(httpx.DefaultCORS),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerLoginLogs()
	r.registerSystem()

	r.Mux.Handle("GET /swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title						Site Admin Authentication API
//	@version					0.1.0
//	@description				Admin login, session refresh and login audit log for the site control panel.
//	@description
//	@description				Tokens are HS256 JWTs. Send the access token as "Authorization: Bearer {token}" or in the X-Admin-Token header.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/siteadmin
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) clientIP() httpx.KeyExtractor {
	return httpx.ClientIP(r.TrustProxy)
}

func (r *Router) gate(route string) httpx.Middleware {
	return httpx.Gate(r.access, r.kv, route, r.RouteLimit.Config, r.RouteLimit.Timeout, r.clientIP())
}

func (r *Router) registerAuth() {
	h := &AuthAdminHandler{
		Sessions: r.Sessions,
		ClientIP: r.clientIP(),
	}

	// POST /auth-admin - the in-process limiter only sheds floods; lockout
	// is enforced by the attempt tracker in the shared store.
	r.Mux.Handle("POST /auth-admin",
		httpx.Chain(h,
			httpx.RateLimitMiddleware(httpx.LenientLimit, r.clientIP()),
		),
	)

	// DELETE /auth-admin - logout, gated like any other admin route.
	r.Mux.Handle("DELETE /auth-admin",
		httpx.Chain(http.HandlerFunc(h.HandleRevoke),
			r.gate(routeRevoke),
		),
	)

	r.Mux.Handle("/auth-admin", methodNotAllowed("POST, DELETE, OPTIONS"))
}

func (r *Router) registerLoginLogs() {
	h := &LoginLogsHandler{Store: r.store}

	gated := httpx.Chain(h, r.gate(routeLoginLogs))

	r.Mux.Handle("GET /admin-login-logs",
		httpx.Chain(LogsHealthBypass(r.store, gated),
			httpx.RateLimitMiddleware(httpx.PublicLimit, r.clientIP()),
		),
	)
	r.Mux.Handle("/admin-login-logs", methodNotAllowed("GET, OPTIONS"))
}

func (r *Router) registerSystem() {
	// Health check endpoints - generous limits, monitoring systems poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitMiddleware(httpx.PublicLimit, r.clientIP()),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.kv, r.access.Configured, r.RefreshSecretShared),
			httpx.RateLimitMiddleware(httpx.PublicLimit, r.clientIP()),
		),
	)
}
