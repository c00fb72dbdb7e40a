package httpx

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/siteadmin/pkg/jwtx"
	"github.com/aussiebroadwan/siteadmin/pkg/kv"
	"github.com/aussiebroadwan/siteadmin/pkg/slogx"
)

// RouteLimitKey is the shared-store key for a route budget. It lives under
// its own prefix so route budgets never mix with login attempt counters.
func RouteLimitKey(route, identity string) string {
	return "ratelimit:" + route + ":" + identity
}

// StoreRateLimit enforces a per-route, per-identity request budget in the
// shared key-value store, so every replica sees the same count. The window
// slides: each request re-arms the TTL. If the store cannot be reached the
// request is refused with 503 rather than let through.
func StoreRateLimit(
	st kv.Store,
	route string,
	config RateLimitConfig,
	keyExtractor KeyExtractor,
	timeout time.Duration,
) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			identity := keyExtractor(r)
			if identity == "" {
				identity = "anonymous"
			}
			key := RouteLimitKey(route, identity)

			ctx := r.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			count, err := st.IncrWithExpiry(ctx, key, config.Window)
			if err != nil {
				log.Error("route rate limit store unavailable", "route", route, "err", err)
				ErrStoreUnavailable.WriteError(w)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Window", config.Window.String())

			if count > int64(config.RequestsPerWindow) {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", max(int(config.Window.Seconds()), 1)))
				log.Warn("route rate limit exceeded",
					"route", route,
					"key", key,
					"count", count,
				)
				ErrRateLimited.WriteError(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Gate is the full protection stack for an admin route: token verification
// followed by the shared-store route budget keyed by subject and IP.
func Gate(
	v jwtx.Verifier,
	st kv.Store,
	route string,
	config RateLimitConfig,
	timeout time.Duration,
	ip KeyExtractor,
) Middleware {
	authn := AuthnMiddleware(v)
	limit := StoreRateLimit(st, route, config, CompositeKeyExtractor(":",
		SubjectKeyExtractor,
		ip,
	), timeout)

	return func(next http.Handler) http.Handler {
		return Chain(next, authn, limit)
	}
}
