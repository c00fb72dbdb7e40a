package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/siteadmin/internal/auth/store"
	"github.com/aussiebroadwan/siteadmin/pkg/httpx"
	"github.com/aussiebroadwan/siteadmin/pkg/kv"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Checks the record store, the key-value store and that a signing secret is configured.
//	@Description	refresh_secret reports whether refresh tokens have their own secret; sharing the access secret is flagged but not fatal.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	kvStore kv.Store,
	signerReady func() bool,
	refreshShared bool,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &HealthChecks{
			Database:      "ok",
			KV:            "ok",
			Signer:        "ok",
			RefreshSecret: "dedicated",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if err := kvStore.Ping(r.Context()); err != nil {
			checks.KV = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if !signerReady() {
			checks.Signer = "error: signing secret not configured"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if refreshShared {
			checks.RefreshSecret = "shared_with_access"
		}

		httpx.WriteJSON(w, statusCode, HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
