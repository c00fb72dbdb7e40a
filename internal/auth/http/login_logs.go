package http

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/siteadmin/internal/auth/domain"
	"github.com/aussiebroadwan/siteadmin/internal/auth/store"
	"github.com/aussiebroadwan/siteadmin/pkg/httpx"
	"github.com/aussiebroadwan/siteadmin/pkg/slogx"
)

const (
	defaultLogsLimit = 50
	maxLogsLimit     = 500
	maxExportRows    = 10000
)

// LoginLogsHandler serves GET /admin-login-logs. It must sit behind the
// request gate; the health probe is split off before the gate by
// LogsHealthBypass.
type LoginLogsHandler struct {
	Store store.Store
	Now   func() time.Time
}

type logsQuery struct {
	filter domain.LoginAttemptFilter
	page   domain.Page
	export string
}

// ServeHTTP godoc
//
//	@Summary		Admin login audit log
//	@Description	Paginated, filterable list of login attempts with aggregate counts. export=csv or export=json downloads up to 10000 matching rows.
//	@Description	health=1 skips authentication and reports record store latency.
//	@Tags			Admin
//	@Produce		json
//	@Produce		text/csv
//	@Security		BearerAuth
//	@Param			limit		query		int					false	"Page size (1-500)"	default(50)
//	@Param			offset		query		int					false	"Rows to skip"		default(0)
//	@Param			sort_by		query		string				false	"Sort column"		Enums(created_at, ip_address, success)
//	@Param			direction	query		string				false	"Sort direction"	Enums(ASC, DESC)
//	@Param			start_date	query		string				false	"RFC 3339 time or YYYY-MM-DD (inclusive)"
//	@Param			end_date	query		string				false	"RFC 3339 time or YYYY-MM-DD (whole day inclusive)"
//	@Param			ip			query		string				false	"Exact IP address"
//	@Param			success		query		string				false	"true/false/1/0"
//	@Param			user_agent	query		string				false	"User agent substring"
//	@Param			export		query		string				false	"Download format"	Enums(csv, json)
//	@Param			health		query		string				false	"1 for an unauthenticated health probe"
//	@Success		200			{object}	LoginLogsResponse	"logs, stats, pagination"
//	@Failure		400			{object}	httpx.ErrorResponse	"invalid_request"
//	@Failure		401			{object}	httpx.ErrorResponse	"unauthenticated"
//	@Failure		429			{object}	httpx.ErrorResponse	"rate_limit_exceeded"
//	@Failure		503			{object}	httpx.ErrorResponse	"store_unavailable"
//	@Router			/admin-login-logs [get].
func (h *LoginLogsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	q, err := parseLogsQuery(r.URL.Query())
	if err != nil {
		invalidRequest(err.Error()).WriteError(w)
		return
	}

	if q.export != "" {
		h.export(w, r, q)
		return
	}

	var (
		rows  []domain.LoginAttempt
		total int64
		stats domain.LoginAttemptStats
	)
	err = h.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		if rows, total, err = tx.LoginAttempts().ListLoginAttempts(ctx, q.filter, q.page); err != nil {
			return err
		}
		stats, err = tx.LoginAttempts().LoginAttemptStats(ctx, q.filter)
		return err
	})
	if err != nil {
		log.Error("list login attempts", "err", err)
		httpx.ErrStoreUnavailable.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, LoginLogsResponse{
		Logs:  rows,
		Stats: stats,
		Pagination: Pagination{
			Total:   total,
			Limit:   q.page.Limit,
			Offset:  q.page.Offset,
			HasMore: int64(q.page.Offset+len(rows)) < total,
		},
	})
}

func (h *LoginLogsHandler) export(w http.ResponseWriter, r *http.Request, q logsQuery) {
	ctx := r.Context()

	page := q.page
	page.Limit, page.Offset = maxExportRows, 0

	rows, _, err := h.Store.LoginAttempts().ListLoginAttempts(ctx, q.filter, page)
	if err != nil {
		slogx.FromContext(ctx).Error("export login attempts", "err", err)
		httpx.ErrStoreUnavailable.WriteError(w)
		return
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	stamp := now().UTC()
	filename := "admin-login-logs-" + stamp.Format("20060102-150405")

	httpx.NoCache(w)
	switch q.export {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`.csv"`)
		w.WriteHeader(http.StatusOK)

		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"id", "ip_address", "user_agent", "success", "created_at"})
		for _, a := range rows {
			_ = cw.Write([]string{
				a.ID,
				csvSafe(a.IPAddress),
				csvSafe(a.UserAgent),
				strconv.FormatBool(a.Success),
				a.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			slogx.FromContext(ctx).Warn("csv export interrupted", "err", err)
		}

	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`.json"`)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(LoginLogsExport{
			ExportedAt: stamp.Format(time.RFC3339),
			Count:      len(rows),
			Logs:       rows,
		})
	}
}

// csvSafe defuses cells a spreadsheet would evaluate as a formula. User
// agents are attacker controlled.
func csvSafe(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

func parseLogsQuery(v url.Values) (logsQuery, error) {
	q := logsQuery{
		page: domain.Page{
			Limit:  defaultLogsLimit,
			SortBy: domain.SortByCreatedAt,
			Desc:   true,
		},
	}

	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxLogsLimit {
			return q, fmt.Errorf("limit must be between 1 and %d", maxLogsLimit)
		}
		q.page.Limit = n
	}
	if s := v.Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return q, fmt.Errorf("offset must be a non-negative integer")
		}
		q.page.Offset = n
	}
	if s := v.Get("sort_by"); s != "" {
		f, ok := domain.ParseSortField(s)
		if !ok {
			return q, fmt.Errorf("sort_by must be one of created_at, ip_address, success")
		}
		q.page.SortBy = f
	}
	if s := v.Get("direction"); s != "" {
		desc, ok := domain.ParseDirection(s)
		if !ok {
			return q, fmt.Errorf("direction must be ASC or DESC")
		}
		q.page.Desc = desc
	}

	if s := v.Get("start_date"); s != "" {
		t, _, err := parseDate(s)
		if err != nil {
			return q, fmt.Errorf("start_date: %w", err)
		}
		q.filter.Start = t
	}
	if s := v.Get("end_date"); s != "" {
		t, dateOnly, err := parseDate(s)
		if err != nil {
			return q, fmt.Errorf("end_date: %w", err)
		}
		// The filter end is exclusive. A bare date covers the whole day; a
		// timestamp covers its own millisecond.
		if dateOnly {
			q.filter.End = t.AddDate(0, 0, 1)
		} else {
			q.filter.End = t.Add(time.Millisecond)
		}
	}
	if !q.filter.Start.IsZero() && !q.filter.End.IsZero() && !q.filter.Start.Before(q.filter.End) {
		return q, fmt.Errorf("start_date must not be after end_date")
	}

	q.filter.IPAddress = strings.TrimSpace(v.Get("ip"))
	q.filter.UserAgent = strings.TrimSpace(v.Get("user_agent"))

	if s := v.Get("success"); s != "" {
		var b bool
		switch strings.ToLower(s) {
		case "true", "1":
			b = true
		case "false", "0":
			b = false
		default:
			return q, fmt.Errorf("success must be true, false, 1 or 0")
		}
		q.filter.Success = &b
	}

	switch e := strings.ToLower(v.Get("export")); e {
	case "", "csv", "json":
		q.export = e
	default:
		return q, fmt.Errorf("export must be csv or json")
	}

	return q, nil
}

// parseDate accepts RFC 3339 or YYYY-MM-DD (midnight UTC). dateOnly reports
// which form matched.
func parseDate(s string) (t time.Time, dateOnly bool, err error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("%q is not RFC 3339 or YYYY-MM-DD", s)
}

// LogsHealthBypass answers health=1 probes itself, without authentication,
// and hands every other request to gated.
func LogsHealthBypass(st store.Store, gated http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch strings.ToLower(r.URL.Query().Get("health")) {
		case "1", "true":
		default:
			gated.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		err := st.Ping(r.Context())
		latency := float64(time.Since(start).Microseconds()) / 1000

		if err != nil {
			slogx.FromContext(r.Context()).Error("record store health probe failed", "err", err)
			httpx.WriteJSON(w, http.StatusServiceUnavailable, LogsHealthResponse{Status: "error", DBLatencyMS: latency})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, LogsHealthResponse{Status: "ok", DBLatencyMS: latency})
	})
}
