package domain

import (
	"strings"
	"time"
)

// LoginAttempt is one row of the append-only login audit log.
type LoginAttempt struct {
	ID        string    `json:"id"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	Success   bool      `json:"success"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginAttemptFilter narrows a log query. Zero values mean "no constraint".
type LoginAttemptFilter struct {
	Start     time.Time // inclusive
	End       time.Time // exclusive
	IPAddress string
	Success   *bool
	UserAgent string // substring match
}

// LoginAttemptStats are aggregate counts over a filtered log.
type LoginAttemptStats struct {
	TotalAttempts int64 `json:"total_attempts"`
	SuccessCount  int64 `json:"success_count"`
	FailedCount   int64 `json:"failed_count"`
}

// SortField is a column the log may be ordered by.
type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByIPAddress SortField = "ip_address"
	SortBySuccess   SortField = "success"
)

// ParseSortField accepts only the known sort columns.
func ParseSortField(s string) (SortField, bool) {
	switch f := SortField(s); f {
	case SortByCreatedAt, SortByIPAddress, SortBySuccess:
		return f, true
	}
	return "", false
}

// ParseDirection accepts ASC or DESC in any case. The bool is false for
// anything else.
func ParseDirection(s string) (desc bool, ok bool) {
	switch strings.ToUpper(s) {
	case "ASC":
		return false, true
	case "DESC":
		return true, true
	}
	return false, false
}

// Page is an ordered window over the log.
type Page struct {
	Limit  int
	Offset int
	SortBy SortField
	Desc   bool
}
