// README: Monthly allowance of AI fallback replies per chat session.
package aiusage

import (
	"errors"
	"time"
)

var ErrQuotaExhausted = errors.New("ai reply quota exhausted")

// DefaultMonthlyReplies is the allowance used when none is configured.
const DefaultMonthlyReplies = 100

type Usage struct {
	SessionID string `json:"session_id"`
	Remaining int    `json:"remaining"`
	Month     string `json:"month"`
}

// monthOf returns the allowance period t falls in, e.g. "2026-03".
func monthOf(t time.Time) string {
	return t.UTC().Format("2006-01")
}
