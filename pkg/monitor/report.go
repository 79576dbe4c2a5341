package monitor

import (
	"errors"
	"time"

	"deckwatch/pkg/stock"
)

// Outcome summarises how a check ended.
type Outcome string

const (
	OutcomeAvailable   Outcome = "available"
	OutcomeNoneInStock Outcome = "none_in_stock"
	OutcomeNoItems     Outcome = "no_items"
	OutcomeNotLoggedIn Outcome = "not_logged_in"
	OutcomeError       Outcome = "error"
)

// Report describes one finished check.
type Report struct {
	ID         string        `json:"id"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Outcome    Outcome       `json:"outcome"`
	Entries    []stock.Entry `json:"entries"`
	Qualifying int           `json:"qualifying"`
	LoggedIn   bool          `json:"logged_in"`
	Account    string        `json:"account,omitempty"`
	// Recovered names the strategy that renewed the session during the check.
	Recovered string `json:"recovered,omitempty"`
	Notified  bool   `json:"notified"`
	Error     string `json:"error,omitempty"`
	ExitCode  int    `json:"exit_code"`

	Err error `json:"-"`
}

func outcomeOf(entries []stock.Entry, err error) Outcome {
	switch {
	case errors.Is(err, stock.ErrNotLoggedIn):
		return OutcomeNotLoggedIn
	case err != nil:
		return OutcomeError
	case len(entries) == 0:
		return OutcomeNoItems
	case len(stock.Qualifying(entries)) > 0:
		return OutcomeAvailable
	default:
		return OutcomeNoneInStock
	}
}

// Status is a point-in-time view of the loop.
type Status struct {
	Running     bool          `json:"running"`
	InProgress  bool          `json:"in_progress"`
	Interval    time.Duration `json:"interval"`
	LastCheck   *time.Time    `json:"last_check,omitempty"`
	LastOutcome Outcome       `json:"last_outcome,omitempty"`
	LastError   string        `json:"last_error,omitempty"`
	LastEntries []stock.Entry `json:"last_entries"`
	NextRun     *time.Time    `json:"next_run,omitempty"`

	Checks          int `json:"checks"`
	Failures        int `json:"failures"`
	Recoveries      int `json:"recoveries"`
	AlertsSent      int `json:"alerts_sent"`
	AlertsThrottled int `json:"alerts_throttled"`
}
