// Package models holds the response shapes documented in the API reference.
package models

import "time"

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string                 `json:"status" example:"healthy"`
	Service   string                 `json:"service" example:"deckwatch"`
	Version   string                 `json:"version" example:"1.0.0"`
	Timestamp time.Time              `json:"timestamp" example:"2026-03-01T08:13:24Z"`
	Checks    map[string]ProbeStatus `json:"checks"`
}

// ProbeStatus is one component of the health response
type ProbeStatus struct {
	Status  string         `json:"status" example:"healthy"`
	Error   string         `json:"error,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// StatusResponse represents the watcher status response
type StatusResponse struct {
	Service            string        `json:"service" example:"deckwatch"`
	Version            string        `json:"version" example:"1.0.0"`
	Timestamp          time.Time     `json:"timestamp" example:"2026-03-01T08:13:24Z"`
	Uptime             string        `json:"uptime" example:"2h0m0s"`
	Monitor            MonitorStatus `json:"monitor"`
	ManualLoginPending bool          `json:"manual_login_pending" example:"false"`
}

// MonitorStatus mirrors the watch loop snapshot
type MonitorStatus struct {
	Running         bool         `json:"running" example:"true"`
	InProgress      bool         `json:"in_progress" example:"false"`
	Interval        int64        `json:"interval" example:"900000000000"`
	LastCheck       *time.Time   `json:"last_check,omitempty" example:"2026-03-01T08:00:00Z"`
	LastOutcome     string       `json:"last_outcome,omitempty" example:"none_in_stock"`
	LastError       string       `json:"last_error,omitempty"`
	LastEntries     []EntryModel `json:"last_entries"`
	NextRun         *time.Time   `json:"next_run,omitempty" example:"2026-03-01T08:15:00Z"`
	Checks          int          `json:"checks" example:"12"`
	Failures        int          `json:"failures" example:"0"`
	Recoveries      int          `json:"recoveries" example:"1"`
	AlertsSent      int          `json:"alerts_sent" example:"2"`
	AlertsThrottled int          `json:"alerts_throttled" example:"1"`
}

// EntryModel is one offer on the listing page
type EntryModel struct {
	Title        string  `json:"title" example:"Steam Deck 64 GB LCD reacondicionada"`
	Price        *string `json:"price" example:"279,00€"`
	URL          *string `json:"url"`
	Availability string  `json:"availability" example:"in_stock" enums:"in_stock,out_of_stock,unknown"`
	Synthetic    bool    `json:"synthetic,omitempty"`
}

// CheckReport is the result of POST /check
type CheckReport struct {
	ID         string       `json:"id" example:"5b0c2f5e-6a0e-4c56-9a3b-8d6f1f3c0a11"`
	StartedAt  time.Time    `json:"started_at" example:"2026-03-01T08:00:00Z"`
	Duration   int64        `json:"duration" example:"5300000000"`
	Outcome    string       `json:"outcome" example:"available" enums:"available,none_in_stock,no_items,not_logged_in,error"`
	Entries    []EntryModel `json:"entries"`
	Qualifying int          `json:"qualifying" example:"1"`
	LoggedIn   bool         `json:"logged_in" example:"true"`
	Account    string       `json:"account,omitempty" example:"deckfan"`
	Recovered  string       `json:"recovered,omitempty" example:"profile"`
	Notified   bool         `json:"notified" example:"true"`
	Error      string       `json:"error,omitempty"`
	ExitCode   int          `json:"exit_code" example:"0"`
}

// AcceptedResponse acknowledges work started in the background
type AcceptedResponse struct {
	Status    string    `json:"status" example:"accepted"`
	Message   string    `json:"message" example:"session refresh started"`
	Timestamp time.Time `json:"timestamp" example:"2026-03-01T08:13:24Z"`
}

// DeliveredResponse acknowledges a manual login signal
type DeliveredResponse struct {
	Status    string    `json:"status" example:"delivered"`
	Timestamp time.Time `json:"timestamp" example:"2026-03-01T08:13:24Z"`
}

// CookieStatus describes the cookie file
type CookieStatus struct {
	Path          string    `json:"path" example:"cookies.json"`
	Exists        bool      `json:"exists" example:"true"`
	Size          int64     `json:"size" example:"2048"`
	ModTime       time.Time `json:"mod_time,omitempty" example:"2026-03-01T07:00:00Z"`
	Count         int       `json:"count" example:"9"`
	Authenticated bool      `json:"authenticated" example:"true"`
}

// HistoryResponse is the success envelope of GET /history
type HistoryResponse struct {
	Success   bool        `json:"success" example:"true"`
	Timestamp time.Time   `json:"timestamp" example:"2026-03-01T08:13:24Z"`
	Data      HistoryPage `json:"data"`
}

// HistoryPage lists recent check runs
type HistoryPage struct {
	Runs  []CheckRunModel `json:"runs"`
	Count int             `json:"count" example:"2"`
	Limit int             `json:"limit" example:"20"`
}

// CheckRunModel is a stored check run
type CheckRunModel struct {
	ID         uint      `json:"id" example:"42"`
	CheckID    string    `json:"check_id" example:"5b0c2f5e-6a0e-4c56-9a3b-8d6f1f3c0a11"`
	StartedAt  time.Time `json:"started_at" example:"2026-03-01T08:00:00Z"`
	Duration   int64     `json:"duration" example:"5300"`
	Outcome    string    `json:"outcome" example:"none_in_stock"`
	EntryCount int       `json:"entry_count" example:"3"`
	Qualifying int       `json:"qualifying" example:"0"`
	ExitCode   int       `json:"exit_code" example:"1"`
	ErrorMsg   string    `json:"error_msg,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     bool   `json:"error" example:"true"`
	Message   string `json:"message" example:"A check is already in progress"`
	Code      int    `json:"code" example:"409"`
	Details   string `json:"details,omitempty" example:"check already in progress"`
	RequestID string `json:"request_id" example:"0b9d4a36-0c1e-4b5f-9e3c-6c7c1e8a9f10"`
}
