package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CheckOutcome mirrors the outcome of a stock check.
type CheckOutcome string

const (
	CheckOutcomeAvailable   CheckOutcome = "available"
	CheckOutcomeNoneInStock CheckOutcome = "none_in_stock"
	CheckOutcomeNoItems     CheckOutcome = "no_items"
	CheckOutcomeNotLoggedIn CheckOutcome = "not_logged_in"
	CheckOutcomeError       CheckOutcome = "error"
)

// CheckRun is the persisted summary of one stock check
type CheckRun struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CheckID    string         `gorm:"uniqueIndex;not null" json:"check_id"` // UUID
	StartedAt  time.Time      `gorm:"index" json:"started_at"`
	Duration   int64          `json:"duration"` // Duration in milliseconds
	Outcome    CheckOutcome   `gorm:"index" json:"outcome"`
	EntryCount int            `gorm:"default:0" json:"entry_count"`
	Qualifying int            `gorm:"default:0" json:"qualifying"`
	LoggedIn   bool           `json:"logged_in"`
	Account    string         `json:"account,omitempty"`
	Recovered  string         `json:"recovered,omitempty"` // Recovery strategy used during the check
	Notified   bool           `json:"notified"`
	ExitCode   int            `json:"exit_code"`
	ErrorMsg   string         `json:"error_msg,omitempty"`
	Entries    datatypes.JSON `json:"entries"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for CheckRun model
func (CheckRun) TableName() string {
	return "check_runs"
}

// Failed reports whether the check ended with an error.
func (r CheckRun) Failed() bool {
	return r.Outcome == CheckOutcomeError || r.Outcome == CheckOutcomeNotLoggedIn
}
