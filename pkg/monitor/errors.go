package monitor

import "errors"

var (
	// ErrCheckInProgress is returned when a check or session refresh is
	// requested while another one holds the browser.
	ErrCheckInProgress = errors.New("check already in progress")
	// ErrRecoveryExhausted means every recovery strategy failed.
	ErrRecoveryExhausted = errors.New("automatic session recovery failed")
)
