package login

import "errors"

var (
	// ErrSessionExpired means no account indicator appeared within the
	// allotted time and no manual completion could rescue the attempt.
	ErrSessionExpired = errors.New("session expired")

	// ErrLoginFieldNotFound means no candidate field scored above zero.
	ErrLoginFieldNotFound = errors.New("login field not found")

	// ErrSubmitFailed means no control could be clicked and the form could
	// not be submitted programmatically.
	ErrSubmitFailed = errors.New("login submit failed")

	// ErrManualTimeout means nobody sent the completion signal in time.
	ErrManualTimeout = errors.New("manual login not completed")

	// ErrNoCredentials is returned by strategies that type a username and
	// password when none are configured.
	ErrNoCredentials = errors.New("no login credentials configured")
)
