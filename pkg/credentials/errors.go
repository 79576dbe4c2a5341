package credentials

import "errors"

// ErrPersistence wraps every cookie-file or debug-file write failure.
var ErrPersistence = errors.New("persistence failure")
