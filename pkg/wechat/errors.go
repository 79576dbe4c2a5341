package wechat

import (
	"errors"
	"fmt"
)

var (
	ErrWebhookURLEmpty   = errors.New("wecom webhook URL not configured")
	ErrSendRequest       = errors.New("wecom request failed")
	ErrUnmarshalResponse = errors.New("wecom response is not JSON")
	// ErrAPIError is wrapped by every APIError.
	ErrAPIError = errors.New("wecom api error")
	// ErrHTTPStatusError is wrapped by every HTTPError.
	ErrHTTPStatusError = errors.New("wecom http status error")
)

// APIError is a webhook reply with a non-zero errcode.
type APIError struct {
	Code    int    `json:"errcode"`
	Message string `json:"errmsg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wecom: errcode %d: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return ErrAPIError }

// HTTPError is a webhook reply with a non-200 status.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("wecom: http %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) Unwrap() error { return ErrHTTPStatusError }
