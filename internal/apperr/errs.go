// Package apperr provides the custom error type used by the REST surface
// (the login handler and the bearer-token middleware). It is never used on
// the WebSocket signaling path: per the protocol, malformed or out-of-state
// client events are dropped silently rather than surfaced as error events,
// since the wire protocol has no error event vocabulary.
package apperr

import (
	"fmt"
	"net/http"
	"strings"

	"randomchat/internal/logx"
)

// CustomError is the error type REST handlers respond with on failure. It carries
// a business code, a user-safe message, and the HTTP status to respond with.
type CustomError struct {
	Code    int
	Message string
	Status  int
}

func (e CustomError) Error() string {
	return fmt.Sprintf("error %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// New constructs a *CustomError from a known code, optionally formatting the
// template message with details. Unknown codes fall back to ErrUnknown.
func New(code int, details ...any) *CustomError {
	template, ok := errorMap[code]
	if !ok {
		logx.Error(fmt.Errorf("unknown apperr code requested"), "unknown error code", "requested_code", code)
		unknown := errorMap[ErrUnknown]
		return &unknown
	}

	err := template
	if err.Status == 0 {
		err.Status = http.StatusOK
	}

	if len(details) > 0 {
		if strings.Contains(err.Message, "%") {
			err.Message = fmt.Sprintf(err.Message, details...)
		}
	}

	return &err
}
