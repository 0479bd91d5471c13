package apperr

import "net/http"

var errorMap = map[int]CustomError{
	ErrInvalidParams:     {Code: ErrInvalidParams, Message: "invalid request parameters", Status: http.StatusBadRequest},
	ErrInvalidJSONBody:   {Code: ErrInvalidJSONBody, Message: "malformed request body", Status: http.StatusBadRequest},
	ErrRateLimitExceeded: {Code: ErrRateLimitExceeded, Message: "too many requests, slow down", Status: http.StatusTooManyRequests},

	ErrUnauthorized: {Code: ErrUnauthorized, Message: "authentication required", Status: http.StatusUnauthorized},
	ErrInvalidToken: {Code: ErrInvalidToken, Message: "invalid or expired token", Status: http.StatusUnauthorized},

	ErrUnknown: {Code: ErrUnknown, Message: "something went wrong, please try again", Status: http.StatusInternalServerError},
}
