package apperr

// 1xxx: request handling
const (
	ErrInvalidParams     = 1001
	ErrInvalidJSONBody   = 1002
	ErrRateLimitExceeded = 1003
)

// 3xxx: auth
const (
	ErrUnauthorized = 3001
	ErrInvalidToken = 3002
)

// 5xxx: internal
const (
	ErrUnknown = 5000
)
