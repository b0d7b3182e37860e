package engine

import "errors"

// Error taxonomy surfaced to callers unchanged; the HTTP layer maps these to
// 404/400/403/409 responses.
var (
	ErrReportNotFound    = errors.New("report not found")
	ErrModeratorNotFound = errors.New("moderator not found")
	ErrInvalidPayload    = errors.New("invalid payload")
	ErrUnauthorized      = errors.New("moderator is inactive or unknown")
	ErrEmptyIdentifier   = errors.New("empty user identifier")
)
