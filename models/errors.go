package models

import (
	"errors"
	"fmt"
	"time"
)

// Business outcomes surfaced to callers verbatim. Handlers map them to
// statuses; services never wrap them in anything opaque.
var (
	ErrPlayerNotFound   = errors.New("player not found")
	ErrInstanceNotFound = errors.New("monster instance not found")
	ErrGiftNotFound     = errors.New("gift not found")
	ErrCodeNotFound     = errors.New("claim code not found")
	ErrCodeExpired      = errors.New("claim code has expired")
	ErrAlreadyClaimed   = errors.New("claim code already used by this player")
	ErrNotOwned         = errors.New("monster instance not in sender's collection")

	// ErrThrottled matches any ThrottledError via errors.Is.
	ErrThrottled = errors.New("currency refresh throttled")

	// ErrTransient wraps a storage conflict that survived the retry budget.
	// Operations in this core are safe to retry after it.
	ErrTransient = errors.New("transient storage conflict")
)

// ThrottledError reports how long the caller has to wait before the next
// crystal refresh attempt.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("currency refresh throttled, retry in %s", e.RetryAfter.Round(time.Second))
}

func (e *ThrottledError) Unwrap() error { return ErrThrottled }
