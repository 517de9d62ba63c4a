package transfer

import (
	"fmt"
	"time"
)

// ThrottleError переносит Retry-After бэкенда в расчет задержки ретраев.
type ThrottleError struct {
	RetryAfter time.Duration
	Cause      error
}

func (e *ThrottleError) Error() string {
	return fmt.Sprintf("throttled: retry after %v (cause: %v)", e.RetryAfter, e.Cause)
}
