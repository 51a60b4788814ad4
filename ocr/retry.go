package ocr

import (
	"math"
	"time"
)

// Default retry constants for the remote OCR service. The service regularly
// returns transient E101 timeouts under load, so a handful of attempts with
// a gentle exponential schedule recovers most documents.
const (
	DefaultMaxAttempts = 4
	DefaultBackoffBase = 1.5
	DefaultMaxBackoff  = 30 * time.Second
)

// RetryPolicy bounds the OCR request loop.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, first attempt included.
	MaxAttempts int

	// BackoffBase is the exponential base; attempt n waits BackoffBase^(n-1)
	// seconds before retrying.
	BackoffBase float64

	// MaxBackoff caps any single wait.
	MaxBackoff time.Duration
}

// NewDefaultRetryPolicy returns the policy tuned for the hosted OCR service.
func NewDefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		BackoffBase: DefaultBackoffBase,
		MaxBackoff:  DefaultMaxBackoff,
	}
}

// Backoff computes the wait after the given 1-based attempt number.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := p.BackoffBase
	if base <= 0 {
		base = DefaultBackoffBase
	}

	wait := time.Duration(math.Pow(base, float64(attempt-1)) * float64(time.Second))
	if p.MaxBackoff > 0 && wait > p.MaxBackoff {
		wait = p.MaxBackoff
	}
	return wait
}
