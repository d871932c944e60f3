package azureopenai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mlindqvist/school-pipeline/internal/core/domain"
	"github.com/mlindqvist/school-pipeline/internal/infrastructure/resilience"
)

// HTTPStatusError is a non-2xx provider response; the body is retained so
// the persister can archive it on terminal failure.
type HTTPStatusError struct {
	StatusCode int
	Status     string
	Body       string
	RetryAfter time.Duration
}

func (e *HTTPStatusError) Error() string {
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("completion status: %s", e.Status)
	}
	return fmt.Sprintf("completion status: %s: %s", e.Status, strings.TrimSpace(e.Body))
}

// classifyCallError decides retry behavior per spec: 429 and 5xx retry
// (429 honoring Retry-After, else the configured 429 sleep), other 4xx
// are terminal, network/timeout failures retry, empty completions retry
// within the overall budget, malformed bodies are terminal.
func classifyCallError(retry429Sleep time.Duration) resilience.Classifier {
	return func(err error) resilience.Classification {
		if err == nil {
			return resilience.Classification{}
		}
		if errors.Is(err, context.Canceled) {
			return resilience.Classification{Retryable: false, RecordFailure: false}
		}
		if resilience.IsCircuitOpen(err) {
			return resilience.Classification{Retryable: true, RecordFailure: true}
		}

		var statusErr *HTTPStatusError
		if errors.As(err, &statusErr) {
			switch {
			case statusErr.StatusCode == http.StatusTooManyRequests:
				wait := statusErr.RetryAfter
				if wait <= 0 {
					wait = retry429Sleep
				}
				return resilience.Classification{Retryable: true, RecordFailure: true, RetryAfter: wait}
			case statusErr.StatusCode >= 500:
				return resilience.Classification{Retryable: true, RecordFailure: true}
			default:
				// Other 4xx: the request itself is wrong, a retry
				// burns quota without a chance of success.
				return resilience.Classification{Retryable: false, RecordFailure: false}
			}
		}

		if errors.Is(err, ErrEmptyCompletion) {
			return resilience.Classification{Retryable: true, RecordFailure: true}
		}
		var malformed *MalformedResponseError
		if errors.As(err, &malformed) {
			return resilience.Classification{Retryable: false, RecordFailure: true}
		}

		if errors.Is(err, context.DeadlineExceeded) {
			return resilience.Classification{Retryable: true, RecordFailure: true}
		}
		var netErr net.Error
		if errors.As(err, &netErr) {
			return resilience.Classification{Retryable: true, RecordFailure: true}
		}

		return resilience.Classification{Retryable: false, RecordFailure: true}
	}
}

// errorKind maps a terminal call error onto the outcome taxonomy.
func errorKind(err error) domain.ErrorKind {
	if err == nil {
		return domain.KindNone
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusTooManyRequests:
			return domain.KindRateLimited
		case statusErr.StatusCode >= 500:
			return domain.KindServerError
		default:
			return domain.KindClientError
		}
	}

	var malformed *MalformedResponseError
	if errors.As(err, &malformed) || errors.Is(err, ErrEmptyCompletion) {
		return domain.KindMalformedResponse
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return domain.KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.KindTimeout
	}

	return domain.KindUnknown
}
