package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrQuotaExceeded marks a resource-exhaustion failure from the model API.
// The gateway recovers it locally and never returns it from its operations.
var ErrQuotaExceeded = errors.New("generative quota exceeded")

// QuotaError wraps the provider error that signaled exhaustion.
type QuotaError struct {
	Err error
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%v: %v", ErrQuotaExceeded, e.Err)
}

func (e *QuotaError) Unwrap() []error { return []error{ErrQuotaExceeded, e.Err} }

// IsQuotaExceeded reports whether err signals quota or resource exhaustion:
// a 429 status, or a message mentioning RESOURCE_EXHAUSTED or quota.
func IsQuotaExceeded(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrQuotaExceeded) {
		return true
	}
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) && sc.StatusCode() == http.StatusTooManyRequests {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "quota")
}

// ErrInvalidResponse means the model returned content that does not
// conform to the requested schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid model response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable means the provider is down, unreachable or unconfigured.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generative provider unavailable: %v", e.Err)
	}
	return "generative provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// UpstreamGenerationError is a non-quota failure of scenario or summary generation.
type UpstreamGenerationError struct {
	Op  string
	Err error
}

func (e *UpstreamGenerationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *UpstreamGenerationError) Unwrap() error { return e.Err }

// EvaluationFailedError is a non-quota failure of response evaluation.
type EvaluationFailedError struct {
	Err error
}

func (e *EvaluationFailedError) Error() string {
	return fmt.Sprintf("evaluation failed: %v", e.Err)
}

func (e *EvaluationFailedError) Unwrap() error { return e.Err }

// VoiceGenerationError is a non-quota failure of speech synthesis.
type VoiceGenerationError struct {
	Err error
}

func (e *VoiceGenerationError) Error() string {
	return fmt.Sprintf("voice generation failed: %v", e.Err)
}

func (e *VoiceGenerationError) Unwrap() error { return e.Err }
