package midocean

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
)

// ErrUnexpectedPayload indicates a response that does not have the documented shape.
var ErrUnexpectedPayload = errors.New("midocean: unexpected payload")

// APIError represents a non-2xx gateway response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("midocean: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// classifyStatus maps a gateway error response onto the run failure taxonomy.
//
//   - 401, 403: credentials rejected
//   - 408, 429, 5xx: transient, retried
//   - other 4xx: request is wrong and will not improve on retry
func classifyStatus(op string, apiErr *APIError) error {
	switch {
	case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %w", domain.ErrAuth, apiErr)
	case apiErr.StatusCode == http.StatusRequestTimeout,
		apiErr.StatusCode == http.StatusTooManyRequests,
		apiErr.StatusCode >= 500:
		return domain.NewTransportError(op, apiErr.StatusCode, apiErr)
	default:
		return apiErr
	}
}

// classifyRequestError maps a failed round trip. A done context is returned
// as ctx.Err() so the caller can tell cancellation from a timeout.
func classifyRequestError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return domain.NewTransportError(op, 0, err)
}

// IsUnauthorized checks if the error indicates rejected credentials.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}
