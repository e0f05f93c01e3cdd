package legacy

import (
	"errors"
	"fmt"

	"github.com/aplose/erp-migrate/pkg/common/httpclient"
)

// APIError reports a failed call to the legacy API: either a transport
// failure (StatusCode 0) or a response that could not be used.
type APIError struct {
	Resource   string
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e.Timeout() {
		return fmt.Sprintf("legacy api %s: timed out: %v", e.Resource, e.Err)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("legacy api %s: status %d: %v", e.Resource, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("legacy api %s: %v", e.Resource, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the call hit the connect or read deadline.
func (e *APIError) Timeout() bool {
	return e.StatusCode == 0 && httpclient.IsTimeout(e.Err)
}

func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

var (
	errUnexpectedStatus = errors.New("unexpected status")
	errMalformedBody    = errors.New("malformed response body")
)
