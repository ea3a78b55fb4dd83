package httpclient

import (
	"errors"
	"net"
	"syscall"
)

// isRetryableError reports whether a request error is transient enough to
// retry: timeouts, connection refusals, and resets.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}
