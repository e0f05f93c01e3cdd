package httpclient

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// New creates an HTTP client for outbound calls to a remote API. connectTimeout
// bounds dialing and the TLS handshake; readTimeout bounds the wait for
// response headers and, doubled, the whole exchange including the body.
func New(connectTimeout, readTimeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: connectTimeout, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   connectTimeout,
		ResponseHeaderTimeout: readTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	var total time.Duration
	if readTimeout > 0 {
		total = connectTimeout + 2*readTimeout
	}

	return &http.Client{
		Timeout:   total,
		Transport: transport,
	}
}

// IsTimeout reports whether err came from a connect or read deadline.
func IsTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return errors.Is(err, context.DeadlineExceeded)
}
