package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/url"
)

var (
	// ErrUpstreamUnreachable covers connection refused, DNS failure and timeouts.
	ErrUpstreamUnreachable = errors.New("upstream unreachable")
	// ErrUpstreamStatus means the upstream answered with a non-2xx status.
	ErrUpstreamStatus = errors.New("upstream returned error status")
	// ErrUpstreamDecode means the upstream body was not usable JSON.
	ErrUpstreamDecode = errors.New("upstream returned invalid body")
)

// Backend is a conversational service the gateway relays to.
type Backend interface {
	// Send delivers one user message and returns the upstream reply list as
	// raw JSON.
	Send(ctx context.Context, sender, message string) (json.RawMessage, error)
	// Name is a human readable label, e.g. "Rasa server".
	Name() string
	// Endpoint identifies where messages are sent.
	Endpoint() string
}

// isTransportError reports whether err happened before an HTTP response
// was received.
func isTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
