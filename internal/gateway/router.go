package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vaspx-assistant/internal/logger"
	"vaspx-assistant/internal/metrics"
	"vaspx-assistant/internal/types"
)

const (
	UnexpectedErrorText = "An unexpected error occurred on the server. Please check the logs."

	outcomeOK          = "ok"
	outcomeUnreachable = "unreachable"
	outcomeError       = "error"
)

// UnreachableText is the chat message shown when the backend cannot be reached.
func UnreachableText(b Backend) string {
	return fmt.Sprintf("Error: Could not connect to the %s at %s. Please check if it's running.", b.Name(), b.Endpoint())
}

// Router relays chat messages to a Backend. Relay never returns an error:
// every failure becomes a single-element reply list.
type Router struct {
	backend Backend
	timeout time.Duration
	log     logger.Logger
}

// NewRouter creates a router that bounds each upstream call by timeout.
func NewRouter(backend Backend, timeout time.Duration, log logger.Logger) *Router {
	return &Router{
		backend: backend,
		timeout: timeout,
		log:     log.With(map[string]interface{}{"upstream": backend.Endpoint()}),
	}
}

// Relay forwards req to the backend and returns its reply list or a single error reply.
func (r *Router) Relay(ctx context.Context, req types.GatewayRequest) types.GatewayResponse {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	body, err := r.backend.Send(ctx, req.Sender, req.Message)
	metrics.GatewayUpstreamDuration.WithLabelValues(r.backend.Name()).Observe(time.Since(start).Seconds())

	if err == nil {
		metrics.GatewayRequests.WithLabelValues(outcomeOK).Inc()
		return types.GatewayResponse{Responses: body}
	}

	if errors.Is(err, ErrUpstreamUnreachable) {
		metrics.GatewayRequests.WithLabelValues(outcomeUnreachable).Inc()
		r.log.Error("error connecting to upstream", map[string]interface{}{"sender": req.Sender, "error": err})
		return r.single(UnreachableText(r.backend))
	}

	metrics.GatewayRequests.WithLabelValues(outcomeError).Inc()
	r.log.Error("unexpected upstream error", map[string]interface{}{"sender": req.Sender, "error": err})
	return r.single(UnexpectedErrorText)
}

func (r *Router) single(text string) types.GatewayResponse {
	b, _ := json.Marshal([]types.BotMessage{{Text: text}})
	return types.GatewayResponse{Responses: b}
}
