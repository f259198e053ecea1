package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxUpstreamBodyBytes caps the reply body read from the upstream.
const maxUpstreamBodyBytes = 1 << 20

type rasaMessage struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

// RasaBackend talks to the REST input channel of a Rasa server.
type RasaBackend struct {
	httpClient *http.Client
	endpoint   string
}

// NewRasaBackend posts to endpoint, which must be the full webhook URL.
// Deadlines come from the caller's context.
func NewRasaBackend(endpoint string, httpClient *http.Client) *RasaBackend {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &RasaBackend{httpClient: httpClient, endpoint: endpoint}
}

func (b *RasaBackend) Name() string     { return "Rasa server" }
func (b *RasaBackend) Endpoint() string { return b.endpoint }

// Send posts one message and returns the upstream reply list untouched.
func (b *RasaBackend) Send(ctx context.Context, sender, message string) (json.RawMessage, error) {
	payload, err := json.Marshal(rasaMessage{Sender: sender, Message: message})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBodyBytes+1))
	if err != nil {
		if isTransportError(err) {
			return nil, fmt.Errorf("%w: read body: %v", ErrUpstreamUnreachable, err)
		}
		return nil, fmt.Errorf("read upstream body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d %s", ErrUpstreamStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if len(body) > maxUpstreamBodyBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrUpstreamDecode, maxUpstreamBodyBytes)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: not JSON", ErrUpstreamDecode)
	}
	return json.RawMessage(body), nil
}
