package types

import "encoding/json"

// GatewayRequest is the body of POST /chat.
type GatewayRequest struct {
	Message string `json:"message"`
	Sender  string `json:"sender"`
}

// GatewayResponse relays the upstream reply list untouched.
type GatewayResponse struct {
	Responses json.RawMessage `json:"responses"`
}

// BotMessage is one element of a reply list produced locally.
type BotMessage struct {
	RecipientID string `json:"recipient_id,omitempty"`
	Text        string `json:"text"`
}

// TrainRequest is the body of POST /train.
type TrainRequest struct {
	Category  string   `json:"category"`
	Patterns  []string `json:"patterns"`
	Responses []string `json:"responses"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type TrainResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type KnowledgeEntry struct {
	Patterns  []string `json:"patterns"`
	Responses []string `json:"responses"`
}

// KnowledgeResponse is the GET /knowledge snapshot.
type KnowledgeResponse struct {
	KnowledgeBase map[string]KnowledgeEntry `json:"knowledge_base"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
