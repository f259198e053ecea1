package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"vaspx-assistant/internal/types"
)

const defaultSystemPrompt = "You are VaspX, the assistant of Vasp Technologies. " +
	"Answer questions about the company's services, contact information and pricing briefly and politely."

// OpenAIBackend answers through a chat completion and shapes the reply like
// a Rasa reply list.
type OpenAIBackend struct {
	client *openai.Client
	model  string
	system string
}

func NewOpenAIBackend(client *openai.Client, model, system string) *OpenAIBackend {
	if strings.TrimSpace(system) == "" {
		system = defaultSystemPrompt
	}
	return &OpenAIBackend{client: client, model: model, system: system}
}

func (b *OpenAIBackend) Name() string     { return "OpenAI API" }
func (b *OpenAIBackend) Endpoint() string { return "openai:" + b.model }

func (b *OpenAIBackend) Send(ctx context.Context, sender, message string) (json.RawMessage, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		User:  sender,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: b.system},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrUpstreamDecode)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	return json.Marshal([]types.BotMessage{{RecipientID: sender, Text: text}})
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %d %s", ErrUpstreamStatus, apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: %d %v", ErrUpstreamStatus, reqErr.HTTPStatusCode, reqErr.Err)
	}
	if isTransportError(err) {
		return fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}
	return err
}
