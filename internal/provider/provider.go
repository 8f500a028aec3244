package provider

import (
	"context"

	"chatcli/internal/chat"
)

// ChatRequest wraps a single model call.
type ChatRequest struct {
	Model       string
	Messages    []chat.Message
	Tools       []chat.ToolDef
	Temperature *float64
	MaxTokens   int
}

// StreamCallbacks is the callback set for streaming responses.
type StreamCallbacks struct {
	OnTextChunk func(chunk string)
	OnToolCall  func(call chat.ToolCall)
	OnUsage     func(usage Usage)
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ChatResponse is the complete response.
type ChatResponse struct {
	Content      string
	ToolCalls    []chat.ToolCall
	FinishReason string
	Usage        Usage
}

// ModelInfo describes a model offered by the backend.
type ModelInfo struct {
	ID      string
	OwnedBy string
}

// Provider is the model backend interface.
type Provider interface {
	// Chat sends a request and returns a response. Callbacks fire as tokens
	// arrive; a nil cb collects silently.
	Chat(ctx context.Context, req ChatRequest, cb *StreamCallbacks) (ChatResponse, error)

	// ListModels lists available models.
	ListModels(ctx context.Context) ([]ModelInfo, error)

	Name() string
	CurrentModel() string
	SetModel(model string) error
}
