package llm

import (
	"context"
	"encoding/json"
)

// Message is one entry in the model conversation. ToolCallID is set only on
// role "tool" entries and must echo the correlating call's ID so the model
// can match results to requests.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// ToolCall is a structured request from the model to run a named backend
// function. Arguments is the raw JSON argument string as the model sent it.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolDefinition is the machine-readable schema advertised to the model.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// Completion is the model's answer to one call: plain text content and/or
// requested tool calls.
type Completion struct {
	Content   string
	ToolCalls []ToolCall
}

// Provider abstracts the remote model endpoints. Both clients are stateless;
// every call is a blocking remote round trip.
type Provider interface {
	// Complete runs one chat completion. Pass tools on the first round and
	// nil on the second; the provider never loops on its own.
	Complete(ctx context.Context, messages []Message, tools []ToolDefinition) (*Completion, error)

	// Embed converts text into a fixed-dimensionality vector. The same
	// provider must serve ingestion and retrieval or search is meaningless.
	Embed(ctx context.Context, text string) ([]float32, error)
}
