package llm

import (
	"encoding/json"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestNewOpenAIRequiresKey(t *testing.T) {
	if _, err := NewOpenAI("", ""); err == nil {
		t.Fatal("a missing API key must be a constructor error")
	}
}

func TestToOpenAIMessagesCarriesToolPlumbing(t *testing.T) {
	in := []Message{
		{Role: "system", Content: "prompt"},
		{Role: "assistant", Content: "", ToolCalls: []ToolCall{
			{ID: "call_1", Name: "get_latest_events", Arguments: "{}"},
		}},
		{Role: "tool", Content: `{"success":true}`, ToolCallID: "call_1"},
	}

	out := toOpenAIMessages(in)
	if len(out) != 3 {
		t.Fatalf("got %d messages, want 3", len(out))
	}
	if len(out[1].ToolCalls) != 1 {
		t.Fatalf("assistant tool call dropped")
	}
	tc := out[1].ToolCalls[0]
	if tc.ID != "call_1" || tc.Type != openai.ToolTypeFunction || tc.Function.Name != "get_latest_events" {
		t.Errorf("tool call mapped wrong: %+v", tc)
	}
	if out[2].ToolCallID != "call_1" {
		t.Errorf("tool result lost its correlation id")
	}
}

func TestToOpenAITools(t *testing.T) {
	defs := []ToolDefinition{{
		Name:        "require_login",
		Description: "ask the user to log in",
		Parameters:  json.RawMessage(`{"type":"object","properties":{},"required":[]}`),
	}}

	out := toOpenAITools(defs)
	if len(out) != 1 {
		t.Fatalf("got %d tools, want 1", len(out))
	}
	if out[0].Type != openai.ToolTypeFunction || out[0].Function == nil {
		t.Fatalf("tool shape wrong: %+v", out[0])
	}
	if out[0].Function.Name != "require_login" {
		t.Errorf("name = %q", out[0].Function.Name)
	}
}
