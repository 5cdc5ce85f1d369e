package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/turnuplagos/turnup-backend/internal/models"
	"github.com/turnuplagos/turnup-backend/internal/providers/llm"
)

// FallbackReply is returned whenever a model call fails. The real error is
// carried in ChatOutcome.Err for the log, never shown to the end user.
const FallbackReply = "I'm having trouble right now. Please try again."

const systemPromptTemplate = `You are a helpful assistant for TurnUp Lagos, a platform that connects people with events and venues.

Your responsibilities:
- Answer questions about how the platform works using the documentation context below
- Fetch live data (events) using the tools available to you
- Guide users who want to post events to log in first
- Be concise and accurate

Documentation context:
%s

Guidelines:
- Use tools when users ask for live data (events)
- Use the require_login tool when users want to post or do anything that needs an account
- If you don't know something, say so honestly`

// ChatOutcome is the result of one orchestrated turn.
type ChatOutcome struct {
	Reply         string
	UsedRetrieval bool
	UsedTools     bool
	Sources       []string
	Err           error
}

// Metadata packages the outcome's provenance flags for the assistant row.
func (o ChatOutcome) Metadata() *models.TurnMetadata {
	return &models.TurnMetadata{
		UsedRetrieval: o.UsedRetrieval,
		UsedTools:     o.UsedTools,
		Sources:       o.Sources,
	}
}

type ChatService interface {
	Respond(ctx context.Context, userMessage string, history []models.ChatMessage, caller *models.AuthenticatedUser) ChatOutcome
}

type chatService struct {
	provider  llm.Provider
	retrieval RetrievalService
	tools     ToolRegistry
}

func NewChatService(provider llm.Provider, retrieval RetrievalService, tools ToolRegistry) ChatService {
	return &chatService{provider: provider, retrieval: retrieval, tools: tools}
}

// Respond walks one turn through its states: build context, first model
// call, optionally one tool round plus a second model call, done. Tool and
// retrieval failures degrade the turn; only model-call failures abort it,
// and even those produce the fallback reply rather than an error response.
func (s *chatService) Respond(ctx context.Context, userMessage string, history []models.ChatMessage, caller *models.AuthenticatedUser) ChatOutcome {
	docs, err := s.retrieval.Search(ctx, userMessage, defaultSearchLimit)
	if err != nil {
		// Degrade to an empty context block; the turn continues.
		docs = nil
	}
	contextBlock := s.retrieval.FormatContext(docs)

	messages := s.buildMessages(contextBlock, userMessage, history)

	first, err := s.provider.Complete(ctx, messages, s.tools.Definitions())
	if err != nil {
		return ChatOutcome{Reply: FallbackReply, Err: err}
	}

	reply := first.Content
	usedTools := len(first.ToolCalls) > 0

	if usedTools {
		messages = s.appendToolResults(ctx, messages, first, caller)

		// Strict two-round protocol: no tools offered on the second
		// call, and any tool requests it makes anyway are ignored.
		second, err := s.provider.Complete(ctx, messages, nil)
		if err != nil {
			return ChatOutcome{Reply: FallbackReply, Err: err}
		}
		reply = second.Content
	}

	return ChatOutcome{
		Reply:         reply,
		UsedRetrieval: len(docs) > 0,
		UsedTools:     usedTools,
		Sources:       sourceLabels(docs),
	}
}

func (s *chatService) buildMessages(contextBlock, userMessage string, history []models.ChatMessage) []llm.Message {
	messages := []llm.Message{{
		Role:    "system",
		Content: fmt.Sprintf(systemPromptTemplate, contextBlock),
	}}
	for _, m := range history {
		messages = append(messages, llm.Message{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	messages = append(messages, llm.Message{Role: string(models.RoleUser), Content: userMessage})
	return messages
}

// appendToolResults executes every call the model requested and appends one
// correlated tool-result entry per call.
func (s *chatService) appendToolResults(ctx context.Context, messages []llm.Message, completion *llm.Completion, caller *models.AuthenticatedUser) []llm.Message {
	messages = append(messages, llm.Message{
		Role:      "assistant",
		Content:   completion.Content,
		ToolCalls: completion.ToolCalls,
	})

	for _, tc := range completion.ToolCalls {
		args := map[string]any{}
		if tc.Arguments != "" {
			// Malformed arguments degrade to an empty-argument call.
			if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
				args = map[string]any{}
			}
		}

		result := s.tools.Execute(ctx, tc.Name, args, caller)

		body, err := json.Marshal(result)
		if err != nil {
			body = []byte(`{"success":false,"error":"unserializable tool result"}`)
		}
		messages = append(messages, llm.Message{
			Role:       "tool",
			Content:    string(body),
			ToolCallID: tc.ID,
		})
	}
	return messages
}

func sourceLabels(docs []models.RetrievedDocument) []string {
	var out []string
	seen := make(map[string]bool)
	for _, d := range docs {
		if d.Source == "" || seen[d.Source] {
			continue
		}
		seen[d.Source] = true
		out = append(out, d.Source)
	}
	return out
}
