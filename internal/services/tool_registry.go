package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/turnuplagos/turnup-backend/internal/cache"
	"github.com/turnuplagos/turnup-backend/internal/models"
	"github.com/turnuplagos/turnup-backend/internal/providers/llm"
	pgrepo "github.com/turnuplagos/turnup-backend/internal/repositories/postgres"
	"github.com/turnuplagos/turnup-backend/internal/utils"
)

// Tool names form a closed set; adding one means touching the switch in
// Execute and the definitions list together.
const (
	ToolGetLatestEvents = "get_latest_events"
	ToolGetEventByID    = "get_event_by_id"
	ToolRequireLogin    = "require_login"
)

const (
	latestEventsCacheKey = "ai:tools:latest_events"
	latestEventsCacheTTL = 60 * time.Second
)

// ToolResult is whatever a tool hands back to the model. Failures are part
// of the payload, never an error that aborts the turn.
type ToolResult map[string]any

func toolFailure(msg string) ToolResult {
	return ToolResult{"success": false, "error": msg}
}

type ToolRegistry interface {
	Definitions() []llm.ToolDefinition
	Execute(ctx context.Context, name string, args map[string]any, caller *models.AuthenticatedUser) ToolResult
}

type toolRegistry struct {
	events pgrepo.EventRepo
	cache  cache.Cache
}

// NewToolRegistry wires the tools to the listings collaborator. cache may be
// nil; live-listing payloads are then fetched fresh every call.
func NewToolRegistry(events pgrepo.EventRepo, c cache.Cache) ToolRegistry {
	return &toolRegistry{events: events, cache: c}
}

func (r *toolRegistry) Execute(ctx context.Context, name string, args map[string]any, caller *models.AuthenticatedUser) ToolResult {
	switch name {
	case ToolGetLatestEvents:
		return r.getLatestEvents(ctx)
	case ToolGetEventByID:
		return r.getEventByID(ctx, args)
	case ToolRequireLogin:
		return r.requireLogin()
	default:
		return toolFailure(fmt.Sprintf("Unknown tool: %s", name))
	}
}

type eventPayload struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date,omitempty"`
	Venue       string `json:"venue,omitempty"`
	State       string `json:"state,omitempty"`
}

func toEventPayload(e models.Event) eventPayload {
	return eventPayload{
		ID:          e.ID,
		Title:       e.EventName,
		Description: e.EventDescription,
		Date:        e.Date.Format("2006-01-02"),
		Venue:       e.Venue,
		State:       e.State,
	}
}

func (r *toolRegistry) getLatestEvents(ctx context.Context) ToolResult {
	if r.cache != nil {
		var cached []eventPayload
		if hit, err := r.cache.GetJSON(ctx, latestEventsCacheKey, &cached); err == nil && hit {
			return ToolResult{"success": true, "events": cached}
		}
	}

	rows, err := r.events.LatestFeatured(ctx, 10)
	if err != nil {
		return toolFailure(err.Error())
	}

	payload := make([]eventPayload, 0, len(rows))
	for _, e := range rows {
		payload = append(payload, toEventPayload(e))
	}

	if r.cache != nil {
		_ = r.cache.SetJSON(ctx, latestEventsCacheKey, payload, latestEventsCacheTTL)
	}
	return ToolResult{"success": true, "events": payload}
}

func (r *toolRegistry) getEventByID(ctx context.Context, args map[string]any) ToolResult {
	id, ok := numericArg(args, "event_id")
	if !ok {
		return toolFailure("event_id is required")
	}

	event, err := r.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return toolFailure("Event not found")
		}
		return toolFailure(err.Error())
	}
	return ToolResult{"success": true, "event": toEventPayload(*event)}
}

// requireLogin performs no lookup and no side effect. It exists so the model
// can phrase a login prompt with a consistent payload.
func (r *toolRegistry) requireLogin() ToolResult {
	return ToolResult{
		"success":       false,
		"requires_auth": true,
		"message":       "You need to be logged in to perform this action. Please log in at /login",
	}
}

// numericArg reads an integer argument that may arrive as float64 (JSON
// numbers), json.Number, or a stringified int.
func numericArg(args map[string]any, key string) (int64, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		var i int64
		_, err := fmt.Sscanf(n, "%d", &i)
		return i, err == nil
	default:
		return 0, false
	}
}

func (r *toolRegistry) Definitions() []llm.ToolDefinition {
	return []llm.ToolDefinition{
		{
			Name:        ToolGetLatestEvents,
			Description: "Fetch the latest featured events on the platform. Use this when users ask about current events, what's happening, or upcoming events.",
			Parameters:  json.RawMessage(`{"type":"object","properties":{},"required":[]}`),
		},
		{
			Name:        ToolGetEventByID,
			Description: "Get detailed information about a specific event by its ID.",
			Parameters:  json.RawMessage(`{"type":"object","properties":{"event_id":{"type":"integer","description":"The ID of the event to retrieve"}},"required":["event_id"]}`),
		},
		{
			Name:        ToolRequireLogin,
			Description: "Tell the user they need to log in to perform an action like posting events or accessing protected features.",
			Parameters:  json.RawMessage(`{"type":"object","properties":{},"required":[]}`),
		},
	}
}
