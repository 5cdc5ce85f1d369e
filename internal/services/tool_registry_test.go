package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/turnuplagos/turnup-backend/internal/models"
)

func sampleEvents() []models.Event {
	return []models.Event{
		{ID: 1, EventName: "Beach Rave", State: "Lagos", Venue: "Landmark", Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), IsFeatured: true},
		{ID: 2, EventName: "Art Night", State: "Lagos", Venue: "Terra", Date: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), IsFeatured: true},
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	reg := NewToolRegistry(&fakeEventRepo{}, nil)

	res := reg.Execute(context.Background(), "nonexistent_tool", nil, nil)
	if res["success"] != false {
		t.Errorf("unknown tool must report success=false, got %v", res)
	}
	if res["error"] != "Unknown tool: nonexistent_tool" {
		t.Errorf("error = %v", res["error"])
	}
}

func TestExecuteGetLatestEvents(t *testing.T) {
	reg := NewToolRegistry(&fakeEventRepo{events: sampleEvents()}, nil)

	res := reg.Execute(context.Background(), ToolGetLatestEvents, nil, nil)
	if res["success"] != true {
		t.Fatalf("expected success, got %v", res)
	}
	events, ok := res["events"].([]eventPayload)
	if !ok {
		t.Fatalf("events payload has wrong type: %T", res["events"])
	}
	if len(events) != 2 || events[0].Title != "Beach Rave" {
		t.Errorf("unexpected payload: %+v", events)
	}
}

func TestExecuteGetLatestEventsQueryFailureIsToolOutput(t *testing.T) {
	reg := NewToolRegistry(&fakeEventRepo{listErr: errors.New("relation does not exist")}, nil)

	res := reg.Execute(context.Background(), ToolGetLatestEvents, nil, nil)
	if res["success"] != false {
		t.Errorf("backing query failure must be a tool-level failure, got %v", res)
	}
	if res["error"] == "" {
		t.Errorf("failure must carry the error message")
	}
}

func TestExecuteGetLatestEventsUsesCache(t *testing.T) {
	c := newFakeCache()
	repo := &fakeEventRepo{events: sampleEvents()}
	reg := NewToolRegistry(repo, c)

	ctx := context.Background()
	_ = reg.Execute(ctx, ToolGetLatestEvents, nil, nil)
	if c.sets != 1 {
		t.Fatalf("first call should populate the cache, sets=%d", c.sets)
	}

	repo.listErr = errors.New("db down")
	res := reg.Execute(ctx, ToolGetLatestEvents, nil, nil)
	if res["success"] != true {
		t.Errorf("second call should be served from cache, got %v", res)
	}
}

func TestExecuteGetEventByID(t *testing.T) {
	reg := NewToolRegistry(&fakeEventRepo{events: sampleEvents()}, nil)

	cases := []struct {
		name string
		args map[string]any
		ok   bool
	}{
		{"float64 id from JSON", map[string]any{"event_id": float64(2)}, true},
		{"string id", map[string]any{"event_id": "1"}, true},
		{"missing id", map[string]any{}, false},
		{"unknown id", map[string]any{"event_id": float64(99)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := reg.Execute(context.Background(), ToolGetEventByID, tc.args, nil)
			if (res["success"] == true) != tc.ok {
				t.Errorf("success = %v, want %v (%v)", res["success"], tc.ok, res)
			}
		})
	}
}

func TestExecuteRequireLogin(t *testing.T) {
	reg := NewToolRegistry(&fakeEventRepo{}, nil)

	res := reg.Execute(context.Background(), ToolRequireLogin, nil, nil)
	if res["requires_auth"] != true {
		t.Errorf("require_login must set requires_auth, got %v", res)
	}
	if res["message"] == "" {
		t.Errorf("require_login must carry the login message")
	}
}

func TestDefinitionsCoverEveryTool(t *testing.T) {
	reg := NewToolRegistry(&fakeEventRepo{}, nil)

	defs := reg.Definitions()
	want := map[string]bool{
		ToolGetLatestEvents: false,
		ToolGetEventByID:    false,
		ToolRequireLogin:    false,
	}
	for _, d := range defs {
		if _, ok := want[d.Name]; !ok {
			t.Errorf("unexpected tool definition %q", d.Name)
			continue
		}
		want[d.Name] = true
		if len(d.Parameters) == 0 {
			t.Errorf("tool %q has no parameter schema", d.Name)
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("tool %q has no definition", name)
		}
	}
}
