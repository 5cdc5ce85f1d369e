package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/turnuplagos/turnup-backend/internal/models"
	"github.com/turnuplagos/turnup-backend/internal/providers/llm"
	pgrepo "github.com/turnuplagos/turnup-backend/internal/repositories/postgres"
	"github.com/turnuplagos/turnup-backend/internal/utils"
)

// fakeProvider scripts the model: each Complete call pops the next canned
// completion; Embed returns a fixed-length vector or a scripted error.
type fakeProvider struct {
	completions []*llm.Completion
	completeErr error
	embedErr    error
	embedCalls  int

	// captured inputs for assertions
	calls [][]llm.Message
	tools [][]llm.ToolDefinition
}

func (f *fakeProvider) Complete(_ context.Context, messages []llm.Message, tools []llm.ToolDefinition) (*llm.Completion, error) {
	f.calls = append(f.calls, messages)
	f.tools = append(f.tools, tools)
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	if len(f.completions) == 0 {
		return &llm.Completion{Content: "ok"}, nil
	}
	next := f.completions[0]
	f.completions = f.completions[1:]
	return next, nil
}

func (f *fakeProvider) Embed(_ context.Context, text string) ([]float32, error) {
	f.embedCalls++
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	vec := make([]float32, 8)
	for i := range vec {
		vec[i] = float32(len(text)%7) / 10
	}
	return vec, nil
}

// fakeDocumentRepo keeps chunks in memory and returns hits verbatim.
type fakeDocumentRepo struct {
	docs      []models.AIDocument
	hits      []pgrepo.SearchHit
	insertErr error
}

func (f *fakeDocumentRepo) Insert(_ context.Context, doc *models.AIDocument) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.docs = append(f.docs, *doc)
	return nil
}

func (f *fakeDocumentRepo) Nearest(_ context.Context, _ []float32, k int) ([]pgrepo.SearchHit, error) {
	if len(f.hits) > k {
		return f.hits[:k], nil
	}
	return f.hits, nil
}

func (f *fakeDocumentRepo) Clear(_ context.Context) (int64, error) {
	n := int64(len(f.docs))
	f.docs = nil
	return n, nil
}

func (f *fakeDocumentRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.docs)), nil
}

// fakeEventRepo serves canned listings or a scripted failure.
type fakeEventRepo struct {
	events  []models.Event
	listErr error
}

func (f *fakeEventRepo) LatestFeatured(_ context.Context, limit int) ([]models.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.events) > limit {
		return f.events[:limit], nil
	}
	return f.events, nil
}

func (f *fakeEventRepo) GetByID(_ context.Context, id int64) (*models.Event, error) {
	for _, e := range f.events {
		if e.ID == id {
			out := e
			return &out, nil
		}
	}
	return nil, utils.ErrNotFound
}

// memorySessionRepo is an in-memory stand-in for the Postgres session store,
// including the cascade semantics the real schema enforces.
type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]models.ChatSession
	messages map[string][]models.ChatMessage
	nextID   int64
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{
		sessions: make(map[string]models.ChatSession),
		messages: make(map[string][]models.ChatMessage),
	}
}

func (r *memorySessionRepo) Create(_ context.Context, s *models.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID]; ok {
		return errors.New("duplicate session id")
	}
	r.sessions[s.ID] = *s
	return nil
}

func (r *memorySessionRepo) Exists(_ context.Context, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[sessionID]
	return ok, nil
}

func (r *memorySessionRepo) AppendMessage(_ context.Context, m *models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[m.SessionID]; !ok {
		return utils.ErrNotFound
	}
	r.nextID++
	m.ID = r.nextID
	r.messages[m.SessionID] = append(r.messages[m.SessionID], *m)
	return nil
}

func (r *memorySessionRepo) History(_ context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := r.messages[sessionID]
	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	out := make([]models.ChatMessage, len(rows))
	copy(out, rows)
	return out, nil
}

func (r *memorySessionRepo) Transcript(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	return r.History(ctx, sessionID, 0)
}

func (r *memorySessionRepo) ClearMessages(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.messages, sessionID)
	return nil
}

func (r *memorySessionRepo) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sessionID]; !ok {
		return utils.ErrNotFound
	}
	delete(r.sessions, sessionID)
	delete(r.messages, sessionID)
	return nil
}

func (r *memorySessionRepo) List(_ context.Context, limit, offset int) ([]models.SessionSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SessionSummary
	for id, s := range r.sessions {
		out = append(out, models.SessionSummary{
			SessionID:    id,
			UserID:       s.UserID,
			CreatedAt:    s.CreatedAt,
			MessageCount: int64(len(r.messages[id])),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memorySessionRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, s := range r.sessions {
		if s.CreatedAt.Before(cutoff) {
			delete(r.sessions, id)
			delete(r.messages, id)
			deleted++
		}
	}
	return deleted, nil
}

// fakeCache is a map-backed cache.Cache.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	sets  int
	hits  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]byte)}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.store[key] = b
	c.sets++
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.store, k)
	}
	return nil
}
