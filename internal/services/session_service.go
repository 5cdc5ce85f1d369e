package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turnuplagos/turnup-backend/internal/models"
	pgrepo "github.com/turnuplagos/turnup-backend/internal/repositories/postgres"
	"github.com/turnuplagos/turnup-backend/internal/utils"
)

type SessionService interface {
	Create(ctx context.Context, userID *int64) (string, error)
	Exists(ctx context.Context, sessionID string) (bool, error)
	Append(ctx context.Context, sessionID string, role models.Role, content string, meta *models.TurnMetadata) error
	History(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error)
	Transcript(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
	Clear(ctx context.Context, sessionID string) error
	Delete(ctx context.Context, sessionID string) error
	ListSessions(ctx context.Context, limit, offset int) ([]models.SessionSummary, error)
	CleanupOlderThan(ctx context.Context, days int) (int64, error)
}

type sessionService struct {
	sessions pgrepo.SessionRepo

	// Per-session append locks. Two chat requests racing on the same
	// session must not interleave their user/assistant turns. Entries are
	// refcounted and removed when the last holder releases, so the map
	// only ever holds sessions with an append in flight.
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewSessionService(sessions pgrepo.SessionRepo) SessionService {
	return &sessionService{
		sessions: sessions,
		locks:    make(map[string]*sessionLock),
	}
}

func (s *sessionService) lockSession(sessionID string) *sessionLock {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return l
}

func (s *sessionService) unlockSession(sessionID string, l *sessionLock) {
	l.mu.Unlock()

	s.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, sessionID)
	}
	s.mu.Unlock()
}

func (s *sessionService) Create(ctx context.Context, userID *int64) (string, error) {
	const op = "SessionService.Create"

	session := &models.ChatSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to create session", err)
	}
	return session.ID, nil
}

func (s *sessionService) Exists(ctx context.Context, sessionID string) (bool, error) {
	const op = "SessionService.Exists"

	if sessionID == "" {
		return false, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	ok, err := s.sessions.Exists(ctx, sessionID)
	if err != nil {
		return false, utils.E(utils.CodeInternal, op, "failed to check session", err)
	}
	return ok, nil
}

func (s *sessionService) Append(ctx context.Context, sessionID string, role models.Role, content string, meta *models.TurnMetadata) error {
	const op = "SessionService.Append"

	if sessionID == "" || role == "" || content == "" {
		return utils.E(utils.CodeInvalidArgument, op, "session_id, role, and content are required", nil)
	}

	l := s.lockSession(sessionID)
	defer s.unlockSession(sessionID, l)

	msg := &models.ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Metadata:  meta.ToJSON(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sessions.AppendMessage(ctx, msg); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to append message", err)
	}
	return nil
}

func (s *sessionService) History(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	const op = "SessionService.History"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	rows, err := s.sessions.History(ctx, sessionID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load history", err)
	}
	return rows, nil
}

func (s *sessionService) Transcript(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	const op = "SessionService.Transcript"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	rows, err := s.sessions.Transcript(ctx, sessionID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load transcript", err)
	}
	return rows, nil
}

func (s *sessionService) Clear(ctx context.Context, sessionID string) error {
	const op = "SessionService.Clear"

	ok, err := s.Exists(ctx, sessionID)
	if err != nil {
		return err
	}
	if !ok {
		return utils.E(utils.CodeNotFound, op, "session not found", utils.ErrNotFound)
	}
	if err := s.sessions.ClearMessages(ctx, sessionID); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to clear messages", err)
	}
	return nil
}

func (s *sessionService) Delete(ctx context.Context, sessionID string) error {
	const op = "SessionService.Delete"

	if sessionID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete session", err)
	}
	return nil
}

func (s *sessionService) ListSessions(ctx context.Context, limit, offset int) ([]models.SessionSummary, error) {
	const op = "SessionService.ListSessions"

	rows, err := s.sessions.List(ctx, limit, offset)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list sessions", err)
	}
	return rows, nil
}

func (s *sessionService) CleanupOlderThan(ctx context.Context, days int) (int64, error) {
	const op = "SessionService.CleanupOlderThan"

	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	n, err := s.sessions.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, utils.E(utils.CodeInternal, op, "failed to cleanup sessions", err)
	}
	return n, nil
}
