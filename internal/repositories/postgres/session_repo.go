package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/turnuplagos/turnup-backend/internal/models"
	"github.com/turnuplagos/turnup-backend/internal/utils"
)

type SessionRepo interface {
	Create(ctx context.Context, s *models.ChatSession) error
	Exists(ctx context.Context, sessionID string) (bool, error)
	AppendMessage(ctx context.Context, m *models.ChatMessage) error
	History(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error)
	Transcript(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
	ClearMessages(ctx context.Context, sessionID string) error
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context, limit, offset int) ([]models.SessionSummary, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type sessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) SessionRepo {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, s *models.ChatSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sessionRepo) Exists(ctx context.Context, sessionID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.ChatSession{}).
		Where("id = ?", sessionID).
		Count(&n).Error
	return n > 0, err
}

func (r *sessionRepo) AppendMessage(ctx context.Context, m *models.ChatMessage) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.ChatSession{}).Where("id = ?", m.SessionID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return utils.ErrNotFound
		}
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return tx.Model(&models.ChatSession{}).
			Where("id = ?", m.SessionID).
			Update("updated_at", time.Now().UTC()).Error
	})
	return err
}

// History returns the most recent limit messages in chronological order,
// ready to replay into the orchestrator.
func (r *sessionRepo) History(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

func (r *sessionRepo) Transcript(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	var rows []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *sessionRepo) ClearMessages(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&models.ChatMessage{}).Error
}

// Delete removes the session row; messages go with it via the FK cascade.
func (r *sessionRepo) Delete(ctx context.Context, sessionID string) error {
	res := r.db.WithContext(ctx).Where("id = ?", sessionID).Delete(&models.ChatSession{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *sessionRepo) List(ctx context.Context, limit, offset int) ([]models.SessionSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rows []models.SessionSummary
	err := r.db.WithContext(ctx).
		Table("chat_sessions").
		Select("chat_sessions.id AS session_id, chat_sessions.user_id, chat_sessions.created_at, COUNT(chat_messages.id) AS message_count").
		Joins("LEFT JOIN chat_messages ON chat_messages.session_id = chat_sessions.id").
		Group("chat_sessions.id").
		Order("chat_sessions.created_at DESC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *sessionRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.ChatSession{})
	if res.Error != nil && !errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
