package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/turnuplagos/turnup-backend/internal/models"
	"github.com/turnuplagos/turnup-backend/internal/utils"
)

// EventRepo is the narrow read-only view of the listings side that the chat
// tools are allowed to touch.
type EventRepo interface {
	LatestFeatured(ctx context.Context, limit int) ([]models.Event, error)
	GetByID(ctx context.Context, id int64) (*models.Event, error)
}

type eventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) EventRepo {
	return &eventRepo{db: db}
}

func (r *eventRepo) LatestFeatured(ctx context.Context, limit int) ([]models.Event, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []models.Event
	err := r.db.WithContext(ctx).
		Where("is_featured = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *eventRepo) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	var row models.Event
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}
