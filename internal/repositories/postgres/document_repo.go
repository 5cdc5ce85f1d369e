package postgres

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/turnuplagos/turnup-backend/internal/models"
)

// SearchHit is one nearest-neighbor row. Similarity is 1 - cosine distance.
type SearchHit struct {
	Content    string
	Source     string
	Similarity float64
}

type DocumentRepo interface {
	Insert(ctx context.Context, doc *models.AIDocument) error
	Nearest(ctx context.Context, embedding []float32, k int) ([]SearchHit, error)
	Clear(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type documentRepo struct {
	db *gorm.DB
}

func NewDocumentRepo(db *gorm.DB) DocumentRepo {
	return &documentRepo{db: db}
}

func (r *documentRepo) Insert(ctx context.Context, doc *models.AIDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// Nearest orders by pgvector cosine distance. The secondary order by id
// makes ties deterministic so identical queries replay identically.
func (r *documentRepo) Nearest(ctx context.Context, embedding []float32, k int) ([]SearchHit, error) {
	if k <= 0 {
		k = 5
	}

	vec := pgvector.NewVector(embedding)
	var hits []SearchHit
	err := r.db.WithContext(ctx).Raw(`
		SELECT content, source, 1 - (embedding <=> ?) AS similarity
		FROM ai_documents
		ORDER BY embedding <=> ?, id
		LIMIT ?`, vec, vec, k).Scan(&hits).Error
	if err != nil {
		return nil, err
	}
	return hits, nil
}

func (r *documentRepo) Clear(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.AIDocument{})
	return res.RowsAffected, res.Error
}

func (r *documentRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.AIDocument{}).Count(&n).Error
	return n, err
}
