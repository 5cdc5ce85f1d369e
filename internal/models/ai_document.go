package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// EmbeddingDimensions must match the embedding model used for both
// ingestion and retrieval. text-embedding-3-small produces 1536.
const EmbeddingDimensions = 1536

// AIDocument is one retrievable chunk of knowledge-base text.
// Rows are immutable once written; re-ingestion replaces them.
type AIDocument struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Content   string          `gorm:"column:content;type:text;not null" json:"content"`
	Embedding pgvector.Vector `gorm:"column:embedding;type:vector(1536);not null" json:"-"`
	Source    string          `gorm:"column:source;type:text" json:"source"`
	CreatedAt time.Time       `gorm:"column:created_at;type:timestamptz;autoCreateTime" json:"created_at"`
}

func (AIDocument) TableName() string { return "ai_documents" }

// RetrievedDocument is a ranked similarity-search hit. It only lives for
// the duration of one chat turn; nothing persists it.
type RetrievedDocument struct {
	Content    string  `json:"content"`
	Source     string  `json:"source"`
	Similarity float64 `json:"similarity_score"`
}
