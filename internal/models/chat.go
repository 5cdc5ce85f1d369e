package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ChatSession is one conversation thread. A session with a nil UserID is
// anonymous and stays anonymous; ownership is never assigned after the fact.
type ChatSession struct {
	ID        string    `gorm:"column:id;type:text;primaryKey" json:"id"`
	UserID    *int64    `gorm:"column:user_id;index" json:"user_id"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;autoUpdateTime" json:"updated_at"`

	Messages []ChatMessage `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ChatSession) TableName() string { return "chat_sessions" }

// ChatMessage is a single turn inside a session. The store preserves
// insertion order exactly; replay depends on it.
type ChatMessage struct {
	ID        int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SessionID string         `gorm:"column:session_id;type:text;not null;index" json:"session_id"`
	Role      Role           `gorm:"column:role;type:text;not null" json:"role"`
	Content   string         `gorm:"column:content;type:text;not null" json:"content"`
	Metadata  datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"column:created_at;type:timestamptz;autoCreateTime" json:"created_at"`
}

func (ChatMessage) TableName() string { return "chat_messages" }

// TurnMetadata records per-turn provenance on assistant messages.
type TurnMetadata struct {
	UsedRetrieval bool     `json:"used_rag"`
	UsedTools     bool     `json:"used_tools"`
	Sources       []string `json:"sources,omitempty"`
}

func (m *TurnMetadata) ToJSON() datatypes.JSON {
	if m == nil {
		return nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

// SessionSummary is the admin listing row: one session plus its message count.
type SessionSummary struct {
	SessionID    string    `json:"session_id"`
	UserID       *int64    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	MessageCount int64     `json:"message_count"`
}
