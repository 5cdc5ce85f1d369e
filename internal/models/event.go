package models

import "time"

// Event is the listings collaborator's record. The chat tools only read
// events; all write paths live in the CRUD side of the platform.
type Event struct {
	ID               int64     `gorm:"column:id;primaryKey" json:"id"`
	EventName        string    `gorm:"column:event_name;type:varchar(150);not null" json:"event_name"`
	State            string    `gorm:"column:state;type:varchar(100);not null" json:"state"`
	Venue            string    `gorm:"column:venue;type:varchar(150);not null" json:"venue"`
	Date             time.Time `gorm:"column:date;type:date;not null" json:"date"`
	Time             string    `gorm:"column:time;type:varchar(10);not null" json:"time"`
	DressCode        string    `gorm:"column:dress_code;type:varchar(100)" json:"dress_code,omitempty"`
	EventDescription string    `gorm:"column:event_description;type:text" json:"event_description,omitempty"`
	IsFeatured       bool      `gorm:"column:is_featured;default:false" json:"is_featured"`
	CreatedAt        time.Time `gorm:"column:created_at;type:timestamptz;autoCreateTime" json:"created_at"`
}

func (Event) TableName() string { return "events" }
