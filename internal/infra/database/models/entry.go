package models

import (
	"time"
)

// Entry is the persisted clipboard row. DayKey is written once at insert and
// never updated afterwards.
type Entry struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Format    string    `json:"format" gorm:"type:varchar(32);not null;default:'markdown'"`
	Source    *string   `json:"source" gorm:"type:varchar(128)"`
	DayKey    string    `json:"dayKey" gorm:"type:varchar(10);not null;index"`
	CreatedAt time.Time `json:"createdAt" gorm:"->;<-:create;type:timestamp with time zone;not null;index"`
}

func (Entry) TableName() string {
	return "clipboard_entries"
}
