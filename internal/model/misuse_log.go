package model

import "time"

// MisuseLog is an append-only audit trail; entries are never updated
// or deleted.
type MisuseLog struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"index"`
	ActionType string    `json:"action_type"`
	Details    string    `json:"details"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}
