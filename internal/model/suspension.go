package model

import "time"

// Suspension blocks a user until SuspendedUntil. Only the newest record
// with IsActive set counts; creating a new suspension deactivates the
// older ones first.
type Suspension struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"user_id" gorm:"index"`
	Reason         string    `json:"reason"`
	SuspendedAt    time.Time `json:"suspended_at"`
	SuspendedUntil time.Time `json:"suspended_until" gorm:"index"`
	IsActive       bool      `json:"is_active" gorm:"index"`
}
