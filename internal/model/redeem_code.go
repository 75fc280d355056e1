package model

import "time"

// RedeemCode is immutable after creation; there is no edit or delete.
type RedeemCode struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	PublicID  string    `json:"id" gorm:"uniqueIndex;not null"`
	Title     string    `json:"title" gorm:"not null"`
	Code      string    `json:"code" gorm:"not null"`
	UserID    uint      `json:"user_id" gorm:"index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}
