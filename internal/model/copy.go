package model

import "time"

// CopyLimit is the maximum number of copies a single code allows.
const CopyLimit = 5

// Copy records that a user consumed one use of a code. The compound
// unique index enforces at most one copy per (user, code) pair.
type Copy struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"uniqueIndex:idx_copies_user_code"`
	RedeemCodeID uint      `json:"redeem_code_id" gorm:"uniqueIndex:idx_copies_user_code;index"`
	CopiedAt     time.Time `json:"copied_at" gorm:"index"`
}
