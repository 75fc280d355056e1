package service

import (
	"log"
	"time"

	"github.com/Surya-Mathivanan/Redeem-app/internal/model"

	"gorm.io/gorm"
)

// Rapid-copy heuristic bounds. Intentionally approximate: the goal is
// cheap deterrence, not proof-grade detection.
const (
	rapidLookback   = 2 * time.Minute
	rapidWindowSpan = 60 * time.Second
	rapidGap        = 20 * time.Second
	rapidFetchLimit = 5
	rapidMinCopies  = 3
)

// MisuseService appends to the misuse audit log and inspects recent
// copy timestamps for bursty behavior.
type MisuseService struct {
	db        *gorm.DB
	sheetSync *SheetSyncService
}

func NewMisuseService(db *gorm.DB, sheetSync *SheetSyncService) *MisuseService {
	return &MisuseService{db: db, sheetSync: sheetSync}
}

// Log appends an entry to the misuse log. Failures are logged and
// swallowed; the audit trail is best-effort and never blocks the caller.
func (s *MisuseService) Log(userID uint, actionType, details string) {
	entry := &model.MisuseLog{
		UserID:     userID,
		ActionType: actionType,
		Details:    details,
		CreatedAt:  time.Now(),
	}

	if err := s.db.Create(entry).Error; err != nil {
		log.Printf("error logging misuse activity: %v", err)
		return
	}

	if s.sheetSync != nil {
		go s.sheetSync.SyncEntry(entry)
	}
}

// CheckRapidCopying reports whether the user's recent copies form a
// rapid sequence, together with how many copies were inspected.
//
// It fetches the user's copies from the last two minutes, newest first,
// capped at five. With fewer than three there is nothing to flag. Over
// every window of three consecutive copies, the window counts as rapid
// when all three fall within 60 seconds and at least one adjacent pair
// is 20 seconds or less apart. Fails open on store errors.
func (s *MisuseService) CheckRapidCopying(userID uint) (bool, int) {
	cutoff := time.Now().Add(-rapidLookback)

	var copies []model.Copy
	err := s.db.
		Where("user_id = ? AND copied_at >= ?", userID, cutoff).
		Order("copied_at DESC").
		Limit(rapidFetchLimit).
		Find(&copies).Error
	if err != nil {
		log.Printf("error checking rapid copying pattern: %v", err)
		return false, 0
	}

	if len(copies) < rapidMinCopies {
		return false, len(copies)
	}

	for i := 0; i <= len(copies)-3; i++ {
		t1 := copies[i].CopiedAt
		t2 := copies[i+1].CopiedAt
		t3 := copies[i+2].CopiedAt

		if t1.Sub(t3) <= rapidWindowSpan &&
			(t1.Sub(t2) <= rapidGap || t2.Sub(t3) <= rapidGap) {
			return true, len(copies)
		}
	}

	return false, len(copies)
}
