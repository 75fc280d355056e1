package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Surya-Mathivanan/Redeem-app/internal/model"

	"gorm.io/gorm"
)

// SuspensionService tracks time-boxed account suspensions.
type SuspensionService struct {
	db     *gorm.DB
	misuse *MisuseService
}

func NewSuspensionService(db *gorm.DB, misuse *MisuseService) *SuspensionService {
	return &SuspensionService{db: db, misuse: misuse}
}

// IsSuspended returns the newest active suspension whose expiry is still
// in the future, or nil. Fails open on store errors so an outage never
// locks users out.
func (s *SuspensionService) IsSuspended(userID uint) *model.Suspension {
	var susp model.Suspension
	err := s.db.
		Where("user_id = ? AND is_active = ? AND suspended_until > ?", userID, true, time.Now()).
		Order("suspended_at DESC").
		First(&susp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		log.Printf("warning: error checking user suspension: %v", err)
		return nil
	}

	return &susp
}

// SuspendUntilEndOfDay suspends the user until 23:59:59.999999 local
// time today. Existing active suspensions are deactivated first so only
// the newest record counts.
func (s *SuspensionService) SuspendUntilEndOfDay(userID uint, reason string) error {
	now := time.Now()
	until := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999000, now.Location())

	err := s.db.Model(&model.Suspension{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false).Error
	if err != nil {
		log.Printf("error deactivating suspensions: %v", err)
		return err
	}

	susp := &model.Suspension{
		UserID:         userID,
		Reason:         reason,
		SuspendedAt:    now,
		SuspendedUntil: until,
		IsActive:       true,
	}
	if err := s.db.Create(susp).Error; err != nil {
		log.Printf("error suspending user: %v", err)
		return err
	}

	s.misuse.Log(userID, "SUSPENDED", fmt.Sprintf("Reason: %s", reason))
	return nil
}
