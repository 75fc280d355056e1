package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Surya-Mathivanan/Redeem-app/internal/model"

	"gorm.io/gorm"
)

// SuspendReasonRapidCopying is the reason recorded when the misuse
// detector triggers a suspension.
const SuspendReasonRapidCopying = "Rapid copying detected - potential misuse of platform"

// ClaimResult classifies the outcome of a claim attempt.
type ClaimResult int

const (
	ClaimAccepted ClaimResult = iota
	ClaimRejectedSuspended
	ClaimRejectedAbusePattern
	ClaimRejectedLimitReached
	ClaimRejectedAlreadyClaimed
	ClaimRejectedStoreUnavailable
)

// ClaimOutcome is returned by SubmitClaim. ForceLogout tells the web
// layer to invalidate the caller's credentials; the core never touches
// session state itself.
type ClaimOutcome struct {
	Result      ClaimResult
	CopyCount   int64
	ForceLogout bool
	Suspension  *model.Suspension
}

// ClaimService enforces the per-code copy cap and the one-copy-per-user
// invariant, consulting the suspension tracker and misuse detector
// before committing anything.
type ClaimService struct {
	db          *gorm.DB
	suspensions *SuspensionService
	misuse      *MisuseService
}

func NewClaimService(db *gorm.DB, suspensions *SuspensionService, misuse *MisuseService) *ClaimService {
	return &ClaimService{db: db, suspensions: suspensions, misuse: misuse}
}

// SubmitClaim runs the full claim sequence for one user and one code.
// Each step short-circuits:
//
//  1. an active suspension rejects immediately,
//  2. a rapid-copy pattern suspends the user and rejects, before any
//     copy counts are read,
//  3. a code at the copy cap rejects,
//  4. the insert relies on the (user, code) unique index to reject
//     concurrent duplicates.
//
// The cap check and the insert are not atomic as a pair; a narrow race
// between concurrent claimers can exceed the cap. The unique index still
// prevents the same user claiming twice.
func (s *ClaimService) SubmitClaim(userID, codeID uint) ClaimOutcome {
	if susp := s.suspensions.IsSuspended(userID); susp != nil {
		return ClaimOutcome{Result: ClaimRejectedSuspended, ForceLogout: true, Suspension: susp}
	}

	isRapid, recentCount := s.misuse.CheckRapidCopying(userID)
	if isRapid {
		s.misuse.Log(userID, "RAPID_COPYING_DETECTED",
			fmt.Sprintf("Attempted to copy code %d with %d recent copies", codeID, recentCount))
		// The rejection stands even if the suspension write fails.
		_ = s.suspensions.SuspendUntilEndOfDay(userID, SuspendReasonRapidCopying)
		return ClaimOutcome{Result: ClaimRejectedAbusePattern, ForceLogout: true}
	}

	var count int64
	err := s.db.Model(&model.Copy{}).
		Where("redeem_code_id = ?", codeID).
		Count(&count).Error
	if err != nil {
		// Fail closed on the cap: an unreadable count must not allow an
		// over-claim to slip through.
		return ClaimOutcome{Result: ClaimRejectedStoreUnavailable}
	}
	if count >= model.CopyLimit {
		return ClaimOutcome{Result: ClaimRejectedLimitReached, CopyCount: count}
	}

	cp := &model.Copy{
		UserID:       userID,
		RedeemCodeID: codeID,
		CopiedAt:     time.Now(),
	}
	if err := s.db.Create(cp).Error; err != nil {
		if IsDuplicateKey(err) {
			return ClaimOutcome{Result: ClaimRejectedAlreadyClaimed, CopyCount: count}
		}
		return ClaimOutcome{Result: ClaimRejectedStoreUnavailable}
	}

	if err := s.db.Model(&model.Copy{}).
		Where("redeem_code_id = ?", codeID).
		Count(&count).Error; err != nil {
		// The copy committed; report it with the pre-insert count + 1.
		count++
	}

	s.misuse.Log(userID, "CODE_COPIED", fmt.Sprintf("Successfully copied code %d", codeID))
	return ClaimOutcome{Result: ClaimAccepted, CopyCount: count}
}

// IsDuplicateKey matches gorm's translated error and the raw sqlite
// message, which the pure-Go driver does not translate for every
// constraint shape.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
