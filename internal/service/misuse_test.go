package service

import (
	"testing"
	"time"

	"github.com/Surya-Mathivanan/Redeem-app/internal/database"
	"github.com/Surya-Mathivanan/Redeem-app/internal/model"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func seedCopies(db *gorm.DB, userID uint, offsets []time.Duration) {
	now := time.Now()
	for i, off := range offsets {
		db.Create(&model.Copy{
			UserID:       userID,
			RedeemCodeID: uint(i + 1),
			CopiedAt:     now.Add(-off),
		})
	}
}

func TestCheckRapidCopying(t *testing.T) {
	tests := []struct {
		name      string
		offsets   []time.Duration
		wantRapid bool
		wantCount int
	}{
		{
			name:      "no_copies",
			offsets:   nil,
			wantRapid: false,
			wantCount: 0,
		},
		{
			name:      "two_copies_tight_spacing",
			offsets:   []time.Duration{0, 5 * time.Second},
			wantRapid: false,
			wantCount: 2,
		},
		{
			name:      "burst_with_one_slow_gap",
			offsets:   []time.Duration{0, 15 * time.Second, 40 * time.Second},
			wantRapid: true,
			wantCount: 3,
		},
		{
			name:      "even_spacing_no_tight_pair",
			offsets:   []time.Duration{0, 25 * time.Second, 55 * time.Second},
			wantRapid: false,
			wantCount: 3,
		},
		{
			name:      "three_copies_spread_past_a_minute",
			offsets:   []time.Duration{0, 10 * time.Second, 70 * time.Second},
			wantRapid: false,
			wantCount: 3,
		},
		{
			name:      "old_copies_outside_lookback_ignored",
			offsets:   []time.Duration{0, 5 * time.Second, 3 * time.Minute, 4 * time.Minute},
			wantRapid: false,
			wantCount: 2,
		},
		{
			name: "rapid_window_deep_in_fetched_set",
			offsets: []time.Duration{
				0, 30 * time.Second, 60 * time.Second,
				70 * time.Second, 80 * time.Second,
			},
			wantRapid: true,
			wantCount: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := database.OpenTest()
			defer database.CleanTest(db)

			const userID = 1
			seedCopies(db, userID, tt.offsets)

			misuse := NewMisuseService(db, nil)
			isRapid, count := misuse.CheckRapidCopying(userID)

			assert.Equal(t, tt.wantRapid, isRapid)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestCheckRapidCopyingOnlyCountsOwnCopies(t *testing.T) {
	db := database.OpenTest()
	defer database.CleanTest(db)

	// Another user's burst must not flag this user.
	seedCopies(db, 2, []time.Duration{0, 5 * time.Second, 10 * time.Second})

	misuse := NewMisuseService(db, nil)
	isRapid, count := misuse.CheckRapidCopying(1)

	assert.False(t, isRapid)
	assert.Equal(t, 0, count)
}

func TestCheckRapidCopyingFailsOpenWhenStoreUnavailable(t *testing.T) {
	db := database.OpenTest()

	seedCopies(db, 1, []time.Duration{0, 5 * time.Second, 10 * time.Second})

	// A store outage must not amplify into a false abuse accusation.
	database.CleanTest(db)

	misuse := NewMisuseService(db, nil)
	isRapid, count := misuse.CheckRapidCopying(1)

	assert.False(t, isRapid)
	assert.Equal(t, 0, count)
}

func TestMisuseLogAppend(t *testing.T) {
	db := database.OpenTest()
	defer database.CleanTest(db)

	misuse := NewMisuseService(db, nil)
	misuse.Log(1, "CODE_COPIED", "Successfully copied code 7")
	misuse.Log(1, "SUSPENDED", "Reason: test")

	var logs []model.MisuseLog
	err := db.Where("user_id = ?", 1).Order("created_at ASC").Find(&logs).Error
	assert.NoError(t, err)
	assert.Len(t, logs, 2)
	assert.Equal(t, "CODE_COPIED", logs[0].ActionType)
	assert.Equal(t, "SUSPENDED", logs[1].ActionType)
}
