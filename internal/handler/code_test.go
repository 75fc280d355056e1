package handler

import (
	"testing"
	"time"

	"github.com/Surya-Mathivanan/Redeem-app/internal/database"
	"github.com/Surya-Mathivanan/Redeem-app/internal/model"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestCreateAndListCodes(t *testing.T) {
	db := database.OpenTest()
	defer database.CleanTest(db)
	env := newTestEnv(db)

	token, _ := env.register(t, "Owner", "owner@example.com")

	resp, created := env.request(t, "POST", "/api/v1/codes/", token, AddCodeInput{
		Title: "Free coffee",
		Code:  "COFFEE-123",
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, created["id"])

	resp, payload := env.request(t, "GET", "/api/v1/codes/", token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	codes := payload["codes"].([]interface{})
	if assert.Len(t, codes, 1) {
		code := codes[0].(map[string]interface{})
		assert.Equal(t, "Free coffee", code["title"])
		assert.Equal(t, "Owner", code["owner_name"])
		assert.Equal(t, float64(0), code["total_copies"])
		assert.Equal(t, false, code["user_copied"])
	}
}

func TestListExcludesOldAndExhaustedCodes(t *testing.T) {
	db := database.OpenTest()
	defer database.CleanTest(db)
	env := newTestEnv(db)

	token, ownerID := env.register(t, "Owner", "owner@example.com")

	// An expired code, an exhausted code and a live one.
	db.Create(&model.RedeemCode{
		PublicID:  "old-code",
		Title:     "Old",
		Code:      "OLD-1",
		UserID:    ownerID,
		CreatedAt: time.Now().Add(-8 * 24 * time.Hour),
	})
	db.Create(&model.RedeemCode{
		PublicID:  "full-code",
		Title:     "Full",
		Code:      "FULL-1",
		UserID:    ownerID,
		CreatedAt: time.Now(),
	})
	var full model.RedeemCode
	db.Where("public_id = ?", "full-code").First(&full)
	for u := uint(100); u < 100+model.CopyLimit; u++ {
		db.Create(&model.Copy{UserID: u, RedeemCodeID: full.ID, CopiedAt: time.Now().Add(-time.Hour)})
	}
	db.Create(&model.RedeemCode{
		PublicID:  "live-code",
		Title:     "Live",
		Code:      "LIVE-1",
		UserID:    ownerID,
		CreatedAt: time.Now(),
	})

	resp, payload := env.request(t, "GET", "/api/v1/codes/", token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	codes := payload["codes"].([]interface{})
	if assert.Len(t, codes, 1) {
		assert.Equal(t, "Live", codes[0].(map[string]interface{})["title"])
	}

	resp, payload = env.request(t, "GET", "/api/v1/codes/archive", token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	archived := payload["codes"].([]interface{})
	if assert.Len(t, archived, 2) {
		statuses := map[string]string{}
		for _, raw := range archived {
			code := raw.(map[string]interface{})
			statuses[code["title"].(string)] = code["status"].(string)
		}
		assert.Equal(t, "Expired", statuses["Old"])
		assert.Equal(t, "Exhausted", statuses["Full"])
	}
}

func TestCopyCode(t *testing.T) {
	db := database.OpenTest()
	defer database.CleanTest(db)
	env := newTestEnv(db)

	ownerToken, _ := env.register(t, "Owner", "owner@example.com")
	claimerToken, _ := env.register(t, "Claimer", "claimer@example.com")

	_, created := env.request(t, "POST", "/api/v1/codes/", ownerToken, AddCodeInput{
		Title: "Free coffee",
		Code:  "COFFEE-123",
	})
	codeID := created["id"].(string)

	resp, payload := env.request(t, "POST", "/api/v1/codes/"+codeID+"/copy", claimerToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, float64(1), payload["copy_count"])

	// Second copy by the same user is rejected.
	resp, payload = env.request(t, "POST", "/api/v1/codes/"+codeID+"/copy", claimerToken, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "Already copied", payload["message"])

	// Unknown code.
	resp, _ = env.request(t, "POST", "/api/v1/codes/missing/copy", claimerToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCopyCodeLimitReached(t *testing.T) {
	db := database.OpenTest()
	defer database.CleanTest(db)
	env := newTestEnv(db)

	ownerToken, _ := env.register(t, "Owner", "owner@example.com")
	claimerToken, _ := env.register(t, "Claimer", "claimer@example.com")

	_, created := env.request(t, "POST", "/api/v1/codes/", ownerToken, AddCodeInput{
		Title: "Free coffee",
		Code:  "COFFEE-123",
	})
	publicID := created["id"].(string)

	var code model.RedeemCode
	db.Where("public_id = ?", publicID).First(&code)
	for u := uint(100); u < 100+model.CopyLimit; u++ {
		db.Create(&model.Copy{UserID: u, RedeemCodeID: code.ID, CopiedAt: time.Now().Add(-time.Hour)})
	}

	resp, payload := env.request(t, "POST", "/api/v1/codes/"+publicID+"/copy", claimerToken, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Copy limit reached", payload["message"])
}

func TestCopyCodeAbusePatternSuspends(t *testing.T) {
	db := database.OpenTest()
	defer database.CleanTest(db)
	env := newTestEnv(db)

	ownerToken, _ := env.register(t, "Owner", "owner@example.com")
	claimerToken, claimerID := env.register(t, "Claimer", "claimer@example.com")

	_, created := env.request(t, "POST", "/api/v1/codes/", ownerToken, AddCodeInput{
		Title: "Free coffee",
		Code:  "COFFEE-123",
	})
	publicID := created["id"].(string)

	// A tight burst of earlier copies against other codes.
	now := time.Now()
	for i, off := range []time.Duration{40 * time.Second, 30 * time.Second, 5 * time.Second} {
		db.Create(&model.Copy{
			UserID:       claimerID,
			RedeemCodeID: uint(1000 + i),
			CopiedAt:     now.Add(-off),
		})
	}

	resp, payload := env.request(t, "POST", "/api/v1/codes/"+publicID+"/copy", claimerToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, true, payload["suspended"])
	assert.Equal(t, true, payload["force_logout"])
	assert.Equal(t, "/login", payload["redirect"])

	// The suspension now blocks every authenticated route.
	resp, payload = env.request(t, "GET", "/api/v1/codes/", claimerToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, true, payload["force_logout"])
}
