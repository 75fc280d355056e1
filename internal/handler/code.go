package handler

import (
	"sort"
	"time"

	"github.com/Surya-Mathivanan/Redeem-app/internal/model"
	"github.com/Surya-Mathivanan/Redeem-app/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const codeListingWindow = 7 * 24 * time.Hour

type AddCodeInput struct {
	Title string `json:"title"`
	Code  string `json:"code"`
}

// CodeView is the listing shape: a code plus its owner name, copy count
// and whether the current user already copied it.
type CodeView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Code        string    `json:"code"`
	CreatedAt   time.Time `json:"created_at"`
	OwnerName   string    `json:"owner_name"`
	TotalCopies int64     `json:"total_copies"`
	UserCopied  bool      `json:"user_copied"`
	Status      string    `json:"status,omitempty"`
}

// CodeHandler serves code listing, creation and the copy (claim)
// endpoint.
type CodeHandler struct {
	db     *gorm.DB
	claims *service.ClaimService
}

func NewCodeHandler(db *gorm.DB, claims *service.ClaimService) *CodeHandler {
	return &CodeHandler{db: db, claims: claims}
}

const codeViewColumns = `redeem_codes.public_id AS id, redeem_codes.title, redeem_codes.code,
	redeem_codes.created_at, COALESCE(users.name, 'Unknown') AS owner_name,
	(SELECT COUNT(*) FROM copies WHERE copies.redeem_code_id = redeem_codes.id) AS total_copies,
	EXISTS(SELECT 1 FROM copies WHERE copies.redeem_code_id = redeem_codes.id AND copies.user_id = ?) AS user_copied`

// List returns codes from the last 7 days that still have copies left,
// least-copied first.
func (h *CodeHandler) List(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	windowStart := time.Now().Add(-codeListingWindow)

	var codes []CodeView
	err := h.db.Table("redeem_codes").
		Select(codeViewColumns, userID).
		Joins("LEFT JOIN users ON users.id = redeem_codes.user_id").
		Where("redeem_codes.created_at >= ?", windowStart).
		Where("(SELECT COUNT(*) FROM copies WHERE copies.redeem_code_id = redeem_codes.id) < ?", model.CopyLimit).
		Order("total_copies ASC, redeem_codes.created_at DESC").
		Scan(&codes).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error loading codes. Please try again.",
		})
	}

	return c.JSON(fiber.Map{
		"codes": codes,
	})
}

// Create adds a new redeem code owned by the caller.
func (h *CodeHandler) Create(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	input := new(AddCodeInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input data",
		})
	}

	if input.Title == "" || input.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title and code are required",
		})
	}

	code := &model.RedeemCode{
		PublicID:  uuid.NewString(),
		Title:     input.Title,
		Code:      input.Code,
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	if err := h.db.Create(code).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error adding code. Please try again.",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(code)
}

// Archive returns codes that are no longer listed: expired (older than
// 7 days) and exhausted (at the copy cap), newest first.
func (h *CodeHandler) Archive(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	windowStart := time.Now().Add(-codeListingWindow)

	var expired []CodeView
	err := h.db.Table("redeem_codes").
		Select(codeViewColumns, userID).
		Joins("LEFT JOIN users ON users.id = redeem_codes.user_id").
		Where("redeem_codes.created_at < ?", windowStart).
		Scan(&expired).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error loading archived codes. Please try again.",
		})
	}
	for i := range expired {
		expired[i].Status = "Expired"
	}

	var exhausted []CodeView
	err = h.db.Table("redeem_codes").
		Select(codeViewColumns, userID).
		Joins("LEFT JOIN users ON users.id = redeem_codes.user_id").
		Where("redeem_codes.created_at >= ?", windowStart).
		Where("(SELECT COUNT(*) FROM copies WHERE copies.redeem_code_id = redeem_codes.id) >= ?", model.CopyLimit).
		Scan(&exhausted).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error loading archived codes. Please try again.",
		})
	}
	for i := range exhausted {
		exhausted[i].Status = "Exhausted"
	}

	archived := append(expired, exhausted...)
	sort.Slice(archived, func(i, j int) bool {
		return archived[i].CreatedAt.After(archived[j].CreatedAt)
	})

	return c.JSON(fiber.Map{
		"codes": archived,
	})
}

// Copy claims one use of a code for the caller.
func (h *CodeHandler) Copy(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	publicID := c.Params("id")
	var code model.RedeemCode
	if err := h.db.Where("public_id = ?", publicID).First(&code).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Code not found",
		})
	}

	outcome := h.claims.SubmitClaim(userID, code.ID)

	switch outcome.Result {
	case service.ClaimAccepted:
		return c.JSON(fiber.Map{
			"success":    true,
			"copy_count": outcome.CopyCount,
		})

	case service.ClaimRejectedSuspended:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success":      false,
			"message":      "Account suspended for misuse",
			"force_logout": true,
			"redirect":     "/login",
		})

	case service.ClaimRejectedAbusePattern:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success":      false,
			"message":      "You have misused this platform by copying codes too rapidly. Your account has been temporarily suspended for the rest of the day.",
			"suspended":    true,
			"force_logout": true,
			"redirect":     "/login",
		})

	case service.ClaimRejectedLimitReached:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Copy limit reached",
		})

	case service.ClaimRejectedAlreadyClaimed:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Already copied",
		})

	default:
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"message": "Error copying code. Please try again later.",
		})
	}
}
