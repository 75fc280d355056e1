package handler

import (
	"fmt"
	"time"

	"github.com/Surya-Mathivanan/Redeem-app/internal/model"
	"github.com/Surya-Mathivanan/Redeem-app/internal/service"
	"github.com/Surya-Mathivanan/Redeem-app/internal/util"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserHandler serves registration, login and account endpoints.
type UserHandler struct {
	db          *gorm.DB
	tokens      *util.TokenIssuer
	suspensions *service.SuspensionService
}

func NewUserHandler(db *gorm.DB, tokens *util.TokenIssuer, suspensions *service.SuspensionService) *UserHandler {
	return &UserHandler{db: db, tokens: tokens, suspensions: suspensions}
}

// Register creates an account and logs the user straight in.
func (h *UserHandler) Register(c *fiber.Ctx) error {
	input := new(RegisterInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input data",
		})
	}

	if input.Name == "" || input.Email == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name, email and password are required",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Registration failed. Please try again.",
		})
	}

	user := &model.User{
		Name:      input.Name,
		Email:     input.Email,
		Password:  string(hashedPassword),
		CreatedAt: time.Now(),
	}

	// The unique index on email rejects duplicates atomically.
	if err := h.db.Create(user).Error; err != nil {
		if service.IsDuplicateKey(err) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Email already registered. Please login.",
			})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Registration failed. Please try again later.",
		})
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Token generation failed",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login authenticates by email and password. An active suspension
// blocks login with a message carrying the expiry and reason.
func (h *UserHandler) Login(c *fiber.Ctx) error {
	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input data",
		})
	}

	var user model.User
	result := h.db.Where("email = ?", input.Email).First(&user)
	if result.Error != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid email or password. Please register if you don't have an account.",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid email or password. Please register if you don't have an account.",
		})
	}

	if susp := h.suspensions.IsSuspended(user.ID); susp != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": fmt.Sprintf("Your account is suspended until %s. Reason: %s",
				susp.SuspendedUntil.Format("2006-01-02 15:04:05"), susp.Reason),
			"suspended_until": susp.SuspendedUntil,
			"reason":          susp.Reason,
		})
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Token generation failed",
		})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Info returns the current user.
func (h *UserHandler) Info(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var user model.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	return c.JSON(user)
}

// Dashboard returns the caller's copy and code counters.
func (h *UserHandler) Dashboard(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var totalCopies, addedCodes int64
	if err := h.db.Model(&model.Copy{}).Where("user_id = ?", userID).Count(&totalCopies).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error loading dashboard. Please try again later.",
		})
	}
	if err := h.db.Model(&model.RedeemCode{}).Where("user_id = ?", userID).Count(&addedCodes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error loading dashboard. Please try again later.",
		})
	}

	return c.JSON(fiber.Map{
		"total_copies": totalCopies,
		"added_codes":  addedCodes,
	})
}
