package main

import (
	"log"

	"github.com/Surya-Mathivanan/Redeem-app/internal/config"
	"github.com/Surya-Mathivanan/Redeem-app/internal/database"
	"github.com/Surya-Mathivanan/Redeem-app/internal/handler"
	"github.com/Surya-Mathivanan/Redeem-app/internal/middleware"
	"github.com/Surya-Mathivanan/Redeem-app/internal/service"
	"github.com/Surya-Mathivanan/Redeem-app/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("database connection failed: ", err)
	}

	sheetSync, err := service.NewSheetSyncService(
		cfg.SheetSyncEnabled, cfg.SheetCredential, cfg.SpreadsheetID, cfg.SheetName)
	if err != nil {
		log.Printf("warning: sheet sync disabled: %v", err)
	}

	// One-off backfill of a fresh sheet with the existing audit trail.
	if cfg.SheetBackfill {
		if err := sheetSync.BatchSync(db); err != nil {
			log.Printf("warning: misuse log backfill failed: %v", err)
		}
	}

	tokens := util.NewTokenIssuer(cfg.JWTSecret)
	misuse := service.NewMisuseService(db, sheetSync)
	suspensions := service.NewSuspensionService(db, misuse)
	claims := service.NewClaimService(db, suspensions, misuse)

	users := handler.NewUserHandler(db, tokens, suspensions)
	codes := handler.NewCodeHandler(db, claims)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New())

	api := app.Group("/api/v1")

	userRoutes := api.Group("/users")
	userRoutes.Post("/register", users.Register)
	userRoutes.Post("/login", users.Login)
	userRoutes.Get("/info",
		middleware.Auth(tokens), middleware.SuspensionGuard(suspensions), users.Info)
	userRoutes.Get("/dashboard",
		middleware.Auth(tokens), middleware.SuspensionGuard(suspensions), users.Dashboard)

	codeRoutes := api.Group("/codes",
		middleware.Auth(tokens), middleware.SuspensionGuard(suspensions))
	codeRoutes.Get("/", codes.List)
	codeRoutes.Post("/", codes.Create)
	codeRoutes.Get("/archive", codes.Archive)
	codeRoutes.Post("/:id/copy", codes.Copy)

	log.Fatal(app.Listen(":" + cfg.Port))
}
