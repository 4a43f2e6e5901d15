package routes

import (
	"Fideliza-Backend/internal/api/handlers"
	"Fideliza-Backend/internal/middleware"
	"Fideliza-Backend/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App            *fiber.App
	ReceiptHandler handlers.ReceiptHandler
	RewardHandler  handlers.RewardHandler
	Middleware     middleware.Middleware
	JWTService     jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.Receipts()
	c.Rewards()
	c.GuestRoute()
}

func (c *Config) Receipts() {
	receipts := c.App.Group("/api/v1/receipts", c.Middleware.AuthMiddleware(c.JWTService))
	{
		receipts.Post("/upload", c.ReceiptHandler.UploadReceipt)
		receipts.Get("", c.ReceiptHandler.GetReceipts)
		receipts.Get("/unmatched", c.ReceiptHandler.GetUnmatchedReceipts)
		receipts.Get("/:id", c.ReceiptHandler.GetReceiptDetails)
		receipts.Post("/:id/decision", c.ReceiptHandler.DecideReceipt)
	}
}

func (c *Config) Rewards() {
	rewards := c.App.Group("/api/v1/rewards", c.Middleware.AuthMiddleware(c.JWTService))
	{
		rewards.Get("/balance", c.RewardHandler.GetBalance)
		rewards.Get("/history", c.RewardHandler.GetHistory)
	}
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}
