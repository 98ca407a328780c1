package routes

import (
	"github.com/b1gw1z/frn-backend/internal/api/handlers"
	"github.com/b1gw1z/frn-backend/internal/middleware"
	"github.com/b1gw1z/frn-backend/pkg/jwt"
	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App             *fiber.App
	UserHandler     handlers.UserHandler
	DonationHandler handlers.DonationHandler
	ClaimHandler    handlers.ClaimHandler
	Middleware      middleware.Middleware
	JWTService      jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.User()
	c.Donations()
	c.Claims()
	c.GuestRoute()
}

func (c *Config) User() {
	user := c.App.Group("/api/users")
	{
		user.Post("/register", c.UserHandler.Register)
		user.Post("/login", c.UserHandler.Login)
		user.Get("/me", c.Middleware.AuthMiddleware(c.JWTService), c.UserHandler.Me)
		user.Get("/me/donations", c.Middleware.AuthMiddleware(c.JWTService), c.DonationHandler.GetUserDonations)
		user.Get("/me/claims", c.Middleware.AuthMiddleware(c.JWTService), c.ClaimHandler.GetUserClaims)
		user.Get("/me/activity", c.Middleware.AuthMiddleware(c.JWTService), c.UserHandler.GetUserActivity)
	}
}

func (c *Config) Donations() {
	donations := c.App.Group("/api/donations")
	{
		donations.Post("", c.Middleware.AuthMiddleware(c.JWTService), c.DonationHandler.CreateDonation)
		// Feed is public; an optional token personalizes claim eligibility.
		donations.Get("", c.Middleware.OptionalAuthMiddleware(c.JWTService), c.DonationHandler.ListNearbyDonations)
		donations.Get("/:id", c.Middleware.OptionalAuthMiddleware(c.JWTService), c.DonationHandler.GetDonationByID)
		donations.Get("/:id/claims", c.Middleware.AuthMiddleware(c.JWTService), c.ClaimHandler.GetDonationClaims)
		donations.Post("/:id/cancel", c.Middleware.AuthMiddleware(c.JWTService), c.DonationHandler.CancelDonation)
	}
}

func (c *Config) Claims() {
	c.App.Post("/api/claim", c.Middleware.AuthMiddleware(c.JWTService), c.ClaimHandler.Claim)
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}
