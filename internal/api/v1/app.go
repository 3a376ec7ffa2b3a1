package v1

import (
	"time"

	"todo-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// NewApp builds the fiber app with the middleware stack and every v1 route.
// rateLimit is the per-IP request budget per minute; 0 disables the limiter.
func NewApp(rateLimit int) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "todo-backend",
		ErrorHandler: middleware.AppErrorHandler,
	})

	// Middleware
	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))
	if rateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        rateLimit,
			Expiration: 1 * time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"message": "Too many requests",
					"success": false,
					"status":  fiber.StatusTooManyRequests,
				})
			},
		}))
	}

	RegisterRoutes(app)
	return app
}
