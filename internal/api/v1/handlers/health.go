package handlers

import (
	"context"
	"time"

	"todo-backend/internal/config"
	"todo-backend/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func HealthCheck(c *fiber.Ctx) error {
	status, code := "ok", fiber.StatusOK
	if config.DB == nil {
		status, code = "unavailable", fiber.StatusServiceUnavailable
	} else {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := config.DB.PingContext(ctx); err != nil {
			logger.ErrorLogger.Error("Health check database ping failed", zap.Error(err))
			status, code = "unavailable", fiber.StatusServiceUnavailable
		}
	}
	return c.Status(code).JSON(fiber.Map{
		"message": "Health check",
		"success": code == fiber.StatusOK,
		"status":  code,
		"data": fiber.Map{
			"status":      status,
			"environment": config.AppEnv,
			"version":     config.Version,
		},
	})
}
