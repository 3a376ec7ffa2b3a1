package v1

import (
	"todo-backend/internal/api/v1/handlers"
	"todo-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/healthcheck", handlers.HealthCheck)

	// Auth
	api.Post("/register", handlers.Register)
	api.Post("/users/register", handlers.Register)
	api.Post("/token", handlers.Login)
	api.Post("/token/refresh", handlers.RefreshToken)
	api.Post("/token/revoke", handlers.RevokeToken)

	// User
	userRoutes := api.Group("/users", middleware.UseToken)
	userRoutes.Get("/", handlers.ListUsers)
	userRoutes.Get("/me", handlers.Me)
	userRoutes.Get("/:id", handlers.GetUser)
	userRoutes.Put("/:id", handlers.UpdateUser)
	userRoutes.Patch("/:id", handlers.UpdateUser)
	userRoutes.Delete("/:id", handlers.DeleteUser)

	// Task, /stats harus didaftarkan sebelum /:id
	taskRoutes := api.Group("/tasks", middleware.UseToken)
	taskRoutes.Get("/", handlers.ListTasks)
	taskRoutes.Post("/", handlers.CreateTask)
	taskRoutes.Get("/stats", handlers.TaskStats)
	taskRoutes.Get("/:id", handlers.GetTask)
	taskRoutes.Put("/:id", handlers.UpdateTask)
	taskRoutes.Patch("/:id", handlers.UpdateTask)
	taskRoutes.Delete("/:id", handlers.DeleteTask)
	taskRoutes.Post("/:id/add_tag", handlers.AddTag)
	taskRoutes.Post("/:id/remove_tag", handlers.RemoveTag)
	taskRoutes.Post("/:id/update_position", handlers.UpdatePosition)

	// SubTask
	subTaskRoutes := api.Group("/subtasks", middleware.UseToken)
	subTaskRoutes.Get("/", handlers.ListSubTasks)
	subTaskRoutes.Post("/", handlers.CreateSubTask)
	subTaskRoutes.Get("/:id", handlers.GetSubTask)
	subTaskRoutes.Put("/:id", handlers.UpdateSubTask)
	subTaskRoutes.Patch("/:id", handlers.UpdateSubTask)
	subTaskRoutes.Delete("/:id", handlers.DeleteSubTask)

	registerLabelRoutes(api.Group("/categories", middleware.UseToken), handlers.Categories)
	registerLabelRoutes(api.Group("/tags", middleware.UseToken), handlers.Tags)
}

func registerLabelRoutes(r fiber.Router, h *handlers.LabelHandlers) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/:id", h.Get)
	r.Put("/:id", h.Update)
	r.Patch("/:id", h.Update)
	r.Delete("/:id", h.Delete)
}
