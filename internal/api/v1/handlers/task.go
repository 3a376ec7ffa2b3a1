package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"todo-backend/internal/config"
	"todo-backend/internal/models"
	"todo-backend/internal/repository"
	"todo-backend/pkg/cache"
	"todo-backend/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Task handlers

// taskRequest is shared by create, PUT and PATCH. Absent fields keep their
// current (or default) value; nullable fields can be cleared with null.
type taskRequest struct {
	Title        *string                    `json:"title" validate:"omitnil,min=1,max=200"`
	Description  *string                    `json:"description"`
	Completed    *bool                      `json:"completed"`
	DueDate      models.Nullable[time.Time] `json:"due_date"`
	ReminderDate models.Nullable[time.Time] `json:"reminder_date"`
	Priority     *string                    `json:"priority" validate:"omitnil,oneof=low medium high"`
	Status       *string                    `json:"status" validate:"omitnil,oneof=todo in_progress done"`
	Category     models.Nullable[int]       `json:"category"`
	Tags         *[]int                     `json:"tags"`
	Position     *int                       `json:"position" validate:"omitnil,min=-2147483648,max=2147483647"`
}

// bind validates the request and copies it onto task. It answers the request
// itself and returns false when the payload is rejected.
func (req *taskRequest) bind(c *fiber.Ctx, task *models.Task, requireTitle bool) (bool, error) {
	if err := config.Validate.Struct(req); err != nil {
		return false, fieldError(c, fieldErrors(err))
	}
	errs := map[string]string{}
	switch {
	case req.Title == nil && requireTitle:
		errs["title"] = "This field is required."
	case req.Title != nil && strings.TrimSpace(*req.Title) == "":
		errs["title"] = "This field may not be blank."
	}
	if req.Category.Set && req.Category.Valid && !validID(req.Category.Value) {
		errs["category"] = `Invalid pk "` + strconv.Itoa(req.Category.Value) + `" - object does not exist.`
	}
	if req.Tags != nil {
		for _, id := range *req.Tags {
			if !validID(id) {
				errs["tags"] = "One or more tags do not exist."
				break
			}
		}
	}
	if len(errs) > 0 {
		return false, fieldError(c, errs)
	}

	userID, _ := currentUser(c)
	ctx := c.UserContext()
	if req.Category.Set && req.Category.Valid {
		category, err := repository.NewCategoryRepository(config.DB).Get(ctx, req.Category.Value)
		switch {
		case errors.Is(err, repository.ErrNotFound) || (err == nil && !category.VisibleTo(userID)):
			errs["category"] = `Invalid pk "` + strconv.Itoa(req.Category.Value) + `" - object does not exist.`
		case err != nil:
			return false, storageError(c, err, "checking category")
		}
	}
	if req.Tags != nil {
		visible, err := repository.NewTagRepository(config.DB).AllVisible(ctx, userID, *req.Tags)
		if err != nil {
			return false, storageError(c, err, "checking tags")
		}
		if !visible {
			errs["tags"] = "One or more tags do not exist."
		}
	}
	if len(errs) > 0 {
		return false, fieldError(c, errs)
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}
	if req.DueDate.Set {
		task.DueDate = req.DueDate.Ptr()
	}
	if req.ReminderDate.Set {
		task.ReminderDate = req.ReminderDate.Ptr()
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Category.Set {
		task.CategoryID = req.Category.Ptr()
	}
	if req.Position != nil {
		task.Position = *req.Position
	}
	return true, nil
}

// tagIDs returns the requested tag set, or nil when tags were not sent.
func (req *taskRequest) tagIDs() []int {
	if req.Tags == nil {
		return nil
	}
	if *req.Tags == nil {
		return []int{}
	}
	return *req.Tags
}

// ownedTask loads :id for the caller. Another user's task is reported as
// missing.
func ownedTask(c *fiber.Ctx) (*models.Task, bool, error) {
	userID, _ := currentUser(c)
	id, ok := paramID(c)
	if !ok {
		return nil, false, fail(c, fiber.StatusNotFound, "Task not found")
	}
	task, err := repository.NewTaskRepository(config.DB).Get(c.UserContext(), id)
	if errors.Is(err, repository.ErrTaskNotFound) || (err == nil && task.UserID != userID) {
		return nil, false, fail(c, fiber.StatusNotFound, "Task not found")
	}
	if err != nil {
		return nil, false, storageError(c, err, "fetching task")
	}
	return task, true, nil
}

func forgetStats(c *fiber.Ctx, userID int) {
	if err := config.Cache.Del(c.UserContext(), cache.StatsKey(userID)); err != nil {
		logger.ErrorLogger.Error("Error invalidating stats cache", zap.Int("user_id", userID), zap.Error(err))
	}
}

func ListTasks(c *fiber.Ctx) error {
	// Ambil user ID dari locals
	userID, _ := currentUser(c)

	filter, errs := parseTaskFilter(func(key string) string { return c.Query(key) })
	if errs != nil {
		return fieldError(c, errs)
	}

	tasks, err := repository.NewTaskRepository(config.DB).List(c.UserContext(), userID, filter, time.Now())
	if err != nil {
		return storageError(c, err, "fetching tasks")
	}
	return success(c, fiber.StatusOK, "Tasks fetched successfully", tasks)
}

func CreateTask(c *fiber.Ctx) error {
	userID, _ := currentUser(c)

	var req taskRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	task := &models.Task{
		UserID:   userID,
		Priority: models.PriorityMedium,
		Status:   models.StatusTodo,
	}
	if ok, err := req.bind(c, task, true); !ok {
		return err
	}

	created, err := repository.NewTaskRepository(config.DB).Create(c.UserContext(), task, req.tagIDs())
	if err != nil {
		return storageError(c, err, "creating task")
	}
	forgetStats(c, userID)

	logger.AuditLogger.Info("Task created successfully", zap.Int("task_id", created.ID), zap.Int("user_id", userID))
	return success(c, fiber.StatusCreated, "Task created successfully", created)
}

func GetTask(c *fiber.Ctx) error {
	task, ok, err := ownedTask(c)
	if !ok {
		return err
	}
	return success(c, fiber.StatusOK, "Task found", task)
}

// UpdateTask menangani PUT (title wajib) dan PATCH
func UpdateTask(c *fiber.Ctx) error {
	task, ok, err := ownedTask(c)
	if !ok {
		return err
	}

	var req taskRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := req.bind(c, task, c.Method() == fiber.MethodPut); !ok {
		return err
	}

	updated, err := repository.NewTaskRepository(config.DB).Update(c.UserContext(), task, req.tagIDs())
	if err != nil {
		return storageError(c, err, "updating task")
	}
	forgetStats(c, task.UserID)

	logger.AuditLogger.Info("Task updated successfully", zap.Int("task_id", task.ID))
	return success(c, fiber.StatusOK, "Task updated successfully", updated)
}

func DeleteTask(c *fiber.Ctx) error {
	task, ok, err := ownedTask(c)
	if !ok {
		return err
	}
	if err := repository.NewTaskRepository(config.DB).Delete(c.UserContext(), task.ID); err != nil {
		return storageError(c, err, "deleting task")
	}
	forgetStats(c, task.UserID)

	logger.AuditLogger.Info("Task deleted successfully", zap.Int("task_id", task.ID))
	return noContent(c)
}

// TaskStats mengembalikan ringkasan task milik user. Hitungan yang hanya
// berubah lewat write di-cache; overdue bergantung pada jam, jadi selalu dihitung ulang.
func TaskStats(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	ctx := c.UserContext()
	repo := repository.NewTaskRepository(config.DB)
	now := time.Now()

	var stats models.TaskStats
	hit, err := config.Cache.GetJSON(ctx, cache.StatsKey(userID), &stats)
	if err != nil {
		logger.ErrorLogger.Error("Error reading stats cache", zap.Int("user_id", userID), zap.Error(err))
	}
	if hit {
		stats.Overdue, err = repo.CountOverdue(ctx, userID, now)
		if err != nil {
			return storageError(c, err, "fetching stats")
		}
		return success(c, fiber.StatusOK, "Stats fetched successfully", stats)
	}

	stats, err = repo.Stats(ctx, userID, now)
	if err != nil {
		return storageError(c, err, "fetching stats")
	}
	if err := config.Cache.SetJSON(ctx, cache.StatsKey(userID), stats); err != nil {
		logger.ErrorLogger.Error("Error caching stats", zap.Int("user_id", userID), zap.Error(err))
	}
	return success(c, fiber.StatusOK, "Stats fetched successfully", stats)
}

// Task actions

type tagActionRequest struct {
	TagID *int `json:"tag_id" validate:"omitnil,min=1,max=2147483647"`
}

func AddTag(c *fiber.Ctx) error {
	return changeTag(c, true)
}

func RemoveTag(c *fiber.Ctx) error {
	return changeTag(c, false)
}

func changeTag(c *fiber.Ctx, add bool) error {
	task, ok, err := ownedTask(c)
	if !ok {
		return err
	}

	var req tagActionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if req.TagID == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "tag_id is required",
			"success": false,
			"status":  fiber.StatusBadRequest,
			"errors":  fiber.Map{"tag_id": "This field is required."},
		})
	}
	if err := config.Validate.Struct(req); err != nil {
		return fieldError(c, fieldErrors(err))
	}

	ctx := c.UserContext()
	tag, err := repository.NewTagRepository(config.DB).Get(ctx, *req.TagID)
	if errors.Is(err, repository.ErrTagNotFound) || (err == nil && !tag.VisibleTo(task.UserID)) {
		return fail(c, fiber.StatusNotFound, "Tag not found")
	}
	if err != nil {
		return storageError(c, err, "fetching tag")
	}

	repo := repository.NewTaskRepository(config.DB)
	if add {
		err = repo.AddTag(ctx, task.ID, tag.ID)
	} else {
		err = repo.RemoveTag(ctx, task.ID, tag.ID)
	}
	if err != nil {
		return storageError(c, err, "updating task tags")
	}

	updated, err := repo.Get(ctx, task.ID)
	if err != nil {
		return storageError(c, err, "fetching task")
	}
	logger.AuditLogger.Info("Task tags updated",
		zap.Int("task_id", task.ID),
		zap.Int("tag_id", tag.ID),
		zap.Bool("added", add),
	)
	return success(c, fiber.StatusOK, "Task updated successfully", updated)
}

func UpdatePosition(c *fiber.Ctx) error {
	task, ok, err := ownedTask(c)
	if !ok {
		return err
	}

	var req struct {
		Position *int `json:"position" validate:"omitnil,min=-2147483648,max=2147483647"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if req.Position == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "position is required",
			"success": false,
			"status":  fiber.StatusBadRequest,
			"errors":  fiber.Map{"position": "This field is required."},
		})
	}
	if err := config.Validate.Struct(req); err != nil {
		return fieldError(c, fieldErrors(err))
	}

	repo := repository.NewTaskRepository(config.DB)
	if err := repo.UpdatePosition(c.UserContext(), task.ID, *req.Position); err != nil {
		return storageError(c, err, "updating task position")
	}
	updated, err := repo.Get(c.UserContext(), task.ID)
	if err != nil {
		return storageError(c, err, "fetching task")
	}
	return success(c, fiber.StatusOK, "Task updated successfully", updated)
}
