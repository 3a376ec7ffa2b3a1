package handlers

import (
	"errors"
	"strconv"
	"strings"

	"todo-backend/internal/config"
	"todo-backend/internal/models"
	"todo-backend/internal/repository"
	"todo-backend/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SubTask handlers

type subTaskRequest struct {
	Task      *int    `json:"task" validate:"omitnil,min=1,max=2147483647"`
	Title     *string `json:"title" validate:"omitnil,min=1,max=200"`
	Completed *bool   `json:"completed"`
	Position  *int    `json:"position" validate:"omitnil,min=-2147483648,max=2147483647"`
}

// blankTitle flags a title that is present but only whitespace.
func (req *subTaskRequest) blankTitle(errs map[string]string) {
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		errs["title"] = "This field may not be blank."
	}
}

// ownsTask reports whether taskID names one of userID's tasks.
func ownsTask(c *fiber.Ctx, userID, taskID int) (bool, error) {
	task, err := repository.NewTaskRepository(config.DB).Get(c.UserContext(), taskID)
	if errors.Is(err, repository.ErrTaskNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return task.UserID == userID, nil
}

func invalidTask(taskID int) map[string]string {
	return map[string]string{"task": `Invalid pk "` + strconv.Itoa(taskID) + `" - object does not exist.`}
}

func ListSubTasks(c *fiber.Ctx) error {
	userID, _ := currentUser(c)

	var taskID *int
	if raw := strings.TrimSpace(c.Query("task")); raw != "" {
		id, ok := parseID(raw)
		if !ok {
			return fieldError(c, map[string]string{"task": "A valid positive integer is required."})
		}
		taskID = &id
	}

	subtasks, err := repository.NewSubTaskRepository(config.DB).List(c.UserContext(), userID, taskID)
	if err != nil {
		return storageError(c, err, "fetching subtasks")
	}
	return success(c, fiber.StatusOK, "Subtasks fetched successfully", subtasks)
}

func CreateSubTask(c *fiber.Ctx) error {
	userID, _ := currentUser(c)

	var req subTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := config.Validate.Struct(req); err != nil {
		return fieldError(c, fieldErrors(err))
	}
	errs := map[string]string{}
	req.blankTitle(errs)
	if req.Title == nil {
		errs["title"] = "This field is required."
	}
	if req.Task == nil {
		errs["task"] = "This field is required."
	}
	if len(errs) > 0 {
		return fieldError(c, errs)
	}

	owned, err := ownsTask(c, userID, *req.Task)
	if err != nil {
		return storageError(c, err, "checking task")
	}
	if !owned {
		return fieldError(c, invalidTask(*req.Task))
	}

	subtask := &models.SubTask{TaskID: *req.Task, Title: *req.Title, OwnerID: userID}
	if req.Completed != nil {
		subtask.Completed = *req.Completed
	}
	if req.Position != nil {
		subtask.Position = *req.Position
	}
	if err := repository.NewSubTaskRepository(config.DB).Create(c.UserContext(), subtask); err != nil {
		return storageError(c, err, "creating subtask")
	}

	logger.AuditLogger.Info("Subtask created successfully", zap.Int("subtask_id", subtask.ID), zap.Int("task_id", subtask.TaskID))
	return success(c, fiber.StatusCreated, "Subtask created successfully", subtask)
}

func ownedSubTask(c *fiber.Ctx) (*models.SubTask, bool, error) {
	userID, _ := currentUser(c)
	id, ok := paramID(c)
	if !ok {
		return nil, false, fail(c, fiber.StatusNotFound, "Subtask not found")
	}
	subtask, err := repository.NewSubTaskRepository(config.DB).Get(c.UserContext(), id)
	if errors.Is(err, repository.ErrSubTaskNotFound) || (err == nil && subtask.OwnerID != userID) {
		return nil, false, fail(c, fiber.StatusNotFound, "Subtask not found")
	}
	if err != nil {
		return nil, false, storageError(c, err, "fetching subtask")
	}
	return subtask, true, nil
}

func GetSubTask(c *fiber.Ctx) error {
	subtask, ok, err := ownedSubTask(c)
	if !ok {
		return err
	}
	return success(c, fiber.StatusOK, "Subtask found", subtask)
}

// UpdateSubTask menangani PUT (title dan task wajib) dan PATCH
func UpdateSubTask(c *fiber.Ctx) error {
	subtask, ok, err := ownedSubTask(c)
	if !ok {
		return err
	}

	var req subTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := config.Validate.Struct(req); err != nil {
		return fieldError(c, fieldErrors(err))
	}
	errs := map[string]string{}
	req.blankTitle(errs)
	if c.Method() == fiber.MethodPut {
		if req.Title == nil {
			errs["title"] = "This field is required."
		}
		if req.Task == nil {
			errs["task"] = "This field is required."
		}
	}
	if len(errs) > 0 {
		return fieldError(c, errs)
	}

	// Pindah ke task lain hanya boleh ke task milik sendiri
	if req.Task != nil && *req.Task != subtask.TaskID {
		owned, err := ownsTask(c, subtask.OwnerID, *req.Task)
		if err != nil {
			return storageError(c, err, "checking task")
		}
		if !owned {
			return fieldError(c, invalidTask(*req.Task))
		}
		subtask.TaskID = *req.Task
	}
	if req.Title != nil {
		subtask.Title = *req.Title
	}
	if req.Completed != nil {
		subtask.Completed = *req.Completed
	}
	if req.Position != nil {
		subtask.Position = *req.Position
	}

	if err := repository.NewSubTaskRepository(config.DB).Update(c.UserContext(), subtask); err != nil {
		return storageError(c, err, "updating subtask")
	}
	logger.AuditLogger.Info("Subtask updated successfully", zap.Int("subtask_id", subtask.ID))
	return success(c, fiber.StatusOK, "Subtask updated successfully", subtask)
}

func DeleteSubTask(c *fiber.Ctx) error {
	subtask, ok, err := ownedSubTask(c)
	if !ok {
		return err
	}
	if err := repository.NewSubTaskRepository(config.DB).Delete(c.UserContext(), subtask.ID); err != nil {
		return storageError(c, err, "deleting subtask")
	}
	logger.AuditLogger.Info("Subtask deleted successfully", zap.Int("subtask_id", subtask.ID))
	return noContent(c)
}
