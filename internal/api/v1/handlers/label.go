package handlers

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"todo-backend/internal/config"
	"todo-backend/internal/models"
	"todo-backend/internal/repository"
	"todo-backend/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// LabelHandlers serves categories and tags, which share one shape. Labels
// without an owner are shared defaults: readable by everyone, writable by no one.
type LabelHandlers struct {
	entity  string
	title   string
	maxName int
	repo    func(db *sql.DB) *repository.LabelRepository
}

var (
	Categories = &LabelHandlers{entity: "category", title: "Category", maxName: 100, repo: repository.NewCategoryRepository}
	Tags       = &LabelHandlers{entity: "tag", title: "Tag", maxName: 50, repo: repository.NewTagRepository}
)

type labelRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color" validate:"omitnil,min=1,max=20"`
}

func (h *LabelHandlers) validate(req *labelRequest, requireName bool) map[string]string {
	errs := map[string]string{}
	if err := config.Validate.Struct(req); err != nil {
		errs = fieldErrors(err)
	}
	if req.Name == nil {
		if requireName {
			errs["name"] = "This field is required."
		}
	} else if strings.TrimSpace(*req.Name) == "" {
		errs["name"] = "This field may not be blank."
	} else if err := config.Validate.Var(*req.Name, "min=1,max="+strconv.Itoa(h.maxName)); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) && len(ves) > 0 {
			errs["name"] = validationMessage(ves[0])
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (h *LabelHandlers) notFound(c *fiber.Ctx) error {
	return fail(c, fiber.StatusNotFound, h.title+" not found")
}

// visible loads :id if the caller can see it.
func (h *LabelHandlers) visible(c *fiber.Ctx) (*models.Label, bool, error) {
	userID, _ := currentUser(c)
	id, ok := paramID(c)
	if !ok {
		return nil, false, h.notFound(c)
	}
	label, err := h.repo(config.DB).Get(c.UserContext(), id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !label.VisibleTo(userID)) {
		return nil, false, h.notFound(c)
	}
	if err != nil {
		return nil, false, storageError(c, err, "fetching "+h.entity)
	}
	return label, true, nil
}

// owned is visible plus ownership; a shared label is forbidden.
func (h *LabelHandlers) owned(c *fiber.Ctx) (*models.Label, bool, error) {
	label, ok, err := h.visible(c)
	if !ok {
		return nil, false, err
	}
	userID, _ := currentUser(c)
	if !label.OwnedBy(userID) {
		return nil, false, forbidden(c, h.entity, label.ID)
	}
	return label, true, nil
}

func (h *LabelHandlers) List(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	labels, err := h.repo(config.DB).ListVisible(c.UserContext(), userID)
	if err != nil {
		return storageError(c, err, "fetching "+h.entity)
	}
	return success(c, fiber.StatusOK, "Fetched successfully", labels)
}

func (h *LabelHandlers) Create(c *fiber.Ctx) error {
	userID, _ := currentUser(c)

	var req labelRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if errs := h.validate(&req, true); errs != nil {
		return fieldError(c, errs)
	}

	// Pemilik selalu user yang membuat
	label := &models.Label{Name: *req.Name, UserID: &userID}
	if req.Color != nil {
		label.Color = *req.Color
	}
	if err := h.repo(config.DB).Create(c.UserContext(), label); err != nil {
		return storageError(c, err, "creating "+h.entity)
	}

	logger.AuditLogger.Info(h.title+" created successfully", zap.Int("id", label.ID), zap.Int("user_id", userID))
	return success(c, fiber.StatusCreated, h.title+" created successfully", label)
}

func (h *LabelHandlers) Get(c *fiber.Ctx) error {
	label, ok, err := h.visible(c)
	if !ok {
		return err
	}
	return success(c, fiber.StatusOK, h.title+" found", label)
}

func (h *LabelHandlers) Update(c *fiber.Ctx) error {
	label, ok, err := h.owned(c)
	if !ok {
		return err
	}

	var req labelRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if errs := h.validate(&req, c.Method() == fiber.MethodPut); errs != nil {
		return fieldError(c, errs)
	}
	if req.Name != nil {
		label.Name = *req.Name
	}
	if req.Color != nil {
		label.Color = *req.Color
	}

	if err := h.repo(config.DB).Update(c.UserContext(), label); err != nil {
		return storageError(c, err, "updating "+h.entity)
	}
	logger.AuditLogger.Info(h.title+" updated successfully", zap.Int("id", label.ID))
	return success(c, fiber.StatusOK, h.title+" updated successfully", label)
}

func (h *LabelHandlers) Delete(c *fiber.Ctx) error {
	label, ok, err := h.owned(c)
	if !ok {
		return err
	}
	if err := h.repo(config.DB).Delete(c.UserContext(), label.ID); err != nil {
		return storageError(c, err, "deleting "+h.entity)
	}

	logger.AuditLogger.Info(h.title+" deleted successfully", zap.Int("id", label.ID))
	return noContent(c)
}
