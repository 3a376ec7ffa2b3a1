package handlers

import (
	"todo-backend/internal/config"
	"todo-backend/internal/models"
	"todo-backend/internal/repository"
	"todo-backend/pkg/cache"
	"todo-backend/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// User handlers

// loadUser reads a profile through the cache.
func loadUser(c *fiber.Ctx, id int) (*models.User, error) {
	ctx := c.UserContext()
	var user models.User
	hit, err := config.Cache.GetJSON(ctx, cache.UserKey(id), &user)
	if err != nil {
		logger.ErrorLogger.Error("Error reading user cache", zap.Int("user_id", id), zap.Error(err))
	}
	if hit {
		return &user, nil
	}

	u, err := repository.NewUserRepository(config.DB).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := config.Cache.SetJSON(ctx, cache.UserKey(id), u); err != nil {
		logger.ErrorLogger.Error("Error caching user", zap.Int("user_id", id), zap.Error(err))
	}
	return u, nil
}

func forgetUser(c *fiber.Ctx, id int) {
	if err := config.Cache.Del(c.UserContext(), cache.UserKey(id), cache.StatsKey(id)); err != nil {
		logger.ErrorLogger.Error("Error invalidating user cache", zap.Int("user_id", id), zap.Error(err))
	}
}

// ListUsers: staff melihat semua user, member hanya dirinya sendiri
func ListUsers(c *fiber.Ctx) error {
	userID, role := currentUser(c)

	if role != models.RoleStaff {
		user, err := loadUser(c, userID)
		if err != nil {
			return storageError(c, err, "fetching users")
		}
		return success(c, fiber.StatusOK, "Users fetched successfully", []models.User{*user})
	}

	users, err := repository.NewUserRepository(config.DB).List(c.UserContext())
	if err != nil {
		return storageError(c, err, "fetching users")
	}
	return success(c, fiber.StatusOK, "Users fetched successfully", users)
}

func Me(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	user, err := loadUser(c, userID)
	if err != nil {
		return storageError(c, err, "fetching user")
	}
	return success(c, fiber.StatusOK, "User found", user)
}

func GetUser(c *fiber.Ctx) error {
	userID, role := currentUser(c)
	targetID, ok := paramID(c)
	// User lain di luar jangkauan member dianggap tidak ada
	if !ok || (role != models.RoleStaff && targetID != userID) {
		return fail(c, fiber.StatusNotFound, "User not found")
	}

	user, err := loadUser(c, targetID)
	if err != nil {
		return storageError(c, err, "fetching user")
	}
	return success(c, fiber.StatusOK, "User found", user)
}

// writableUser resolves :id for a write. Staff can see every account but only
// write their own; members cannot see anyone else.
func writableUser(c *fiber.Ctx) (int, bool, error) {
	userID, role := currentUser(c)
	targetID, ok := paramID(c)
	if !ok {
		return 0, false, fail(c, fiber.StatusNotFound, "User not found")
	}
	if targetID == userID {
		return targetID, true, nil
	}
	if role != models.RoleStaff {
		return 0, false, fail(c, fiber.StatusNotFound, "User not found")
	}
	if _, err := loadUser(c, targetID); err != nil {
		return 0, false, storageError(c, err, "fetching user")
	}
	return 0, false, forbidden(c, "user", targetID)
}

// UpdateUser menangani PUT (semua field wajib) dan PATCH (sebagian)
func UpdateUser(c *fiber.Ctx) error {
	targetID, ok, err := writableUser(c)
	if !ok {
		return err
	}

	type UpdateRequest struct {
		Username  *string `json:"username" validate:"omitnil,min=1,max=150,excludesall=@?/ "`
		Email     *string `json:"email" validate:"omitnil,email,max=255"`
		FirstName *string `json:"first_name" validate:"omitnil,max=150"`
		LastName  *string `json:"last_name" validate:"omitnil,max=150"`
		Password  *string `json:"password" validate:"omitnil,min=6"`
	}

	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := config.Validate.Struct(req); err != nil {
		return fieldError(c, fieldErrors(err))
	}
	if c.Method() == fiber.MethodPut {
		missing := map[string]string{}
		if req.Username == nil {
			missing["username"] = "This field is required."
		}
		if req.Email == nil {
			missing["email"] = "This field is required."
		}
		if len(missing) > 0 {
			return fieldError(c, missing)
		}
	}

	repo := repository.NewUserRepository(config.DB)
	user, err := repo.GetByID(c.UserContext(), targetID)
	if err != nil {
		return storageError(c, err, "fetching user")
	}
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.ErrorLogger.Error("Error hashing password", zap.Error(err))
			return fail(c, fiber.StatusInternalServerError, "Error hashing password")
		}
		user.Password = string(hashed)
	}

	if err := repo.Update(c.UserContext(), user); err != nil {
		return storageError(c, err, "updating user")
	}
	forgetUser(c, targetID)

	logger.AuditLogger.Info("User updated successfully", zap.Int("user_id", targetID), zap.Bool("password_changed", req.Password != nil))
	return success(c, fiber.StatusOK, "User updated successfully", user)
}

func DeleteUser(c *fiber.Ctx) error {
	targetID, ok, err := writableUser(c)
	if !ok {
		return err
	}
	if err := repository.NewUserRepository(config.DB).Delete(c.UserContext(), targetID); err != nil {
		return storageError(c, err, "deleting user")
	}
	forgetUser(c, targetID)

	logger.AuditLogger.Info("User deleted successfully", zap.Int("user_id", targetID))
	return noContent(c)
}
