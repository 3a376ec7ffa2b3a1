package handlers

import (
	"errors"
	"time"

	"todo-backend/internal/auth"
	"todo-backend/internal/config"
	"todo-backend/internal/models"
	"todo-backend/internal/repository"
	"todo-backend/pkg/cache"
	"todo-backend/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Auth handlers

// Register membuat user baru dengan role member
func Register(c *fiber.Ctx) error {
	type RegisterRequest struct {
		Username  string `json:"username" validate:"required,max=150,excludesall=@?/ "`
		Email     string `json:"email" validate:"required,email,max=255"`
		Password  string `json:"password" validate:"required,min=6"`
		FirstName string `json:"first_name" validate:"max=150"`
		LastName  string `json:"last_name" validate:"max=150"`
	}

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during register", zap.Error(err))
		return fieldError(c, fieldErrors(err))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.ErrorLogger.Error("Error hashing password", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Error hashing password")
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashedPassword),
		Role:      models.RoleMember,
	}
	if err := repository.NewUserRepository(config.DB).Create(c.UserContext(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			logger.SecurityLogger.Warn("Duplicate registration", zap.String("username", req.Username))
		}
		return storageError(c, err, "creating user")
	}

	logger.AuditLogger.Info("User registered successfully", zap.Int("user_id", user.ID))
	return success(c, fiber.StatusCreated, "User created successfully", user)
}

// Login menukar username dan password dengan pasangan access/refresh token
func Login(c *fiber.Ctx) error {
	type LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := config.Validate.Struct(req); err != nil {
		return fieldError(c, fieldErrors(err))
	}

	user, err := repository.NewUserRepository(config.DB).GetByUsername(c.UserContext(), req.Username)
	if errors.Is(err, repository.ErrUserNotFound) {
		logger.SecurityLogger.Warn("Login for unknown user", zap.String("username", req.Username), zap.String("ip", c.IP()))
		return fail(c, fiber.StatusUnauthorized, "Invalid credentials")
	}
	if err != nil {
		return storageError(c, err, "fetching user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.SecurityLogger.Warn("Invalid password", zap.Int("user_id", user.ID), zap.String("ip", c.IP()))
		return fail(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	pair, err := issueTokens(c, user)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Error generating token")
	}
	logger.AuditLogger.Info("Login success", zap.Int("user_id", user.ID), zap.String("role", user.Role))
	return success(c, fiber.StatusOK, "Login success", pair)
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// RefreshToken memutar refresh token: token lama tidak bisa dipakai lagi
func RefreshToken(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := config.Validate.Struct(req); err != nil {
		return fieldError(c, fieldErrors(err))
	}

	claims, err := config.Tokens.Parse(req.Refresh, auth.TypeRefresh)
	if err != nil {
		logger.SecurityLogger.Warn("Invalid refresh token", zap.String("ip", c.IP()), zap.Error(err))
		return fail(c, fiber.StatusUnauthorized, "Token is invalid or expired")
	}
	if !consumeRefresh(c, claims) {
		return fail(c, fiber.StatusUnauthorized, "Token is invalid or expired")
	}

	user, err := repository.NewUserRepository(config.DB).GetByID(c.UserContext(), claims.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return fail(c, fiber.StatusUnauthorized, "Token is invalid or expired")
	}
	if err != nil {
		return storageError(c, err, "fetching user")
	}

	pair, err := issueTokens(c, user)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Error generating token")
	}
	return success(c, fiber.StatusOK, "Token refreshed", pair)
}

// RevokeToken membatalkan refresh token
func RevokeToken(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := config.Validate.Struct(req); err != nil {
		return fieldError(c, fieldErrors(err))
	}

	claims, err := config.Tokens.Parse(req.Refresh, auth.TypeRefresh)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Token is invalid or expired")
	}
	consumeRefresh(c, claims)
	logger.AuditLogger.Info("Refresh token revoked", zap.Int("user_id", claims.UserID), zap.String("jti", claims.ID))
	return noContent(c)
}

func issueTokens(c *fiber.Ctx, user *models.User) (*auth.Pair, error) {
	pair, err := config.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	ttl := time.Until(pair.RefreshExpires)
	if err := config.Cache.Remember(c.UserContext(), cache.RefreshKey(pair.RefreshID), ttl); err != nil {
		logger.ErrorLogger.Error("Error remembering refresh token", zap.Error(err))
	}
	return &pair, nil
}

// consumeRefresh removes the token id from the allow-list. Without a cache
// every validly signed token is accepted.
func consumeRefresh(c *fiber.Ctx, claims *auth.Claims) bool {
	if !config.Cache.Enabled() {
		return true
	}
	ok, err := config.Cache.Consume(c.UserContext(), cache.RefreshKey(claims.ID))
	if err != nil {
		logger.ErrorLogger.Error("Error consuming refresh token", zap.Error(err))
		return true
	}
	if !ok {
		logger.SecurityLogger.Warn("Refresh token replay", zap.Int("user_id", claims.UserID), zap.String("jti", claims.ID))
	}
	return ok
}
