package config

import (
	"database/sql"
	"reflect"
	"strings"
	"time"

	"todo-backend/internal/auth"
	"todo-backend/pkg/cache"

	"github.com/go-playground/validator/v10"
)

var (
	// Global dependency yang akan digunakan di seluruh aplikasi
	DB       *sql.DB
	Cache    *cache.Cache
	Validate = newValidator()
	Tokens   = auth.NewIssuer("secret", time.Hour, 7*24*time.Hour)
	AppEnv   = "development"
	Version  = "dev"
)

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}
