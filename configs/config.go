package configs

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// defaultJWTSecret hanya untuk development dan test
const defaultJWTSecret = "secret"

// minProductionSecret is the HS256 key size in bytes.
const minProductionSecret = 32

type Config struct {
	AppEnv  string `validate:"required,oneof=development production test"`
	AppPort int    `validate:"required,gt=0,lt=65536"`

	DBHost     string `validate:"required"`
	DBPort     int    `validate:"required,gt=0,lt=65536"`
	DBUser     string `validate:"required"`
	DBPassword string
	DBName     string `validate:"required"`
	DBNameTest string
	DBSSLMode  string `validate:"oneof=disable require verify-ca verify-full"`

	// RedisHost kosong berarti aplikasi berjalan tanpa cache
	RedisHost     string
	RedisPort     int `validate:"gt=0,lt=65536"`
	RedisPassword string
	RedisDB       int `validate:"gte=0"`

	JWTSecret       string        `validate:"required,min=6"`
	AccessTokenTTL  time.Duration `validate:"gt=0"`
	RefreshTokenTTL time.Duration `validate:"gtfield=AccessTokenTTL"`
	CacheTTL        time.Duration `validate:"gt=0"`

	RateLimitMax int    `validate:"gt=0"`
	LogDir       string `validate:"required"`
}

func LoadConfig() Config {
	// Muat file .env
	if err := godotenv.Load(); err != nil {
		// Hanya log jika tidak dalam mode test
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using environment and default values")
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("app_env", "development")
	v.SetDefault("app_port", 3004)
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_name", "todo")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("redis_port", 6379)
	v.SetDefault("redis_db", 0)
	v.SetDefault("jwt_secret", defaultJWTSecret)
	v.SetDefault("access_token_ttl", "1h")
	v.SetDefault("refresh_token_ttl", "168h")
	v.SetDefault("cache_ttl", "5m")
	v.SetDefault("rate_limit_max", 100)
	v.SetDefault("log_dir", "logs")

	return Config{
		AppEnv:          v.GetString("app_env"),
		AppPort:         v.GetInt("app_port"),
		DBHost:          v.GetString("db_host"),
		DBPort:          v.GetInt("db_port"),
		DBUser:          v.GetString("db_user"),
		DBPassword:      v.GetString("db_password"),
		DBName:          v.GetString("db_name"),
		DBNameTest:      v.GetString("db_name_test"),
		DBSSLMode:       v.GetString("db_sslmode"),
		RedisHost:       v.GetString("redis_host"),
		RedisPort:       v.GetInt("redis_port"),
		RedisPassword:   v.GetString("redis_password"),
		RedisDB:         v.GetInt("redis_db"),
		JWTSecret:       v.GetString("jwt_secret"),
		AccessTokenTTL:  v.GetDuration("access_token_ttl"),
		RefreshTokenTTL: v.GetDuration("refresh_token_ttl"),
		CacheTTL:        v.GetDuration("cache_ttl"),
		RateLimitMax:    v.GetInt("rate_limit_max"),
		LogDir:          v.GetString("log_dir"),
	}
}

// Validate checks the loaded values before anything is connected.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.AppEnv == "production" {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("invalid configuration: JWT_SECRET must be set in production")
		}
		if len(c.JWTSecret) < minProductionSecret {
			return fmt.Errorf("invalid configuration: JWT_SECRET must be at least %d bytes in production", minProductionSecret)
		}
	}
	return nil
}

// PostgresDSN builds the lib/pq connection string for the given database name.
func (c Config) PostgresDSN(dbName string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:     dbName,
		RawQuery: "sslmode=" + c.DBSSLMode,
	}
	return u.String()
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}
