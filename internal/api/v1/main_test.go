package v1_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http/httptest"
	"os"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"todo-backend/configs"
	v1 "todo-backend/internal/api/v1"
	"todo-backend/internal/config"
	"todo-backend/internal/repository"
	"todo-backend/pkg/cache"
	"todo-backend/pkg/database"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"
)

// skipReason is set when the containers could not be started.
var skipReason string

func TestMain(m *testing.M) {
	os.Setenv("GO_ENV", "test")
	code, err := runWithContainers(m)
	if err != nil {
		log.Printf("API integration tests need Docker and will be skipped: %v", err)
		skipReason = "API integration test skipped, Postgres/Redis containers unavailable: " + err.Error()
		code = m.Run()
	}
	os.Exit(code)
}

func runWithContainers(m *testing.M) (int, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return 0, fmt.Errorf("docker pool: %w", err)
	}
	if err := pool.Client.Ping(); err != nil {
		return 0, fmt.Errorf("docker unavailable: %w", err)
	}
	pool.MaxWait = 2 * time.Minute

	hostConfig := func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	}

	pg, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=todo_test",
		},
	}, hostConfig)
	if err != nil {
		return 0, fmt.Errorf("start postgres: %w", err)
	}
	defer pool.Purge(pg)
	_ = pg.Expire(300)

	rd, err := pool.RunWithOptions(&dockertest.RunOptions{Repository: "redis", Tag: "7-alpine"}, hostConfig)
	if err != nil {
		return 0, fmt.Errorf("start redis: %w", err)
	}
	defer pool.Purge(rd)
	_ = rd.Expire(300)

	cfg := configs.LoadConfig()
	cfg.DBHost = "localhost"
	cfg.DBPort, _ = strconv.Atoi(pg.GetPort("5432/tcp"))
	cfg.DBUser = "postgres"
	cfg.DBPassword = "secret"
	cfg.DBNameTest = "todo_test"
	cfg.DBSSLMode = "disable"
	cfg.RedisHost = "localhost"
	cfg.RedisPort, _ = strconv.Atoi(rd.GetPort("6379/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var err error
		db, err = database.ConnectDB(cfg, cfg.DBNameTest)
		return err
	}); err != nil {
		return 0, fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	var rdb *redis.Client
	if err := pool.Retry(func() error {
		var err error
		rdb, err = database.ConnectRedis(context.Background(), cfg)
		return err
	}); err != nil {
		return 0, fmt.Errorf("connect redis: %w", err)
	}
	defer rdb.Close()

	if err := repository.Migrate(db); err != nil {
		return 0, err
	}
	config.DB = db
	config.Cache = cache.New(rdb, time.Minute)
	config.AppEnv = "test"

	code := m.Run()

	if err := repository.ResetSchema(db); err != nil {
		log.Printf("reset schema: %v", err)
	}
	return code, nil
}

func requireStack(t *testing.T) *fiber.App {
	t.Helper()
	if skipReason != "" {
		t.Skip(skipReason)
	}
	return v1.NewApp(0)
}

var userSeq int64

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d_%d", prefix, time.Now().UnixNano(), atomic.AddInt64(&userSeq, 1))
}

type apiResponse struct {
	Status int
	Body   map[string]interface{}
}

func (r apiResponse) Data() map[string]interface{} {
	data, _ := r.Body["data"].(map[string]interface{})
	return data
}

func (r apiResponse) List() []interface{} {
	list, _ := r.Body["data"].([]interface{})
	return list
}

func (r apiResponse) Errors() map[string]interface{} {
	errs, _ := r.Body["errors"].(map[string]interface{})
	return errs
}

func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}) apiResponse {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		switch b := body.(type) {
		case string:
			payload = []byte(b)
		default:
			payload, err = json.Marshal(b)
			require.NoError(t, err)
		}
	}
	req := httptest.NewRequest(method, "/api/v1"+path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := apiResponse{Status: resp.StatusCode}
	if resp.StatusCode != fiber.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out.Body), "%s %s", method, path)
	}
	return out
}

type account struct {
	ID       int
	Username string
	Access   string
	Refresh  string
}

// signUp registers a fresh member and logs them in.
func signUp(t *testing.T, app *fiber.App) account {
	t.Helper()
	name := uniqueName("user")
	res := call(t, app, "POST", "/register", "", map[string]string{
		"username": name,
		"email":    name + "@example.com",
		"password": "secret123",
	})
	require.Equal(t, 201, res.Status, res.Body)
	return login(t, app, name, "secret123")
}

func login(t *testing.T, app *fiber.App, username, password string) account {
	t.Helper()
	res := call(t, app, "POST", "/token", "", map[string]string{"username": username, "password": password})
	require.Equal(t, 200, res.Status, res.Body)
	data := res.Data()
	return account{
		ID:       int(data["user_id"].(float64)),
		Username: username,
		Access:   data["access"].(string),
		Refresh:  data["refresh"].(string),
	}
}

func createTask(t *testing.T, app *fiber.App, token string, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	res := call(t, app, "POST", "/tasks", token, body)
	require.Equal(t, 201, res.Status, res.Body)
	return res.Data()
}

func idOf(m map[string]interface{}) int {
	return int(m["id"].(float64))
}

func path(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}
