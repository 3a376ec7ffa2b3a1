package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"todo-backend/configs"

	_ "github.com/lib/pq"
)

// ConnectDB opens a pooled lib/pq connection to dbName and pings it.
func ConnectDB(cfg configs.Config, dbName string) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.PostgresDSN(dbName))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
