package storage

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/sol1corejz/pledgetracker/internal/logger"
)

const (
	primaryDriver = "pgx"
	smsDriver     = "postgres"
)

var ErrConnectionFailed = errors.New("db connection failed")

// open returns a pool even when the database is unreachable: each store fails
// on its own operations rather than at startup.
func open(name, driver, dsn string, timeout time.Duration) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.Wrapf(ErrConnectionFailed, "%s: empty connection string", name)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(ErrConnectionFailed, "%s: %v", name, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		logger.Log.Error("Database is not reachable", zap.String("store", name), zap.Error(err))
	} else {
		logger.Log.Info("Database connected successfully", zap.String("store", name))
	}

	return db, nil
}

func ping(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return db.PingContext(ctx)
}
