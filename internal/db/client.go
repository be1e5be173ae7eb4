package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4/pgxpool"
)

var ErrNoDSN = errors.New("database dsn is empty")

func NewDb(ctx context.Context, dsn string) (*Database, error) {
	if dsn == "" {
		return nil, ErrNoDSN
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return NewDatabase(pool), nil
}
