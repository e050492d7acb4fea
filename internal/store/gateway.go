package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Gateway is the single access path to the embedded relational store.
// Every component above it executes statements and transactions through
// these methods; nothing else touches the store file.
type Gateway struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewGateway wraps an open store client.
func NewGateway(db *sqlx.DB, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{db: db, logger: logger}
}

// DB exposes the underlying client for repository construction.
func (g *Gateway) DB() *sqlx.DB {
	return g.db
}

// Execute runs a single statement and returns the affected row count.
func (g *Gateway) Execute(ctx context.Context, stmt string, args ...interface{}) (int64, error) {
	res, err := g.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("execute statement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

// QueryMaps runs a query and returns its rows as ordered column→value maps.
func (g *Gateway) QueryMaps(ctx context.Context, stmt string, args ...interface{}) ([]map[string]interface{}, error) {
	rows, err := g.db.QueryxContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	var result []map[string]interface{}
	for rows.Next() {
		row := make(map[string]interface{})
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return result, nil
}

// QueryInt runs a single-value query, typically a COUNT.
func (g *Gateway) QueryInt(ctx context.Context, stmt string, args ...interface{}) (int64, error) {
	var value int64
	if err := g.db.GetContext(ctx, &value, stmt, args...); err != nil {
		return 0, fmt.Errorf("query value: %w", err)
	}
	return value, nil
}

// WithTx runs fn inside one transaction, committing on success and rolling
// back on error or panic.
func (g *Gateway) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := g.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			g.logger.Error("rollback failed", zap.Error(rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
