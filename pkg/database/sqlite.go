package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/acadplan/acadplan-core/pkg/config"
)

func init() {
	// modernc registers itself as "sqlite"; sqlx does not know its bindvar.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Open returns a client for the embedded store file. The store is a single
// file accessed by one process; the pool is capped at one connection so
// writes never contend with each other.
func Open(cfg config.StoreConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)",
		cfg.Path,
		cfg.BusyTimeout.Milliseconds(),
	)

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
