// Package warehouse keeps the run's derived tables in an embedded DuckDB
// database so they can be queried without re-reading the delimited
// extracts.
package warehouse

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

// schema is applied on open. The warehouse carries no versioned
// migrations: both tables are reloaded wholesale each run.
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	user_id         VARCHAR NOT NULL,
	device          VARCHAR NOT NULL,
	session_start   VARCHAR NOT NULL,
	last_navigation VARCHAR,
	duration_secs   DOUBLE NOT NULL,
	depth           INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS navigations (
	user_id       VARCHAR NOT NULL,
	device        VARCHAR NOT NULL,
	to_page       VARCHAR,
	arrived_time  VARCHAR NOT NULL,
	departed_time VARCHAR,
	duration_secs DOUBLE NOT NULL,
	depth         INTEGER NOT NULL,
	timed_out     BOOLEAN NOT NULL
);
`

// Store manages the DuckDB connection and provides query methods.
type Store struct {
	db           *sql.DB
	mu           sync.RWMutex
	dbPath       string
	QueryTimeout time.Duration
}

// NewStore opens or creates the warehouse database. An empty dbPath uses
// an in-memory database. queryTimeout defaults to 30s when omitted.
func NewStore(dbPath string, queryTimeout ...time.Duration) (*Store, error) {
	dsn := ""
	if dbPath != "" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("warehouse: mkdir: %w", err)
		}
		dsn = dbPath
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("warehouse: open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("warehouse: applying schema: %w", err)
	}

	qt := 30 * time.Second
	if len(queryTimeout) > 0 && queryTimeout[0] > 0 {
		qt = queryTimeout[0]
	}

	return &Store{
		db:           db,
		dbPath:       dbPath,
		QueryTimeout: qt,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}
