package supabase

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// DatabaseClient is the persistence gateway: typed raw-SQL queries per
// entity, one statement per call. Consistency across statements is the
// handlers' job (see the saga package).
type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}
