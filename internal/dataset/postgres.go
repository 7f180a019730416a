package dataset

import (
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// NewPostgresSource reads a recorded process dataset from postgres.
func NewPostgresSource(dsn, query string) RowSource {
	if strings.TrimSpace(dsn) == "" {
		dsn = "postgres://localhost:5432/kilntwin?sslmode=disable"
	}
	return &sqlSource{driver: "pgx", dsn: dsn, query: query}
}
