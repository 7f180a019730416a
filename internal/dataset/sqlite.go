package dataset

import (
	"strings"

	_ "modernc.org/sqlite"
)

// NewSQLiteSource reads a recorded process dataset from a sqlite database.
func NewSQLiteSource(dsn, query string) RowSource {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file:recording.db?_pragma=busy_timeout(5000)"
	}
	return &sqlSource{driver: "sqlite", dsn: dsn, query: query}
}
