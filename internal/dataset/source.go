package dataset

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"kilntwin/internal/config"
)

// NewSource builds a RowSource from the configured driver. An empty driver
// means no external recording is configured.
func NewSource(cfg config.DatasetConfig) (RowSource, error) {
	switch strings.ToLower(cfg.Driver) {
	case "":
		return nil, nil
	case "sqlite":
		return NewSQLiteSource(cfg.DSN, cfg.Query), nil
	case "postgres", "postgresql":
		return NewPostgresSource(cfg.DSN, cfg.Query), nil
	default:
		return nil, errors.New("unsupported dataset driver")
	}
}

const defaultQuery = `SELECT * FROM kiln_operations ORDER BY timestamp`

type sqlSource struct {
	driver string
	dsn    string
	query  string
}

func (s *sqlSource) Rows(ctx context.Context) ([]map[string]any, error) {
	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	query := s.query
	if strings.TrimSpace(query) == "" {
		query = defaultQuery
	}
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, 256)
	for rows.Next() {
		values := make([]any, len(names))
		scan := make([]any, len(names))
		for i := range values {
			scan[i] = &values[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(names))
		for i, name := range names {
			row[strings.ToLower(name)] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
