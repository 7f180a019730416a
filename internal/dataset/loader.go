// Package dataset maps already-decoded recording rows into replay records.
// File parsing stays with the caller; this package only consumes rows and
// guarantees replay always has at least one record to index.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"kilntwin/internal/model"
)

// ErrDatasetEmpty is returned when a source produced no usable rows.
var ErrDatasetEmpty = errors.New("dataset contains no rows")

// RowSource yields decoded recording rows as string-keyed field maps.
type RowSource interface {
	Rows(ctx context.Context) ([]map[string]any, error)
}

// Rows is an in-memory RowSource for rows the caller already decoded from a
// spreadsheet or CSV export.
type Rows []map[string]any

func (r Rows) Rows(_ context.Context) ([]map[string]any, error) {
	return r, nil
}

// Load pulls all rows from src and maps each to a ReplayRecord. On a nil
// source, source failure or zero rows it returns the single-row fallback
// dataset together with the load error, so the caller always holds a
// non-empty minimum baseline.
func Load(ctx context.Context, src RowSource) ([]model.ReplayRecord, error) {
	if src == nil {
		return Fallback(), ErrDatasetEmpty
	}
	rows, err := src.Rows(ctx)
	if err != nil {
		return Fallback(), fmt.Errorf("dataset source: %w", err)
	}
	if len(rows) == 0 {
		return Fallback(), ErrDatasetEmpty
	}
	records := make([]model.ReplayRecord, 0, len(rows))
	for i, row := range rows {
		records = append(records, mapRow(row, i))
	}
	return records, nil
}

// Fallback builds the single-row baseline dataset from the documented
// per-field fallback constants.
func Fallback() []model.ReplayRecord {
	values := make(map[string]float64, len(columns))
	for _, fm := range columns {
		values[fm.SensorID] = fm.Fallback
	}
	return []model.ReplayRecord{{Timestamp: "baseline", Values: values}}
}

func mapRow(row map[string]any, index int) model.ReplayRecord {
	rec := model.ReplayRecord{
		Timestamp: fmt.Sprintf("row-%d", index),
		Values:    make(map[string]float64, len(columns)),
	}
	if ts, ok := row[timestampColumn]; ok {
		rec.Timestamp = fmt.Sprint(ts)
	}
	for _, fm := range columns {
		value := fm.Fallback
		if raw, ok := row[fm.Column]; ok {
			if f, ok := toFloat(raw); ok {
				value = f
			}
		}
		rec.Values[fm.SensorID] = value
	}
	return rec
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case []byte:
		f, err := strconv.ParseFloat(string(n), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
