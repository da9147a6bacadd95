package samples

import (
	"context"
	"fmt"
	"strconv"

	"bayesview/domain/dataset"
	"bayesview/internal"

	"github.com/jmoiron/sqlx"
)

// SQLSource reads samples from a query; each result column is one variable
// and NULL is a missing cell
type SQLSource struct {
	DB      *sqlx.DB
	Query   string
	Args    []interface{}
	Options Options
	logger  *internal.Logger
}

// NewSQLSource creates a query-backed sample source
func NewSQLSource(db *sqlx.DB, query string, opts Options, args ...interface{}) *SQLSource {
	return &SQLSource{DB: db, Query: query, Args: args, Options: opts, logger: internal.DefaultLogger.WithPrefix("samples")}
}

// Samples implements ports.SampleSource
func (s *SQLSource) Samples(ctx context.Context) (*dataset.Table, error) {
	rows, err := s.DB.QueryxContext(ctx, s.Query, s.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read sample columns: %w", err)
	}

	var records [][]string
	for rows.Next() {
		if s.Options.MaxRows > 0 && len(records) == s.Options.MaxRows {
			break
		}
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan sample row %d: %w", len(records)+1, err)
		}
		record := make([]string, len(values))
		for j, v := range values {
			record[j], err = cell(v)
			if err != nil {
				return nil, fmt.Errorf("sample row %d column %s: %w", len(records)+1, header[j], err)
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate samples: %w", err)
	}

	table, err := build(header, records, s.Options)
	if err != nil {
		return nil, err
	}
	s.logger.Info("loaded %d rows x %d columns from query", table.Rows(), len(header))
	return table, nil
}

// cell renders a driver value as text for build; NULL becomes blank
func cell(v interface{}) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int:
		return strconv.Itoa(x), nil
	case float64:
		if x != float64(int64(x)) {
			return "", fmt.Errorf("%v is not an integer code", x)
		}
		return strconv.FormatInt(int64(x), 10), nil
	case []byte:
		return string(x), nil
	case string:
		return x, nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
