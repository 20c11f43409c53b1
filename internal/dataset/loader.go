package dataset

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/augurlab/augur/internal/logger"
	"github.com/augurlab/augur/pkg/errors"
)

// FromCSV loads Date/Open/High/Low/Close/Volume rows from a CSV file into a
// Dataset. Rows are ordered by date and naive timestamps are localized into
// loc (UTC when nil). Extra columns in the file are ignored.
func FromCSV(path, symbol string, loc *time.Location, log *logger.Logger) (*Dataset, error) {
	if log == nil {
		var err error

		log, err = logger.NewLogger()
		if err != nil {
			return nil, err
		}
	}

	if loc == nil {
		loc = time.UTC
	}

	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "data file not found: %s", path)
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to open in-memory database", err)
	}
	defer db.Close()

	log.Debug("Loading bars from CSV",
		zap.String("path", path),
		zap.String("symbol", symbol),
	)

	// Using raw SQL as Squirrel doesn't support table functions
	query := fmt.Sprintf(`
		SELECT
			CAST(Date AS TIMESTAMP),
			CAST(Open AS DOUBLE),
			CAST(High AS DOUBLE),
			CAST(Low AS DOUBLE),
			CAST(Close AS DOUBLE),
			CAST(Volume AS DOUBLE)
		FROM read_csv_auto('%s')
		ORDER BY Date;
	`, path)

	rows, err := db.Query(query)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read csv %s", path)
	}
	defer rows.Close()

	var bars []Bar

	for rows.Next() {
		var (
			b  Bar
			ts time.Time
		)

		if err := rows.Scan(&ts, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan bar", err)
		}

		// The driver returns naive timestamps in UTC; rebuild them in the
		// configured zone.
		b.Time = time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(), loc)
		bars = append(bars, b)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed while reading bars", err)
	}

	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeEmptyDataset, "no rows in %s", path)
	}

	log.Debug("Loaded bars",
		zap.String("symbol", symbol),
		zap.Int("count", len(bars)),
	)

	return New(symbol, bars)
}

// SymbolFromPath derives a symbol from a data file path: the base name
// without its extension, upper-cased.
func SymbolFromPath(path string) string {
	base := filepath.Base(path)

	return strings.ToUpper(strings.TrimSuffix(base, filepath.Ext(base)))
}
