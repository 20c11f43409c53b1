package walkforward

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/augurlab/augur/internal/logger"
	"github.com/augurlab/augur/internal/types"
	"github.com/augurlab/augur/pkg/errors"
)

// Journal records one row per test period in an in-memory DuckDB table and
// can export the table to Parquet.
type Journal struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewJournal opens the backing in-memory database.
func NewJournal(log *logger.Logger) (*Journal, error) {
	if log == nil {
		var err error

		log, err = logger.NewLogger()
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalInit, "failed to open journal database", err)
	}

	return &Journal{
		logger: log,
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Initialize creates the decisions table.
func (j *Journal) Initialize() error {
	_, err := j.db.Exec(`
		CREATE TABLE IF NOT EXISTS decisions (
			run_id TEXT,
			symbol TEXT,
			timestamp TIMESTAMP,
			prob_down DOUBLE,
			prob_up DOUBLE,
			decision TEXT,
			outcome DOUBLE,
			correct BOOLEAN
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeJournalInit, "failed to create decisions table", err)
	}

	return nil
}

// Record appends one period record.
func (j *Journal) Record(record types.PeriodRecord) error {
	insertQuery := j.sq.
		Insert("decisions").
		Columns(
			"run_id", "symbol", "timestamp", "prob_down", "prob_up",
			"decision", "outcome", "correct",
		).
		Values(
			record.RunID, record.Symbol, record.Time, record.ProbDown, record.ProbUp,
			string(record.Decision), record.Outcome, record.Correct,
		).
		RunWith(j.db)

	if _, err := insertQuery.Exec(); err != nil {
		return errors.Wrap(errors.ErrCodeJournalWrite, "failed to insert decision", err)
	}

	return nil
}

// Decisions returns the recorded rows for a symbol in time order. An empty
// symbol returns every row.
func (j *Journal) Decisions(symbol string) ([]types.PeriodRecord, error) {
	selectQuery := j.sq.
		Select(
			"run_id", "symbol", "timestamp", "prob_down", "prob_up",
			"decision", "outcome", "correct",
		).
		From("decisions").
		OrderBy("timestamp ASC").
		RunWith(j.db)

	if symbol != "" {
		selectQuery = selectQuery.Where(squirrel.Eq{"symbol": symbol})
	}

	rows, err := selectQuery.Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalQuery, "failed to query decisions", err)
	}
	defer rows.Close()

	var records []types.PeriodRecord

	for rows.Next() {
		var (
			record   types.PeriodRecord
			decision string
		)

		err := rows.Scan(
			&record.RunID,
			&record.Symbol,
			&record.Time,
			&record.ProbDown,
			&record.ProbUp,
			&decision,
			&record.Outcome,
			&record.Correct,
		)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeJournalQuery, "failed to scan decision", err)
		}

		record.Decision = types.Decision(decision)
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeJournalQuery, "error iterating decisions", err)
	}

	return records, nil
}

// Write exports the decisions table to a Parquet file inside path and returns
// the file location.
func (j *Journal) Write(path string) (string, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", errors.Wrap(errors.ErrCodeJournalWrite, "failed to create directory", err)
	}

	// Using raw SQL as Squirrel doesn't support COPY.
	decisionsPath := filepath.Join(path, "decisions.parquet")

	_, err := j.db.Exec(fmt.Sprintf(`COPY decisions TO '%s' (FORMAT PARQUET)`, decisionsPath))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeJournalWrite, "failed to export decisions to Parquet", err)
	}

	j.logger.Info("Exported decisions to Parquet",
		zap.String("decisions", decisionsPath),
	)

	return decisionsPath, nil
}

// Cleanup drops and recreates the decisions table.
func (j *Journal) Cleanup() error {
	// Raw SQL for dropping tables, Squirrel has no DROP syntax.
	_, err := j.db.Exec(`DROP TABLE IF EXISTS decisions;`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeJournalInit, "failed to cleanup decisions table", err)
	}

	return j.Initialize()
}

// Close releases the database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}
