// Package testhelper provides fixture writing and artifact read-back helpers
// for the end-to-end tests.
package testhelper

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"gopkg.in/yaml.v3"

	"github.com/augurlab/augur/internal/dataset"
	"github.com/augurlab/augur/internal/types"
	"github.com/augurlab/augur/mocks"
)

// WriteCSV writes bars to a CSV file with the Date/Open/High/Low/Close/Volume
// header the dataset loader reads back.
func WriteCSV(bars []dataset.Bar, outputPath string) error {
	if len(bars) == 0 {
		return fmt.Errorf("no bars to write")
	}

	// Create output directory if it doesn't exist
	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Open in-memory DuckDB database
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open DuckDB connection: %w", err)
	}
	defer db.Close()

	// Create a table for the bars
	_, err = db.Exec(`
		CREATE TABLE bars (
			Date TIMESTAMP,
			Open DOUBLE,
			High DOUBLE,
			Low DOUBLE,
			Close DOUBLE,
			Volume DOUBLE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	// Prepare insert statement
	stmt, err := db.Prepare(`
		INSERT INTO bars (Date, Open, High, Low, Close, Volume)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	// Insert all bars
	for _, b := range bars {
		if _, err := stmt.Exec(b.Time, b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			return fmt.Errorf("failed to insert bar: %w", err)
		}
	}

	// Export to CSV file
	_, err = db.Exec(fmt.Sprintf(`COPY bars TO '%s' (FORMAT CSV, HEADER)`, outputPath))
	if err != nil {
		return fmt.Errorf("failed to export to CSV: %w", err)
	}

	return nil
}

// GenerateAndWriteCSV is a convenience function that generates bars with the
// given seed and writes them to a CSV file.
func GenerateAndWriteCSV(config mocks.GeneratorConfig, seed int64, outputPath string) error {
	gen := mocks.NewDataGenerator(seed)

	return WriteCSV(gen.Generate(config), outputPath)
}

// ReadSummaries walks root for summary.yaml files and returns the entries of
// the first one found.
func ReadSummaries(root string) ([]types.Summary, error) {
	var summaryPaths []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && filepath.Base(path) == "summary.yaml" {
			summaryPaths = append(summaryPaths, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(summaryPaths) == 0 {
		return nil, fmt.Errorf("no summary.yaml found under %s", root)
	}

	content, err := os.ReadFile(summaryPaths[0])
	if err != nil {
		return nil, err
	}

	var summaries []types.Summary
	if err := yaml.Unmarshal(content, &summaries); err != nil {
		return nil, err
	}

	if len(summaries) == 0 {
		return nil, fmt.Errorf("no entries in %s", summaryPaths[0])
	}

	return summaries, nil
}

// ReadDecisions reads an exported decisions Parquet file back into period
// records ordered by timestamp.
func ReadDecisions(parquetPath string) ([]types.PeriodRecord, error) {
	// Create an in-memory DuckDB instance for reading the parquet file
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB connection: %w", err)
	}
	defer db.Close()

	// Create a view from the parquet file - using raw SQL as Squirrel doesn't support CREATE VIEW
	createViewSQL := fmt.Sprintf(`CREATE VIEW decisions_view AS SELECT * FROM read_parquet('%s');`, parquetPath)

	_, err = db.Exec(createViewSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to create view from parquet file: %w", err)
	}

	// Initialize Squirrel with dollar placeholder format
	sq := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := sq.
		Select(
			"run_id", "symbol", "timestamp", "prob_down", "prob_up",
			"decision", "outcome", "correct",
		).
		From("decisions_view").
		OrderBy("timestamp ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query: %w", err)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	records := []types.PeriodRecord{}

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
			return nil, fmt.Errorf("failed to scan decision row: %w", err)
		}

		record.Decision = types.Decision(decision)
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decision rows: %w", err)
	}

	return records, nil
}
