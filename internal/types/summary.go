package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RunDates holds the resolved window boundaries of a single run, formatted
// as calendar dates.
type RunDates struct {
	// Symbol of the evaluated dataset.
	Symbol string `yaml:"symbol"`
	// TrainStart is the resolved first training date.
	TrainStart string `yaml:"train_start"`
	// TrainEnd is the resolved last training date.
	TrainEnd string `yaml:"train_end"`
	// TestStart is the resolved first test date.
	TestStart string `yaml:"test_start"`
	// TestEnd is the resolved last test date.
	TestEnd string `yaml:"test_end"`
}

type DecisionCounts struct {
	// Count of all buy decisions.
	TotalBuys int `yaml:"total_buys"`
	// Count of buy decisions followed by a positive change.
	CorrectBuys int `yaml:"correct_buys"`
	// Count of all sell decisions.
	TotalSells int `yaml:"total_sells"`
	// Count of sell decisions followed by a negative change.
	CorrectSells int `yaml:"correct_sells"`
}

type Summary struct {
	// ID is the unique identifier for this run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Dates are the resolved windows, one entry per merged run.
	Dates []RunDates `yaml:"dates"`
	// Counts of decisions across all merged runs.
	Counts DecisionCounts `yaml:"counts"`
	// BuyAccuracy is the percentage of correct buys, 0.0 when no buys were made.
	BuyAccuracy float64 `yaml:"buy_accuracy"`
	// SellAccuracy is the percentage of correct sells, 0.0 when no sells were made.
	SellAccuracy float64 `yaml:"sell_accuracy"`
	// DecisionsFilePath is the path to the decisions parquet file, if written.
	DecisionsFilePath string `yaml:"decisions_file_path,omitempty"`
	// PlotFilePath is the path to the decision boundary image, if written.
	PlotFilePath string `yaml:"plot_file_path,omitempty"`
	// ConfigPath is the path to the run configuration file used.
	ConfigPath string `yaml:"config_path,omitempty"`
}

func WriteSummaries(path string, summaries []Summary) error {
	// Marshal the struct to YAML
	data, err := yaml.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("failed to marshal run summaries to YAML: %w", err)
	}

	// Write the YAML data to the file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run summaries to file: %w", err)
	}

	return nil
}
