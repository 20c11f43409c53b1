package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/augurlab/augur/internal/dataset"
	"github.com/augurlab/augur/internal/logger"
	"github.com/augurlab/augur/internal/report"
	"github.com/augurlab/augur/internal/types"
	"github.com/augurlab/augur/internal/version"
	"github.com/augurlab/augur/internal/visualize"
	"github.com/augurlab/augur/internal/walkforward"
	"github.com/augurlab/augur/pkg/errors"
)

// runAction is the core logic executed by the CLI command.
// It parses the configuration, evaluates every data file, and writes the
// merged results.
func runAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	raw, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	config, err := walkforward.ParseConfig(string(raw))
	if err != nil {
		return err
	}

	runLogger, err := newRunLogger(cmd.Bool("debug"))
	if err != nil {
		return err
	}

	opts := []walkforward.Option{walkforward.WithLogger(runLogger)}

	var journal *walkforward.Journal

	if cmd.Bool("journal") {
		journal, err = walkforward.NewJournal(runLogger)
		if err != nil {
			return err
		}
		defer journal.Close()

		if err := journal.Initialize(); err != nil {
			return err
		}

		opts = append(opts, walkforward.WithJournal(journal))
	}

	engine, err := walkforward.NewEngine(config, opts...)
	if err != nil {
		return err
	}

	loc, err := config.Location()
	if err != nil {
		return err
	}

	paths, err := expandDataPaths(cmd.StringSlice("data"))
	if err != nil {
		return err
	}

	var merged *walkforward.Result

	for _, path := range paths {
		symbol := dataset.SymbolFromPath(path)

		ds, err := dataset.FromCSV(path, symbol, loc, runLogger)
		if err != nil {
			return err
		}

		// The period count is only known once the engine has resolved the
		// windows, so the progress bar is built on the first callback.
		var bar *progressbar.ProgressBar

		onPeriod := optional.Some[walkforward.OnPeriodCallback](func(current, total int) {
			if bar == nil {
				bar = progressbar.Default(int64(total))
				bar.Describe(fmt.Sprintf("Evaluating %s", symbol))
			}

			bar.Add(1)
		})

		result, err := engine.Run(ds, onPeriod)
		if err != nil {
			return err
		}

		// The batch keeps the first run's identity; later runs merge in.
		if merged == nil {
			merged = result
		} else {
			merged.Merge(result)
		}
	}

	fmt.Println(report.Conditions(engine.Config()))
	fmt.Println()

	stats, err := report.Stats(merged)
	if err != nil {
		fmt.Println(err)

		return nil
	}

	fmt.Println(stats)

	return writeResults(cmd.String("output"), configPath, merged, journal, cmd.Bool("plot"))
}

// writeResults writes the run summary and the requested artifacts under
// outputDir/<run-id>/.
func writeResults(outputDir, configPath string, result *walkforward.Result, journal *walkforward.Journal, withPlot bool) error {
	runDir := filepath.Join(outputDir, result.ID.String())
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("failed to create results folder: %w", err)
	}

	summary := result.Summary()
	summary.ConfigPath = configPath

	if journal != nil {
		decisionsPath, err := journal.Write(runDir)
		if err != nil {
			return err
		}

		summary.DecisionsFilePath = decisionsPath
	}

	if withPlot {
		plotPath, err := visualize.DecisionBoundary(result, visualize.DefaultOptions(runDir))

		switch {
		case err == nil:
			summary.PlotFilePath = plotPath
		case errors.HasCode(err, errors.ErrCodeFeatureCount):
			// Plotting is restricted to two features; the run itself stands.
			fmt.Println(err)
		default:
			return err
		}
	}

	summaryPath := filepath.Join(runDir, "summary.yaml")
	if err := types.WriteSummaries(summaryPath, []types.Summary{summary}); err != nil {
		return err
	}

	fmt.Printf("Results written to %s\n", runDir)

	return nil
}

// expandDataPaths expands glob patterns in the data flags. A value matching
// nothing is kept verbatim so the loader reports it as missing.
func expandDataPaths(values []string) ([]string, error) {
	var paths []string

	for _, value := range values {
		matches, err := filepath.Glob(value)
		if err != nil {
			return nil, fmt.Errorf("bad data pattern %q: %w", value, err)
		}

		if len(matches) == 0 {
			paths = append(paths, value)

			continue
		}

		paths = append(paths, matches...)
	}

	return paths, nil
}

func newRunLogger(debug bool) (*logger.Logger, error) {
	if debug {
		return logger.NewDebugLogger()
	}

	return logger.NewLogger()
}

func main() {
	// Define the CLI application
	cmd := &cli.Command{
		Name:    "augur",
		Usage:   "Evaluate a directional classifier with walk-forward testing",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the run configuration YAML",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "CSV data file or glob pattern, repeatable; the symbol is derived from the file name",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Directory the run results are written to",
				Value:    "results",
				Required: false,
			},
			&cli.BoolFlag{
				Name:  "journal",
				Usage: "Record every test period and export a decisions Parquet file",
			},
			&cli.BoolFlag{
				Name:  "plot",
				Usage: "Render the decision boundary of the trained model to a PNG",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Action: runAction, // Assign the action function
	}

	// Run the CLI application
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
