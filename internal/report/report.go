// Package report renders run configurations and results for the console.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/augurlab/augur/internal/walkforward"
	"github.com/augurlab/augur/pkg/errors"
)

// Style definitions.
var (
	// TitleStyle for section headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// GainStyle for accuracies above even odds.
	GainStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	// LossStyle for accuracies below even odds.
	LossStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Conditions renders the evaluation setup: the numbered feature list, the
// model and its hyperparameters, and the decision thresholds.
func Conditions(config walkforward.Config) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Conditions") + "\n")

	for i, name := range config.Features {
		b.WriteString(fmt.Sprintf("X%d: %s\n", i+1, name))
	}

	b.WriteString(fmt.Sprintf("Model: %s\n", config.Model))
	b.WriteString(fmt.Sprintf("Buy Threshold: %v%%\n", config.BuyThreshold*100))
	b.WriteString(fmt.Sprintf("Sell Threshold: %v%%\n", config.SellThreshold*100))
	b.WriteString(fmt.Sprintf("C: %v\n", config.Hyperparameters.C))
	b.WriteString(fmt.Sprintf("Gamma: %v\n", config.Hyperparameters.Gamma))
	b.WriteString(fmt.Sprintf("Continued Training: %t\n", config.ContinuedTraining))

	return b.String()
}

// Stats renders the outcome of a completed run: the resolved windows per
// symbol and the decision counts with their accuracies.
func Stats(result *walkforward.Result) (string, error) {
	if result == nil || len(result.Dates) == 0 {
		return "", errors.New(errors.ErrCodeNoCompletedRun, "no completed run to report")
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render("Stats") + "\n")
	b.WriteString("Symbol(s):\n")

	for _, dates := range result.Dates {
		b.WriteString(fmt.Sprintf("%s | Training: %s-%s Testing: %s-%s\n",
			dates.Symbol, dates.TrainStart, dates.TrainEnd, dates.TestStart, dates.TestEnd))
	}

	b.WriteString(fmt.Sprintf("\nTotal Buys: %d\n", result.TotalBuys))
	b.WriteString(fmt.Sprintf("Buy Accuracy: %s\n", formatAccuracy(result.BuyAccuracy())))
	b.WriteString(fmt.Sprintf("Total Sells: %d\n", result.TotalSells))
	b.WriteString(fmt.Sprintf("Sell Accuracy: %s\n", formatAccuracy(result.SellAccuracy())))

	return b.String(), nil
}

// formatAccuracy renders a percentage, green above even odds, red below, and
// unstyled at exactly 50.
func formatAccuracy(accuracy float64) string {
	text := fmt.Sprintf("%v%%", accuracy)

	switch {
	case accuracy > 50:
		return GainStyle.Render(text)
	case accuracy < 50:
		return LossStyle.Render(text)
	default:
		return text
	}
}
