package types

import "time"

type Decision string

const (
	// DecisionBuy is a prediction that the next period's change will be positive
	DecisionBuy Decision = "buy"
	// DecisionSell is a prediction that the next period's change will be negative
	DecisionSell Decision = "sell"
	// DecisionHold means neither class probability cleared its threshold
	DecisionHold Decision = "hold"
)

// PeriodRecord is one evaluated test period: the decision taken at a bar and
// the realized outcome one period later.
type PeriodRecord struct {
	// RunID is the identifier of the run that produced this record
	RunID string
	// Symbol is the symbol the decision was made for
	Symbol string
	// Time is the timestamp of the bar the decision was made at
	Time time.Time
	// ProbDown is the predicted probability of a negative change
	ProbDown float64
	// ProbUp is the predicted probability of a positive change
	ProbUp float64
	// Decision is the thresholded action
	Decision Decision
	// Outcome is the realized fractional change over the following period
	Outcome float64
	// Correct reports whether the decision matched the outcome's sign.
	// Always false for hold decisions.
	Correct bool
}
