package walkforward

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/mat"

	"github.com/augurlab/augur/internal/model"
	"github.com/augurlab/augur/internal/types"
)

// DateFormat is the presentation layout for resolved window dates.
const DateFormat = "01/02/2006"

// Result accumulates the outcome of a walk-forward run. Every Run produces a
// fresh Result; Merge folds several of them into one aggregate for
// multi-symbol batches.
type Result struct {
	// ID identifies the run, or the first run of a merged batch.
	ID uuid.UUID
	// Timestamp records when the result was created.
	Timestamp time.Time
	// Dates lists the resolved window boundaries of every merged run.
	Dates []types.RunDates

	// TotalBuys counts all buy decisions.
	TotalBuys int
	// CorrectBuys counts buy decisions followed by a positive change.
	CorrectBuys int
	// TotalSells counts all sell decisions.
	TotalSells int
	// CorrectSells counts sell decisions followed by a negative change.
	CorrectSells int

	// TrainingFeatures holds the vectors the classifier was last fitted on.
	TrainingFeatures *mat.Dense
	// TrainingLabels holds the labels matching TrainingFeatures row for row.
	TrainingLabels []int
	// Model is the classifier as of the end of the run.
	Model model.Classifier
}

// NewResult returns an empty result with a fresh ID.
func NewResult() *Result {
	return &Result{
		ID:        uuid.New(),
		Timestamp: time.Now(),
	}
}

// BuyAccuracy returns the percentage of correct buys rounded to two decimal
// places, exactly 0.0 when no buys were made.
func (r *Result) BuyAccuracy() float64 {
	return accuracy(r.CorrectBuys, r.TotalBuys)
}

// SellAccuracy returns the percentage of correct sells rounded to two decimal
// places, exactly 0.0 when no sells were made.
func (r *Result) SellAccuracy() float64 {
	return accuracy(r.CorrectSells, r.TotalSells)
}

func accuracy(correct, total int) float64 {
	if total == 0 {
		return 0.0
	}

	ratio := float64(correct) / float64(total) * 100

	return decimal.NewFromFloat(ratio).Round(2).InexactFloat64()
}

// Merge folds other into r: counters add, window dates append, and the model
// state (classifier, training matrix, labels) is adopted from other so the
// aggregate carries the most recent fit.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}

	r.TotalBuys += other.TotalBuys
	r.CorrectBuys += other.CorrectBuys
	r.TotalSells += other.TotalSells
	r.CorrectSells += other.CorrectSells
	r.Dates = append(r.Dates, other.Dates...)

	if other.Model != nil {
		r.Model = other.Model
		r.TrainingFeatures = other.TrainingFeatures
		r.TrainingLabels = other.TrainingLabels
	}
}

// Summary converts the result into its serializable form.
func (r *Result) Summary() types.Summary {
	return types.Summary{
		ID:        r.ID.String(),
		Timestamp: r.Timestamp,
		Dates:     r.Dates,
		Counts: types.DecisionCounts{
			TotalBuys:    r.TotalBuys,
			CorrectBuys:  r.CorrectBuys,
			TotalSells:   r.TotalSells,
			CorrectSells: r.CorrectSells,
		},
		BuyAccuracy:  r.BuyAccuracy(),
		SellAccuracy: r.SellAccuracy(),
	}
}
