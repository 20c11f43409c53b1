// Package walkforward implements the walk-forward evaluation protocol: fit a
// classifier on a historical window, then step through a later window one bar
// at a time, scoring each decision against the move that follows it.
package walkforward

import (
	"github.com/moznion/go-optional"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/augurlab/augur/internal/dataset"
	"github.com/augurlab/augur/internal/feature"
	"github.com/augurlab/augur/internal/logger"
	"github.com/augurlab/augur/internal/model"
	"github.com/augurlab/augur/internal/types"
	"github.com/augurlab/augur/pkg/errors"
)

// OnPeriodCallback reports progress after each evaluated test period.
// current is 1-based; total is the number of periods in the test window.
type OnPeriodCallback func(current int, total int)

// Engine drives walk-forward evaluations. One engine can evaluate several
// datasets in sequence; every Run refits the classifier from scratch and
// returns a fresh Result.
type Engine struct {
	config     Config
	log        *logger.Logger
	registry   *feature.Registry
	features   []feature.Feature
	classifier model.Classifier
	journal    *Journal
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithRegistry sets the feature registry the config's feature names are
// resolved against.
func WithRegistry(registry *feature.Registry) Option {
	return func(e *Engine) {
		e.registry = registry
	}
}

// WithClassifier injects a classifier, overriding the configured model kind.
func WithClassifier(classifier model.Classifier) Option {
	return func(e *Engine) {
		e.classifier = classifier
	}
}

// WithJournal attaches a journal that receives one record per test period.
func WithJournal(journal *Journal) Option {
	return func(e *Engine) {
		e.journal = journal
	}
}

// NewEngine validates the configuration, resolves its feature names, and
// constructs the classifier.
func NewEngine(config Config, opts ...Option) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{config: config}

	for _, opt := range opts {
		opt(e)
	}

	if e.log == nil {
		log, err := logger.NewLogger()
		if err != nil {
			return nil, err
		}

		e.log = log
	}

	if e.registry == nil {
		e.registry = feature.DefaultRegistry()
	}

	features, err := e.registry.Resolve(config.Features)
	if err != nil {
		return nil, err
	}

	e.features = features

	if e.classifier == nil {
		classifier, err := model.New(config.Model, config.Hyperparameters)
		if err != nil {
			return nil, err
		}

		e.classifier = classifier
	}

	e.log.Debug("Engine initialized",
		zap.Strings("features", config.Features),
		zap.String("model", string(config.Model)),
		zap.Bool("continued_training", config.ContinuedTraining),
	)

	return e, nil
}

// Config returns the engine's validated configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Run executes one walk-forward evaluation over ds.
//
// The train window is resolved onto bar indexes, the classifier is fitted on
// the vectors and next-bar labels of that window, and then the test window is
// replayed one bar at a time: predict, decide, advance, score the decision
// against the realized change. Decisions are counted before their outcome is
// known. With continued training enabled, each scored period is appended to
// the training set and the classifier refitted on the grown set, which is
// quadratic in the number of periods.
func (e *Engine) Run(ds *dataset.Dataset, onPeriod optional.Option[OnPeriodCallback]) (*Result, error) {
	if ds == nil {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "Run: dataset is nil")
	}

	windows, err := e.config.Windows()
	if err != nil {
		return nil, err
	}

	e.log.Info("Starting walk-forward run",
		zap.String("symbol", ds.Symbol()),
		zap.Int("bars", ds.Len()),
	)

	trainStartIdx, err := ds.FloorIndex(windows.TrainStart)
	if err != nil {
		return nil, err
	}

	trainEndIdx, err := ds.CeilIndex(windows.TrainEnd)
	if err != nil {
		return nil, err
	}

	testStartIdx, err := ds.FloorIndex(windows.TestStart)
	if err != nil {
		return nil, err
	}

	testEndIdx, err := ds.CeilIndex(windows.TestEnd)
	if err != nil {
		return nil, err
	}

	e.log.Debug("Resolved windows",
		zap.Int("train_start", trainStartIdx),
		zap.Int("train_end", trainEndIdx),
		zap.Int("test_start", testStartIdx),
		zap.Int("test_end", testEndIdx),
	)

	result := NewResult()
	dims := len(e.features)

	// Initial training set: vector at each bar of the train window, labeled
	// by the change realized on the following bar.
	var (
		flat   []float64
		labels []int
	)

	for i := trainStartIdx; i <= trainEndIdx; i++ {
		vec, err := e.vector(ds, i)
		if err != nil {
			return nil, err
		}

		change, err := ds.PercentChange(i + 1)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeDataBounds, err,
				"training label at index %d needs the following bar", i)
		}

		flat = append(flat, vec...)
		labels = append(labels, dataset.Label(change))
	}

	if err := e.classifier.Fit(mat.NewDense(len(labels), dims, flat), labels); err != nil {
		return nil, err
	}

	e.log.Info("Initial training complete",
		zap.String("symbol", ds.Symbol()),
		zap.Int("examples", len(labels)),
	)

	total := testEndIdx - testStartIdx
	current := 0
	t := testStartIdx

	for t < testEndIdx {
		vec, err := e.vector(ds, t)
		if err != nil {
			return nil, err
		}

		prob, err := e.classifier.PredictProb(vec)
		if err != nil {
			return nil, err
		}

		decision := Decide(prob, e.config.BuyThreshold, e.config.SellThreshold)

		// The decision is counted before its outcome is known.
		switch decision {
		case types.DecisionBuy:
			result.TotalBuys++
		case types.DecisionSell:
			result.TotalSells++
		case types.DecisionHold:
		}

		bar, err := ds.At(t)
		if err != nil {
			return nil, err
		}

		t++

		outcome, err := ds.PercentChange(t)
		if err != nil {
			return nil, err
		}

		correct := false

		switch decision {
		case types.DecisionBuy:
			if outcome > 0 {
				result.CorrectBuys++

				correct = true
			}
		case types.DecisionSell:
			if outcome < 0 {
				result.CorrectSells++

				correct = true
			}
		case types.DecisionHold:
		}

		if e.journal != nil {
			record := types.PeriodRecord{
				RunID:    result.ID.String(),
				Symbol:   ds.Symbol(),
				Time:     bar.Time,
				ProbDown: prob.Down,
				ProbUp:   prob.Up,
				Decision: decision,
				Outcome:  outcome,
				Correct:  correct,
			}
			if err := e.journal.Record(record); err != nil {
				return nil, err
			}
		}

		current++

		if onPeriod.IsSome() {
			onPeriod.Unwrap()(current, total)
		}

		if e.config.ContinuedTraining {
			flat = append(flat, vec...)
			labels = append(labels, dataset.Label(outcome))

			if err := e.classifier.Fit(mat.NewDense(len(labels), dims, flat), labels); err != nil {
				return nil, err
			}
		}
	}

	trainStartBar, err := ds.At(trainStartIdx)
	if err != nil {
		return nil, err
	}

	trainEndBar, err := ds.At(trainEndIdx)
	if err != nil {
		return nil, err
	}

	testStartBar, err := ds.At(testStartIdx)
	if err != nil {
		return nil, err
	}

	testEndBar, err := ds.At(testEndIdx)
	if err != nil {
		return nil, err
	}

	result.Dates = append(result.Dates, types.RunDates{
		Symbol:     ds.Symbol(),
		TrainStart: trainStartBar.Time.Format(DateFormat),
		TrainEnd:   trainEndBar.Time.Format(DateFormat),
		TestStart:  testStartBar.Time.Format(DateFormat),
		TestEnd:    testEndBar.Time.Format(DateFormat),
	})

	result.TrainingFeatures = mat.NewDense(len(labels), dims, flat)
	result.TrainingLabels = labels
	result.Model = e.classifier

	e.log.Info("Walk-forward run complete",
		zap.String("symbol", ds.Symbol()),
		zap.Int("periods", current),
		zap.Int("total_buys", result.TotalBuys),
		zap.Int("correct_buys", result.CorrectBuys),
		zap.Int("total_sells", result.TotalSells),
		zap.Int("correct_sells", result.CorrectSells),
	)

	return result, nil
}

func (e *Engine) vector(ds *dataset.Dataset, i int) ([]float64, error) {
	vec := make([]float64, len(e.features))

	for c, f := range e.features {
		value, err := f.Value(ds, i)
		if err != nil {
			return nil, err
		}

		vec[c] = value
	}

	return vec, nil
}
