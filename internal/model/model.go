// Package model provides the probabilistic classifier capability the
// walk-forward engine trains and queries, together with two native
// implementations. Implementations must be deterministic: fitting the same
// data twice produces identical predictions.
package model

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/augurlab/augur/pkg/errors"
)

// Probability holds the predicted class probabilities for one feature
// vector. Down and Up sum to 1.
type Probability struct {
	// Down is the probability of a negative change
	Down float64
	// Up is the probability of a positive change
	Up float64
}

// Classifier is a binary probabilistic classifier over fixed-position
// feature vectors.
type Classifier interface {
	// Fit trains on the full set, replacing any previously learned state.
	// Inputs are copied; callers may reuse their buffers afterwards.
	Fit(features *mat.Dense, labels []int) error
	// PredictProb returns class probabilities for a single feature vector.
	PredictProb(vector []float64) (Probability, error)
}

// Hyperparameters tune a classifier. C is the inverse regularization
// strength, Gamma the RBF kernel width (ignored by the linear model).
type Hyperparameters struct {
	C     float64 `yaml:"c" json:"c" jsonschema:"description=Inverse regularization strength,default=1"`
	Gamma float64 `yaml:"gamma" json:"gamma" jsonschema:"description=RBF kernel width,default=10"`
}

// DefaultHyperparameters returns the standard settings: C=1 and Gamma=10.
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{C: 1, Gamma: 10}
}

// Kind selects a classifier implementation.
type Kind string

const (
	// KindLogistic is a linear logistic-regression classifier
	KindLogistic Kind = "logistic"
	// KindKernel is an RBF-kernel logistic classifier
	KindKernel Kind = "kernel"
)

// New constructs a classifier of the given kind.
func New(kind Kind, hp Hyperparameters) (Classifier, error) {
	if hp.C <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "hyperparameter c must be positive, got %v", hp.C)
	}

	switch kind {
	case KindLogistic:
		return NewLogistic(hp), nil
	case KindKernel:
		if hp.Gamma <= 0 {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "hyperparameter gamma must be positive, got %v", hp.Gamma)
		}

		return NewKernel(hp), nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnknownModel, "unknown model kind %q", kind)
	}
}

// extractTrainingSet validates a training set and copies it into plain rows.
func extractTrainingSet(features *mat.Dense, labels []int) ([][]float64, []int, error) {
	if features == nil {
		return nil, nil, errors.New(errors.ErrCodeModelFit, "nil feature matrix")
	}

	rows, cols := features.Dims()
	if rows == 0 || cols == 0 {
		return nil, nil, errors.New(errors.ErrCodeModelFit, "empty training set")
	}

	if rows != len(labels) {
		return nil, nil, errors.Newf(errors.ErrCodeModelFit,
			"feature matrix has %d rows but %d labels were given", rows, len(labels))
	}

	x := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		x[r] = mat.Row(nil, r, features)

		for c, v := range x[r] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, nil, errors.Newf(errors.ErrCodeModelFit,
					"non-finite feature value at row %d, column %d", r, c)
			}
		}
	}

	y := make([]int, len(labels))

	for i, label := range labels {
		if label != 0 && label != 1 {
			return nil, nil, errors.Newf(errors.ErrCodeModelFit, "label at row %d is %d, want 0 or 1", i, label)
		}

		y[i] = label
	}

	return x, y, nil
}

// checkVector validates a prediction input against the fitted width.
func checkVector(vector []float64, dims int) error {
	if len(vector) != dims {
		return errors.Newf(errors.ErrCodeDimensionMismatch,
			"vector has %d values but the model was fitted on %d features", len(vector), dims)
	}

	for i, v := range vector {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Newf(errors.ErrCodeInvalidParameter, "non-finite value at position %d", i)
		}
	}

	return nil
}

// sigmoid maps a score to (0, 1). IEEE semantics give the correct limits for
// large magnitudes, no clamping needed.
func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
