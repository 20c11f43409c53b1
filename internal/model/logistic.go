package model

import (
	"gonum.org/v1/gonum/mat"

	"github.com/augurlab/augur/pkg/errors"
)

const (
	logisticEpochs       = 2000
	logisticLearningRate = 0.5
)

// Logistic is a linear logistic-regression classifier trained with batch
// gradient descent and an L2 penalty of 1/C. Weights start at zero and the
// epoch count is fixed, so fitting is fully deterministic.
type Logistic struct {
	hp      Hyperparameters
	weights []float64
	bias    float64
	dims    int
	fitted  bool
}

// NewLogistic creates an unfitted linear classifier.
func NewLogistic(hp Hyperparameters) *Logistic {
	return &Logistic{hp: hp}
}

// Fit implements Classifier.
func (m *Logistic) Fit(features *mat.Dense, labels []int) error {
	x, y, err := extractTrainingSet(features, labels)
	if err != nil {
		return err
	}

	rows := len(x)
	cols := len(x[0])
	n := float64(rows)
	lambda := 1 / m.hp.C

	weights := make([]float64, cols)
	bias := 0.0

	gradW := make([]float64, cols)

	for epoch := 0; epoch < logisticEpochs; epoch++ {
		for c := range gradW {
			gradW[c] = 0
		}

		gradB := 0.0

		for r := 0; r < rows; r++ {
			z := bias
			for c := 0; c < cols; c++ {
				z += weights[c] * x[r][c]
			}

			residual := sigmoid(z) - float64(y[r])

			for c := 0; c < cols; c++ {
				gradW[c] += residual * x[r][c]
			}

			gradB += residual
		}

		// The bias is not regularized.
		for c := 0; c < cols; c++ {
			weights[c] -= logisticLearningRate * (gradW[c] + lambda*weights[c]) / n
		}

		bias -= logisticLearningRate * gradB / n
	}

	m.weights = weights
	m.bias = bias
	m.dims = cols
	m.fitted = true

	return nil
}

// PredictProb implements Classifier.
func (m *Logistic) PredictProb(vector []float64) (Probability, error) {
	if !m.fitted {
		return Probability{}, errors.New(errors.ErrCodeModelNotFitted, "logistic model has not been fitted")
	}

	if err := checkVector(vector, m.dims); err != nil {
		return Probability{}, err
	}

	z := m.bias
	for c, v := range vector {
		z += m.weights[c] * v
	}

	up := sigmoid(z)

	return Probability{Down: 1 - up, Up: up}, nil
}
