package model

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/augurlab/augur/pkg/errors"
)

const (
	kernelEpochs       = 1000
	kernelLearningRate = 0.5
)

// Kernel is a radial-basis-function kernel logistic classifier: one
// coefficient per training sample over K(a, b) = exp(-Gamma * ||a-b||^2),
// trained with batch gradient descent and an L2 penalty of 1/C. Like the
// linear model it is fully deterministic. Fitting is O(n^2) in the training
// set size.
type Kernel struct {
	hp     Hyperparameters
	train  [][]float64
	alphas []float64
	bias   float64
	dims   int
	fitted bool
}

// NewKernel creates an unfitted RBF-kernel classifier.
func NewKernel(hp Hyperparameters) *Kernel {
	return &Kernel{hp: hp}
}

// rbf evaluates the kernel between two vectors of equal length.
func (m *Kernel) rbf(a, b []float64) float64 {
	dist2 := 0.0

	for i := range a {
		d := a[i] - b[i]
		dist2 += d * d
	}

	return math.Exp(-m.hp.Gamma * dist2)
}

// Fit implements Classifier.
func (m *Kernel) Fit(features *mat.Dense, labels []int) error {
	x, y, err := extractTrainingSet(features, labels)
	if err != nil {
		return err
	}

	rows := len(x)
	n := float64(rows)
	lambda := 1 / m.hp.C

	// Kernel matrix over the training rows, symmetric with unit diagonal.
	gram := make([][]float64, rows)
	for i := range gram {
		gram[i] = make([]float64, rows)
	}

	for i := 0; i < rows; i++ {
		gram[i][i] = 1

		for j := i + 1; j < rows; j++ {
			k := m.rbf(x[i], x[j])
			gram[i][j] = k
			gram[j][i] = k
		}
	}

	alphas := make([]float64, rows)
	bias := 0.0

	residuals := make([]float64, rows)
	gradA := make([]float64, rows)

	for epoch := 0; epoch < kernelEpochs; epoch++ {
		for i := 0; i < rows; i++ {
			s := bias
			for j := 0; j < rows; j++ {
				s += alphas[j] * gram[i][j]
			}

			residuals[i] = sigmoid(s) - float64(y[i])
		}

		gradB := 0.0

		for j := 0; j < rows; j++ {
			g := 0.0
			for i := 0; i < rows; i++ {
				g += residuals[i] * gram[i][j]
			}

			gradA[j] = g
			gradB += residuals[j]
		}

		for j := 0; j < rows; j++ {
			alphas[j] -= kernelLearningRate * (gradA[j] + lambda*alphas[j]) / n
		}

		bias -= kernelLearningRate * gradB / n
	}

	m.train = x
	m.alphas = alphas
	m.bias = bias
	m.dims = len(x[0])
	m.fitted = true

	return nil
}

// PredictProb implements Classifier.
func (m *Kernel) PredictProb(vector []float64) (Probability, error) {
	if !m.fitted {
		return Probability{}, errors.New(errors.ErrCodeModelNotFitted, "kernel model has not been fitted")
	}

	if err := checkVector(vector, m.dims); err != nil {
		return Probability{}, err
	}

	s := m.bias
	for j, row := range m.train {
		s += m.alphas[j] * m.rbf(vector, row)
	}

	up := sigmoid(s)

	return Probability{Down: 1 - up, Up: up}, nil
}
