package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"
	"gonum.org/v1/gonum/mat"

	"github.com/augurlab/augur/pkg/errors"
)

type ModelTestSuite struct {
	suite.Suite
}

func TestModelSuite(t *testing.T) {
	suite.Run(t, new(ModelTestSuite))
}

// separable returns a two-feature training set with one cluster per class.
func separable() (*mat.Dense, []int) {
	data := []float64{
		-1.0, -1.0,
		-1.2, -0.8,
		-0.8, -1.1,
		-1.1, -1.3,
		1.0, 1.0,
		1.2, 0.9,
		0.8, 1.1,
		1.1, 1.2,
	}
	labels := []int{0, 0, 0, 0, 1, 1, 1, 1}

	return mat.NewDense(8, 2, data), labels
}

// xor returns the classic set no linear separator can solve.
func xor() (*mat.Dense, []int) {
	data := []float64{
		0, 0,
		1, 1,
		1, 0,
		0, 1,
	}
	labels := []int{0, 0, 1, 1}

	return mat.NewDense(4, 2, data), labels
}

func (suite *ModelTestSuite) TestNewKinds() {
	logistic, err := New(KindLogistic, DefaultHyperparameters())
	suite.Require().NoError(err)
	suite.IsType(&Logistic{}, logistic)

	kernel, err := New(KindKernel, DefaultHyperparameters())
	suite.Require().NoError(err)
	suite.IsType(&Kernel{}, kernel)
}

func (suite *ModelTestSuite) TestNewUnknownKind() {
	_, err := New(Kind("svm"), DefaultHyperparameters())
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnknownModel))
}

func (suite *ModelTestSuite) TestNewInvalidHyperparameters() {
	_, err := New(KindLogistic, Hyperparameters{C: 0, Gamma: 10})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	_, err = New(KindKernel, Hyperparameters{C: 1, Gamma: 0})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	// Gamma is ignored by the linear model.
	_, err = New(KindLogistic, Hyperparameters{C: 1, Gamma: 0})
	suite.NoError(err)
}

func (suite *ModelTestSuite) TestLogisticSeparable() {
	m := NewLogistic(Hyperparameters{C: 1})
	features, labels := separable()

	err := m.Fit(features, labels)
	suite.Require().NoError(err)

	up, err := m.PredictProb([]float64{2, 2})
	suite.Require().NoError(err)
	suite.Greater(up.Up, 0.9)
	suite.InDelta(1.0, up.Up+up.Down, 1e-12)

	down, err := m.PredictProb([]float64{-2, -2})
	suite.Require().NoError(err)
	suite.Less(down.Up, 0.1)
	suite.InDelta(1.0, down.Up+down.Down, 1e-12)
}

func (suite *ModelTestSuite) TestLogisticDeterministic() {
	features, labels := separable()

	first := NewLogistic(Hyperparameters{C: 1})
	suite.Require().NoError(first.Fit(features, labels))

	second := NewLogistic(Hyperparameters{C: 1})
	suite.Require().NoError(second.Fit(features, labels))

	vector := []float64{0.3, -0.7}

	p1, err := first.PredictProb(vector)
	suite.Require().NoError(err)

	p2, err := second.PredictProb(vector)
	suite.Require().NoError(err)

	suite.Equal(p1, p2)
}

func (suite *ModelTestSuite) TestKernelXor() {
	m := NewKernel(Hyperparameters{C: 10, Gamma: 2})
	features, labels := xor()

	err := m.Fit(features, labels)
	suite.Require().NoError(err)

	testCases := []struct {
		name   string
		vector []float64
		up     bool
	}{
		{name: "origin is down", vector: []float64{0, 0}, up: false},
		{name: "far corner is down", vector: []float64{1, 1}, up: false},
		{name: "right corner is up", vector: []float64{1, 0}, up: true},
		{name: "top corner is up", vector: []float64{0, 1}, up: true},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			p, err := m.PredictProb(tc.vector)
			suite.Require().NoError(err)

			if tc.up {
				suite.Greater(p.Up, 0.7)
			} else {
				suite.Less(p.Up, 0.3)
			}
		})
	}
}

func (suite *ModelTestSuite) TestKernelDeterministic() {
	features, labels := xor()

	first := NewKernel(Hyperparameters{C: 10, Gamma: 2})
	suite.Require().NoError(first.Fit(features, labels))

	second := NewKernel(Hyperparameters{C: 10, Gamma: 2})
	suite.Require().NoError(second.Fit(features, labels))

	p1, err := first.PredictProb([]float64{0.4, 0.6})
	suite.Require().NoError(err)

	p2, err := second.PredictProb([]float64{0.4, 0.6})
	suite.Require().NoError(err)

	suite.Equal(p1, p2)
}

// Single-class training sets must be accepted: a window where every period
// moved the same way still has to produce a usable model.
func (suite *ModelTestSuite) TestSingleClassTrainingSet() {
	features := mat.NewDense(4, 1, []float64{0.01, 0.02, 0.015, 0.03})
	labels := []int{1, 1, 1, 1}

	testCases := []struct {
		name       string
		classifier Classifier
	}{
		{name: "logistic", classifier: NewLogistic(Hyperparameters{C: 1})},
		{name: "kernel", classifier: NewKernel(Hyperparameters{C: 1, Gamma: 10})},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			err := tc.classifier.Fit(features, labels)
			suite.Require().NoError(err)

			p, err := tc.classifier.PredictProb([]float64{0.02})
			suite.Require().NoError(err)
			suite.Greater(p.Up, 0.9)
		})
	}
}

func (suite *ModelTestSuite) TestFitReplacesState() {
	m := NewLogistic(Hyperparameters{C: 1})
	features := mat.NewDense(4, 1, []float64{0.01, 0.02, 0.015, 0.03})

	suite.Require().NoError(m.Fit(features, []int{1, 1, 1, 1}))

	p, err := m.PredictProb([]float64{0.02})
	suite.Require().NoError(err)
	suite.Greater(p.Up, 0.9)

	suite.Require().NoError(m.Fit(features, []int{0, 0, 0, 0}))

	p, err = m.PredictProb([]float64{0.02})
	suite.Require().NoError(err)
	suite.Less(p.Up, 0.1)
}

func (suite *ModelTestSuite) TestFitCopiesInputs() {
	m := NewKernel(Hyperparameters{C: 10, Gamma: 2})
	features, labels := xor()

	suite.Require().NoError(m.Fit(features, labels))

	before, err := m.PredictProb([]float64{0.5, 0.5})
	suite.Require().NoError(err)

	// Mutating the caller's matrix must not affect the fitted model.
	features.Set(0, 0, 999)

	after, err := m.PredictProb([]float64{0.5, 0.5})
	suite.Require().NoError(err)
	suite.Equal(before, after)
}

func (suite *ModelTestSuite) TestFitInvalidInputs() {
	testCases := []struct {
		name     string
		features *mat.Dense
		labels   []int
	}{
		{name: "nil matrix", features: nil, labels: []int{1}},
		{name: "label count mismatch", features: mat.NewDense(3, 1, []float64{1, 2, 3}), labels: []int{1, 0}},
		{name: "non-finite feature", features: mat.NewDense(2, 1, []float64{1, math.NaN()}), labels: []int{1, 0}},
		{name: "label out of range", features: mat.NewDense(2, 1, []float64{1, 2}), labels: []int{1, 2}},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			logistic := NewLogistic(Hyperparameters{C: 1})
			err := logistic.Fit(tc.features, tc.labels)
			suite.Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeModelFit))

			kernel := NewKernel(Hyperparameters{C: 1, Gamma: 10})
			err = kernel.Fit(tc.features, tc.labels)
			suite.Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeModelFit))
		})
	}
}

func (suite *ModelTestSuite) TestPredictBeforeFit() {
	logistic := NewLogistic(Hyperparameters{C: 1})
	_, err := logistic.PredictProb([]float64{1})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeModelNotFitted))

	kernel := NewKernel(Hyperparameters{C: 1, Gamma: 10})
	_, err = kernel.PredictProb([]float64{1})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeModelNotFitted))
}

func (suite *ModelTestSuite) TestPredictDimensionMismatch() {
	m := NewLogistic(Hyperparameters{C: 1})
	features, labels := separable()
	suite.Require().NoError(m.Fit(features, labels))

	_, err := m.PredictProb([]float64{1, 2, 3})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDimensionMismatch))
}

func (suite *ModelTestSuite) TestPredictNonFiniteVector() {
	m := NewLogistic(Hyperparameters{C: 1})
	features, labels := separable()
	suite.Require().NoError(m.Fit(features, labels))

	_, err := m.PredictProb([]float64{1, math.Inf(1)})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}
