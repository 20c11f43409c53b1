package feature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/augurlab/augur/internal/dataset"
	"github.com/augurlab/augur/pkg/errors"
)

type FeatureTestSuite struct {
	suite.Suite
	ds *dataset.Dataset
}

func TestFeatureSuite(t *testing.T) {
	suite.Run(t, new(FeatureTestSuite))
}

func (suite *FeatureTestSuite) SetupTest() {
	day := func(d int) time.Time {
		return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
	}

	bars := []dataset.Bar{
		{Time: day(1), Open: 100, High: 104, Low: 98, Close: 100, Volume: 1000},
		{Time: day(2), Open: 101, High: 105, Low: 99, Close: 103, Volume: 1100},
		{Time: day(3), Open: 103, High: 103, Low: 101, Close: 102, Volume: 990},
		{Time: day(4), Open: 102, High: 106, Low: 102, Close: 106, Volume: 1500},
		{Time: day(5), Open: 106, High: 107, Low: 104, Close: 105, Volume: 1400},
		{Time: day(6), Open: 105, High: 108, Low: 103, Close: 107, Volume: 1600},
	}

	ds, err := dataset.New("TEST", bars)
	suite.Require().NoError(err)
	suite.ds = ds
}

func (suite *FeatureTestSuite) TestBuiltinValues() {
	testCases := []struct {
		name     string
		feature  Feature
		index    int
		expected float64
	}{
		{name: "high open gap", feature: NewHighOpenGap(), index: 1, expected: 4.0},
		{name: "low open gap", feature: NewLowOpenGap(), index: 1, expected: -2.0},
		{name: "intraday return", feature: NewIntradayReturn(), index: 1, expected: 2.0 / 101.0},
		{name: "range ratio", feature: NewRangeRatio(), index: 1, expected: 6.0 / 101.0},
		{name: "daily return", feature: NewDailyReturn(), index: 1, expected: 0.03},
		{name: "volume change", feature: NewVolumeChange(), index: 1, expected: 0.1},
		{name: "momentum over two bars", feature: NewMomentum(2), index: 2, expected: 0.02},
		{name: "momentum over five bars", feature: NewMomentum(5), index: 5, expected: 0.07},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			value, err := tc.feature.Value(suite.ds, tc.index)
			suite.Require().NoError(err)
			suite.InDelta(tc.expected, value, 1e-12)
		})
	}
}

func (suite *FeatureTestSuite) TestLookbacks() {
	suite.Equal(0, NewHighOpenGap().Lookback())
	suite.Equal(0, NewLowOpenGap().Lookback())
	suite.Equal(0, NewIntradayReturn().Lookback())
	suite.Equal(0, NewRangeRatio().Lookback())
	suite.Equal(1, NewDailyReturn().Lookback())
	suite.Equal(1, NewVolumeChange().Lookback())
	suite.Equal(3, NewMomentum(3).Lookback())
}

func (suite *FeatureTestSuite) TestMomentumPeriodClamped() {
	feature := NewMomentum(0)
	suite.Equal(1, feature.Lookback())
	suite.Equal(Type("momentum_1"), feature.Name())
}

func (suite *FeatureTestSuite) TestInsufficientLookback() {
	testCases := []struct {
		name    string
		feature Feature
		index   int
	}{
		{name: "daily return at first bar", feature: NewDailyReturn(), index: 0},
		{name: "volume change at first bar", feature: NewVolumeChange(), index: 0},
		{name: "momentum three at second bar", feature: NewMomentum(3), index: 2},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			_, err := tc.feature.Value(suite.ds, tc.index)
			suite.Error(err)
			suite.True(errors.IsInsufficientDataError(err))
		})
	}
}

func (suite *FeatureTestSuite) TestOutOfRangeIndex() {
	testCases := []struct {
		name  string
		index int
	}{
		{name: "negative index", index: -1},
		{name: "index past length", index: 6},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			_, err := NewHighOpenGap().Value(suite.ds, tc.index)
			suite.Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeDataBounds))
		})
	}
}

func (suite *FeatureTestSuite) TestZeroDenominatorGuards() {
	day := func(d int) time.Time {
		return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
	}

	bars := []dataset.Bar{
		{Time: day(1), Open: 0, High: 1, Low: 0, Close: 0, Volume: 0},
		{Time: day(2), Open: 0, High: 2, Low: 0, Close: 1, Volume: 10},
	}

	ds, err := dataset.New("TEST", bars)
	suite.Require().NoError(err)

	testCases := []struct {
		name    string
		feature Feature
		index   int
	}{
		{name: "intraday return zero open", feature: NewIntradayReturn(), index: 0},
		{name: "range ratio zero open", feature: NewRangeRatio(), index: 0},
		{name: "daily return zero close", feature: NewDailyReturn(), index: 1},
		{name: "volume change zero volume", feature: NewVolumeChange(), index: 1},
		{name: "momentum zero close", feature: NewMomentum(1), index: 1},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			_, err := tc.feature.Value(ds, tc.index)
			suite.Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeFeatureCalculation))
		})
	}
}

type RegistryTestSuite struct {
	suite.Suite
	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) SetupTest() {
	suite.registry = NewRegistry()
}

func (suite *RegistryTestSuite) TestRegisterAndGet() {
	err := suite.registry.Register(NewDailyReturn())
	suite.Require().NoError(err)

	feature, err := suite.registry.Get(TypeDailyReturn)
	suite.Require().NoError(err)
	suite.Equal(TypeDailyReturn, feature.Name())
}

func (suite *RegistryTestSuite) TestRegisterDuplicate() {
	err := suite.registry.Register(NewDailyReturn())
	suite.Require().NoError(err)

	err = suite.registry.Register(NewDailyReturn())
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeFeatureAlreadyExists))
}

func (suite *RegistryTestSuite) TestGetMissing() {
	_, err := suite.registry.Get(Type("unknown"))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeFeatureNotFound))
}

func (suite *RegistryTestSuite) TestRemove() {
	err := suite.registry.Register(NewDailyReturn())
	suite.Require().NoError(err)

	err = suite.registry.Remove(TypeDailyReturn)
	suite.Require().NoError(err)

	_, err = suite.registry.Get(TypeDailyReturn)
	suite.Error(err)
}

func (suite *RegistryTestSuite) TestRemoveMissing() {
	err := suite.registry.Remove(Type("unknown"))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeFeatureNotFound))
}

func (suite *RegistryTestSuite) TestListSorted() {
	suite.Require().NoError(suite.registry.Register(NewVolumeChange()))
	suite.Require().NoError(suite.registry.Register(NewDailyReturn()))
	suite.Require().NoError(suite.registry.Register(NewHighOpenGap()))

	names := suite.registry.List()
	suite.Equal([]Type{TypeDailyReturn, TypeHighOpenGap, TypeVolumeChange}, names)
}

func (suite *RegistryTestSuite) TestResolvePreservesOrder() {
	registry := DefaultRegistry()

	features, err := registry.Resolve([]string{"low_open_gap", "high_open_gap", "daily_return"})
	suite.Require().NoError(err)
	suite.Require().Len(features, 3)
	suite.Equal(TypeLowOpenGap, features[0].Name())
	suite.Equal(TypeHighOpenGap, features[1].Name())
	suite.Equal(TypeDailyReturn, features[2].Name())
}

func (suite *RegistryTestSuite) TestResolveUnknownName() {
	registry := DefaultRegistry()

	_, err := registry.Resolve([]string{"daily_return", "nope"})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeFeatureNotFound))
}

func (suite *RegistryTestSuite) TestDefaultRegistry() {
	registry := DefaultRegistry()

	expected := []Type{
		TypeHighOpenGap,
		TypeLowOpenGap,
		TypeIntradayReturn,
		TypeRangeRatio,
		TypeDailyReturn,
		TypeVolumeChange,
		Type("momentum_2"),
		Type("momentum_3"),
		Type("momentum_5"),
	}

	for _, name := range expected {
		_, err := registry.Get(name)
		suite.NoError(err, "expected %s to be registered", name)
	}
}
