package feature

import (
	"fmt"

	"github.com/augurlab/augur/internal/dataset"
	"github.com/augurlab/augur/pkg/errors"
)

// checkWindow validates that index i and its lookback window fall inside the
// dataset.
func checkWindow(d *dataset.Dataset, i, lookback int, name Type) error {
	if i < 0 || i >= d.Len() {
		return errors.Newf(errors.ErrCodeDataBounds,
			"%s: index %d out of range [0, %d) for symbol %s", name, i, d.Len(), d.Symbol())
	}

	if i-lookback < 0 {
		return errors.NewInsufficientDataErrorf(lookback+1, i+1, d.Symbol(),
			"%s: needs %d bars before index %d, have %d", name, lookback, i, i)
	}

	return nil
}

// HighOpenGap is the spread between the session high and the open.
type HighOpenGap struct{}

func NewHighOpenGap() Feature { return &HighOpenGap{} }

func (f *HighOpenGap) Name() Type    { return TypeHighOpenGap }
func (f *HighOpenGap) Lookback() int { return 0 }

func (f *HighOpenGap) Value(d *dataset.Dataset, i int) (float64, error) {
	if err := checkWindow(d, i, 0, f.Name()); err != nil {
		return 0, err
	}

	bar, err := d.At(i)
	if err != nil {
		return 0, err
	}

	return bar.High - bar.Open, nil
}

// LowOpenGap is the spread between the session low and the open, typically
// negative.
type LowOpenGap struct{}

func NewLowOpenGap() Feature { return &LowOpenGap{} }

func (f *LowOpenGap) Name() Type    { return TypeLowOpenGap }
func (f *LowOpenGap) Lookback() int { return 0 }

func (f *LowOpenGap) Value(d *dataset.Dataset, i int) (float64, error) {
	if err := checkWindow(d, i, 0, f.Name()); err != nil {
		return 0, err
	}

	bar, err := d.At(i)
	if err != nil {
		return 0, err
	}

	return bar.Low - bar.Open, nil
}

// IntradayReturn is the fractional move from open to close within one bar.
type IntradayReturn struct{}

func NewIntradayReturn() Feature { return &IntradayReturn{} }

func (f *IntradayReturn) Name() Type    { return TypeIntradayReturn }
func (f *IntradayReturn) Lookback() int { return 0 }

func (f *IntradayReturn) Value(d *dataset.Dataset, i int) (float64, error) {
	if err := checkWindow(d, i, 0, f.Name()); err != nil {
		return 0, err
	}

	bar, err := d.At(i)
	if err != nil {
		return 0, err
	}

	if bar.Open == 0 {
		return 0, errors.Newf(errors.ErrCodeFeatureCalculation,
			"%s: zero open at index %d for symbol %s", f.Name(), i, d.Symbol())
	}

	return (bar.Close - bar.Open) / bar.Open, nil
}

// RangeRatio is the bar's high-low range relative to the open.
type RangeRatio struct{}

func NewRangeRatio() Feature { return &RangeRatio{} }

func (f *RangeRatio) Name() Type    { return TypeRangeRatio }
func (f *RangeRatio) Lookback() int { return 0 }

func (f *RangeRatio) Value(d *dataset.Dataset, i int) (float64, error) {
	if err := checkWindow(d, i, 0, f.Name()); err != nil {
		return 0, err
	}

	bar, err := d.At(i)
	if err != nil {
		return 0, err
	}

	if bar.Open == 0 {
		return 0, errors.Newf(errors.ErrCodeFeatureCalculation,
			"%s: zero open at index %d for symbol %s", f.Name(), i, d.Symbol())
	}

	return (bar.High - bar.Low) / bar.Open, nil
}

// DailyReturn is the close-to-close fractional change from the prior bar.
type DailyReturn struct{}

func NewDailyReturn() Feature { return &DailyReturn{} }

func (f *DailyReturn) Name() Type    { return TypeDailyReturn }
func (f *DailyReturn) Lookback() int { return 1 }

func (f *DailyReturn) Value(d *dataset.Dataset, i int) (float64, error) {
	if err := checkWindow(d, i, 1, f.Name()); err != nil {
		return 0, err
	}

	prev, err := d.At(i - 1)
	if err != nil {
		return 0, err
	}

	cur, err := d.At(i)
	if err != nil {
		return 0, err
	}

	if prev.Close == 0 {
		return 0, errors.Newf(errors.ErrCodeFeatureCalculation,
			"%s: zero close at index %d for symbol %s", f.Name(), i-1, d.Symbol())
	}

	return (cur.Close - prev.Close) / prev.Close, nil
}

// VolumeChange is the fractional change in volume from the prior bar.
type VolumeChange struct{}

func NewVolumeChange() Feature { return &VolumeChange{} }

func (f *VolumeChange) Name() Type    { return TypeVolumeChange }
func (f *VolumeChange) Lookback() int { return 1 }

func (f *VolumeChange) Value(d *dataset.Dataset, i int) (float64, error) {
	if err := checkWindow(d, i, 1, f.Name()); err != nil {
		return 0, err
	}

	prev, err := d.At(i - 1)
	if err != nil {
		return 0, err
	}

	cur, err := d.At(i)
	if err != nil {
		return 0, err
	}

	if prev.Volume == 0 {
		return 0, errors.Newf(errors.ErrCodeFeatureCalculation,
			"%s: zero volume at index %d for symbol %s", f.Name(), i-1, d.Symbol())
	}

	return (cur.Volume - prev.Volume) / prev.Volume, nil
}

// Momentum is the fractional change in close over a configurable number of
// bars. Registered under the name "momentum_<period>".
type Momentum struct {
	period int
}

// NewMomentum creates a momentum feature over the given period. Periods
// below 1 are clamped to 1.
func NewMomentum(period int) Feature {
	if period < 1 {
		period = 1
	}

	return &Momentum{period: period}
}

func (f *Momentum) Name() Type {
	return Type(fmt.Sprintf("momentum_%d", f.period))
}

func (f *Momentum) Lookback() int { return f.period }

func (f *Momentum) Value(d *dataset.Dataset, i int) (float64, error) {
	if err := checkWindow(d, i, f.period, f.Name()); err != nil {
		return 0, err
	}

	base, err := d.At(i - f.period)
	if err != nil {
		return 0, err
	}

	cur, err := d.At(i)
	if err != nil {
		return 0, err
	}

	if base.Close == 0 {
		return 0, errors.Newf(errors.ErrCodeFeatureCalculation,
			"%s: zero close at index %d for symbol %s", f.Name(), i-f.period, d.Symbol())
	}

	return (cur.Close - base.Close) / base.Close, nil
}
