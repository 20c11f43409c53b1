// Package dataset provides the time-ordered bar container the walk-forward
// engine runs against, along with index resolution for window boundaries and
// the outcome computation used to label training samples.
package dataset

import (
	"sort"
	"time"

	"github.com/augurlab/augur/pkg/errors"
)

// Bar is a single OHLCV record.
type Bar struct {
	// Time is the timestamp of the bar
	Time time.Time
	// Open is the opening price
	Open float64
	// High is the highest price
	High float64
	// Low is the lowest price
	Low float64
	// Close is the closing price
	Close float64
	// Volume is the trading volume
	Volume float64
}

// Dataset is an immutable series of bars for one symbol, ordered by strictly
// increasing timestamps.
type Dataset struct {
	symbol string
	bars   []Bar
}

// New creates a Dataset after validating the symbol and the timestamp
// ordering. The bars slice is copied; later mutation of the argument does not
// affect the dataset.
func New(symbol string, bars []Bar) (*Dataset, error) {
	if symbol == "" {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "symbol cannot be empty")
	}

	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeEmptyDataset, "no bars provided for symbol %s", symbol)
	}

	for i := 1; i < len(bars); i++ {
		if !bars[i].Time.After(bars[i-1].Time) {
			return nil, errors.Newf(errors.ErrCodeUnorderedTimestamps,
				"bar %d (%s) is not after bar %d (%s) for symbol %s",
				i, bars[i].Time.Format(time.RFC3339), i-1, bars[i-1].Time.Format(time.RFC3339), symbol)
		}
	}

	copied := make([]Bar, len(bars))
	copy(copied, bars)

	return &Dataset{symbol: symbol, bars: copied}, nil
}

// Symbol returns the symbol the dataset belongs to.
func (d *Dataset) Symbol() string {
	return d.symbol
}

// Len returns the number of bars.
func (d *Dataset) Len() int {
	return len(d.bars)
}

// At returns the bar at index i.
func (d *Dataset) At(i int) (Bar, error) {
	if i < 0 || i >= len(d.bars) {
		return Bar{}, errors.Newf(errors.ErrCodeDataBounds,
			"index %d out of range [0, %d) for symbol %s", i, len(d.bars), d.symbol)
	}

	return d.bars[i], nil
}

// FloorIndex returns the largest index whose timestamp is at or before t.
// It fails when no bar exists at or before t.
func (d *Dataset) FloorIndex(t time.Time) (int, error) {
	if len(d.bars) == 0 {
		return 0, errors.New(errors.ErrCodeEmptyDataset, "cannot resolve index on empty dataset")
	}

	if t.Before(d.bars[0].Time) {
		return 0, errors.Newf(errors.ErrCodeDataBounds,
			"no data at or before %s for symbol %s (first bar is %s)",
			t.Format(time.RFC3339), d.symbol, d.bars[0].Time.Format(time.RFC3339))
	}

	// First index strictly after t, minus one.
	idx := sort.Search(len(d.bars), func(i int) bool {
		return d.bars[i].Time.After(t)
	})

	return idx - 1, nil
}

// CeilIndex returns the smallest index whose timestamp is at or after t,
// clamped to the final index when t is beyond the last bar.
func (d *Dataset) CeilIndex(t time.Time) (int, error) {
	if len(d.bars) == 0 {
		return 0, errors.New(errors.ErrCodeEmptyDataset, "cannot resolve index on empty dataset")
	}

	idx := sort.Search(len(d.bars), func(i int) bool {
		return !d.bars[i].Time.Before(t)
	})

	if idx == len(d.bars) {
		return len(d.bars) - 1, nil
	}

	return idx, nil
}

// PercentChange returns the fractional change of the close between index i-1
// and index i. Callers labeling the bar at index j query index j+1, so the
// label spans the period from j to the following bar.
func (d *Dataset) PercentChange(i int) (float64, error) {
	if i < 1 || i >= len(d.bars) {
		return 0, errors.Newf(errors.ErrCodeDataBounds,
			"percent change needs indices %d and %d inside [0, %d) for symbol %s",
			i-1, i, len(d.bars), d.symbol)
	}

	prev := d.bars[i-1].Close
	if prev == 0 {
		return 0, errors.Newf(errors.ErrCodeFeatureCalculation,
			"cannot compute percent change: zero close at index %d for symbol %s", i-1, d.symbol)
	}

	return (d.bars[i].Close - prev) / prev, nil
}

// Label converts an outcome change into a class: 1 for a positive change,
// 0 otherwise. Zero is class 0.
func Label(change float64) int {
	if change > 0 {
		return 1
	}

	return 0
}
