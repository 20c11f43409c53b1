// Package feature defines the derived conditions the classifier is trained
// on. A feature reads one or more bars from a dataset and reduces them to a
// single number; the engine assembles the configured features into
// fixed-position vectors, so feature ordering is significant.
package feature

import (
	"github.com/augurlab/augur/internal/dataset"
)

// Type identifies a feature expression by name.
type Type string

const (
	TypeHighOpenGap    Type = "high_open_gap"
	TypeLowOpenGap     Type = "low_open_gap"
	TypeIntradayReturn Type = "intraday_return"
	TypeRangeRatio     Type = "range_ratio"
	TypeDailyReturn    Type = "daily_return"
	TypeVolumeChange   Type = "volume_change"
)

// Feature interface defines methods that any derived condition must implement
type Feature interface {
	// Name returns the identifier used in run configurations
	Name() Type
	// Lookback returns the number of prior bars the computation requires
	Lookback() int
	// Value computes the feature at index i. Must be deterministic and
	// side-effect free.
	Value(d *dataset.Dataset, i int) (float64, error)
}
