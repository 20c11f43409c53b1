package walkforward

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v2"

	"github.com/augurlab/augur/internal/model"
	"github.com/augurlab/augur/pkg/errors"
)

// Config describes one walk-forward evaluation: which features form the
// vectors, the training and testing windows, the decision thresholds, and
// the classifier settings. Dates are calendar strings interpreted in
// Timezone; trainStart <= trainEnd and testStart <= testEnd must hold, while
// overlap between the two windows is deliberately not checked.
type Config struct {
	Features          []string              `yaml:"features" json:"features" jsonschema:"title=Features,description=Feature expressions in vector order,required" validate:"required,min=1,dive,required"`
	TrainStart        string                `yaml:"train_start" json:"train_start" jsonschema:"title=Train Start,description=First training date (2006-01-02 or RFC3339),required" validate:"required"`
	TrainEnd          string                `yaml:"train_end" json:"train_end" jsonschema:"title=Train End,description=Last training date,required" validate:"required"`
	TestStart         string                `yaml:"test_start" json:"test_start" jsonschema:"title=Test Start,description=First test date,required" validate:"required"`
	TestEnd           string                `yaml:"test_end" json:"test_end" jsonschema:"title=Test End,description=Last test date,required" validate:"required"`
	Timezone          string                `yaml:"timezone" json:"timezone" jsonschema:"title=Timezone,description=IANA timezone the dates are interpreted in,default=UTC"`
	BuyThreshold      float64               `yaml:"buy_threshold" json:"buy_threshold" jsonschema:"title=Buy Threshold,description=Minimum up-probability for a buy decision,minimum=0,maximum=1,default=0.65"`
	SellThreshold     float64               `yaml:"sell_threshold" json:"sell_threshold" jsonschema:"title=Sell Threshold,description=Minimum down-probability for a sell decision,minimum=0,maximum=1,default=0.65"`
	Model             model.Kind            `yaml:"model" json:"model" jsonschema:"title=Model,description=Classifier implementation,enum=logistic,enum=kernel,default=kernel"`
	Hyperparameters   model.Hyperparameters `yaml:"hyperparameters" json:"hyperparameters" jsonschema:"title=Hyperparameters"`
	ContinuedTraining bool                  `yaml:"continued_training" json:"continued_training" jsonschema:"title=Continued Training,description=Append each test outcome to the training set and refit,default=false"`
}

// Windows holds the parsed boundary instants of a config.
type Windows struct {
	TrainStart time.Time
	TrainEnd   time.Time
	TestStart  time.Time
	TestEnd    time.Time
	Location   *time.Location
}

// DefaultConfig returns a Config with the standard settings: both thresholds
// at 0.65, the kernel model with C=1 and Gamma=10, UTC dates, continued
// training off.
func DefaultConfig() Config {
	return Config{
		Timezone:          "UTC",
		BuyThreshold:      0.65,
		SellThreshold:     0.65,
		Model:             model.KindKernel,
		Hyperparameters:   model.DefaultHyperparameters(),
		ContinuedTraining: false,
	}
}

// TestConfig returns a valid configuration for the given feature list and
// windows, used by tests.
func TestConfig(features []string, trainStart, trainEnd, testStart, testEnd string) Config {
	config := DefaultConfig()
	config.Features = features
	config.TrainStart = trainStart
	config.TrainEnd = trainEnd
	config.TestStart = testStart
	config.TestEnd = testEnd

	return config
}

// UnmarshalYAML implements custom unmarshaling for Config so that omitted
// fields pick up the defaults while explicit zero values are kept.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain struct {
		Features          []string               `yaml:"features"`
		TrainStart        string                 `yaml:"train_start"`
		TrainEnd          string                 `yaml:"train_end"`
		TestStart         string                 `yaml:"test_start"`
		TestEnd           string                 `yaml:"test_end"`
		Timezone          *string                `yaml:"timezone"`
		BuyThreshold      *float64               `yaml:"buy_threshold"`
		SellThreshold     *float64               `yaml:"sell_threshold"`
		Model             *model.Kind            `yaml:"model"`
		Hyperparameters   *model.Hyperparameters `yaml:"hyperparameters"`
		ContinuedTraining bool                   `yaml:"continued_training"`
	}

	var p plain
	if err := unmarshal(&p); err != nil {
		return err
	}

	defaults := DefaultConfig()

	c.Features = p.Features
	c.TrainStart = p.TrainStart
	c.TrainEnd = p.TrainEnd
	c.TestStart = p.TestStart
	c.TestEnd = p.TestEnd
	c.ContinuedTraining = p.ContinuedTraining

	c.Timezone = defaults.Timezone
	if p.Timezone != nil {
		c.Timezone = *p.Timezone
	}

	c.BuyThreshold = defaults.BuyThreshold
	if p.BuyThreshold != nil {
		c.BuyThreshold = *p.BuyThreshold
	}

	c.SellThreshold = defaults.SellThreshold
	if p.SellThreshold != nil {
		c.SellThreshold = *p.SellThreshold
	}

	c.Model = defaults.Model
	if p.Model != nil {
		c.Model = *p.Model
	}

	c.Hyperparameters = defaults.Hyperparameters

	if p.Hyperparameters != nil {
		c.Hyperparameters = *p.Hyperparameters
		// Partial hyperparameter blocks keep the defaults for omitted values.
		if c.Hyperparameters.C == 0 {
			c.Hyperparameters.C = defaults.Hyperparameters.C
		}

		if c.Hyperparameters.Gamma == 0 {
			c.Hyperparameters.Gamma = defaults.Hyperparameters.Gamma
		}
	}

	return nil
}

// ParseConfig unmarshals and validates a YAML configuration.
func ParseConfig(raw string) (Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal([]byte(raw), &config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to unmarshal run configuration", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate checks the struct tags, the threshold ranges, the model kind, and
// that both windows parse and are ordered.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid run configuration", err)
	}

	if c.BuyThreshold < 0 || c.BuyThreshold > 1 {
		return errors.Newf(errors.ErrCodeInvalidThreshold, "buy threshold %v outside [0, 1]", c.BuyThreshold)
	}

	if c.SellThreshold < 0 || c.SellThreshold > 1 {
		return errors.Newf(errors.ErrCodeInvalidThreshold, "sell threshold %v outside [0, 1]", c.SellThreshold)
	}

	switch c.Model {
	case model.KindLogistic, model.KindKernel:
	default:
		return errors.Newf(errors.ErrCodeUnknownModel, "unknown model kind %q", c.Model)
	}

	windows, err := c.Windows()
	if err != nil {
		return err
	}

	if windows.TrainEnd.Before(windows.TrainStart) {
		return errors.Newf(errors.ErrCodeInvalidWindow,
			"train window is reversed: %s is after %s", c.TrainStart, c.TrainEnd)
	}

	if windows.TestEnd.Before(windows.TestStart) {
		return errors.Newf(errors.ErrCodeInvalidWindow,
			"test window is reversed: %s is after %s", c.TestStart, c.TestEnd)
	}

	return nil
}

// Location resolves the configured timezone, defaulting to UTC.
func (c *Config) Location() (*time.Location, error) {
	tz := c.Timezone
	if tz == "" {
		tz = "UTC"
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidTimezone, err, "unknown timezone %q", tz)
	}

	return loc, nil
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDate(value string, loc *time.Location) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errors.Newf(errors.ErrCodeInvalidDate,
		"cannot parse date %q, want 2006-01-02 or RFC3339", value)
}

// Windows parses the four boundary dates in the configured timezone.
func (c *Config) Windows() (Windows, error) {
	loc, err := c.Location()
	if err != nil {
		return Windows{}, err
	}

	trainStart, err := parseDate(c.TrainStart, loc)
	if err != nil {
		return Windows{}, err
	}

	trainEnd, err := parseDate(c.TrainEnd, loc)
	if err != nil {
		return Windows{}, err
	}

	testStart, err := parseDate(c.TestStart, loc)
	if err != nil {
		return Windows{}, err
	}

	testEnd, err := parseDate(c.TestEnd, loc)
	if err != nil {
		return Windows{}, err
	}

	return Windows{
		TrainStart: trainStart,
		TrainEnd:   trainEnd,
		TestStart:  testStart,
		TestEnd:    testEnd,
		Location:   loc,
	}, nil
}

// GenerateSchema generates a JSON schema for the Config
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
	}

	schema := reflector.Reflect(c)

	// Set schema metadata
	schema.Title = "walkforward-config"
	schema.Description = "Configuration schema for walk-forward evaluation runs"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the Config
func (c *Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
