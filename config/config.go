// Package config loads the dashboard settings from YAML.
//
// Every field has a default, so an empty or missing file yields a working
// configuration that reads the public cancer mortality sources.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/vizdash/frame"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

const (
	DefaultDeathsURL     = "https://raw.githubusercontent.com/hms-dbmi/bmi706-2022/main/cancer_data/cancer_ICD10.csv"
	DefaultPopulationURL = "https://raw.githubusercontent.com/hms-dbmi/bmi706-2022/main/cancer_data/population.csv"
)

// Config is the root of the YAML document.
type Config struct {
	Log    LogConfig    `json:"log" yaml:"log"`
	HTTP   HTTPConfig   `json:"http" yaml:"http"`
	Cancer CancerConfig `json:"cancer" yaml:"cancer"`
	Survey SurveyConfig `json:"survey" yaml:"survey"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `json:"format" yaml:"format" validate:"oneof=text json"`
}

// HTTPConfig bounds remote source reads.
type HTTPConfig struct {
	Timeout time.Duration `json:"timeout" yaml:"timeout" validate:"gt=0"`
}

// FillConfig is the gap-fill policy applied after a join.
type FillConfig struct {
	Direction string `json:"direction" yaml:"direction" validate:"filldir"`
	OrderBy   string `json:"order_by" yaml:"order_by"`
}

// CancerConfig locates the mortality and population sources.
type CancerConfig struct {
	DeathsURL        string     `json:"deaths_url" yaml:"deaths_url" validate:"required"`
	PopulationURL    string     `json:"population_url" yaml:"population_url" validate:"required"`
	Fill             FillConfig `json:"fill" yaml:"fill"`
	DefaultCountries []string   `json:"default_countries" yaml:"default_countries" validate:"dive,required"`
}

// SurveyConfig lists the survey extract files, concatenated in order.
type SurveyConfig struct {
	Files []string `json:"files" yaml:"files" validate:"dive,required"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("filldir", validateFillDirection); err != nil {
		panic(fmt.Sprintf("config: register filldir validation: %v", err))
	}
}

func validateFillDirection(fl validator.FieldLevel) bool {
	_, err := frame.ParseFillDirection(fl.Field().String())
	return err == nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:  LogConfig{Level: "info", Format: "text"},
		HTTP: HTTPConfig{Timeout: 30 * time.Second},
		Cancer: CancerConfig{
			DeathsURL:     DefaultDeathsURL,
			PopulationURL: DefaultPopulationURL,
			Fill:          FillConfig{Direction: string(frame.FillBackward)},
			DefaultCountries: []string{
				"Austria", "Germany", "Iceland", "Spain", "Sweden", "Thailand", "Turkey",
			},
		},
		Survey: SurveyConfig{Files: []string{"data/survey_extract.csv"}},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// SlogLevel maps Log.Level to a slog level.
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FillSpec builds the frame fill for column within groupBy.
func (c FillConfig) FillSpec(column string, groupBy ...string) frame.FillSpec {
	dir, err := frame.ParseFillDirection(c.Direction)
	if err != nil {
		dir = frame.FillBackward
	}
	return frame.FillSpec{Column: column, GroupBy: groupBy, Direction: dir, OrderBy: c.OrderBy}
}
