package config

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no config path is
// given.
const DefaultFile = "matlang.yml"

// Config is the contents of matlang.yml.
type Config struct {
	Print  PrintConfig  `yaml:"print"`
	Limits LimitsConfig `yaml:"limits"`
	Log    LogConfig    `yaml:"log"`
}

type PrintConfig struct {
	// Separator is written between the items of a print statement.
	Separator string `yaml:"separator"`
	// FloatPrecision is the number of fractional digits for floats; -1
	// prints the shortest exact form.
	FloatPrecision int `yaml:"float_precision"`
}

type LimitsConfig struct {
	// MaxLoopIterations caps the iterations of a single loop; 0 disables it.
	MaxLoopIterations int `yaml:"max_loop_iterations"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Print: PrintConfig{Separator: " ", FloatPrecision: -1},
		Log:   LogConfig{Level: "warn"},
	}
}

// ValidationError aggregates config validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Load reads a config file. Fields missing from the file keep their
// defaults.
func Load(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: open %s", path)
	}
	defer file.Close()
	cfg, err := Decode(file)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: %s", path)
	}
	return cfg, nil
}

// LoadOptional loads path when it exists and returns the defaults
// otherwise.
func LoadOptional(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Decode parses YAML. Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return Default(), nil
		}
		return Config{}, errors.Wrap(err, "parse")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs ValidationError
	if c.Print.FloatPrecision < -1 {
		errs.Issues = append(errs.Issues, "print.float_precision must be -1 or greater")
	}
	if c.Limits.MaxLoopIterations < 0 {
		errs.Issues = append(errs.Issues, "limits.max_loop_iterations must not be negative")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs.Issues = append(errs.Issues, "log.level must be one of debug, info, warn, error")
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}
