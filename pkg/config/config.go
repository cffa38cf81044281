// Package config loads clubmerge settings from a TOML file, a .env file and
// CLUBMERGE_* environment variables, in increasing order of precedence.
package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"clubmerge/pkg/engine"
	"clubmerge/pkg/report"
	"clubmerge/pkg/schema"
	"clubmerge/pkg/yearfmt"
)

// Environment overrides.
const (
	EnvLogLevel  = "CLUBMERGE_LOG_LEVEL"
	EnvLogFormat = "CLUBMERGE_LOG_FORMAT"
	EnvOutputDir = "CLUBMERGE_OUTPUT_DIR"
	EnvKeyFields = "CLUBMERGE_KEY_FIELDS"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = eris.New("invalid config")

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type InputConfig struct {
	Dir       string `toml:"dir"`
	Recursive bool   `toml:"recursive"`
}

type MergeConfig struct {
	KeyFields  []string            `toml:"key_fields"`
	ClubField  string              `toml:"club_field"`
	ClubsField string              `toml:"clubs_field"`
	ListFields []string            `toml:"list_fields"`
	Contact    schema.ContactRange `toml:"contact"`
}

type YearConfig struct {
	Field   string `toml:"field"`
	Century string `toml:"century"`
	// Rules replaces yearfmt.DefaultRules when non-empty.
	Rules []yearfmt.RuleSpec `toml:"rules"`
}

type OutputConfig struct {
	Dir     string   `toml:"dir"`
	Base    string   `toml:"base"`
	Formats []string `toml:"formats"`
}

type CheckConfig struct {
	Required            []string `toml:"required"`
	Important           []string `toml:"important"`
	MaxImportantMissing int      `toml:"max_important_missing"`
}

type Config struct {
	Log    LogConfig    `toml:"log"`
	Input  InputConfig  `toml:"input"`
	Merge  MergeConfig  `toml:"merge"`
	Year   YearConfig   `toml:"year"`
	Output OutputConfig `toml:"output"`
	Check  CheckConfig  `toml:"check"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Log:   LogConfig{Level: "info", Format: "console"},
		Input: InputConfig{Dir: "."},
		Merge: MergeConfig{
			KeyFields:  append([]string(nil), schema.DefaultKeyFields...),
			ClubField:  schema.FieldClub,
			ClubsField: schema.FieldClubs,
			ListFields: []string{schema.FieldSource},
			Contact:    schema.DefaultContactRange,
		},
		Year: YearConfig{
			Field:   schema.FieldGrade,
			Century: yearfmt.DefaultCentury,
		},
		Output: OutputConfig{
			Dir:     "output",
			Base:    "社团成员合并",
			Formats: []string{report.FormatXLSX, report.FormatMarkdown},
		},
		Check: CheckConfig{
			Required:            append([]string(nil), report.DefaultRequiredFields...),
			Important:           append([]string(nil), report.DefaultImportantFields...),
			MaxImportantMissing: report.DefaultMaxImportantMissing,
		},
	}
}

// Load reads path over the defaults, then applies the environment. An empty
// path skips the file. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to read config file '%s'", path)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, eris.Wrap(err, "failed to parse TOML")
		}
	}

	_ = godotenv.Load()
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from CLUBMERGE_* variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv(EnvKeyFields); v != "" {
		c.Merge.KeyFields = schema.SplitList(v)
	}
}

// Validate checks the settings and compiles the year rules once.
func (c *Config) Validate() error {
	if len(c.Merge.KeyFields) == 0 {
		return eris.Wrap(ErrInvalidConfig, "merge.key_fields is empty")
	}
	if c.Merge.ClubField == "" {
		return eris.Wrap(ErrInvalidConfig, "merge.club_field is empty")
	}
	r := c.Merge.Contact
	if r.MinDigits <= 0 || r.MaxDigits < r.MinDigits {
		return eris.Wrapf(ErrInvalidConfig, "merge.contact range %d..%d", r.MinDigits, r.MaxDigits)
	}
	for _, f := range c.Output.Formats {
		if !contains(report.Formats, f) {
			return eris.Wrapf(ErrInvalidConfig, "output.formats: unknown format %q", f)
		}
	}
	if _, err := c.Formatter(); err != nil {
		return eris.Wrapf(ErrInvalidConfig, "year.rules: %v", err)
	}
	return nil
}

// Formatter compiles the configured year rules.
func (c *Config) Formatter() (*yearfmt.Formatter, error) {
	rules := c.Year.Rules
	if len(rules) == 0 {
		rules = yearfmt.DefaultRules
	}
	return yearfmt.New(rules, c.Year.Century)
}

// EngineOptions builds merge options from the settings.
func (c *Config) EngineOptions(log *zap.Logger) (engine.Options, error) {
	years, err := c.Formatter()
	if err != nil {
		return engine.Options{}, err
	}
	opts := engine.DefaultOptions()
	opts.KeyFields = append([]string(nil), c.Merge.KeyFields...)
	opts.ClubField = c.Merge.ClubField
	opts.ClubsField = c.Merge.ClubsField
	opts.ListFields = append([]string(nil), c.Merge.ListFields...)
	opts.Contact = c.Merge.Contact
	opts.GradeField = c.Year.Field
	opts.Years = years
	opts.Logger = log
	return opts, nil
}

// Checker builds the completeness checker.
func (c *Config) Checker() *report.Checker {
	return &report.Checker{
		Required:            c.Check.Required,
		Important:           c.Check.Important,
		MaxImportantMissing: c.Check.MaxImportantMissing,
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
