package fiscalpanel

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds a run's settings. Values come from DefaultConfig, then the
// YAML config file, then FISCALPANEL_* environment variables, in that
// order; command-line flags are layered on top by the CLI.
type Config struct {
	// DataDir is the directory holding the local source files.
	DataDir string `yaml:"data_dir" env:"FISCALPANEL_DATA_DIR"`

	// OutputPath is where the final panel CSV is written.
	OutputPath string `yaml:"output_path" env:"FISCALPANEL_OUTPUT"`

	// ReferenceYear is the fixed year whose GDP denominates the rebased
	// percent-of-GDP series.
	ReferenceYear int `yaml:"reference_year" env:"FISCALPANEL_REFERENCE_YEAR"`

	// CutoffYear is the study window's last year; later observations are
	// dropped after derivation.
	CutoffYear int `yaml:"cutoff_year" env:"FISCALPANEL_CUTOFF_YEAR"`

	// AuditDB, when set, is the path of a SQLite database that receives
	// per-source snapshots and the final panel for post-hoc auditing.
	AuditDB string `yaml:"audit_db" env:"FISCALPANEL_AUDIT_DB"`

	// HTTPTimeout bounds each remote fetch. There is no retry.
	HTTPTimeout time.Duration `yaml:"http_timeout" env:"FISCALPANEL_HTTP_TIMEOUT"`

	// SourceOverrides replaces a named source's location (path or URL),
	// for runs against locally mirrored data.
	SourceOverrides map[string]string `yaml:"source_overrides"`
}

func DefaultConfig() Config {
	return Config{
		DataDir:       "data",
		OutputPath:    "panel.csv",
		ReferenceYear: 2005,
		CutoffYear:    2011,
		HTTPTimeout:   60 * time.Second,
	}
}

// LoadConfig reads path (if it exists) over the defaults, then applies
// environment overrides. A missing file is not an error; a malformed one
// is.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// defaults only
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("env overrides: %w", err)
	}
	return cfg, nil
}

func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (c Config) Validate() error {
	if c.ReferenceYear <= 0 {
		return fmt.Errorf("reference_year must be positive, got %d", c.ReferenceYear)
	}
	if c.CutoffYear <= 0 {
		return fmt.Errorf("cutoff_year must be positive, got %d", c.CutoffYear)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("output_path must be set")
	}
	return nil
}
