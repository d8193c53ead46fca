package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/streameval/internal/domain"
)

// Config holds the streameval configuration.
type Config struct {
	Run       RunConfig       `yaml:"run"`
	Transport TransportConfig `yaml:"transport"`
	Features  FeaturesConfig  `yaml:"features"`
	Labels    LabelsConfig    `yaml:"labels"`
	Models    []ModelConfig   `yaml:"models"`
	Inference InferenceConfig `yaml:"inference"`
	Report    ReportConfig    `yaml:"report"`
	HTTP      HTTPConfig      `yaml:"http"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// RunConfig sizes one reporting cycle.
type RunConfig struct {
	BatchSize    int `yaml:"batch_size"`
	TotalRecords int `yaml:"total_records"`
}

// TransportConfig selects the batch source.
type TransportConfig struct {
	Kind           string `yaml:"kind"` // tcp, stdin (default: tcp)
	Addr           string `yaml:"addr"`
	DialTimeoutSec int    `yaml:"dial_timeout_sec"`
	MaxLineBytes   int    `yaml:"max_line_bytes"`
}

// FeaturesConfig configures the hashing vectorizer.
type FeaturesConfig struct {
	NFeatures int    `yaml:"n_features"`
	Hash      string `yaml:"hash"` // murmur3, xxhash
	Norm      string `yaml:"norm"` // l2, none
}

// LabelsConfig configures label encoding.
type LabelsConfig struct {
	Mode  string   `yaml:"mode"` // global, per_batch (default: global)
	Known []string `yaml:"known"`
}

// ModelConfig points at one serialized model.
type ModelConfig struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Path      string `yaml:"path"`
	Alignment string `yaml:"alignment"` // none, majority
}

// InferenceConfig bounds parallel model inference.
type InferenceConfig struct {
	Workers int `yaml:"workers"`
}

// ReportConfig selects the summary sinks.
type ReportConfig struct {
	ChartDir    string      `yaml:"chart_dir"`
	ChartWidth  int         `yaml:"chart_width_cm"`
	ChartHeight int         `yaml:"chart_height_cm"`
	JSONDir     string      `yaml:"json_dir"`
	Redis       RedisConfig `yaml:"redis"`
}

// RedisConfig holds the optional pub/sub sink settings.
type RedisConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	Channel          string   `yaml:"channel"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether the Redis sink is configured.
func (r RedisConfig) Enabled() bool { return len(r.Addrs) > 0 }

// HTTPConfig holds status server settings. Port 0 disables the server.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML config data, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Run.BatchSize == 0 {
		c.Run.BatchSize = 100
	}
	if c.Run.TotalRecords == 0 {
		c.Run.TotalRecords = 3373
	}
	if c.Transport.Kind == "" {
		c.Transport.Kind = "tcp"
	}
	if c.Transport.Addr == "" {
		c.Transport.Addr = "localhost:6100"
	}
	if c.Transport.DialTimeoutSec <= 0 {
		c.Transport.DialTimeoutSec = 10
	}
	if c.Transport.MaxLineBytes <= 0 {
		c.Transport.MaxLineBytes = 16 << 20
	}
	if c.Features.NFeatures == 0 {
		c.Features.NFeatures = 1 << 20
	}
	if c.Features.Hash == "" {
		c.Features.Hash = "murmur3"
	}
	if c.Features.Norm == "" {
		c.Features.Norm = "l2"
	}
	if c.Labels.Mode == "" {
		c.Labels.Mode = "global"
	}
	if c.Inference.Workers <= 0 {
		c.Inference.Workers = runtime.GOMAXPROCS(0)
	}
	for i := range c.Models {
		if c.Models[i].Alignment == "" {
			c.Models[i].Alignment = string(domain.AlignNone)
		}
	}
	if c.Report.ChartWidth <= 0 {
		c.Report.ChartWidth = 20
	}
	if c.Report.ChartHeight <= 0 {
		c.Report.ChartHeight = 12
	}
	if c.Report.Redis.Channel == "" {
		c.Report.Redis.Channel = "streameval:summaries"
	}
	if c.Report.Redis.ReadinessTimeout <= 0 {
		c.Report.Redis.ReadinessTimeout = 10
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
}

// Validate checks the configuration. Every error wraps domain.ErrInvalidConfig.
func (c *Config) Validate() error {
	if _, err := domain.NewRunState(c.Run.TotalRecords, c.Run.BatchSize); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	switch c.Transport.Kind {
	case "tcp":
		if c.Transport.Addr == "" {
			return invalid("transport.addr is required for tcp")
		}
	case "stdin":
	default:
		return invalid("transport.kind must be \"tcp\" or \"stdin\", got %q", c.Transport.Kind)
	}
	if c.Features.NFeatures < 1 {
		return invalid("features.n_features must be positive, got %d", c.Features.NFeatures)
	}
	switch c.Labels.Mode {
	case "global", "per_batch":
	default:
		return invalid("labels.mode must be \"global\" or \"per_batch\", got %q", c.Labels.Mode)
	}
	if len(c.Models) == 0 {
		return invalid("at least one model is required")
	}
	seen := make(map[string]struct{}, len(c.Models))
	for i, m := range c.Models {
		if m.ID == "" {
			return invalid("models[%d].id is required", i)
		}
		if _, dup := seen[m.ID]; dup {
			return invalid("models[%d].id %q is duplicated", i, m.ID)
		}
		seen[m.ID] = struct{}{}
		if m.Path == "" {
			return invalid("models[%d].path is required", i)
		}
		switch domain.Alignment(m.Alignment) {
		case domain.AlignNone, domain.AlignMajority:
		default:
			return invalid("models[%d].alignment must be \"none\" or \"majority\", got %q", i, m.Alignment)
		}
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return invalid("http.port must be between 0 and 65535, got %d", c.HTTP.Port)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), domain.ErrInvalidConfig)
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// Relative to the source file, for tests run from package directories.
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b)))
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
