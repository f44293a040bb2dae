package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Artifact drivers.
const (
	ArtifactDriverFile  = "file"
	ArtifactDriverRedis = "redis"
)

// DefaultSeed is used when training.seed is absent from the config file.
const DefaultSeed int64 = 42

// Config holds the reportscore configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Artifact ArtifactConfig `yaml:"artifact"`
	Database DatabaseConfig `yaml:"database"`
	Training TrainingConfig `yaml:"training"`
	Corpus   CorpusConfig   `yaml:"corpus"`
	Usage    UsageConfig    `yaml:"usage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int   `yaml:"port"`
	ReadTimeoutSec  int   `yaml:"read_timeout_sec"`
	WriteTimeoutSec int   `yaml:"write_timeout_sec"`
	ShutdownSec     int   `yaml:"shutdown_timeout_sec"`
	MaxBodyBytes    int64 `yaml:"max_body_bytes"`
}

// ArtifactConfig selects where the trained model is stored.
type ArtifactConfig struct {
	Driver string `yaml:"driver"` // file, redis (default: file)
	Path   string `yaml:"path"`   // file driver
	Key    string `yaml:"key"`    // redis driver
}

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// TrainingConfig holds partition and forest hyperparameters.
type TrainingConfig struct {
	TestFraction    float64 `yaml:"test_fraction"`
	Seed            int64   `yaml:"seed"`
	TreeCount       int     `yaml:"tree_count"`
	MaxDepth        int     `yaml:"max_depth"`         // 0 = unlimited
	MinSamplesSplit int     `yaml:"min_samples_split"` // default 2
	MaxFeatures     int     `yaml:"max_features"`      // 0 = ceil(sqrt(vocabulary))
	Parallelism     int     `yaml:"parallelism"`       // 0 = GOMAXPROCS
}

// CorpusConfig locates the labeled training corpus.
type CorpusConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // csv, jsonl, or empty to detect by extension
}

// UsageConfig controls verdict counters.
type UsageConfig struct {
	Enabled        bool `yaml:"enabled"`
	DailyTTLHours  int  `yaml:"daily_ttl_hours"`
	MonthlyTTLDays int  `yaml:"monthly_ttl_days"`
}

// NeedsDatabase reports whether any component talks to Redis.
func (c *Config) NeedsDatabase() bool {
	return c.Artifact.Driver == ArtifactDriverRedis || c.Usage.Enabled
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	cfg := Config{Training: TrainingConfig{Seed: DefaultSeed}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
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
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 1 << 20
	}
	if c.Artifact.Driver == "" {
		c.Artifact.Driver = ArtifactDriverFile
	}
	if c.Artifact.Path == "" {
		c.Artifact.Path = "data/model.rsca"
	}
	if c.Artifact.Key == "" {
		c.Artifact.Key = "reportscore:artifact:current"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Training.TestFraction <= 0 {
		c.Training.TestFraction = 0.2
	}
	if c.Training.TreeCount <= 0 {
		c.Training.TreeCount = 100
	}
	if c.Training.MinSamplesSplit <= 0 {
		c.Training.MinSamplesSplit = 2
	}
	if c.Corpus.Path == "" {
		c.Corpus.Path = "data/real_reports.csv"
	}
	if c.Usage.DailyTTLHours <= 0 {
		c.Usage.DailyTTLHours = 48
	}
	if c.Usage.MonthlyTTLDays <= 0 {
		c.Usage.MonthlyTTLDays = 62
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Artifact.Driver {
	case ArtifactDriverFile, ArtifactDriverRedis:
	default:
		return fmt.Errorf("artifact.driver must be %q or %q, got %q",
			ArtifactDriverFile, ArtifactDriverRedis, c.Artifact.Driver)
	}
	if c.NeedsDatabase() && len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required for the redis artifact driver or usage counters")
	}
	if c.Training.TestFraction >= 1 {
		return fmt.Errorf("training.test_fraction must be in (0, 1), got %v", c.Training.TestFraction)
	}
	if c.Training.MaxDepth < 0 || c.Training.MaxFeatures < 0 || c.Training.Parallelism < 0 {
		return fmt.Errorf("training.max_depth, max_features and parallelism must be >= 0")
	}
	if c.Training.MinSamplesSplit < 2 {
		return fmt.Errorf("training.min_samples_split must be >= 2, got %d", c.Training.MinSamplesSplit)
	}
	switch strings.ToLower(c.Corpus.Format) {
	case "", "csv", "jsonl", "json", "ndjson":
	default:
		return fmt.Errorf("corpus.format must be csv or jsonl, got %q", c.Corpus.Format)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
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
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
