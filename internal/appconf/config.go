package appconf

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int `yaml:"port" validate:"gt=0,lte=65535"`
	RateLimit       int `yaml:"rateLimit" validate:"gte=0"`
	CompressionSize int `yaml:"compressionMinSize" validate:"gte=0"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json text"`
}

// DatasetConfig locates the station/line dataset.
type DatasetConfig struct {
	Dir            string        `yaml:"dir" validate:"required"`
	KeyStations    []string      `yaml:"keyStations" validate:"dive,required"`
	ReloadInterval time.Duration `yaml:"reloadInterval" validate:"gte=0"`
}

// SearchConfig holds route search limits.
type SearchConfig struct {
	MaxChanges    int           `yaml:"maxChanges" validate:"gte=0,lte=6"`
	MaxRoutes     int           `yaml:"maxRoutes" validate:"gte=1,lte=20"`
	Timeout       time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxIterations int           `yaml:"maxIterations" validate:"gt=0"`
}

// CacheConfig sizes the result cache tiers. An empty Dir disables the disk tier.
type CacheConfig struct {
	Dir             string        `yaml:"dir"`
	L1Size          int           `yaml:"l1Size" validate:"gt=0"`
	L2Size          int           `yaml:"l2Size" validate:"gtefield=L1Size"`
	DiskMaxBytes    int64         `yaml:"diskMaxBytes" validate:"gte=0"`
	CleanupInterval time.Duration `yaml:"cleanupInterval" validate:"gte=0"`
}

// Config holds all the configuration settings for the application.
type Config struct {
	Env     string        `yaml:"env" validate:"omitempty,oneof=development test production"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Dataset DatasetConfig `yaml:"dataset"`
	Search  SearchConfig  `yaml:"search"`
	Cache   CacheConfig   `yaml:"cache"`
}

// Environment returns the parsed Env value.
func (c Config) Environment() Environment {
	return EnvFlagToEnvironment(c.Env)
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Env: "development",
		Server: ServerConfig{
			Port:            4000,
			RateLimit:       100,
			CompressionSize: 1024,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Dataset: DatasetConfig{
			Dir: "data",
		},
		Search: SearchConfig{
			MaxChanges:    3,
			MaxRoutes:     3,
			Timeout:       10 * time.Second,
			MaxIterations: 10000,
		},
		Cache: CacheConfig{
			Dir:             "",
			L1Size:          256,
			L2Size:          2048,
			DiskMaxBytes:    50 << 20,
			CleanupInterval: 10 * time.Minute,
		},
	}
}

// Load reads the YAML file at path on top of Default, applies RAILNET_*
// environment overrides and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks struct tags on the whole configuration.
func Validate(cfg Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s(%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadDotEnv loads KEY=VALUE files into the process environment. Missing
// files are ignored; already-set variables win.
func LoadDotEnv(files ...string) error {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func applyEnv(cfg *Config) {
	cfg.Env = getEnv("RAILNET_ENV", cfg.Env)
	cfg.Server.Port = getEnvInt("RAILNET_PORT", cfg.Server.Port)
	cfg.Server.RateLimit = getEnvInt("RAILNET_RATE_LIMIT", cfg.Server.RateLimit)
	cfg.Logging.Level = getEnv("RAILNET_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("RAILNET_LOG_FORMAT", cfg.Logging.Format)
	cfg.Dataset.Dir = getEnv("RAILNET_DATA_DIR", cfg.Dataset.Dir)
	cfg.Cache.Dir = getEnv("RAILNET_CACHE_DIR", cfg.Cache.Dir)

	if keys := os.Getenv("RAILNET_KEY_STATIONS"); keys != "" {
		cfg.Dataset.KeyStations = nil
		for _, k := range strings.Split(keys, ",") {
			if k = strings.TrimSpace(k); k != "" {
				cfg.Dataset.KeyStations = append(cfg.Dataset.KeyStations, k)
			}
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
