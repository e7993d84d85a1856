package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g.
// RECOMMENDER_ENGINE_TOP_K=5 sets engine.top_k.
const EnvPrefix = "RECOMMENDER_"

// CatalogConfig locates the catalog. An empty path selects the bundled sample.
type CatalogConfig struct {
	Path string `koanf:"path" yaml:"path"`
}

// EngineConfig tunes index construction and ranking.
type EngineConfig struct {
	Iterations     int     `koanf:"iterations" yaml:"iterations" validate:"gt=0,lte=10000"`
	Tolerance      float64 `koanf:"tolerance" yaml:"tolerance" validate:"gt=0"`
	MetadataWeight float64 `koanf:"metadata_weight" yaml:"metadata_weight" validate:"gt=0,lte=1"`
	TopK           int     `koanf:"top_k" yaml:"top_k" validate:"gt=0,lte=100"`
	Seed           int64   `koanf:"seed" yaml:"seed"`
	WarmOnStart    bool    `koanf:"warm_on_start" yaml:"warm_on_start"`
}

// ServerConfig configures the HTTP boundary.
type ServerConfig struct {
	Addr         string        `koanf:"addr" yaml:"addr" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" yaml:"write_timeout" validate:"gte=0"`
	// RateLimit is requests per minute per client IP; 0 disables limiting.
	RateLimit int `koanf:"rate_limit" yaml:"rate_limit" validate:"gte=0"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level" yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error disabled off"`
	Format string `koanf:"format" yaml:"format" validate:"omitempty,oneof=json console"`
}

// TUIConfig configures the terminal browser.
type TUIConfig struct {
	PlotSentences int `koanf:"plot_sentences" yaml:"plot_sentences" validate:"gt=0,lte=20"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Catalog CatalogConfig `koanf:"catalog" yaml:"catalog"`
	Engine  EngineConfig  `koanf:"engine" yaml:"engine"`
	Server  ServerConfig  `koanf:"server" yaml:"server"`
	Logging LoggingConfig `koanf:"logging" yaml:"logging"`
	TUI     TUIConfig     `koanf:"tui" yaml:"tui"`
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		Engine: EngineConfig{
			Iterations:     60,
			Tolerance:      1e-6,
			MetadataWeight: 0.35,
			TopK:           10,
			Seed:           42,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit:    120,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		TUI:     TUIConfig{PlotSentences: 2},
	}
}

// Load layers defaults, the YAML file at path and RECOMMENDER_* environment
// variables, in that order. A missing file leaves the defaults in place.
func Load(path string) (*AppConfig, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), koanfyaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &AppConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/recommender/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err != nil {
		if err := Save(userPath, Default()); err != nil {
			return nil, "", err
		}
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks field constraints.
func (c *AppConfig) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "recommender", "config.yaml"), nil
}

// envKey maps RECOMMENDER_ENGINE_TOP_K to engine.top_k. Keys without a
// section are dropped.
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, field, ok := strings.Cut(key, "_")
	if !ok || field == "" {
		return ""
	}
	return section + "." + field
}
