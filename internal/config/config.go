package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"summoning_go/internal/ai"
	"summoning_go/internal/game"
)

// Environment variables read by LoadEnv.
const (
	EnvConfigPath = "SUMMONING_CONFIG"
	EnvDBPath     = "SUMMONING_DB"
	EnvLogLevel   = "SUMMONING_LOG_LEVEL"
)

// Config holds all tunable settings.
type Config struct {
	Generator GeneratorConfig `yaml:"generator"`
	AI        AIConfig        `yaml:"ai"`
	SelfPlay  SelfPlayConfig  `yaml:"selfplay"`
	Log       LogConfig       `yaml:"log"`
}

// GeneratorConfig holds board generation settings
type GeneratorConfig struct {
	DiskRadius      float64 `yaml:"disk_radius"`
	BlockNum        int     `yaml:"block_num"`
	BlockDen        int     `yaml:"block_den"`
	CellsPerPlayer  int     `yaml:"cells_per_player"`
	ErosionAttempts int     `yaml:"erosion_attempts"`
	StartPower      int     `yaml:"start_power"`
	Obstacles       string  `yaml:"obstacles"` // uniform | noise
	NoiseFrequency  float64 `yaml:"noise_frequency"`
	NoiseThreshold  float64 `yaml:"noise_threshold"`
}

// AIConfig holds move selection settings
type AIConfig struct {
	Workers   int     `yaml:"workers"`
	KeepRatio float64 `yaml:"keep_ratio"`
	MinKeep   int     `yaml:"min_keep"`
	MaxKeep   int     `yaml:"max_keep"`
	Epsilon   int64   `yaml:"epsilon"`
	CacheSize int     `yaml:"cache_size"`
}

// SelfPlayConfig holds batch self-play settings
type SelfPlayConfig struct {
	Games   int      `yaml:"games"`
	Seats   []string `yaml:"seats"`
	Seed    int64    `yaml:"seed"`
	DBPath  string   `yaml:"db_path"`
	Dataset string   `yaml:"dataset"`
	Workers int      `yaml:"workers"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given, and the
// base that Load reads a file over.
func Default() *Config {
	g := game.DefaultGenConfig()
	a := ai.DefaultConfig()
	return &Config{
		Generator: GeneratorConfig{
			DiskRadius:      g.DiskRadius,
			BlockNum:        g.BlockNum,
			BlockDen:        g.BlockDen,
			CellsPerPlayer:  g.CellsPerPlayer,
			ErosionAttempts: g.ErosionAttempts,
			StartPower:      g.StartPower,
			Obstacles:       string(g.Obstacles),
			NoiseFrequency:  g.NoiseFrequency,
			NoiseThreshold:  g.NoiseThreshold,
		},
		AI: AIConfig{
			Workers:   a.Workers,
			KeepRatio: a.KeepRatio,
			MinKeep:   a.MinKeep,
			MaxKeep:   a.MaxKeep,
			Epsilon:   a.Epsilon,
			CacheSize: 1 << 16,
		},
		SelfPlay: SelfPlayConfig{
			Games:   100,
			Seats:   []string{"ai", "ai", "off", "off"},
			DBPath:  "data/selfplay.db",
			Workers: 1,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Keys missing from the file keep their defaults; keys present keep
	// their value, zero included.
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv loads a .env file if one exists, then reads the config file
// named by SUMMONING_CONFIG (or fallback) and applies the remaining
// environment overrides. A missing config file means defaults.
func LoadEnv(fallback string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	path := os.Getenv(EnvConfigPath)
	if path == "" {
		path = fallback
	}

	var cfg *Config
	var err error
	if path != "" {
		cfg, err = Load(path)
		if errors.Is(err, fs.ErrNotExist) && os.Getenv(EnvConfigPath) == "" {
			slog.Info("no config file, using defaults", "path", path)
			cfg, err = Default(), nil
		}
		if err != nil {
			return nil, err
		}
	} else {
		cfg = Default()
	}

	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.SelfPlay.DBPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("after environment overrides: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the generator or AI cannot run with.
func (c *Config) Validate() error {
	g := c.Generator
	switch {
	case g.BlockDen <= 0 || g.BlockNum < 0 || g.BlockNum > g.BlockDen:
		return fmt.Errorf("invalid obstacle chance %d/%d", g.BlockNum, g.BlockDen)
	case g.CellsPerPlayer <= 0:
		return fmt.Errorf("cells_per_player must be positive, got %d", g.CellsPerPlayer)
	case g.ErosionAttempts < 0:
		return fmt.Errorf("erosion_attempts must not be negative, got %d", g.ErosionAttempts)
	case g.StartPower < 1:
		return fmt.Errorf("start_power must be at least 1, got %d", g.StartPower)
	case g.Obstacles != string(game.ObstaclesUniform) && g.Obstacles != string(game.ObstaclesNoise):
		return fmt.Errorf("unknown obstacles mode %q", g.Obstacles)
	case g.NoiseFrequency < 0:
		return fmt.Errorf("noise_frequency must not be negative, got %v", g.NoiseFrequency)
	case g.NoiseThreshold < 0 || g.NoiseThreshold > 1:
		return fmt.Errorf("noise_threshold must be within [0,1], got %v", g.NoiseThreshold)
	case c.AI.KeepRatio < 0 || c.AI.KeepRatio > 1:
		return fmt.Errorf("keep_ratio must be within [0,1], got %v", c.AI.KeepRatio)
	case c.SelfPlay.Games < 0:
		return fmt.Errorf("games must not be negative, got %d", c.SelfPlay.Games)
	case c.SelfPlay.Workers < 1:
		return fmt.Errorf("selfplay workers must be at least 1, got %d", c.SelfPlay.Workers)
	case len(c.SelfPlay.Seats) > game.MaxPlayers:
		return fmt.Errorf("at most %d seats, got %d", game.MaxPlayers, len(c.SelfPlay.Seats))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// GenConfig converts the generator section.
func (c *Config) GenConfig() game.GenConfig {
	g := c.Generator
	return game.GenConfig{
		DiskRadius:      g.DiskRadius,
		BlockNum:        g.BlockNum,
		BlockDen:        g.BlockDen,
		CellsPerPlayer:  g.CellsPerPlayer,
		ErosionAttempts: g.ErosionAttempts,
		StartPower:      g.StartPower,
		Obstacles:       game.ObstacleMode(g.Obstacles),
		NoiseFrequency:  g.NoiseFrequency,
		NoiseThreshold:  g.NoiseThreshold,
	}
}

// AIConfig converts the ai section.
func (c *Config) AIConfig() ai.Config {
	return ai.Config{
		Workers:   c.AI.Workers,
		KeepRatio: c.AI.KeepRatio,
		MinKeep:   c.AI.MinKeep,
		MaxKeep:   c.AI.MaxKeep,
		Epsilon:   c.AI.Epsilon,
	}
}

// ParseLevel maps a level name onto slog.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
