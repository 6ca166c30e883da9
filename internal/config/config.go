// Package config loads the TOML configuration with sensible defaults for
// every field, so a missing file still yields a playable game.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	City     CityConfig     `toml:"city"`
	Engine   EngineConfig   `toml:"engine"`
	API      APIConfig      `toml:"api"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
}

type CityConfig struct {
	Name       string `toml:"name"`
	Difficulty string `toml:"difficulty"` // easy, normal, hard
	Seed       int64  `toml:"seed"`       // 0 = derive from wall clock
}

type EngineConfig struct {
	Speed           string `toml:"speed"` // slow, normal, fast, ultra_fast
	AutosaveMinutes int    `toml:"autosave_minutes"`
}

type APIConfig struct {
	Port     int    `toml:"port"`
	AdminKey string `toml:"admin_key"` // empty = POST endpoints disabled
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

func defaults() *Config {
	return &Config{
		City: CityConfig{
			Name:       "Energyville",
			Difficulty: "normal",
		},
		Engine: EngineConfig{
			Speed:           "normal",
			AutosaveMinutes: 5,
		},
		API: APIConfig{
			Port: 8080,
		},
		Database: DatabaseConfig{
			Path: "energyville.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the config at path; a missing file yields pure defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// StartingMoney maps the difficulty to the opening treasury.
func (c *Config) StartingMoney() float64 {
	switch c.City.Difficulty {
	case "easy":
		return 100000
	case "hard":
		return 50000
	default:
		return 75000
	}
}
