// Package config assembles server settings from defaults, an optional
// TOML file, and environment variables, in that order of precedence
// (later wins). A .env file in the working directory is loaded first.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds server settings.
type Config struct {
	// Addr is the listen address, e.g. ":5000".
	Addr string `toml:"addr"`
	// DataDir holds users.json, todos.json, and sessions.json.
	DataDir string `toml:"data_dir"`
	// StaticDir holds the front-end page served at /.
	StaticDir string `toml:"static_dir"`
	// BcryptCost tunes password hashing; values below bcrypt's minimum
	// fall back to the library default.
	BcryptCost int `toml:"bcrypt_cost"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:       ":5000",
		DataDir:    "data",
		StaticDir:  "static",
		BcryptCost: 10,
	}
}

// Load builds the effective configuration. TODO_CONFIG names the TOML
// file to read; otherwise "todo.toml" is used when present. A missing
// file is not an error, a malformed one is.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	path := os.Getenv("TODO_CONFIG")
	if path == "" {
		path = "todo.toml"
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TODO_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("TODO_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("TODO_STATIC_DIR"); v != "" {
		cfg.StaticDir = v
	}
	if v := os.Getenv("TODO_BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BcryptCost = n
		}
	}
}
