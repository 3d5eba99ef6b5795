// Package config loads static startup defaults for the engine from an
// optional YAML file. It never competes with UCI `setoption`: once the
// engine is running, `setoption` is the sole source of runtime-tunable
// truth. This package only supplies the values the binary starts with
// before any `setoption` has been seen.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the static defaults read from engine.yaml.
type Config struct {
	HashMB       int    `yaml:"hash_mb"`
	LogLevel     string `yaml:"log_level"`
	EngineAuthor string `yaml:"engine_author"`
	EngineName   string `yaml:"engine_name"`
	MagicSeed    uint64 `yaml:"magic_seed"`
}

// Default returns the built-in defaults used when no config file is
// present or a field is left unset in it.
func Default() Config {
	return Config{
		HashMB:       16,
		LogLevel:     "info",
		EngineAuthor: "chessplay",
		EngineName:   "chessplay-uci",
		MagicSeed:    0x9E3779B97F4A7C15,
	}
}

// Load reads path, overlaying its fields onto Default(). A missing file
// is not an error: it simply yields the defaults. Any other read or
// parse error is returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
