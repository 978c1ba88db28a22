package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/cellmaps/hierkit/pkg/hierdiff"
	"github.com/cellmaps/hierkit/pkg/ndex"
)

// Config holds the user-level settings read from the TOML config file.
// Every field has a working default, so a missing file is not an error.
type Config struct {
	// Threshold is the default Jaccard threshold for robustness scoring.
	Threshold float64 `toml:"threshold"`

	// Workers is the default parallelism for robustness scoring.
	// 0 means one worker per CPU.
	Workers int `toml:"workers"`

	NDEx  NDExConfig  `toml:"ndex"`
	Cache CacheConfig `toml:"cache"`
}

// NDExConfig selects the server networks are fetched from and stored to.
type NDExConfig struct {
	Host string `toml:"host"`
}

// CacheConfig controls the byte cache for fetched networks.
type CacheConfig struct {
	// Dir overrides the XDG cache directory.
	Dir string `toml:"dir"`

	// Disabled turns off caching entirely.
	Disabled bool `toml:"disabled"`

	// RedisAddr switches the serve command to a shared Redis cache.
	RedisAddr string `toml:"redis_addr"`
}

func defaultConfig() Config {
	return Config{
		Threshold: hierdiff.DefaultThreshold,
		NDEx:      NDExConfig{Host: ndex.DefaultHost},
	}
}

// configPath returns the config file location using XDG standard
// (~/.config/hierkit/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads the config file at path, or the default location when
// path is empty. A missing file yields the defaults; a malformed file is
// an error so typos don't silently fall back.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		p, err := configPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = hierdiff.DefaultThreshold
	}
	if cfg.NDEx.Host == "" {
		cfg.NDEx.Host = ndex.DefaultHost
	}
	return cfg, nil
}
