package main

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config holds optional defaults read from a TOML file. Flags override
// config values; missing files fall back to built-in defaults.
type Config struct {
	CMRURL    string `toml:"cmr_url"`
	TokenURL  string `toml:"token_url"`
	EDLHost   string `toml:"edl_host"`
	Provider  string `toml:"provider"`
	NetrcPath string `toml:"netrc_path"`
	Region    string `toml:"region"`
}

const defaultEDLHost = "urs.earthdata.nasa.gov"

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "cmr", "config.toml")
}

func loadConfig(path string) (*Config, error) {
	cfg := &Config{EDLHost: defaultEDLHost}

	if path == "" {
		path = defaultConfigPath()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.EDLHost == "" {
		cfg.EDLHost = defaultEDLHost
	}
	return cfg, nil
}
