package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/versecast/versecast/internal/renderer"
)

// Config is the structured deployment file: the render targets this engine
// keeps synchronized and the presentation defaults. Environment variables
// (addresses, credentials) live in cmd/server instead.
type Config struct {
	Renderers     []renderer.Settings `mapstructure:"renderers"`
	CitationStyle string              `mapstructure:"citation_style"`
}

// Load reads the deployment file. Path may be empty, in which case
// versecast.yaml is looked up in the working directory and /etc/versecast.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("versecast")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/versecast")
	}

	v.SetDefault("citation_style", "1,2-3.4; 5")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if len(cfg.Renderers) == 0 {
		return nil, fmt.Errorf("config %s: at least one renderer must be configured", v.ConfigFileUsed())
	}
	return &cfg, nil
}
