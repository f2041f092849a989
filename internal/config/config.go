package config

// Config is the complete codescout configuration.
// It can be loaded from .codescout/config.yml with environment variable
// overrides.
type Config struct {
	Index   IndexConfig `yaml:"index" mapstructure:"index"`
	Verbose bool        `yaml:"verbose" mapstructure:"verbose"`
}

// IndexConfig configures the code index subsystem.
type IndexConfig struct {
	DBPath     string   `yaml:"db_path" mapstructure:"db_path"`       // store file, relative to the project root
	Extensions []string `yaml:"extensions" mapstructure:"extensions"` // allow-list; empty means every recognized extension
	Ignore     []string `yaml:"ignore" mapstructure:"ignore"`         // extra ignore globs on top of the baseline set
}

// DefaultDBPath is the store location relative to the project root.
const DefaultDBPath = ".codescout/code_index.db"

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Index: IndexConfig{
			DBPath:     DefaultDBPath,
			Extensions: []string{},
			Ignore:     []string{},
		},
		Verbose: false,
	}
}
