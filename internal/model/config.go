package model

// Config holds all runtime settings for an ingestion run
type Config struct {
	Input       InputConfig       `yaml:"input" mapstructure:"input"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Sample      SampleConfig      `yaml:"sample" mapstructure:"sample"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	FailFast    bool              `yaml:"fail_fast" mapstructure:"fail_fast"` // Abort the run on the first failed shard
}

// InputConfig locates shard files
type InputConfig struct {
	Dir        string   `yaml:"dir" mapstructure:"dir"`               // Directory of shard files (required)
	Extensions []string `yaml:"extensions" mapstructure:"extensions"` // Matched case-insensitively
}

// StoreConfig configures the canonical SQLite store
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// SampleConfig configures the preview CSV export
type SampleConfig struct {
	Path    string `yaml:"path" mapstructure:"path"`         // Empty disables the export
	MaxRows int    `yaml:"max_rows" mapstructure:"max_rows"` // Cap across all shards
}

// ConcurrencyConfig controls parallel shard normalization
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"` // 1 = strictly sequential
}

// CacheConfig configures the per-shard timestamp parse memo
type CacheConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// LogConfig configures structured logging
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json" mapstructure:"json"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Extensions: []string{".jsonl"},
		},
		Store: StoreConfig{
			Path: "db/news_dq.sqlite",
		},
		Sample: SampleConfig{
			Path:    "data/clean/news_events_clean_sample_100k.csv",
			MaxRows: 100000,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 1,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
