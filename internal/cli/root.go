package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/newsclean/internal/logger"
	"github.com/ppiankov/newsclean/internal/model"
)

// Version is set at build time
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "newsclean",
	Short: "newsclean - normalize heterogeneous news event shards into one canonical table",
	Long: `newsclean reads directories of newline-delimited JSON news event shards
produced by different upstream feeds and turns them into one canonical,
typed, deduplicated table.

For each shard it reconciles column names to the canonical schema, fills
missing fields with nulls, normalizes values (language codes, categories,
URLs, UTC timestamps, score ranges), removes duplicates and appends the
result to a SQLite table. A bounded preview sample is exported as CSV.

Invalid values become nulls; nothing is guessed.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of newsclean.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("newsclean %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.newsclean/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "log as JSON lines")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.json", rootCmd.PersistentFlags().Lookup("log-json"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(model.DefaultConfig())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".newsclean"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match NEWSCLEAN_* (NEWSCLEAN_STORE_PATH -> store.path)
	viper.SetEnvPrefix("NEWSCLEAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so env vars and Unmarshal see it
func setDefaults(cfg *model.Config) {
	viper.SetDefault("input.dir", cfg.Input.Dir)
	viper.SetDefault("input.extensions", cfg.Input.Extensions)
	viper.SetDefault("store.path", cfg.Store.Path)
	viper.SetDefault("sample.path", cfg.Sample.Path)
	viper.SetDefault("sample.max_rows", cfg.Sample.MaxRows)
	viper.SetDefault("concurrency.workers", cfg.Concurrency.Workers)
	viper.SetDefault("cache.enabled", cfg.Cache.Enabled)
	viper.SetDefault("log.level", cfg.Log.Level)
	viper.SetDefault("log.json", cfg.Log.JSON)
	viper.SetDefault("fail_fast", cfg.FailFast)
}

// loadConfig merges defaults, config file, env vars and bound flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// An empty log-level flag must not clear the configured level
	if cfg.Log.Level == "" {
		cfg.Log.Level = model.DefaultConfig().Log.Level
	}
	if verbose {
		cfg.Log.Level = string(logger.DebugLevel)
	}
	return cfg, nil
}

// newLogger builds the run logger from config
func newLogger(cfg *model.Config) logger.Logger {
	return logger.New(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		Output:     os.Stderr,
		JSON:       cfg.Log.JSON,
		TimeFormat: "15:04:05",
	})
}
