package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/newsclean/internal/ingest"
	"github.com/ppiankov/newsclean/internal/pipeline"
	"github.com/ppiankov/newsclean/internal/store"
)

var (
	noCache       bool
	ingestTimeout time.Duration
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Normalize all shards of a directory into the canonical table",
	Long: `Ingest processes every shard file of the input directory in path order:
- Parse newline-delimited JSON (tolerant fallback for BOMs and blank lines)
- Map raw column names onto the canonical schema
- Normalize language, category, URL, timestamps and score ranges
- Drop duplicates on (title, url) within the shard
- Append the shard to the SQLite table news_events_clean
- Export the first rows of the run as a CSV preview

A shard that fails is reported and skipped; use --fail-fast to stop instead.

Example:
  newsclean ingest --input data/raw
  newsclean ingest --input data/raw --db out/news.sqlite --sample-max 1000
  newsclean ingest --input data/raw --workers 4 --sample-out ""`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	f := ingestCmd.Flags()
	f.String("input", "", "directory of shard files (required)")
	f.StringSlice("ext", nil, "shard file extensions (default .jsonl)")
	f.String("db", "", "SQLite database path (default db/news_dq.sqlite)")
	f.String("sample-out", "", "preview CSV path, empty string disables (default data/clean/news_events_clean_sample_100k.csv)")
	f.Int("sample-max", 0, "maximum preview rows across the run (default 100000)")
	f.Int("workers", 0, "shards normalized concurrently (default 1)")
	f.Bool("fail-fast", false, "stop at the first failed shard")
	f.BoolVar(&noCache, "no-cache", false, "disable timestamp parse memoization")
	f.DurationVar(&ingestTimeout, "timeout", 0, "total timeout for the run (0 = none)")

	_ = viper.BindPFlag("input.dir", f.Lookup("input"))
	_ = viper.BindPFlag("input.extensions", f.Lookup("ext"))
	_ = viper.BindPFlag("store.path", f.Lookup("db"))
	_ = viper.BindPFlag("sample.path", f.Lookup("sample-out"))
	_ = viper.BindPFlag("sample.max_rows", f.Lookup("sample-max"))
	_ = viper.BindPFlag("concurrency.workers", f.Lookup("workers"))
	_ = viper.BindPFlag("fail_fast", f.Lookup("fail-fast"))
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if cfg.Input.Dir == "" {
		return fmt.Errorf("%w: pass --input or set input.dir", ingest.ErrNoInputDir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if ingestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ingestTimeout)
		defer cancel()
	}

	p := pipeline.NewPipeline(cfg)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  newsclean ingest\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input dir:    %s (%s)\n", cfg.Input.Dir, strings.Join(cfg.Input.Extensions, ", "))
	fmt.Fprintf(os.Stderr, "  Database:     %s\n", cfg.Store.Path)
	if cfg.Sample.Path != "" {
		fmt.Fprintf(os.Stderr, "  Sample:       %s (max %d rows)\n", cfg.Sample.Path, cfg.Sample.MaxRows)
	} else {
		fmt.Fprintf(os.Stderr, "  Sample:       disabled\n")
	}
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Stages:       %s\n", strings.Join(p.Stages(), " -> "))
	fmt.Fprintf(os.Stderr, "\n")

	log := newLogger(cfg)

	db, err := store.Open(ctx, cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = db.Close() }()

	runner := ingest.NewRunner(cfg, p, db, log)
	stats, runErr := runner.Run(ctx)

	// ctx may be cancelled by now; the table total is still worth reporting
	total, err := db.Count(context.Background())
	if err != nil {
		log.Warn("count table rows", "err", err)
		total = -1
	}
	printSummary(stats, total)

	var partial *ingest.RunError
	if errors.As(runErr, &partial) {
		fmt.Fprintf(os.Stderr, "Failed shards:\n")
		for _, f := range partial.Failed {
			fmt.Fprintf(os.Stderr, "  ✗ %s: %v\n", f.Path, f.Err)
		}
		fmt.Fprintf(os.Stderr, "\n")
	}
	return runErr
}

func printSummary(stats *ingest.RunStats, total int) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Ingest Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Shards:       %d (%d ok, %d failed, %d via line parser)\n", stats.Shards, stats.Succeeded, stats.Failed, stats.Fallbacks)
	fmt.Fprintf(os.Stderr, "  Rows read:    %d\n", stats.RowsRead)
	fmt.Fprintf(os.Stderr, "  Rows written: %d\n", stats.RowsWritten)
	if total >= 0 {
		fmt.Fprintf(os.Stderr, "  Table rows:   %d\n", total)
	}
	fmt.Fprintf(os.Stderr, "  Duplicates:   %d\n", stats.Duplicates)
	fmt.Fprintf(os.Stderr, "  Nulled:       %d values\n", stats.Nulled)
	fmt.Fprintf(os.Stderr, "  Reordered:    %d records (published after ingested)\n", stats.Swapped)
	if stats.SamplePath != "" {
		fmt.Fprintf(os.Stderr, "  Sample:       %d rows -> %s\n", stats.SampleRows, stats.SamplePath)
	}
	if len(stats.Unmapped) > 0 {
		cols := make([]string, 0, len(stats.Unmapped))
		for c := range stats.Unmapped {
			cols = append(cols, c)
		}
		sort.Strings(cols)
		fmt.Fprintf(os.Stderr, "  Unmapped:     %s\n", strings.Join(cols, ", "))
	}
	fmt.Fprintf(os.Stderr, "  Duration:     %v\n", stats.Duration.Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "\n")
}
