package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/newsclean/internal/model"
	"github.com/ppiankov/newsclean/internal/pipeline"
	"github.com/ppiankov/newsclean/internal/schema"
)

// columnsCmd represents the columns command
var columnsCmd = &cobra.Command{
	Use:   "columns <shard-or-dir>...",
	Short: "Show how shard columns map onto the canonical schema",
	Long: `Columns reads shards without writing anything and prints, per shard,
the raw to canonical column mapping, raw columns that will be dropped and
canonical fields that will be null.

Example:
  newsclean columns data/raw/feed_a.jsonl
  newsclean columns data/raw`,
	Args: cobra.MinimumNArgs(1),
	RunE: runColumns,
}

func init() {
	rootCmd.AddCommand(columnsCmd)
}

func runColumns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		found, err := pipeline.DiscoverShards(arg, cfg.Input.Extensions)
		if err != nil {
			return err
		}
		paths = append(paths, found...)
	}

	mapper := schema.DefaultMapper()
	out := cmd.OutOrStdout()
	for _, path := range paths {
		raw, info, err := pipeline.ReadShard(path)
		if err != nil {
			fmt.Fprintf(out, "%s\n  ✗ %v\n\n", path, err)
			continue
		}
		canon := schema.CanonicalizeColumns(raw)
		mapping := mapper.Map(canon.Columns())

		fmt.Fprintf(out, "%s (%d records", path, info.Records)
		if info.Fallback {
			fmt.Fprintf(out, ", line parser")
		}
		fmt.Fprintf(out, ", %d/%d fields mapped)\n", mapping.Len(), len(model.CanonicalSchema))
		for _, field := range mapping.Fields() {
			src, _ := mapping.Source(field)
			fmt.Fprintf(out, "  %-24s -> %s\n", src, field)
		}
		if unmapped := mapping.Unmapped(); len(unmapped) > 0 {
			fmt.Fprintf(out, "  dropped: %s\n", strings.Join(unmapped, ", "))
		}
		if missing := mapping.Missing(); len(missing) > 0 {
			fmt.Fprintf(out, "  null:    %s\n", strings.Join(missing, ", "))
		}
		fmt.Fprintln(out)
	}
	return nil
}
