package commands

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/pulith/internal/config"
	"github.com/Sumatoshi-tech/pulith/pkg/fetch"
)

// NewStatusCommand reports the store's health: per-version activation
// state plus the conditional cache's hit rate and size.
func NewStatusCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show store and cache health",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runStatus(*configPath)
		},
	}
}

func runStatus(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	layout := newStoreLayout(cfg)

	installed, err := listInstalled(layout, "")
	if err != nil {
		return fmt.Errorf("list installed versions: %w", err)
	}

	fmt.Fprintf(os.Stdout, "store root: %s\n", cfg.Store.Root)
	printActivationTable(installed)

	if err := printCacheStatus(cfg); err != nil {
		return err
	}

	return nil
}

func printActivationTable(installed []installedVersion) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(os.Stdout)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Tool", "Version", "State"})

	for _, iv := range installed {
		state := "active"
		if _, err := os.Stat(iv.Path); err != nil {
			state = "broken (dangling activation link)"
		}

		tbl.AppendRow(table.Row{iv.Tool, iv.Version, state})
	}

	tbl.Render()
}

func printCacheStatus(cfg *config.Config) error {
	maxSize, err := cfg.Cache.MaxSizeBytes()
	if err != nil {
		return fmt.Errorf("parse cache.max_size: %w", err)
	}

	ttl, err := cfg.Cache.TTLDuration()
	if err != nil {
		return fmt.Errorf("parse cache.ttl: %w", err)
	}

	cache, err := fetch.NewCache(fetch.CacheConfig{
		Dir:          cfg.Cache.Dir,
		MaxSizeBytes: maxSize,
		MaxAge:       ttl,
		HasMaxAge:    true,
		PersistMeta:  cfg.Cache.PersistMeta,
	})
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}

	stats := cache.Stats()

	fmt.Fprintf(os.Stdout, "\ncache: %s\n", cfg.Cache.Dir)
	fmt.Fprintf(os.Stdout, "  entries: %d / %s\n", stats.Entries, humanize.Bytes(uint64(stats.CurrentSize)))

	hitRate := stats.HitRate() * 100

	attr := color.FgGreen
	if hitRate < 50 {
		attr = color.FgYellow
	}

	colorFprintf(attr, "  hit rate: %.1f%% (%d hits, %d misses)\n", hitRate, stats.Hits, stats.Misses)

	return nil
}
