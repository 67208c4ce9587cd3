package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/pulith/internal/config"
)

// ErrInvalidListFormat is returned for a --format value other than
// "table" or "yaml".
var ErrInvalidListFormat = errors.New("format must be \"table\" or \"yaml\"")

// listEntry is the YAML-serializable projection of an installedVersion.
type listEntry struct {
	Tool    string `yaml:"tool"`
	Version string `yaml:"version"`
	Path    string `yaml:"path"`
}

// NewListCommand renders every installed tool/version pair as a table or,
// with --format yaml, as a YAML document suitable for scripting.
func NewListCommand(configPath *string) *cobra.Command {
	var tool, format string

	cmd := &cobra.Command{
		Use:   "list [--tool <name>]",
		Short: "List installed tool versions",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runList(*configPath, tool, format)
		},
	}

	cmd.Flags().StringVar(&tool, "tool", "", "restrict the listing to a single tool")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table, yaml)")

	return cmd
}

func runList(configPath, tool, format string) error {
	if format != "table" && format != "yaml" {
		return ErrInvalidListFormat
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	layout := newStoreLayout(cfg)

	installed, err := listInstalled(layout, tool)
	if err != nil {
		return fmt.Errorf("list installed versions: %w", err)
	}

	if format == "yaml" {
		return renderListYAML(installed)
	}

	renderListTable(installed)

	return nil
}

func renderListTable(installed []installedVersion) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(os.Stdout)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Tool", "Version", "Installed", "Path"})

	for _, iv := range installed {
		tbl.AppendRow(table.Row{
			iv.Tool,
			iv.Version,
			humanize.Time(iv.Info.ModTime()),
			iv.Path,
		})
	}

	tbl.AppendFooter(table.Row{"", "", "Total", len(installed)})
	tbl.Render()
}

func renderListYAML(installed []installedVersion) error {
	entries := make([]listEntry, len(installed))
	for i, iv := range installed {
		entries[i] = listEntry{Tool: iv.Tool, Version: iv.Version, Path: iv.Path}
	}

	enc := yaml.NewEncoder(os.Stdout)
	defer enc.Close()

	return enc.Encode(entries)
}
