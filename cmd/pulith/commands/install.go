package commands

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/pulith/internal/config"
	"github.com/Sumatoshi-tech/pulith/internal/observability"
	"github.com/Sumatoshi-tech/pulith/pkg/archive"
	"github.com/Sumatoshi-tech/pulith/pkg/fetch"
	"github.com/Sumatoshi-tech/pulith/pkg/install"
	"github.com/Sumatoshi-tech/pulith/pkg/permission"
	"github.com/Sumatoshi-tech/pulith/pkg/progress"
	"github.com/Sumatoshi-tech/pulith/pkg/verify"
	pulithversion "github.com/Sumatoshi-tech/pulith/pkg/version"
)

// installCommand holds the install subcommand's flag values.
type installCommand struct {
	configPath *string
	debugTrace *bool
	logJSON    *bool

	sourceURL       string
	sha256Hex       string
	blake3Hex       string
	stripComponents int
	executables     []string
	noCache         bool
}

// NewInstallCommand wires the fetch -> verify -> extract -> stage ->
// transform -> activate -> commit pipeline behind "pulith install".
func NewInstallCommand(configPath *string, debugTrace *bool, logJSON *bool) *cobra.Command {
	ic := &installCommand{configPath: configPath, debugTrace: debugTrace, logJSON: logJSON}

	cmd := &cobra.Command{
		Use:   "install <tool> <version>",
		Short: "Fetch, verify, and activate a tool version",
		Long: `install downloads the archive at --url, verifies it against the
expected digest (if given), extracts it, and runs it through pulith's
staged install pipeline: stage, transform, activate, commit. Any failure
after staging triggers an automatic best-effort rollback.`,
		Args: cobra.ExactArgs(2),
		RunE: ic.run,
	}

	cmd.Flags().StringVar(&ic.sourceURL, "url", "", "archive URL to fetch (required)")
	cmd.Flags().StringVar(&ic.sha256Hex, "sha256", "", "expected SHA-256 digest, hex-encoded")
	cmd.Flags().StringVar(&ic.blake3Hex, "blake3", "", "expected BLAKE3 digest, hex-encoded")
	cmd.Flags().IntVar(&ic.stripComponents, "strip-components", 0, "path components to strip from archive entries")
	cmd.Flags().StringSliceVar(&ic.executables, "bin", nil, "archive-relative paths to mark executable (0755) after extraction")
	cmd.Flags().BoolVar(&ic.noCache, "no-cache", false, "disable resume checkpoints for this download")

	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func (ic *installCommand) run(cmd *cobra.Command, args []string) error {
	tool, versionStr := args[0], args[1]

	if _, err := pulithversion.Parse(versionStr); err != nil {
		return fmt.Errorf("parse version %q: %w", versionStr, err)
	}

	cfg, err := config.LoadConfig(*ic.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.DebugTrace = *ic.debugTrace
	obsCfg.LogJSON = *ic.logJSON

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}
	defer func() { _ = providers.Shutdown(context.Background()) }()

	_, meterProvider, err := observability.PrometheusHandler()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }()

	metrics, err := observability.NewPipelineMetrics(meterProvider.Meter("pulith.install"))
	if err != nil {
		return fmt.Errorf("init pipeline metrics: %w", err)
	}

	ctx, span := providers.Tracer.Start(cmd.Context(), "install")
	defer span.End()

	layout := newStoreLayout(cfg)

	start := time.Now()

	destination, err := ic.fetchArchive(ctx, cfg, metrics, layout, tool, versionStr)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	extractedDir, err := ic.extractArchive(layout, tool, versionStr, destination)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	state, err := ic.runPipeline(layout, tool, extractedDir)
	metrics.RecordInstallDuration(ctx, state.String(), time.Since(start))

	if err != nil {
		colorFprintf(color.FgRed, "install failed, rolled back: %v\n", err)
		return err
	}

	colorFprintf(color.FgGreen, "installed %s %s -> %s\n", tool, versionStr, layout.versionDir(tool, versionStr))

	return nil
}

func (ic *installCommand) fetchArchive(
	ctx context.Context,
	cfg *config.Config,
	metrics *observability.PipelineMetrics,
	layout storeLayout,
	tool, versionStr string,
) (string, error) {
	client := fetch.NewHTTPClient(cfg.HTTP.MaxRedirects)

	baseDelay, err := cfg.Retry.BaseDelayDuration()
	if err != nil {
		return "", err
	}

	throttleBps, err := cfg.Throttle.BytesPerSecond()
	if err != nil {
		return "", err
	}

	var throttle *fetch.Throttle
	if throttleBps > 0 {
		throttle = fetch.NewThrottle(int(throttleBps))
	}

	checkpointDir := cfg.Checkpoint.Dir
	if ic.noCache {
		checkpointDir = ""
	}

	opts := fetch.Options{
		Algorithm:         verify.SHA256,
		ExpectedDigestHex: ic.sha256Hex,
		MaxRetries:        cfg.Retry.MaxRetries,
		RetryBackoff:      baseDelay,
		Throttle:          throttle,
		CheckpointDir:     checkpointDir,
		OnProgress:        newProgressPrinter(tool, versionStr),
	}

	if ic.blake3Hex != "" {
		opts.Algorithm = verify.BLAKE3
		opts.ExpectedDigestHex = ic.blake3Hex
	}

	destination := filepath.Join(cfg.Cache.Dir, "downloads", tool, versionStr, downloadFileName(ic.sourceURL))

	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return "", err
	}

	path, err := fetch.Fetch(ctx, client, ic.sourceURL, destination, opts)
	if err != nil {
		return "", err
	}

	if info, statErr := os.Stat(path); statErr == nil {
		metrics.RecordBytesFetched(ctx, ic.sourceURL, info.Size())
	}

	return path, nil
}

func (ic *installCommand) extractArchive(layout storeLayout, tool, versionStr, archivePath string) (string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	opts := archive.Options{
		PermissionStrategy: permission.Standard,
		HashAlgorithm:      archive.HashSHA256,
		StripComponents:    ic.stripComponents,
	}

	extraction, err := archive.ExtractToWorkspace(f, layout.extractWorkspaceRoot(tool), opts)
	if err != nil {
		return "", err
	}

	destination := layout.extractDir(tool, versionStr)
	if _, err := extraction.Commit(destination); err != nil {
		return "", err
	}

	return destination, nil
}

func (ic *installCommand) runPipeline(layout storeLayout, tool, extractedDir string) (install.State, error) {
	pipeline := install.New(layout.pipelineStagingRoot(tool), layout.toolDir(tool))

	if len(ic.executables) > 0 {
		pipeline = pipeline.WithTransform(install.SetPermissions{Files: ic.executables, Mode: 0o755})
	}

	pipeline = pipeline.
		WithHook(&install.WindowsRegistryHook{}).
		WithHook(&install.MacOSCodeSignHook{}).
		WithHook(&install.LinuxLdconfigHook{})

	return pipeline.Run(extractedDir)
}

func downloadFileName(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Path == "" {
		return "download"
	}

	base := path.Base(parsed.Path)
	if base == "." || base == "/" {
		return "download"
	}

	return base
}

func newProgressPrinter(tool, versionStr string) func(progress.Progress) {
	tracker := progress.NewTracker(progress.Progress{})

	return func(p progress.Progress) {
		tracker.Update(p)

		if p.Phase != progress.Downloading {
			fmt.Fprintf(os.Stdout, "%s %s: %s\n", tool, versionStr, p.Phase)
			return
		}

		downloaded := humanize.Bytes(p.BytesDownloaded)

		if pct, ok := p.Percentage(); ok {
			fmt.Fprintf(os.Stdout, "\r%s %s: downloading %s (%.1f%%) %s",
				tool, versionStr, downloaded, pct, tracker.SpeedString())
		} else {
			fmt.Fprintf(os.Stdout, "\r%s %s: downloading %s %s", tool, versionStr, downloaded, tracker.SpeedString())
		}
	}
}

func colorFprintf(attr color.Attribute, format string, args ...any) {
	color.New(attr).Fprintf(os.Stdout, format, args...)
}
