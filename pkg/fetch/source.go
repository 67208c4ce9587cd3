package fetch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/pulith/pkg/pulitherr"
)

// Source is one candidate location for a download, grounded on
// pulith-fetch/src/fetch/multi_source.rs's DownloadSource.
type Source struct {
	URL      string
	Checksum string // empty means unchecked
}

// SourceStrategy picks how a set of Sources is tried (spec.md §4.J).
type SourceStrategy int

const (
	// Priority tries sources in order, stopping at the first success.
	Priority SourceStrategy = iota
	// RaceAll starts every source concurrently and keeps the first success.
	RaceAll
	// FastestFirst falls back to Priority: measuring real response times
	// across heterogeneous sources needs infrastructure (latency probes,
	// geo-aware source metadata) this pipeline doesn't have yet.
	FastestFirst
	// Geographic falls back to Priority for the same reason as FastestFirst.
	Geographic
)

// AttemptFunc fetches a single source to destination, returning the final
// path on success. It is supplied by the caller (the Fetcher, §4.L) so this
// package stays decoupled from the full attempt pipeline.
type AttemptFunc func(ctx context.Context, source Source, destination string) (string, error)

// FetchMultiSource tries sources according to strategy, using attempt to
// perform each individual download.
func FetchMultiSource(ctx context.Context, sources []Source, destination string, strategy SourceStrategy, attempt AttemptFunc) (string, error) {
	if len(sources) == 0 {
		return "", &pulitherr.Network{Msg: "no sources provided"}
	}

	switch strategy {
	case RaceAll:
		return fetchRace(ctx, sources, destination, attempt)
	case FastestFirst, Geographic, Priority:
		return fetchPriority(ctx, sources, destination, attempt)
	default:
		return fetchPriority(ctx, sources, destination, attempt)
	}
}

func fetchPriority(ctx context.Context, sources []Source, destination string, attempt AttemptFunc) (string, error) {
	var lastErr error

	for _, source := range sources {
		path, err := attempt(ctx, source, destination)
		if err == nil {
			return path, nil
		}

		lastErr = err
	}

	return "", &pulitherr.Network{Msg: "all sources failed", Err: lastErr}
}

// fetchRace starts every source concurrently and returns the first success,
// cancelling the remaining attempts once one wins.
func fetchRace(ctx context.Context, sources []Source, destination string, attempt AttemptFunc) (string, error) {
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		path string
		err  error
	}

	results := make(chan outcome, len(sources))

	group, groupCtx := errgroup.WithContext(raceCtx)

	for _, source := range sources {
		source := source

		group.Go(func() error {
			path, err := attempt(groupCtx, source, destination)
			results <- outcome{path: path, err: err}

			return nil // individual source failures don't cancel siblings
		})
	}

	go func() {
		_ = group.Wait()
		close(results)
	}()

	var lastErr error

	for res := range results {
		if res.err == nil {
			cancel()
			return res.path, nil
		}

		lastErr = res.err
	}

	return "", &pulitherr.Network{Msg: "all sources failed", Err: lastErr}
}
