package fetch

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Sumatoshi-tech/pulith/pkg/progress"
	"github.com/Sumatoshi-tech/pulith/pkg/pulitherr"
	"github.com/Sumatoshi-tech/pulith/pkg/verify"
	"github.com/Sumatoshi-tech/pulith/pkg/workspace"
)

// chunkSize is the read buffer size used while streaming a download body.
// Progress, the checkpoint, and the throttle are all updated once per chunk.
const chunkSize = 32 * 1024

// Options configures a single Fetch call (spec.md §4.L).
type Options struct {
	// Headers are sent with every request attempt, in addition to any
	// Range header Fetch adds itself when resuming.
	Headers map[string]string

	// Algorithm and ExpectedDigestHex, if ExpectedDigestHex is non-empty,
	// make Fetch verify the downloaded bytes before committing.
	Algorithm         verify.Algorithm
	ExpectedDigestHex string

	MaxRetries   int
	RetryBackoff time.Duration

	// Throttle, if non-nil, rate-limits the download stream (spec.md §4.I).
	Throttle *Throttle

	// CheckpointDir stores resume checkpoints (spec.md §4.J). Empty
	// disables resume: every attempt restarts from zero.
	CheckpointDir string

	// OnProgress, if non-nil, is called with every phase transition and
	// downloading chunk.
	OnProgress func(progress.Progress)
}

func (o Options) emit(p progress.Progress) {
	if o.OnProgress != nil {
		o.OnProgress(p)
	}
}

// Fetch downloads url to destination, retrying transient failures with
// exponential backoff, resuming partial downloads when a checkpoint
// directory is configured, and verifying the result's digest when
// requested (spec.md §4.L).
func Fetch(ctx context.Context, client Client, url, destination string, opts Options) (string, error) {
	ws, err := workspace.Open(filepath.Dir(destination))
	if err != nil {
		return "", err
	}

	// On success the staging file has already been renamed onto destination,
	// so Abort only removes the emptied staging directory.
	defer func() { _ = ws.Abort() }()

	stagingFile := filepath.Join(ws.Staging(), filepath.Base(destination))

	var store *CheckpointStore
	if opts.CheckpointDir != "" {
		store = NewCheckpointStore(opts.CheckpointDir)
	}

	attempts := Attempts(opts.MaxRetries)

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		opts.emit(progress.Progress{Phase: progress.Connecting, RetryCount: uint32(attempt - 1)})

		err := fetchOnce(ctx, client, url, destination, stagingFile, opts, store, attempt)
		if err == nil {
			if commitErr := os.Rename(stagingFile, destination); commitErr != nil {
				return "", commitErr
			}

			if store != nil {
				_ = store.Remove(url, destination)
			}

			opts.emit(progress.Progress{Phase: progress.Completed, RetryCount: uint32(attempt - 1)})

			return destination, nil
		}

		lastErr = err

		if !Retryable(err) {
			return "", err
		}

		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(RetryDelay(attempt, opts.RetryBackoff)):
		}
	}

	return "", &pulitherr.MaxRetriesExceeded{Count: attempts, Last: lastErr}
}

// fetchOnce runs a single Connecting -> Downloading -> Verifying attempt,
// leaving the Committing/Completed steps to the retry loop in Fetch so that
// the staging file is renamed onto destination only once, after the final
// successful attempt.
//
// Checkpoints are keyed by (url, destination) per spec.md §4.J, so a
// checkpoint written by a prior process can in principle be found again;
// whether it can actually resume still depends on the partial bytes
// themselves surviving, which for the workspace staging file they do only
// within the lifetime of a single Fetch call (an unfinished Workspace
// cleans up its staging directory once dropped).
func fetchOnce(ctx context.Context, client Client, url, destination, stagingFile string, opts Options, store *CheckpointStore, attempt int) error {
	headers := make(map[string]string, len(opts.Headers)+1)
	for k, v := range opts.Headers {
		headers[k] = v
	}

	startOffset, resuming := resumeOffset(store, url, destination, stagingFile)
	if resuming {
		cp, _ := store.Load(url, destination)
		headers["Range"] = cp.RangeHeader()
	}

	body, resp, err := client.Stream(ctx, url, headers)
	if err != nil {
		return err
	}
	defer body.Close()

	flags := os.O_CREATE | os.O_WRONLY
	if resuming {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
		startOffset = 0
	}

	file, err := os.OpenFile(stagingFile, flags, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	total, hasTotal := totalBytes(resp, startOffset)

	downloaded, hasher, err := downloadBody(ctx, body, file, opts, store, url, destination, startOffset, total, hasTotal, attempt)
	if err != nil {
		return err
	}

	if err := file.Sync(); err != nil {
		return err
	}

	opts.emit(progress.Progress{
		Phase:           progress.Verifying,
		BytesDownloaded: uint64(downloaded),
		TotalBytes:      uint64(total),
		HasTotalBytes:   hasTotal,
		RetryCount:      uint32(attempt - 1),
	})

	if opts.ExpectedDigestHex != "" {
		if err := verifyDigest(hasher, opts.ExpectedDigestHex); err != nil {
			return err
		}
	}

	opts.emit(progress.Progress{
		Phase:           progress.Committing,
		BytesDownloaded: uint64(downloaded),
		TotalBytes:      uint64(total),
		HasTotalBytes:   hasTotal,
		RetryCount:      uint32(attempt - 1),
	})

	return nil
}

func resumeOffset(store *CheckpointStore, url, destination, stagingFile string) (int64, bool) {
	if store == nil {
		return 0, false
	}

	cp, ok := store.Load(url, destination)
	if !ok || !cp.CanResume() {
		return 0, false
	}

	info, err := os.Stat(stagingFile)
	if err != nil || info.Size() != cp.DownloadedBytes {
		return 0, false
	}

	return cp.DownloadedBytes, true
}

func totalBytes(resp *http.Response, startOffset int64) (int64, bool) {
	if resp == nil || resp.ContentLength < 0 {
		return 0, false
	}

	if resp.StatusCode == http.StatusPartialContent {
		return startOffset + resp.ContentLength, true
	}

	return resp.ContentLength, true
}

func downloadBody(
	ctx context.Context,
	body io.Reader,
	file io.Writer,
	opts Options,
	store *CheckpointStore,
	url, destination string,
	startOffset, total int64,
	hasTotal bool,
	attempt int,
) (int64, verify.Hasher, error) {
	var hasher verify.Hasher

	if opts.ExpectedDigestHex != "" {
		h, err := verify.NewHasher(opts.Algorithm)
		if err != nil {
			return 0, nil, err
		}

		hasher = h
	}

	reader := body
	if opts.Throttle != nil {
		reader = NewThrottledReader(ctx, reader, opts.Throttle)
	}

	downloaded := startOffset
	buf := make([]byte, chunkSize)

	for {
		n, readErr := reader.Read(buf)
		if n > 0 {
			if hasher != nil {
				hasher.Update(buf[:n])
			}

			if _, writeErr := file.Write(buf[:n]); writeErr != nil {
				return downloaded, hasher, writeErr
			}

			downloaded += int64(n)

			if store != nil {
				cp := NewCheckpoint(url, destination, total, hasTotal)
				cp.UpdateProgress(downloaded)
				_ = store.Save(cp)
			}

			opts.emit(progress.Progress{
				Phase:           progress.Downloading,
				BytesDownloaded: uint64(downloaded),
				TotalBytes:      uint64(total),
				HasTotalBytes:   hasTotal,
				RetryCount:      uint32(attempt - 1),
			})
		}

		if readErr == io.EOF {
			break
		}

		if readErr != nil {
			return downloaded, hasher, &pulitherr.Network{Msg: readErr.Error(), Err: readErr}
		}
	}

	return downloaded, hasher, nil
}

func verifyDigest(hasher verify.Hasher, expectedHex string) error {
	expected, err := hex.DecodeString(expectedHex)
	if err != nil {
		return errors.New("fetch: malformed expected digest")
	}

	actual := hasher.Finalize()
	if len(actual) != len(expected) {
		return &pulitherr.ChecksumMismatch{Expected: expectedHex, Actual: hex.EncodeToString(actual)}
	}

	for i := range actual {
		if actual[i] != expected[i] {
			return &pulitherr.ChecksumMismatch{Expected: expectedHex, Actual: hex.EncodeToString(actual)}
		}
	}

	return nil
}
