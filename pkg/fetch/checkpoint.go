package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Sumatoshi-tech/pulith/pkg/persist"
)

// checkpointSchema validates a persisted download checkpoint before it is
// trusted to resume a Range request.
const checkpointSchema = `{
	"type": "object",
	"required": ["url", "destination", "total_bytes", "downloaded_bytes", "last_update"],
	"properties": {
		"url": {"type": "string"},
		"destination": {"type": "string"},
		"total_bytes": {"type": "integer", "minimum": 0},
		"has_total_bytes": {"type": "boolean"},
		"downloaded_bytes": {"type": "integer", "minimum": 0},
		"last_update": {"type": "integer"}
	}
}`

// Checkpoint records enough state to resume an interrupted download via an
// HTTP Range request (spec.md §4.J), grounded on
// pulith-fetch/src/fetch/resumable.rs's DownloadCheckpoint.
type Checkpoint struct {
	URL             string `json:"url"`
	Destination     string `json:"destination"`
	TotalBytes      int64  `json:"total_bytes"`
	HasTotalBytes   bool   `json:"has_total_bytes"`
	DownloadedBytes int64  `json:"downloaded_bytes"`
	LastUpdateUnix  int64  `json:"last_update"`
}

// NewCheckpoint starts a checkpoint for a fresh download.
func NewCheckpoint(url, destination string, totalBytes int64, hasTotalBytes bool) Checkpoint {
	return Checkpoint{
		URL:            url,
		Destination:    destination,
		TotalBytes:     totalBytes,
		HasTotalBytes:  hasTotalBytes,
		LastUpdateUnix: time.Now().Unix(),
	}
}

// UpdateProgress records downloaded bytes and bumps the timestamp.
func (c *Checkpoint) UpdateProgress(downloadedBytes int64) {
	c.DownloadedBytes = downloadedBytes
	c.LastUpdateUnix = time.Now().Unix()
}

// CanResume reports whether enough progress was made to justify a Range
// request rather than restarting from scratch.
func (c Checkpoint) CanResume() bool {
	return c.DownloadedBytes > 0
}

// RangeHeader builds the Range header value to resume from DownloadedBytes.
func (c Checkpoint) RangeHeader() string {
	return fmt.Sprintf("bytes=%d-", c.DownloadedBytes)
}

// Age reports how long it has been since the checkpoint last made progress.
func (c Checkpoint) Age() time.Duration {
	return time.Since(time.Unix(c.LastUpdateUnix, 0))
}

// CheckpointStore persists download checkpoints under a directory, one file
// per (url, destination) pair, keyed by a content hash rather than a
// sanitized URL/path (spec.md §4.J).
type CheckpointStore struct {
	dir string
}

// NewCheckpointStore opens a checkpoint store rooted at dir. The directory
// is created lazily on first Save.
func NewCheckpointStore(dir string) *CheckpointStore {
	return &CheckpointStore{dir: dir}
}

func checkpointKey(url, destination string) string {
	h := sha256.Sum256([]byte(url + "\x00" + destination))
	return "checkpoint_" + hex.EncodeToString(h[:8])
}

func (s *CheckpointStore) persister(url, destination string) *persist.Persister[Checkpoint] {
	return persist.NewPersister[Checkpoint](
		checkpointKey(url, destination), persist.NewSchemaCodec(persist.NewJSONCodec(), checkpointSchema),
	)
}

// Load returns the checkpoint for (url, destination), if one exists.
func (s *CheckpointStore) Load(url, destination string) (Checkpoint, bool) {
	var cp Checkpoint

	err := s.persister(url, destination).Load(s.dir, func(loaded *Checkpoint) { cp = *loaded })
	if err != nil {
		return Checkpoint{}, false
	}

	return cp, true
}

// Save writes cp to disk, creating the store directory if needed.
func (s *CheckpointStore) Save(cp Checkpoint) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	return s.persister(cp.URL, cp.Destination).Save(s.dir, func() *Checkpoint { return &cp })
}

// Remove deletes the checkpoint for (url, destination). A missing file is
// not an error: the caller's intent (no checkpoint remains) is satisfied.
func (s *CheckpointStore) Remove(url, destination string) error {
	path := filepath.Join(s.dir, checkpointKey(url, destination)+".json")

	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}

// SweepStale removes checkpoints older than maxAge. Unreadable entries are
// treated as stale and removed, since a corrupt checkpoint can never resume
// anyway.
func (s *CheckpointStore) SweepStale(maxAge time.Duration) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}

	codec := persist.NewSchemaCodec(persist.NewJSONCodec(), checkpointSchema)

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())

		var cp Checkpoint

		basename := entry.Name()[:len(entry.Name())-len(filepath.Ext(entry.Name()))]
		if loadErr := persist.LoadState(s.dir, basename, codec, &cp); loadErr != nil || cp.Age() > maxAge {
			_ = os.Remove(path)
		}
	}

	return nil
}
