// Package progress implements fetch progress tracking (spec.md §4.O),
// grounded on pulith-fetch/src/progress/extended_progress.rs: a base
// Progress snapshot, a sliding-window rate/ETA tracker built on top of it,
// and a reporter that aggregates many concurrent trackers.
package progress

import (
	"fmt"
	"time"
)

// Phase is a download's current pipeline stage, mirroring the Connecting/
// Downloading/Verifying/Committing/Completed phases spec.md §4.L walks
// through on each fetch attempt.
type Phase int

const (
	Connecting Phase = iota
	Downloading
	Verifying
	Committing
	Completed
)

func (p Phase) String() string {
	switch p {
	case Connecting:
		return "connecting"
	case Downloading:
		return "downloading"
	case Verifying:
		return "verifying"
	case Committing:
		return "committing"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Progress is a single point-in-time snapshot of one download's state.
type Progress struct {
	Phase           Phase
	BytesDownloaded uint64
	TotalBytes      uint64
	HasTotalBytes   bool
	RetryCount      uint32
}

// Percentage returns the completion fraction in [0, 100] when the total
// size is known.
func (p Progress) Percentage() (float64, bool) {
	if !p.HasTotalBytes {
		return 0, false
	}

	if p.TotalBytes == 0 {
		return 0, true
	}

	return float64(p.BytesDownloaded) / float64(p.TotalBytes) * 100, true
}

// IsCompleted reports whether the download has reached its terminal phase.
func (p Progress) IsCompleted() bool {
	return p.Phase == Completed
}

// IsRetrying reports whether the download is back in Connecting after at
// least one failed attempt.
func (p Progress) IsRetrying() bool {
	return p.Phase == Connecting && p.RetryCount > 0
}

// snapshot is one entry in a Tracker's rate-calculation history.
type snapshot struct {
	at              time.Time
	bytesDownloaded uint64
}

// maxHistory bounds the sliding window of snapshots kept for rate
// calculation, matching the original's VecDeque::with_capacity(100).
const maxHistory = 100

// Tracker augments a base Progress with a bounded history of snapshots,
// from which it derives a smoothed download rate and ETA.
type Tracker struct {
	base      Progress
	rateBps   float64
	hasRate   bool
	etaSecs   uint64
	hasETA    bool
	history   []snapshot
	startedAt time.Time
	updatedAt time.Time
}

// NewTracker creates a Tracker seeded with an initial Progress snapshot.
func NewTracker(base Progress) *Tracker {
	now := time.Now()

	return &Tracker{
		base:      base,
		history:   []snapshot{{at: now, bytesDownloaded: base.BytesDownloaded}},
		startedAt: now,
		updatedAt: now,
	}
}

// Update records a new Progress snapshot and recalculates rate and ETA.
func (t *Tracker) Update(p Progress) {
	now := time.Now()

	t.history = append(t.history, snapshot{at: now, bytesDownloaded: p.BytesDownloaded})
	if len(t.history) > maxHistory {
		t.history = t.history[len(t.history)-maxHistory:]
	}

	t.rateBps, t.hasRate = t.calculateRate()
	t.etaSecs, t.hasETA = t.calculateETA(p)

	t.base = p
	t.updatedAt = now
}

// Base returns the most recently recorded Progress snapshot.
func (t *Tracker) Base() Progress {
	return t.base
}

// Rate returns the current smoothed download rate in bytes per second,
// derived from the oldest and newest entries in the sliding window.
func (t *Tracker) Rate() (float64, bool) {
	return t.rateBps, t.hasRate
}

// ETA returns the estimated remaining time to completion.
func (t *Tracker) ETA() (time.Duration, bool) {
	if !t.hasETA {
		return 0, false
	}

	return time.Duration(t.etaSecs) * time.Second, true
}

func (t *Tracker) calculateRate() (float64, bool) {
	if len(t.history) < 2 {
		return 0, false
	}

	oldest := t.history[0]
	newest := t.history[len(t.history)-1]

	elapsed := newest.at.Sub(oldest.at)
	if elapsed <= 0 {
		return 0, false
	}

	bytesDiff := int64(newest.bytesDownloaded) - int64(oldest.bytesDownloaded)

	return float64(bytesDiff) / elapsed.Seconds(), true
}

func (t *Tracker) calculateETA(p Progress) (uint64, bool) {
	rate, hasRate := t.rateBps, t.hasRate
	if !hasRate || !p.HasTotalBytes || rate <= 0 {
		return 0, false
	}

	if p.BytesDownloaded >= p.TotalBytes {
		return 0, true
	}

	remaining := p.TotalBytes - p.BytesDownloaded

	return uint64(float64(remaining) / rate), true
}

// SpeedString renders the current rate as a human-readable throughput.
func (t *Tracker) SpeedString() string {
	rate, ok := t.Rate()
	if !ok {
		return "Unknown"
	}

	switch {
	case rate >= 1_000_000:
		return fmt.Sprintf("%.1f MB/s", rate/1_000_000)
	case rate >= 1000:
		return fmt.Sprintf("%.1f kB/s", rate/1000)
	default:
		return fmt.Sprintf("%.0f B/s", rate)
	}
}

// ETAString renders the current ETA as a human-readable duration.
func (t *Tracker) ETAString() string {
	eta, ok := t.ETA()
	if !ok {
		return "Unknown"
	}

	secs := uint64(eta.Seconds())

	switch {
	case secs >= 3600:
		return fmt.Sprintf("%dh %dm", secs/3600, (secs%3600)/60)
	case secs >= 60:
		return fmt.Sprintf("%dm", secs/60)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// Elapsed returns the time elapsed since the tracker was created.
func (t *Tracker) Elapsed() time.Duration {
	return time.Since(t.startedAt)
}

// ElapsedString renders Elapsed as a human-readable duration.
func (t *Tracker) ElapsedString() string {
	secs := uint64(t.Elapsed().Seconds())

	switch {
	case secs >= 3600:
		return fmt.Sprintf("%dh %dm", secs/3600, (secs%3600)/60)
	case secs >= 60:
		return fmt.Sprintf("%dm", secs/60)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}
