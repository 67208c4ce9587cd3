package progress

import (
	"sync"
	"time"
)

// Reporter aggregates many concurrent Trackers, exposing combined totals,
// rate, and ETA across a whole install-pipeline batch (spec.md §4.O).
type Reporter struct {
	mu       sync.Mutex
	trackers []*Tracker
}

// NewReporter creates an empty Reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// AddTracker registers a new download under the reporter and returns its
// index, used by later calls to UpdateTracker/Tracker.
func (r *Reporter) AddTracker(base Progress) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.trackers = append(r.trackers, NewTracker(base))

	return len(r.trackers) - 1
}

// UpdateTracker feeds a new Progress snapshot to the tracker at index.
// Out-of-range indices are ignored.
func (r *Reporter) UpdateTracker(index int, p Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.trackers) {
		return
	}

	r.trackers[index].Update(p)
}

// Tracker returns the tracker at index, if any.
func (r *Reporter) Tracker(index int) (*Tracker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.trackers) {
		return nil, false
	}

	return r.trackers[index], true
}

// Total returns the combined Progress across every registered tracker:
// summed bytes downloaded and total size, the worst-case retry count, and
// a phase reflecting the batch as a whole (Completed only when every
// tracker is; Connecting while any tracker is retrying; Downloading
// otherwise).
func (r *Reporter) Total() Progress {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		bytesDownloaded uint64
		totalBytes      uint64
		hasTotal        bool
		maxRetries      uint32
		allCompleted    = true
		anyRetrying     bool
	)

	for _, t := range r.trackers {
		base := t.Base()

		bytesDownloaded += base.BytesDownloaded

		if base.HasTotalBytes {
			totalBytes += base.TotalBytes
			hasTotal = true
		}

		if base.RetryCount > maxRetries {
			maxRetries = base.RetryCount
		}

		if !base.IsCompleted() {
			allCompleted = false
		}

		if base.IsRetrying() {
			anyRetrying = true
		}
	}

	phase := Downloading

	switch {
	case len(r.trackers) > 0 && allCompleted:
		phase = Completed
	case anyRetrying:
		phase = Connecting
	}

	return Progress{
		Phase:           phase,
		BytesDownloaded: bytesDownloaded,
		TotalBytes:      totalBytes,
		HasTotalBytes:   hasTotal,
		RetryCount:      maxRetries,
	}
}

// TotalRate returns the sum of every tracker's current rate, if at least
// one tracker has a rate and the sum is positive.
func (r *Reporter) TotalRate() (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total float64

	for _, t := range r.trackers {
		if rate, ok := t.Rate(); ok {
			total += rate
		}
	}

	return total, total > 0
}

// TotalETA returns the estimated time remaining across all trackers,
// computed from the combined remaining bytes and combined rate.
func (r *Reporter) TotalETA() (time.Duration, bool) {
	rate, ok := r.TotalRate()
	if !ok {
		return 0, false
	}

	total := r.Total()
	if !total.HasTotalBytes || total.BytesDownloaded >= total.TotalBytes {
		return 0, false
	}

	remaining := total.TotalBytes - total.BytesDownloaded

	return time.Duration(float64(remaining)/rate) * time.Second, true
}
