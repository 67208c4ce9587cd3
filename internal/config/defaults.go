package config

import (
	"path/filepath"

	"github.com/Sumatoshi-tech/pulith/pkg/platform"
)

// Default configuration values, applied by LoadConfig before the config
// file and environment are layered on top.
const (
	DefaultCacheMaxSize     = "1GiB"
	DefaultCacheTTL         = "24h"
	DefaultCachePersistMeta = true

	DefaultThrottleRate  = ""
	DefaultThrottleBurst = 64 * 1024

	DefaultRetryMaxRetries = 5
	DefaultRetryBaseDelay  = "500ms"

	DefaultHTTPTimeout      = "30s"
	DefaultHTTPMaxRedirects = 10

	DefaultCheckpointSweepAge = "168h"
)

// defaultStoreRoot and its cache/checkpoint siblings live under the
// platform's conventional user-data directory, memoized via pkg/platform.
func defaultStoreRoot() string {
	return filepath.Join(platform.UserData(), "pulith", "store")
}

func defaultCacheDir() string {
	return filepath.Join(platform.UserCache(), "pulith")
}

func defaultCheckpointDir() string {
	return filepath.Join(platform.UserCache(), "pulith", "checkpoints")
}
