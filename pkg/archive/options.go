package archive

import (
	"io/fs"

	"github.com/Sumatoshi-tech/pulith/pkg/permission"
	"github.com/Sumatoshi-tech/pulith/pkg/verify"
)

// HashAlgorithm selects the digest computed per extracted entry.
type HashAlgorithm int

const (
	HashNone HashAlgorithm = iota
	HashSHA256
	HashBLAKE3
)

// Progress reports extraction advancement (spec.md §4.G).
type Progress struct {
	BytesProcessed int64
	TotalBytes     int64
	HasTotal       bool
	CurrentFile    string
}

// Percentage returns the completion fraction in [0, 100], or (0, false) if
// no total is known.
func (p Progress) Percentage() (float64, bool) {
	if !p.HasTotal {
		return 0, false
	}

	if p.TotalBytes == 0 {
		return 0, true
	}

	return float64(p.BytesProcessed) / float64(p.TotalBytes) * 100, true
}

// Options configures an extraction (spec.md §4.G).
type Options struct {
	PermissionStrategy  permission.Strategy
	HashAlgorithm       HashAlgorithm
	StripComponents     int
	ExpectedTotalBytes  int64
	HasExpectedTotal    bool
	OnProgress          func(Progress)
}

func (o Options) hasher() (verify.Hasher, bool, error) {
	switch o.HashAlgorithm {
	case HashNone:
		return nil, false, nil
	case HashSHA256:
		h, err := verify.NewHasher(verify.SHA256)
		return h, true, err
	case HashBLAKE3:
		h, err := verify.NewHasher(verify.BLAKE3)
		return h, true, err
	default:
		return nil, false, nil
	}
}

func archiveModeOf(e Entry) fs.FileMode {
	if !e.HasMode {
		return 0
	}

	return e.Mode
}
