// Package archive implements archive format detection, decompression and
// extraction (spec.md §4.F, §4.G), grounded on pulith-archive/src/{format,
// detect,entry,options,extract}.rs.
package archive

import "fmt"

// Compression identifies the compression codec wrapping a tar stream.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionXz
	CompressionZstd
	CompressionLz4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionXz:
		return "xz"
	case CompressionZstd:
		return "zstd"
	case CompressionLz4:
		return "lz4"
	default:
		return fmt.Sprintf("compression(%d)", int(c))
	}
}

// Format identifies the archive container.
type Format struct {
	Zip         bool
	Compression Compression
}

// IsZip reports whether the format is a zip archive (vs. a tar variant).
func (f Format) IsZip() bool { return f.Zip }

func tarFormat(c Compression) Format { return Format{Compression: c} }

var zipFormat = Format{Zip: true}

func (f Format) String() string {
	if f.Zip {
		return "zip"
	}

	return "tar+" + f.Compression.String()
}
