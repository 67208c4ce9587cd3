package archive

import (
	"compress/gzip"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"

	"github.com/Sumatoshi-tech/pulith/pkg/pulitherr"
)

// NewDecoder wraps r with a transparent decompressing Read for the given
// compression codec (spec.md §4.F). The returned closer, if non-nil, must
// be closed by the caller once done reading.
func NewDecoder(r io.Reader, c Compression) (io.Reader, io.Closer, error) {
	switch c {
	case CompressionNone:
		return r, nil, nil
	case CompressionGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, &pulitherr.Corrupted{Msg: fmt.Sprintf("gzip: %v", err)}
		}

		return gz, gz, nil
	case CompressionXz:
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, &pulitherr.Corrupted{Msg: fmt.Sprintf("xz: %v", err)}
		}

		return xzr, nil, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, &pulitherr.Corrupted{Msg: fmt.Sprintf("zstd: %v", err)}
		}

		rc := zr.IOReadCloser()

		return rc, rc, nil
	case CompressionLz4:
		return lz4.NewReader(r), nil, nil
	default:
		return nil, nil, &pulitherr.UnsupportedFormat{Format: c.String()}
	}
}
