package archive

import (
	"bufio"
	"bytes"
	"io"
)

var (
	zipMagic  = []byte{0x50, 0x4B, 0x03, 0x04}
	gzipMagic = []byte{0x1F, 0x8B}
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	xzMagic   = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}
	ustarTag  = []byte("ustar\x00")
)

// Detect identifies an archive's format from its leading bytes (spec.md
// §4.F). It returns ok=false when the bytes match no known signature.
func Detect(header []byte) (Format, bool) {
	switch {
	case bytes.HasPrefix(header, zipMagic):
		return zipFormat, true
	case bytes.HasPrefix(header, gzipMagic):
		return tarFormat(CompressionGzip), true
	case bytes.HasPrefix(header, zstdMagic):
		return tarFormat(CompressionZstd), true
	case bytes.HasPrefix(header, xzMagic):
		return tarFormat(CompressionXz), true
	case isTarHeader(header):
		return tarFormat(CompressionNone), true
	default:
		return Format{}, false
	}
}

func isTarHeader(header []byte) bool {
	return len(header) >= 512 && bytes.Equal(header[257:263], ustarTag)
}

// DetectFromReader peeks at r's header without consuming it, returning a
// reader that replays the peeked bytes followed by the rest of the stream.
func DetectFromReader(r io.Reader) (Format, io.Reader, bool) {
	br := bufio.NewReaderSize(r, 512)

	header, _ := br.Peek(512)

	format, ok := Detect(header)

	return format, br, ok
}
