package archive

import (
	"archive/tar"
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Sumatoshi-tech/pulith/pkg/pathsafe"
	"github.com/Sumatoshi-tech/pulith/pkg/permission"
	"github.com/Sumatoshi-tech/pulith/pkg/pulitherr"
)

// sourceEntry is a format-agnostic view over one archive member, produced
// by either the zip or tar iterators below.
type sourceEntry struct {
	path       string
	size       int64
	mode       os.FileMode
	hasMode    bool
	isDir      bool
	isSymlink  bool
	linkTarget string
	body       io.Reader
}

// ExtractToDir extracts every entry from r (detected or declared as format)
// into destination, honoring opts (spec.md §4.G).
func ExtractToDir(r io.Reader, format Format, destination string, opts Options) (Report, error) {
	if format.IsZip() {
		return extractZip(r, destination, opts, format)
	}

	return extractTar(r, destination, opts, format)
}

func extractZip(r io.Reader, destination string, opts Options, format Format) (Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Report{}, &pulitherr.Corrupted{Msg: fmt.Sprintf("read zip stream: %v", err)}
	}

	zr, err := zip.NewReader(strings.NewReader(string(data)), int64(len(data)))
	if err != nil {
		return Report{}, &pulitherr.Corrupted{Msg: fmt.Sprintf("open zip: %v", err)}
	}

	report := Report{Format: format}

	for _, f := range zr.File {
		entry, err := zipSourceEntry(f)
		if err != nil {
			return Report{}, err
		}

		if err := processEntry(entry, destination, opts, &report); err != nil {
			return Report{}, err
		}
	}

	return report, nil
}

func zipSourceEntry(f *zip.File) (sourceEntry, error) {
	mode := f.Mode()

	if mode&os.ModeSymlink != 0 {
		rc, err := f.Open()
		if err != nil {
			return sourceEntry{}, &pulitherr.ExtractionFailed{Path: f.Name, Err: err}
		}
		defer rc.Close()

		target, err := io.ReadAll(rc)
		if err != nil {
			return sourceEntry{}, &pulitherr.ExtractionFailed{Path: f.Name, Err: err}
		}

		return sourceEntry{path: f.Name, isSymlink: true, linkTarget: string(target)}, nil
	}

	if mode.IsDir() || strings.HasSuffix(f.Name, "/") {
		return sourceEntry{path: f.Name, isDir: true, mode: mode, hasMode: true}, nil
	}

	rc, err := f.Open()
	if err != nil {
		return sourceEntry{}, &pulitherr.ExtractionFailed{Path: f.Name, Err: err}
	}

	return sourceEntry{
		path:    f.Name,
		size:    int64(f.UncompressedSize64),
		mode:    mode,
		hasMode: true,
		body:    rc,
	}, nil
}

func extractTar(r io.Reader, destination string, opts Options, format Format) (Report, error) {
	decoded, closer, err := NewDecoder(r, format.Compression)
	if err != nil {
		return Report{}, err
	}

	if closer != nil {
		defer closer.Close()
	}

	tr := tar.NewReader(decoded)
	report := Report{Format: format}

	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return Report{}, &pulitherr.Corrupted{Msg: fmt.Sprintf("tar: %v", err)}
		}

		entry := tarSourceEntry(hdr, tr)

		if err := processEntry(entry, destination, opts, &report); err != nil {
			return Report{}, err
		}
	}

	return report, nil
}

func tarSourceEntry(hdr *tar.Header, body io.Reader) sourceEntry {
	switch hdr.Typeflag {
	case tar.TypeDir:
		return sourceEntry{path: hdr.Name, isDir: true, mode: os.FileMode(hdr.Mode), hasMode: true}
	case tar.TypeSymlink, tar.TypeLink:
		return sourceEntry{path: hdr.Name, isSymlink: true, linkTarget: hdr.Linkname}
	default:
		return sourceEntry{
			path:    hdr.Name,
			size:    hdr.Size,
			mode:    os.FileMode(hdr.Mode),
			hasMode: true,
			body:    body,
		}
	}
}

func processEntry(se sourceEntry, destination string, opts Options, report *Report) error {
	sanitized, err := pathsafe.Sanitize(se.path, destination, opts.StripComponents)
	if err != nil {
		return err
	}

	entry := Entry{OriginalPath: se.path, TargetPath: sanitized.Resolved}

	switch {
	case se.isDir:
		entry.Kind = KindDirectory

		if err := os.MkdirAll(sanitized.Resolved, 0o755); err != nil {
			return &pulitherr.DirectoryCreationFailed{Path: sanitized.Resolved, Err: err}
		}
	case se.isSymlink:
		entry.Kind = KindSymlink
		entry.SymlinkTo = se.linkTarget

		if _, err := pathsafe.SanitizeSymlinkTarget(se.linkTarget, sanitized.Resolved, destination); err != nil {
			return err
		}

		if err := writeSymlink(sanitized.Resolved, se.linkTarget); err != nil {
			return &pulitherr.SymlinkCreationFailed{Path: sanitized.Resolved, Target: se.linkTarget, Err: err}
		}
	default:
		entry.Kind = KindFile
		entry.Mode = se.mode
		entry.HasMode = se.hasMode

		digest, written, err := writeFile(sanitized.Resolved, se.body, se.mode, opts)
		if err != nil {
			return err
		}

		entry.Digest = digest
		entry.Size = written
	}

	if !se.isDir && !se.isSymlink {
		if err := permission.Apply(sanitized.Resolved, opts.PermissionStrategy, se.mode); err != nil {
			return err
		}
	}

	report.Entries = append(report.Entries, entry)
	report.EntryCount++
	report.TotalBytes += entry.Size

	if opts.OnProgress != nil {
		opts.OnProgress(Progress{
			BytesProcessed: report.TotalBytes,
			TotalBytes:     opts.ExpectedTotalBytes,
			HasTotal:       opts.HasExpectedTotal,
			CurrentFile:    sanitized.Resolved,
		})
	}

	return nil
}

func writeFile(target string, body io.Reader, mode os.FileMode, opts Options) (digest string, written int64, err error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", 0, &pulitherr.DirectoryCreationFailed{Path: filepath.Dir(target), Err: err}
	}

	perm := mode.Perm()
	if perm == 0 {
		perm = 0o644
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return "", 0, &pulitherr.ExtractionFailed{Path: target, Err: err}
	}
	defer out.Close()

	hasher, ok, err := opts.hasher()
	if err != nil {
		return "", 0, err
	}

	dst := io.Writer(out)
	if ok {
		dst = io.MultiWriter(out, hashWriter{hasher})
	}

	n, err := io.Copy(dst, body)
	if err != nil {
		return "", 0, &pulitherr.ExtractionFailed{Path: target, Err: err}
	}

	if ok {
		digest = fmt.Sprintf("%x", hasher.Finalize())
	}

	return digest, n, nil
}

type hashWriter struct {
	h interface{ Update([]byte) }
}

func (w hashWriter) Write(p []byte) (int, error) {
	w.h.Update(p)
	return len(p), nil
}

func writeSymlink(linkPath, rawTarget string) error {
	if err := os.MkdirAll(filepath.Dir(linkPath), 0o755); err != nil {
		return err
	}

	_ = os.Remove(linkPath)

	return os.Symlink(rawTarget, linkPath)
}
