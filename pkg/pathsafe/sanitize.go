// Package pathsafe normalizes archive-entry paths and rejects any path that
// would escape its destination (spec.md §4.A — the zip-slip guard shared by
// every archive format the extractor supports).
package pathsafe

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Sumatoshi-tech/pulith/pkg/pulitherr"
)

// Sanitized pairs an archive entry's original path with its resolved,
// destination-rooted path (spec.md §3).
type Sanitized struct {
	Original string
	Resolved string
}

// driveLetterPattern matches a Windows drive prefix such as "C:" or "c:\".
// Per spec.md §4.A these are treated as absolute regardless of host OS, so
// archives built on Windows can't escape extraction on Unix or vice versa.
var driveLetterPattern = regexp.MustCompile(`^[a-zA-Z]:`)

// IsAbsolute reports whether p is an absolute path under either Unix or
// Windows conventions.
func IsAbsolute(p string) bool {
	if p == "" {
		return false
	}

	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) {
		return true
	}

	return driveLetterPattern.MatchString(p)
}

// Normalize collapses "." and ".." components and unifies separators to "/".
// Popping past the root yields an empty (base-relative) result rather than
// an error; callers that need to reject escapes call Sanitize instead.
// Normalize is idempotent: Normalize(Normalize(p)) == Normalize(p).
func Normalize(p string) string {
	unified := strings.NewReplacer(`\`, "/").Replace(p)

	var stack []string

	for _, part := range strings.Split(unified, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, part)
		}
	}

	return strings.Join(stack, "/")
}

// Sanitize validates and resolves an archive entry path against base,
// optionally stripping the first stripN path components first (spec.md
// §4.A). It rejects absolute entry paths and any path that would escape
// base after normalization.
func Sanitize(entryPath, base string, stripN int) (Sanitized, error) {
	if IsAbsolute(entryPath) {
		resolved := filepath.Join(base, Normalize(entryPath))

		return Sanitized{}, &pulitherr.ZipSlip{Entry: entryPath, Resolved: resolved}
	}

	baseNative := withoutTrailingSeparator(filepath.FromSlash(filepath.Clean(base)))

	if raw := filepath.Join(base, filepath.FromSlash(strings.ReplaceAll(entryPath, `\`, "/"))); !withinBase(raw, baseNative) {
		return Sanitized{}, &pulitherr.ZipSlip{Entry: entryPath, Resolved: raw}
	}

	normalized := Normalize(entryPath)

	processed, err := stripComponents(normalized, stripN, entryPath)
	if err != nil {
		return Sanitized{}, err
	}

	resolvedNative := filepath.Join(base, filepath.FromSlash(processed))

	if !withinBase(resolvedNative, baseNative) {
		return Sanitized{}, &pulitherr.ZipSlip{Entry: entryPath, Resolved: resolvedNative}
	}

	return Sanitized{Original: entryPath, Resolved: resolvedNative}, nil
}

// SanitizeSymlinkTarget validates a symlink's target, which resolves
// relative to the symlink's own location rather than to base directly
// (spec.md §4.A). Absolute targets are always rejected.
func SanitizeSymlinkTarget(target, symlinkLocation, base string) (string, error) {
	if IsAbsolute(target) {
		return "", &pulitherr.AbsoluteSymlinkTarget{Target: target, Symlink: symlinkLocation}
	}

	symlinkDir := filepath.Dir(filepath.FromSlash(symlinkLocation))
	resolvedNative := filepath.Join(symlinkDir, filepath.FromSlash(strings.ReplaceAll(target, `\`, "/")))
	baseNative := withoutTrailingSeparator(filepath.FromSlash(filepath.Clean(base)))

	if !withinBase(resolvedNative, baseNative) {
		return "", &pulitherr.SymlinkEscape{Target: target, Resolved: resolvedNative}
	}

	return resolvedNative, nil
}

func stripComponents(normalized string, stripN int, originalForError string) (string, error) {
	if stripN <= 0 {
		return normalized, nil
	}

	if normalized == "" {
		return "", &pulitherr.NoComponentsRemaining{Original: originalForError, Count: stripN}
	}

	parts := strings.Split(normalized, "/")
	if len(parts) <= stripN {
		return "", &pulitherr.NoComponentsRemaining{Original: originalForError, Count: stripN}
	}

	return strings.Join(parts[stripN:], "/"), nil
}

// withinBase reports whether resolved is base itself or a descendant of it,
// ignoring a trailing separator on either side (spec.md §4.A tie-break).
func withinBase(resolved, base string) bool {
	resolved = withoutTrailingSeparator(resolved)

	if resolved == base {
		return true
	}

	return strings.HasPrefix(resolved, base+string(filepath.Separator))
}

func withoutTrailingSeparator(p string) string {
	return strings.TrimRight(p, string(filepath.Separator))
}
