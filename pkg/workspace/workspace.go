// Package workspace implements the atomic staging-then-commit primitive
// used by extraction and install (spec.md §4.D), grounded on
// pulith-fs/src/workspace.rs and pulith-archive/src/workspace.rs.
package workspace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
)

// Workspace is a uniquely-named staging directory under a caller-provided
// root. Callers write into Staging(), then either Commit to move the whole
// tree atomically into place or Abort to discard it. Exactly one of Commit
// or Abort must be called; a finalizer cleans up staging directories that
// are dropped without either, mirroring the Drop guarantee of the original
// implementation.
type Workspace struct {
	staging  string
	finished bool
}

// Open creates a new staging directory under root.
func Open(root string) (*Workspace, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace root %s: %w", root, err)
	}

	staging := filepath.Join(root, "staging-"+uuid.NewString())

	if err := os.MkdirAll(staging, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir %s: %w", staging, err)
	}

	w := &Workspace{staging: staging}
	runtime.SetFinalizer(w, func(w *Workspace) { w.cleanupIfUnfinished() })

	return w, nil
}

// Staging returns the path of the staging directory callers should write
// into.
func (w *Workspace) Staging() string {
	return w.staging
}

// Commit atomically moves the staging tree to dest: a same-filesystem
// rename where possible, falling back to a recursive copy into a sibling
// ".staging_<basename>" directory, then an atomic rename of that sibling
// over dest. After Commit, the staging path no longer exists.
func (w *Workspace) Commit(dest string) error {
	if w.finished {
		return errors.New("workspace already committed or aborted")
	}

	w.finished = true
	runtime.SetFinalizer(w, nil)

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create destination parent for %s: %w", dest, err)
	}

	if err := os.Rename(w.staging, dest); err == nil {
		return nil
	}

	return w.commitCrossDevice(dest)
}

// commitCrossDevice handles the case where staging and dest live on
// different filesystems, where a plain rename fails.
func (w *Workspace) commitCrossDevice(dest string) error {
	sibling := filepath.Join(filepath.Dir(dest), ".staging_"+filepath.Base(dest))

	if err := os.RemoveAll(sibling); err != nil {
		return fmt.Errorf("clear stale sibling %s: %w", sibling, err)
	}

	if err := copyTree(w.staging, sibling); err != nil {
		_ = os.RemoveAll(sibling)
		return fmt.Errorf("copy staging to sibling %s: %w", sibling, err)
	}

	if err := os.RemoveAll(dest); err != nil {
		_ = os.RemoveAll(sibling)
		return fmt.Errorf("remove stale destination %s: %w", dest, err)
	}

	if err := os.Rename(sibling, dest); err != nil {
		return fmt.Errorf("rename sibling %s to %s: %w", sibling, dest, err)
	}

	if err := os.RemoveAll(w.staging); err != nil {
		return fmt.Errorf("remove staging %s after commit: %w", w.staging, err)
	}

	return nil
}

// Abort discards the staging directory without committing.
func (w *Workspace) Abort() error {
	if w.finished {
		return nil
	}

	w.finished = true
	runtime.SetFinalizer(w, nil)

	return os.RemoveAll(w.staging)
}

func (w *Workspace) cleanupIfUnfinished() {
	if w.finished {
		return
	}

	_ = os.RemoveAll(w.staging)
}

// CopyTree recursively copies src to dst, preserving symlinks as symlinks.
// Exported for callers (such as the install pipeline's staging step) that
// need the same copy semantics Commit's cross-device fallback uses.
func CopyTree(src, dst string) error {
	return copyTree(src, dst)
}

func copyTree(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}

	if info.Mode()&os.ModeSymlink != 0 {
		return copySymlink(src, dst)
	}

	if info.IsDir() {
		return copyDir(src, dst, info)
	}

	return copyFile(src, dst, info)
}

func copyDir(src, dst string, info os.FileInfo) error {
	if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		childSrc := filepath.Join(src, entry.Name())
		childDst := filepath.Join(dst, entry.Name())

		if err := copyTree(childSrc, childDst); err != nil {
			return err
		}
	}

	return nil
}

func copyFile(src, dst string, info os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}

	return out.Close()
}

func copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return err
	}

	return os.Symlink(target, dst)
}
