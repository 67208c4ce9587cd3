package install

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Sumatoshi-tech/pulith/pkg/pulitherr"
)

// Transform is one declared modification applied to a staged tree during
// the Transform phase (spec.md §4.M). All paths it touches are relative to
// the staging root passed to Apply.
type Transform interface {
	Step() string
	Apply(stagingRoot string) error
}

// Relocate moves root/From to root/To, recursively. A missing source is a
// no-op, matching the original's RelocateTransform.
type Relocate struct {
	From string
	To   string
}

func (Relocate) Step() string { return "relocate" }

func (r Relocate) Apply(stagingRoot string) error {
	src := filepath.Join(stagingRoot, r.From)
	dst := filepath.Join(stagingRoot, r.To)

	if _, err := os.Lstat(src); os.IsNotExist(err) {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return wrapTransform("relocate", err)
	}

	if err := os.Rename(src, dst); err != nil {
		return wrapTransform("relocate", err)
	}

	return nil
}

// RewriteShebang replaces the first line of each listed file with
// "#!<Interpreter>" when that file begins with "#!". Non-shebang files and
// missing files are skipped silently.
type RewriteShebang struct {
	Files       []string
	Interpreter string
}

func (RewriteShebang) Step() string { return "rewrite_shebang" }

func (r RewriteShebang) Apply(stagingRoot string) error {
	for _, f := range r.Files {
		path := filepath.Join(stagingRoot, f)

		if err := rewriteShebangFile(path, r.Interpreter); err != nil {
			return wrapTransform("rewrite_shebang", err)
		}
	}

	return nil
}

func rewriteShebangFile(path, interpreter string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}

	if info.IsDir() {
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if !bytes.HasPrefix(content, []byte("#!")) {
		return nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var rest []string
	if scanner.Scan() { // discard the original shebang line
		for scanner.Scan() {
			rest = append(rest, scanner.Text())
		}
	}

	newContent := "#!" + interpreter
	if len(rest) > 0 {
		newContent += "\n" + strings.Join(rest, "\n")
	}

	return os.WriteFile(path, []byte(newContent), info.Mode().Perm())
}

// PatchRpath rewrites ELF runtime search paths under old prefixes to new
// prefixes for each listed binary. It shells out to patchelf, matching the
// original's own simplified implementation; patchelf's absence or a
// non-Linux platform makes this a no-op, never a failure.
type PatchRpath struct {
	Binaries  []string
	OldPrefix string
	NewPrefix string
}

func (PatchRpath) Step() string { return "patch_rpath" }

func (p PatchRpath) Apply(stagingRoot string) error {
	for _, bin := range p.Binaries {
		path := filepath.Join(stagingRoot, bin)

		if err := patchRpath(path, p.OldPrefix, p.NewPrefix); err != nil {
			return wrapTransform("patch_rpath", err)
		}
	}

	return nil
}

// RunProcess spawns Cmd with Args and Env (appended to the current
// environment) and waits for it, failing on a non-zero exit.
type RunProcess struct {
	Cmd  string
	Args []string
	Env  map[string]string
}

func (RunProcess) Step() string { return "run_process" }

func (r RunProcess) Apply(stagingRoot string) error {
	cmd := exec.Command(r.Cmd, r.Args...)
	cmd.Dir = stagingRoot
	cmd.Env = os.Environ()

	for k, v := range r.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	if err := cmd.Run(); err != nil {
		return wrapTransform("run_process", err)
	}

	return nil
}

// SetPermissions applies Mode to each listed file under the staging root
// (spec.md §4.C's custom-mode strategy, applied here explicitly rather
// than derived from an archive entry).
type SetPermissions struct {
	Files []string
	Mode  os.FileMode
}

func (SetPermissions) Step() string { return "set_permissions" }

func (s SetPermissions) Apply(stagingRoot string) error {
	for _, f := range s.Files {
		path := filepath.Join(stagingRoot, f)
		if err := os.Chmod(path, s.Mode); err != nil {
			return wrapTransform("set_permissions", err)
		}
	}

	return nil
}

// EditRegistry writes Key/Value into the Windows registry during
// activation; a no-op on every other platform.
type EditRegistry struct {
	Key   string
	Value string
}

func (EditRegistry) Step() string { return "edit_registry" }

func (e EditRegistry) Apply(string) error {
	if err := editRegistry(e.Key, e.Value); err != nil {
		return wrapTransform("edit_registry", err)
	}

	return nil
}

func wrapTransform(step string, err error) error {
	return &pulitherr.Transform{Step: step, Err: err}
}
