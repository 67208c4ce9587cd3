package install

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/Sumatoshi-tech/pulith/pkg/pulitherr"
	"github.com/Sumatoshi-tech/pulith/pkg/workspace"
)

// State is a step in the install pipeline's state machine (spec.md §4.N).
type State int

const (
	Init State = iota
	Staged
	Transformed
	Activated
	Committed
	RolledBack
)

func (s State) String() string {
	switch s {
	case Init:
		return "init"
	case Staged:
		return "staged"
	case Transformed:
		return "transformed"
	case Activated:
		return "activated"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// Pipeline orchestrates Stage -> Transform -> Activate -> Commit against a
// verified artifact tree, rolling back automatically on any failure after
// the first mutation (spec.md §4.N).
type Pipeline struct {
	stagingRoot string
	activeRoot  string
	transforms  []Transform
	hooks       []Hook
}

// New creates a Pipeline rooted at stagingRoot (where staged copies live
// until activated) and activeRoot (where activation links are created).
func New(stagingRoot, activeRoot string) *Pipeline {
	return &Pipeline{stagingRoot: stagingRoot, activeRoot: activeRoot}
}

// WithTransform appends a transform to be applied, in order, during the
// Transform phase.
func (p *Pipeline) WithTransform(t Transform) *Pipeline {
	p.transforms = append(p.transforms, t)
	return p
}

// WithHook registers a lifecycle hook.
func (p *Pipeline) WithHook(h Hook) *Pipeline {
	p.hooks = append(p.hooks, h)
	return p
}

// Run installs the verified artifact tree at source, returning the final
// State (Committed on success, RolledBack on any failure) and the first
// error encountered, if any.
func (p *Pipeline) Run(source string) (State, error) {
	ctx := NewContext(p.stagingRoot, p.activeRoot)
	ctx.Source = source

	state, err := p.runForward(ctx)
	if err == nil {
		return state, nil
	}

	for _, h := range p.hooks {
		_ = h.PreRollback(ctx) // best-effort: rollback hook failures are suppressed
	}

	p.rollback(ctx, state)

	return RolledBack, err
}

func (p *Pipeline) runForward(ctx *Context) (State, error) {
	for _, h := range p.hooks {
		if err := h.PreStage(ctx); err != nil {
			return Init, hookErr(h, err)
		}
	}

	if err := p.stage(ctx); err != nil {
		return Init, &pulitherr.Rollback{Step: "stage", Err: err}
	}

	state := Staged

	for _, h := range p.hooks {
		if err := h.PostStage(ctx); err != nil {
			return state, hookErr(h, err)
		}
	}

	if err := p.transform(ctx); err != nil {
		return state, &pulitherr.Rollback{Step: "transform", Err: err}
	}

	state = Transformed

	for _, h := range p.hooks {
		if err := h.PreActivate(ctx); err != nil {
			return state, hookErr(h, err)
		}
	}

	if err := p.activate(ctx); err != nil {
		return state, &pulitherr.Rollback{Step: "activate", Err: err}
	}

	state = Activated

	for _, h := range p.hooks {
		if err := h.PostActivate(ctx); err != nil {
			return state, hookErr(h, err)
		}
	}

	state = Committed

	for _, h := range p.hooks {
		if err := h.PostCommit(ctx); err != nil {
			return state, hookErr(h, err)
		}
	}

	return state, nil
}

func hookErr(h Hook, err error) error {
	return &pulitherr.Hook{Name: h.Name(), Err: err}
}

// stage copies the verified artifact tree into a fresh staging directory
// named by a random UUID, tracked in ctx for rollback.
func (p *Pipeline) stage(ctx *Context) error {
	if err := os.MkdirAll(p.stagingRoot, 0o755); err != nil {
		return err
	}

	stagingPath := filepath.Join(p.stagingRoot, uuid.NewString())

	if err := workspace.CopyTree(ctx.Source, stagingPath); err != nil {
		return err
	}

	ctx.StagedDirs = append(ctx.StagedDirs, stagingPath)
	ctx.Extra["staging_path"] = stagingPath

	return nil
}

// transform applies every declared Transform, in order, against the
// staging directory created by stage.
func (p *Pipeline) transform(ctx *Context) error {
	stagingPath, _ := ctx.Extra["staging_path"].(string)

	for _, t := range p.transforms {
		if err := t.Apply(stagingPath); err != nil {
			return err
		}
	}

	return nil
}

// activate links the staging directory into the active root under the
// source's base name, failing if a target with that name already exists.
func (p *Pipeline) activate(ctx *Context) error {
	stagingPath, _ := ctx.Extra["staging_path"].(string)

	if err := os.MkdirAll(p.activeRoot, 0o755); err != nil {
		return err
	}

	target := filepath.Join(p.activeRoot, filepath.Base(ctx.Source))

	if _, err := os.Lstat(target); err == nil {
		return &pulitherr.InvalidPath{Path: target}
	}

	if err := activateLink(stagingPath, target); err != nil {
		return err
	}

	ctx.Target = target
	ctx.CreatedLinks = append(ctx.CreatedLinks, target)

	return nil
}

// rollback reverses mutations in the opposite order they were applied:
// created links first, then staged directories. Best-effort: failures are
// swallowed since rollback has no further recovery path.
func (p *Pipeline) rollback(ctx *Context, reached State) {
	if reached >= Activated {
		for i := len(ctx.CreatedLinks) - 1; i >= 0; i-- {
			_ = os.RemoveAll(ctx.CreatedLinks[i])
		}
	}

	if reached >= Staged {
		for i := len(ctx.StagedDirs) - 1; i >= 0; i-- {
			_ = os.RemoveAll(ctx.StagedDirs[i])
		}
	}
}
