// Package install implements the staged install pipeline state machine
// (spec.md §4.M-§4.N), grounded on pulith-install/src/{pipeline,hooks}.rs
// and archive/pulith-install/src/transform.rs.
package install

// Context carries pipeline state through a single install run, mutated by
// hooks and consulted during rollback.
type Context struct {
	StagingRoot string
	ActiveRoot  string

	// StagedDirs records every staging directory created during Stage, in
	// application order, so rollback can remove them in reverse.
	StagedDirs []string

	// CreatedLinks records every activation link created during Activate,
	// in application order, so rollback can remove them in reverse.
	CreatedLinks []string

	// Source is the verified artifact tree being installed.
	Source string

	// Target is the active_root path the staged tree is linked to.
	Target string

	// Extra lets hooks pass arbitrary state to later phases without the
	// pipeline needing to know about it.
	Extra map[string]any
}

// NewContext creates a Context for one pipeline run.
func NewContext(stagingRoot, activeRoot string) *Context {
	return &Context{
		StagingRoot: stagingRoot,
		ActiveRoot:  activeRoot,
		Extra:       make(map[string]any),
	}
}
