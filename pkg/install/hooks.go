package install

// Hook observes or mutates the install Context at each pipeline phase
// (spec.md §4.N), grounded on pulith-install/src/hooks.rs's InstallHook
// trait. Embed NopHook to get no-op defaults for phases a hook doesn't
// care about, mirroring the Rust trait's default method bodies.
type Hook interface {
	Name() string
	PreStage(ctx *Context) error
	PostStage(ctx *Context) error
	PreActivate(ctx *Context) error
	PostActivate(ctx *Context) error
	PreRollback(ctx *Context) error
	PostCommit(ctx *Context) error
}

// NopHook implements every Hook method as a no-op. Embed it in a concrete
// hook and override only the phases that matter.
type NopHook struct{}

func (NopHook) PreStage(*Context) error     { return nil }
func (NopHook) PostStage(*Context) error    { return nil }
func (NopHook) PreActivate(*Context) error  { return nil }
func (NopHook) PostActivate(*Context) error { return nil }
func (NopHook) PreRollback(*Context) error  { return nil }
func (NopHook) PostCommit(*Context) error   { return nil }

// WindowsRegistryHook edits a registry key during activation on Windows;
// a no-op everywhere else (spec.md §4.M EditRegistry is platform-gated).
type WindowsRegistryHook struct {
	NopHook
	Key   string
	Value string
}

func (h *WindowsRegistryHook) Name() string { return "windows_registry" }

func (h *WindowsRegistryHook) PostActivate(ctx *Context) error {
	return editRegistry(h.Key, h.Value)
}

// MacOSCodeSignHook re-signs the activated tree on macOS; a no-op
// elsewhere.
type MacOSCodeSignHook struct {
	NopHook
	Identity string
}

func (h *MacOSCodeSignHook) Name() string { return "macos_codesign" }

func (h *MacOSCodeSignHook) PostActivate(ctx *Context) error {
	return codesign(ctx.Target, h.Identity)
}

// LinuxLdconfigHook refreshes the dynamic linker cache after activation on
// Linux; a no-op elsewhere.
type LinuxLdconfigHook struct {
	NopHook
}

func (h *LinuxLdconfigHook) Name() string { return "linux_ldconfig" }

func (h *LinuxLdconfigHook) PostActivate(ctx *Context) error {
	return runLdconfig()
}
