package hooks

import "github.com/glorpus-work/hbpm/pkg/model"

// HookType represents the point in an operation at which a hook runs.
type HookType string

// Supported hook types.
const (
	PreInstall    HookType = "pre-install"
	PostInstall   HookType = "post-install"
	PreUninstall  HookType = "pre-uninstall"
	PostUninstall HookType = "post-uninstall"
)

// AllTypes lists every hook type in execution order.
var AllTypes = []HookType{PreInstall, PostInstall, PreUninstall, PostUninstall}

// Valid reports whether t is a supported hook type.
func (t HookType) Valid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ForAction returns the pre and post hook types for an operation. Updates use the
// install hooks.
func ForAction(action model.Action) (pre, post HookType) {
	if action == model.ActionUninstall {
		return PreUninstall, PostUninstall
	}
	return PreInstall, PostInstall
}

// Hook is a hook script with its type and content.
type Hook struct {
	Type    HookType
	Path    string
	Content string
}

// HookContext contains information passed to hooks.
type HookContext struct {
	PluginName  string
	Version     string
	Action      model.Action
	InstallPath string
	Vars        map[string]interface{}
}
