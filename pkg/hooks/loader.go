package hooks

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/hbpm/internal/logger"
	"github.com/glorpus-work/hbpm/pkg/errors"
)

// FileExtension is the extension of hook scripts.
const FileExtension = ".tengo"

// LoadDir loads <dir>/<hook-type>.tengo files into the executor. A missing directory
// loads nothing.
func LoadDir(executor *TengoExecutor, dir string) ([]Hook, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read hooks directory %s", dir)
	}

	var loaded []Hook
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != FileExtension {
			continue
		}

		hookType := HookType(strings.TrimSuffix(entry.Name(), FileExtension))
		if !hookType.Valid() {
			logger.Debugf("Skipping unknown hook %s", entry.Name())
			continue
		}

		hookPath := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(hookPath)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrHookLoad, "error reading hook file %s: %v", hookPath, err)
		}
		hook := Hook{Type: hookType, Path: hookPath, Content: string(content)}
		executor.AddScript(hook.Type, hook.Content)
		loaded = append(loaded, hook)
	}
	return loaded, nil
}

// HookTemplate generates a template for a hook script.
func HookTemplate(hookType HookType) string {
	header := `// Available variables:
// - pluginName: string - name of the plugin
// - version: string - requested version
// - action: string - install, update or uninstall
// - installPath: string - plugin directory
// Set err to a non-empty string to report a failure.
`
	switch hookType {
	case PreInstall:
		return `// Pre-install hook
// Runs before a plugin is installed or updated; a failure aborts the operation.
` + header + `
// Example: refuse a plugin
/*
if pluginName == "homebridge-unwanted" {
    err = "installation of " + pluginName + " is blocked"
}
*/`

	case PostInstall:
		return `// Post-install hook
// Runs after a plugin was installed or updated.
` + header + `
// Example: log the new version
/*
fmt := import("fmt")
fmt.println(pluginName + "@" + version + " installed in " + installPath)
*/`

	case PreUninstall:
		return `// Pre-uninstall hook
// Runs before a plugin is removed; a failure aborts the operation.
` + header

	case PostUninstall:
		return `// Post-uninstall hook
// Runs after a plugin was removed.
` + header + `
// Example: remove a plugin's cache directory
/*
os := import("os")
os.remove_all("/var/lib/homebridge/" + pluginName + "-cache")
*/`

	default:
		return ""
	}
}
