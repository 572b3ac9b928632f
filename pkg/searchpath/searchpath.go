// Package searchpath computes the ordered list of directories scanned for installed plugins.
package searchpath

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/glorpus-work/hbpm/pkg/fsutil"
	"github.com/glorpus-work/hbpm/pkg/platform"
)

// Options are the inputs of Resolve. Every field is optional.
type Options struct {
	// CustomPath is the configured custom plugin directory; always searched first.
	CustomPath string
	// Strict replaces the module loader paths with the npm global prefix paths.
	Strict bool
	// NodePath is the raw NODE_PATH value.
	NodePath string
	// GlobalPrefix is the npm global prefix (npm prefix -g).
	GlobalPrefix string
	// Origin is the directory the loader paths are derived from.
	Origin string
	// Home is the user's home directory.
	Home string
	// AppData is %APPDATA% on Windows.
	AppData string
	// GOOS defaults to runtime.GOOS.
	GOOS string
	// Exists reports whether a directory exists; defaults to fsutil.IsDir.
	Exists func(string) bool
}

// FromEnvironment fills NodePath, Home, AppData and Origin from the process environment.
func FromEnvironment(opts Options) Options {
	if opts.NodePath == "" {
		opts.NodePath = os.Getenv("NODE_PATH")
	}
	if opts.Home == "" {
		opts.Home, _ = os.UserHomeDir()
	}
	if opts.AppData == "" {
		opts.AppData = os.Getenv("APPDATA")
	}
	if opts.Origin == "" {
		if exe, err := os.Executable(); err == nil {
			opts.Origin = filepath.Dir(exe)
		}
	}
	return opts
}

// Resolve returns the de-duplicated list of existing search directories in priority order:
// custom path, loader paths (or global prefix paths when strict), NODE_PATH entries,
// OS default global paths.
func Resolve(opts Options) []string {
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	exists := opts.Exists
	if exists == nil {
		exists = fsutil.IsDir
	}

	var candidates []string
	if opts.CustomPath != "" {
		candidates = append(candidates, opts.CustomPath)
	}

	if opts.Strict {
		if dir := platform.GlobalModulesDir(goos, opts.GlobalPrefix); dir != "" {
			candidates = append(candidates, dir)
		}
	} else {
		candidates = append(candidates, LoaderPaths(opts.Origin, opts.Home)...)
	}

	candidates = append(candidates, splitNodePath(opts.NodePath, goos)...)
	candidates = append(candidates, platform.DefaultGlobalPaths(goos, opts.GlobalPrefix, opts.AppData)...)

	seen := make(map[string]struct{}, len(candidates))
	result := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		c = filepath.Clean(c)
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		if !exists(c) {
			continue
		}
		result = append(result, c)
	}
	return result
}

// LoaderPaths mirrors the module loader lookup: a node_modules entry for every ancestor
// of origin (skipping ancestors that are themselves node_modules), then the legacy
// home directories.
func LoaderPaths(origin, home string) []string {
	var paths []string
	if origin != "" {
		dir := filepath.Clean(origin)
		for {
			if filepath.Base(dir) != "node_modules" {
				paths = append(paths, filepath.Join(dir, "node_modules"))
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	if home != "" {
		paths = append(paths,
			filepath.Join(home, ".node_modules"),
			filepath.Join(home, ".node_libraries"),
		)
	}
	return paths
}

func splitNodePath(nodePath, goos string) []string {
	if nodePath == "" {
		return nil
	}
	sep := ":"
	if platform.IsWindows(goos) {
		sep = ";"
	}
	var out []string
	for _, p := range strings.Split(nodePath, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
