package platform

import (
	"path"
	"path/filepath"
)

// SelfBundleRoots are the global install roots from which the self package may be
// replaced with a prebuilt bundle.
var SelfBundleRoots = []string{
	"/usr/local/lib/node_modules",
	"/usr/lib/node_modules",
	"/opt/homebridge/lib/node_modules",
	"/var/lib/homebridge/node_modules",
}

// GlobalModulesDir returns the node_modules directory under an npm global prefix.
func GlobalModulesDir(goos, prefix string) string {
	if prefix == "" {
		return ""
	}
	if IsWindows(goos) {
		return filepath.Join(prefix, "node_modules")
	}
	return path.Join(prefix, "lib", "node_modules")
}

// DefaultGlobalPaths returns the OS default global module locations.
// appData is only consulted on Windows.
func DefaultGlobalPaths(goos, prefix, appData string) []string {
	if IsWindows(goos) {
		var paths []string
		if appData != "" {
			paths = append(paths, filepath.Join(appData, "npm", "node_modules"))
		}
		return paths
	}

	paths := []string{"/usr/local/lib/node_modules", "/usr/lib/node_modules"}
	if dir := GlobalModulesDir(goos, prefix); dir != "" {
		paths = append(paths, dir)
	}
	return paths
}

// IsSelfBundleRoot reports whether dir is one of SelfBundleRoots.
func IsSelfBundleRoot(dir string) bool {
	if dir == "" {
		return false
	}
	clean := path.Clean(filepath.ToSlash(dir))
	for _, root := range SelfBundleRoots {
		if clean == root {
			return true
		}
	}
	return false
}
