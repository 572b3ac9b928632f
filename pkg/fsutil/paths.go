package fsutil

import (
	"os"
	"path/filepath"
)

// AppName is the directory name used under the user config and cache roots.
const AppName = "hbpm"

// GetCacheDir returns the platform-specific cache directory for the application.
func GetCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, AppName), nil
}

// GetConfigDir returns the platform-specific config directory for the application.
func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}
