package errors

import (
	"errors"
	"fmt"
)

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileRename  = fmt.Errorf("failed to replace config file")
	ErrConfigMarshal     = fmt.Errorf("failed to marshal config")
	ErrUnknownConfigKey  = fmt.Errorf("unknown configuration key")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists")

	// Validation errors.
	ErrValidation   = fmt.Errorf("validation failed")
	ErrInvalidName  = fmt.Errorf("invalid plugin name")
	ErrMissingName  = fmt.Errorf("plugin name is required")
	ErrInvalidPath  = fmt.Errorf("invalid path")
	ErrInvalidInput = fmt.Errorf("invalid input")

	// Lookup errors.
	ErrNotFound       = fmt.Errorf("not found")
	ErrNotInstalled   = fmt.Errorf("plugin is not installed")
	ErrRegistryStatus = fmt.Errorf("unexpected registry response")

	// Operation errors.
	ErrSelfUninstall       = fmt.Errorf("cannot uninstall the plugin manager itself")
	ErrOperationFailed     = fmt.Errorf("operation failed")
	ErrOperationTimeout    = fmt.Errorf("operation timed out")
	ErrOperationInProgress = fmt.Errorf("another operation is already running for this plugin")
	ErrSpawnFailed         = fmt.Errorf("failed to start process")

	// Bundle errors.
	ErrBundleUnavailable = fmt.Errorf("bundle unavailable")
	ErrDownloadFailed    = fmt.Errorf("download failed")
	ErrFileHashMismatch  = fmt.Errorf("file hash mismatch")

	// Hook errors.
	ErrHookExecution = fmt.Errorf("error executing hook")
	ErrHookScript    = fmt.Errorf("hook script error")
	ErrHookLoad      = fmt.Errorf("failed to load hook")
)

// New returns an error with the given text.
func New(text string) error {
	return errors.New(text)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ErrInvalidNameWithDetails reports a plugin name that does not follow the naming convention.
func ErrInvalidNameWithDetails(name string) error {
	return fmt.Errorf("%w: %q must be homebridge-<name> or @scope/homebridge-<name>", ErrInvalidName, name)
}

// ErrNotFoundWithName reports a lookup miss for the given subject.
func ErrNotFoundWithName(what, name string) error {
	return fmt.Errorf("%s %s: %w", what, name, ErrNotFound)
}

// ErrInvalidLogLevelWithDetails reports an unsupported log level.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: invalid log level %q (must be debug, info, warn or error)", ErrConfigValidation, level)
}

// ErrInvalidOutputFormatWithDetails reports an unsupported output format.
func ErrInvalidOutputFormatWithDetails(format string) error {
	return fmt.Errorf("%w: invalid output format %q (must be text or json)", ErrConfigValidation, format)
}

// ErrNegativeDurationWithKey reports a negative duration setting.
func ErrNegativeDurationWithKey(key string) error {
	return fmt.Errorf("%w: %s cannot be negative", ErrConfigValidation, key)
}
