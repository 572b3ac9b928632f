// Package platform provides operating system constants and the well-known
// global node_modules locations used when resolving plugin search paths.
package platform

const (
	// OSWindows represents the Windows operating system.
	OSWindows = "windows"
	// OSLinux represents the Linux operating system.
	OSLinux = "linux"
	// OSDarwin represents the macOS operating system.
	OSDarwin = "darwin"
	// OSFreeBSD represents the FreeBSD operating system.
	OSFreeBSD = "freebsd"
)

// IsWindows reports whether goos is Windows.
func IsWindows(goos string) bool {
	return goos == OSWindows
}
