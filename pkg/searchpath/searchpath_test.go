package searchpath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/hbpm/pkg/platform"
)

func existsIn(set ...string) func(string) bool {
	m := make(map[string]bool, len(set))
	for _, s := range set {
		m[s] = true
	}
	return func(p string) bool { return m[p] }
}

func TestLoaderPaths(t *testing.T) {
	got := LoaderPaths("/opt/hb/node_modules/homebridge-config-ui-x/dist", "/home/pi")
	assert.Equal(t, []string{
		"/opt/hb/node_modules/homebridge-config-ui-x/dist/node_modules",
		"/opt/hb/node_modules/homebridge-config-ui-x/node_modules",
		"/opt/hb/node_modules",
		"/opt/node_modules",
		"/node_modules",
		"/home/pi/.node_modules",
		"/home/pi/.node_libraries",
	}, got)
}

func TestResolve_Order(t *testing.T) {
	opts := Options{
		CustomPath:   "/var/lib/homebridge/node_modules",
		NodePath:     "/srv/extra:/usr/lib/node_modules",
		GlobalPrefix: "/usr/local",
		Origin:       "/usr/local/lib/node_modules/homebridge-config-ui-x",
		Home:         "/home/pi",
		GOOS:         platform.OSLinux,
		Exists: existsIn(
			"/var/lib/homebridge/node_modules",
			"/usr/local/lib/node_modules/homebridge-config-ui-x/node_modules",
			"/usr/local/lib/node_modules",
			"/srv/extra",
			"/usr/lib/node_modules",
			"/home/pi/.node_modules",
		),
	}

	assert.Equal(t, []string{
		"/var/lib/homebridge/node_modules",
		"/usr/local/lib/node_modules/homebridge-config-ui-x/node_modules",
		"/usr/local/lib/node_modules",
		"/home/pi/.node_modules",
		"/srv/extra",
		"/usr/lib/node_modules",
	}, Resolve(opts))
}

func TestResolve_Strict(t *testing.T) {
	opts := Options{
		CustomPath:   "/var/lib/homebridge/node_modules",
		Strict:       true,
		GlobalPrefix: "/opt/node",
		Origin:       "/home/pi/app",
		Home:         "/home/pi",
		GOOS:         platform.OSLinux,
		Exists: existsIn(
			"/var/lib/homebridge/node_modules",
			"/opt/node/lib/node_modules",
			"/home/pi/app/node_modules",
			"/usr/lib/node_modules",
		),
	}

	assert.Equal(t, []string{
		"/var/lib/homebridge/node_modules",
		"/opt/node/lib/node_modules",
		"/usr/lib/node_modules",
	}, Resolve(opts), "loader paths are not consulted in strict mode")
}

func TestResolve_DeduplicatesAndDropsMissing(t *testing.T) {
	root := t.TempDir()
	custom := filepath.Join(root, "plugins")
	require.NoError(t, os.MkdirAll(custom, 0o755))

	got := Resolve(Options{
		CustomPath: custom,
		NodePath:   custom + ":" + custom + "/:" + filepath.Join(root, "missing"),
		GOOS:       platform.OSLinux,
		Home:       filepath.Join(root, "home"),
		Origin:     filepath.Join(root, "nowhere"),
	})
	assert.Equal(t, custom, got[0])
	assert.Equal(t, 1, countOf(got, custom))
	assert.NotContains(t, got, filepath.Join(root, "missing"))
}

func TestResolve_Empty(t *testing.T) {
	got := Resolve(Options{GOOS: platform.OSLinux, Exists: func(string) bool { return false }})
	assert.Empty(t, got)
}

func countOf(list []string, s string) int {
	n := 0
	for _, v := range list {
		if v == s {
			n++
		}
	}
	return n
}
