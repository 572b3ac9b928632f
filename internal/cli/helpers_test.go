package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/glorpus-work/hbpm/pkg/config"
	"github.com/glorpus-work/hbpm/pkg/model"
)

func TestSplitTarget(t *testing.T) {
	tests := []struct {
		arg, name, version string
	}{
		{"homebridge-dummy", "homebridge-dummy", ""},
		{"homebridge-dummy@1.2.0", "homebridge-dummy", "1.2.0"},
		{"@scope/homebridge-cam", "@scope/homebridge-cam", ""},
		{"@scope/homebridge-cam@beta", "@scope/homebridge-cam", "beta"},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			name, version := splitTarget(tt.arg)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.version, version)
		})
	}
}

func TestTerminalFlagsRequest(t *testing.T) {
	term := terminalFlags{cols: 120, rows: 40}
	req := term.request(model.ActionInstall, "homebridge-dummy@1.0.0")
	assert.Equal(t, model.OperationRequest{
		Action:  model.ActionInstall,
		Name:    "homebridge-dummy",
		Version: "1.0.0",
		Cols:    120,
		Rows:    40,
	}, req)
}

func TestSelfInstallRoot(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		s := config.Settings{SelfInstallPath: "/opt/hb/lib/node_modules/"}
		assert.Equal(t, "/opt/hb/lib/node_modules", selfInstallRoot(s, nil))
	})

	t.Run("first searched default", func(t *testing.T) {
		if goos() == "windows" {
			t.Skip("unix paths")
		}
		s := config.Settings{}
		got := selfInstallRoot(s, []string{"/custom", "/usr/lib/node_modules"})
		assert.Equal(t, "/usr/lib/node_modules", got)
	})

	t.Run("fallback", func(t *testing.T) {
		if goos() == "windows" {
			t.Skip("unix paths")
		}
		assert.Equal(t, "/usr/local/lib/node_modules", selfInstallRoot(config.Settings{}, nil))
	})
}

func TestWithUpdates(t *testing.T) {
	records := []model.PackageRecord{
		{Name: "homebridge-a", UpdateAvailable: true},
		{Name: "homebridge-b"},
		{Name: "homebridge-c", BetaUpdateAvailable: true},
	}
	got := withUpdates(records)
	assert.Len(t, got, 2)
	assert.Equal(t, "homebridge-a", got[0].Name)
	assert.Equal(t, "homebridge-c", got[1].Name)
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "disabled", status(model.PackageRecord{Disabled: true, UpdateAvailable: true}))
	assert.Equal(t, "update", status(model.PackageRecord{UpdateAvailable: true}))
	assert.Equal(t, "beta 2.0.0-beta.1", status(model.PackageRecord{BetaUpdateAvailable: true, BetaVersion: "2.0.0-beta.1"}))
	assert.Equal(t, "ok", status(model.PackageRecord{}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("  short ", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
