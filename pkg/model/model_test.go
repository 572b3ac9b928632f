package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPluginName(t *testing.T) {
	valid := []string{
		"homebridge-foo",
		"homebridge-foo-bar_2",
		"@scope/homebridge-foo",
		"@my-org.sub/homebridge-camera",
		"homebridge-config-ui-x",
	}
	invalid := []string{
		"",
		"foo",
		"homebridge",
		"homebridge-",
		"@scope/foo",
		"homebridge-foo; rm -rf /",
		"homebridge-foo@1.0.0",
		"../homebridge-foo",
		"@/homebridge-foo",
	}
	for _, n := range valid {
		assert.True(t, ValidPluginName(n), n)
	}
	for _, n := range invalid {
		assert.False(t, ValidPluginName(n), n)
	}
}

func TestIsSelf(t *testing.T) {
	assert.True(t, IsSelf("homebridge-config-ui-x"))
	assert.True(t, IsSelf("@homebridge/homebridge-config-ui-x"))
	assert.True(t, IsSelf("Homebridge-Config-UI-X"))
	assert.False(t, IsSelf("homebridge-config-ui-x-extra"))
	assert.Equal(t, "homebridge-foo", UnscopedName("@scope/homebridge-foo"))
	assert.Equal(t, "homebridge-foo", UnscopedName("homebridge-foo"))
}

func TestOperationRequestDefaults(t *testing.T) {
	req := OperationRequest{Action: ActionInstall, Name: "homebridge-foo"}.WithDefaults()
	assert.Equal(t, VersionLatest, req.Version)
	assert.Equal(t, DefaultCols, req.Cols)
	assert.Equal(t, DefaultRows, req.Rows)
	assert.Equal(t, "homebridge-foo@latest", req.Target())

	req = OperationRequest{Name: "homebridge-foo", Version: "3.1.0", Cols: 120, Rows: 40}.WithDefaults()
	assert.Equal(t, "3.1.0", req.Version)
	assert.Equal(t, 120, req.Cols)
	assert.Equal(t, "homebridge-foo@3.1.0", req.Target())
}
