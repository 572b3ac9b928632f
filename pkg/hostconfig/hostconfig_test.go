package hostconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/hbpm/pkg/errors"
)

const sample = `{
  "bridge": {"name": "Homebridge", "port": 51826},
  "platforms": [
    {"platform": "config", "name": "Config"},
    {"platform": "Camera-ffmpeg", "cameras": []},
    "not-an-object"
  ],
  "accessories": [
    {"accessory": "Camera-ffmpeg", "name": "Door"}
  ],
  "disabledPlugins": ["homebridge-camera-ffmpeg", "@acme/homebridge-cam"]
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRead(t *testing.T) {
	doc, err := Read(writeConfig(t, sample))
	require.NoError(t, err)

	assert.True(t, doc.IsDisabled("homebridge-camera-ffmpeg"))
	assert.True(t, doc.IsDisabled("@acme/homebridge-cam"))
	assert.False(t, doc.IsDisabled("homebridge-foo"))
	assert.Equal(t, map[string]bool{"homebridge-camera-ffmpeg": true, "@acme/homebridge-cam": true}, doc.Disabled())
	assert.Equal(t, 2, doc.ConfiguredBlocks("Camera-ffmpeg"))
	assert.Equal(t, 0, doc.ConfiguredBlocks(""))
}

func TestRead_Missing(t *testing.T) {
	doc, err := Read(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Empty(t, doc.Disabled())

	doc, err = Read("")
	require.NoError(t, err)
	assert.Empty(t, doc.DisabledPlugins)
}

func TestRead_Invalid(t *testing.T) {
	_, err := Read(writeConfig(t, `{"disabledPlugins": "oops"`))
	assert.ErrorIs(t, err, errors.ErrValidation)
}
