package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T, level string, format OutputFormat, fn func()) string {
	t.Helper()
	buf := &bytes.Buffer{}
	SetTestOutput(buf)
	defer UnsetTestOutput()

	logger = nil
	InitLogger(level, format)
	fn()
	return buf.String()
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		logFn    func()
		contains []string
		excludes []string
	}{
		{
			name:     "info log",
			level:    "info",
			logFn:    func() { Info("scan complete") },
			contains: []string{"scan complete", "level=INFO"},
		},
		{
			name:     "debug suppressed at info",
			level:    "info",
			logFn:    func() { Debug("manifest parsed") },
			excludes: []string{"manifest parsed"},
		},
		{
			name:     "debug shown at debug",
			level:    "debug",
			logFn:    func() { Debug("manifest parsed") },
			contains: []string{"manifest parsed", "level=DEBUG"},
		},
		{
			name:  "warn with fields",
			level: "warn",
			logFn: func() {
				Warn("skipping plugin", Fields{"plugin": "homebridge-bad", "attempt": 2})
			},
			contains: []string{"skipping plugin", "plugin=homebridge-bad", "attempt=2"},
		},
		{
			name:     "success carries status",
			level:    "info",
			logFn:    func() { Success("installed homebridge-foo") },
			contains: []string{"installed homebridge-foo", "status=success"},
		},
		{
			name:  "formatted error with fields",
			level: "error",
			logFn: func() {
				ErrorfWithFields(Fields{"code": 1}, "npm exited with %d", 1)
			},
			contains: []string{"npm exited with 1", "code=1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureOutput(t, tt.level, FormatText, tt.logFn)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, notWant := range tt.excludes {
				assert.NotContains(t, out, notWant)
			}
		})
	}
}

func TestJSONFormat(t *testing.T) {
	out := captureOutput(t, "info", FormatJSON, func() {
		Info("registry lookup", Fields{"plugin": "homebridge-foo", "cached": true, "status": 200})
	})

	assert.Contains(t, out, `"msg":"registry lookup"`)
	assert.Contains(t, out, `"level":"INFO"`)
	assert.Contains(t, out, `"plugin":"homebridge-foo"`)
	assert.Contains(t, out, `"cached":true`)
	assert.Contains(t, out, `"status":200`)
}

func TestSetOutputFormatKeepsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	SetTestOutput(buf)
	defer UnsetTestOutput()

	logger = nil
	InitLogger("warn", FormatText)
	SetOutputFormat(FormatJSON)

	Info("hidden")
	Warn("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"visible"`)
}

func TestSetLevel(t *testing.T) {
	out := captureOutput(t, "error", FormatText, func() {
		Info("before")
		SetLevel("debug")
		Debug("after")
	})

	assert.NotContains(t, out, "before")
	assert.Contains(t, out, "after")
}

func TestGetLogger_InitializesIfNil(t *testing.T) {
	logger = nil
	assert.NotPanics(t, func() {
		assert.NotNil(t, GetLogger())
	})
}

func TestMergeFields(t *testing.T) {
	attrs := mergeFields(Fields{"a": 1}, Fields{"a": 2, "b": "x"})
	got := make(map[string]interface{})
	for i := 0; i < len(attrs); i += 2 {
		got[attrs[i].(string)] = attrs[i+1]
	}
	assert.Equal(t, map[string]interface{}{"a": 2, "b": "x"}, got)
	assert.Len(t, attrs, 4)
}
