package alias

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/hbpm/pkg/clock"
	"github.com/glorpus-work/hbpm/pkg/errors"
	"github.com/glorpus-work/hbpm/pkg/model"
)

type fakeRunner struct {
	calls  int
	output string
	err    error
	dir    string
	env    []string
	args   []string
}

func (f *fakeRunner) run(_ context.Context, dir string, env []string, name string, args ...string) ([]byte, error) {
	f.calls++
	f.dir, f.env = dir, env
	f.args = append([]string{name}, args...)
	return []byte(f.output), f.err
}

func pluginDir(t *testing.T, schema string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "homebridge-foo")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if schema != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.schema.json"), []byte(schema), 0o644))
	}
	return dir
}

func TestGet_FromSchema(t *testing.T) {
	r := &fakeRunner{}
	e := New(Options{CacheTTL: time.Hour, Run: r.run})
	rec := model.PackageRecord{Name: "homebridge-foo", InstalledVersion: "1.0.0", PackagePath: pluginDir(t, `{"pluginAlias": "Foo", "pluginType": "platform"}`)}

	info, err := e.Get(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, model.AliasInfo{Alias: "Foo", Type: "platform"}, info)
	assert.Zero(t, r.calls, "extractor is not run when a schema exists")
}

func TestGet_FromExtractor(t *testing.T) {
	r := &fakeRunner{output: "some log line\n{\"pluginAlias\":\"FooAcc\",\"pluginType\":\"accessory\"}\n"}
	e := New(Options{NodePath: "/usr/bin/node", CacheTTL: time.Hour, Run: r.run})
	dir := pluginDir(t, "")
	rec := model.PackageRecord{Name: "homebridge-foo", InstalledVersion: "1.0.0", PackagePath: dir}

	info, err := e.Get(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, model.AliasInfo{Alias: "FooAcc", Type: "accessory"}, info)

	require.Len(t, r.args, 4)
	assert.Equal(t, "/usr/bin/node", r.args[0])
	assert.Equal(t, "-e", r.args[1])
	assert.Equal(t, dir, r.args[3])
	assert.NotEqual(t, dir, r.dir, "runs in a sandbox directory")
	assert.Contains(t, r.env, "HOME="+r.dir)
	assert.Len(t, r.env, 3)
}

func TestGet_FallsBackToOverrides(t *testing.T) {
	r := &fakeRunner{err: fmt.Errorf("exit status 1")}
	e := New(Options{
		CacheTTL:  time.Hour,
		Run:       r.run,
		Overrides: map[string]model.AliasInfo{"homebridge-foo": {Alias: "Configured", Type: "platform"}},
	})
	rec := model.PackageRecord{Name: "homebridge-foo", InstalledVersion: "1.0.0", PackagePath: pluginDir(t, "")}

	info, err := e.Get(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "Configured", info.Alias)

	rec.Name = "homebridge-hue"
	rec.InstalledVersion = "2.0.0"
	info, err = e.Get(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "Hue", info.Alias, "built-in table")
}

func TestGet_EmptyWhenUnknown(t *testing.T) {
	r := &fakeRunner{output: "{}\n"}
	e := New(Options{CacheTTL: time.Hour, Run: r.run})
	rec := model.PackageRecord{Name: "homebridge-unknown", InstalledVersion: "1.0.0", PackagePath: pluginDir(t, "")}

	info, err := e.Get(context.Background(), rec)
	require.NoError(t, err)
	assert.True(t, info.Empty())
}

func TestGet_CacheInvalidatedByVersionAndTTL(t *testing.T) {
	clk := clock.NewMock(time.Now())
	r := &fakeRunner{output: `{"pluginAlias":"Foo","pluginType":"platform"}`}
	e := New(Options{CacheTTL: 24 * time.Hour, Clock: clk, Run: r.run})
	rec := model.PackageRecord{Name: "homebridge-foo", InstalledVersion: "1.0.0", PackagePath: pluginDir(t, "")}
	ctx := context.Background()

	_, err := e.Get(ctx, rec)
	require.NoError(t, err)
	_, err = e.Get(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, 1, r.calls)

	rec.InstalledVersion = "1.1.0"
	_, err = e.Get(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, 2, r.calls, "version change invalidates")

	clk.Advance(24 * time.Hour)
	_, err = e.Get(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, 3, r.calls, "entry expires after the ttl")
}

func TestGet_NotInstalled(t *testing.T) {
	e := New(Options{CacheTTL: time.Hour, Run: (&fakeRunner{}).run})
	_, err := e.Get(context.Background(), model.PackageRecord{Name: "homebridge-foo"})
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestParseExtractorOutput(t *testing.T) {
	_, err := parseExtractorOutput([]byte("no json here\n"))
	assert.ErrorIs(t, err, errors.ErrNotFound)

	_, err = parseExtractorOutput([]byte("{broken\n"))
	assert.Error(t, err)
}
