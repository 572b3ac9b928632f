// Package bundle decides whether a prebuilt tarball can replace a registry install and
// installs such tarballs.
package bundle

import (
	"context"
	"fmt"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/glorpus-work/hbpm/internal/logger"
	hbhttp "github.com/glorpus-work/hbpm/pkg/http"
	"github.com/glorpus-work/hbpm/pkg/model"
	"github.com/glorpus-work/hbpm/pkg/platform"
)

// CheckerOptions configure a Checker.
type CheckerOptions struct {
	BaseURL     string // third-party bundle location
	SelfBaseURL string // self package release location
	Enabled     bool   // plugin_bundles
	CustomPath  string
	Strict      bool
}

// Checker probes bundle availability.
type Checker struct {
	http *hbhttp.Client
	opts CheckerOptions
}

// NewChecker creates a Checker.
func NewChecker(client *hbhttp.Client, opts CheckerOptions) *Checker {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	opts.SelfBaseURL = strings.TrimRight(opts.SelfBaseURL, "/")
	return &Checker{http: client, opts: opts}
}

// FileName returns the bundle file name for name@version; scoped names use @ for /.
func FileName(name, version string) string {
	return fmt.Sprintf("%s-%s.tar.gz", strings.ReplaceAll(name, "/", "@"), version)
}

// PluginBundleURL returns the third-party bundle URL for name@version.
func (c *Checker) PluginBundleURL(name, version string) string {
	return c.opts.BaseURL + "/" + FileName(name, version)
}

// SelfBundleURL returns the self package bundle URL for version.
func (c *Checker) SelfBundleURL(version string) string {
	return fmt.Sprintf("%s/%s/%s", c.opts.SelfBaseURL, version, FileName(model.SelfPackage, version))
}

// IsExactVersion reports whether v is a concrete semantic version, not a range or tag.
func IsExactVersion(v string) bool {
	if v == "" || strings.ContainsAny(v, "^~<>=*xX| ") {
		return false
	}
	_, err := goversion.NewSemver(v)
	return err == nil
}

// PluginBundleEligible reports whether a third-party bundle may be used for name@version.
func (c *Checker) PluginBundleEligible(name, version string) bool {
	return c.opts.Enabled &&
		!model.IsSelf(name) &&
		IsExactVersion(version) &&
		c.opts.CustomPath != "" &&
		c.opts.Strict
}

// SelfBundleEligible reports whether the self package installed under installRoot may be
// replaced from a bundle.
func (c *Checker) SelfBundleEligible(name, installRoot string) bool {
	return model.IsSelf(name) && platform.IsSelfBundleRoot(installRoot)
}

// PluginBundle returns the bundle URL when a third-party bundle is eligible and published.
func (c *Checker) PluginBundle(ctx context.Context, name, version string) (string, bool) {
	if !c.PluginBundleEligible(name, version) {
		return "", false
	}
	u := c.PluginBundleURL(name, version)
	return u, c.probe(ctx, u)
}

// SelfBundle returns the bundle URL when a self bundle is eligible and published.
func (c *Checker) SelfBundle(ctx context.Context, version, installRoot string) (string, bool) {
	if !c.SelfBundleEligible(model.SelfPackage, installRoot) || !IsExactVersion(version) {
		return "", false
	}
	u := c.SelfBundleURL(version)
	return u, c.probe(ctx, u)
}

func (c *Checker) probe(ctx context.Context, u string) bool {
	code, err := c.http.Head(ctx, u)
	if err != nil {
		logger.Debugf("Bundle probe %s failed: %v", u, err)
		return false
	}
	return code >= 200 && code < 300
}
