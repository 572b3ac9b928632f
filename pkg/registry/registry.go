// Package registry talks to the npm registry and to the GitHub releases API.
// Successful registry responses are cached by exact request URL; misses are never cached.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	goversion "github.com/hashicorp/go-version"

	"github.com/glorpus-work/hbpm/internal/logger"
	"github.com/glorpus-work/hbpm/pkg/auth"
	"github.com/glorpus-work/hbpm/pkg/cache"
	"github.com/glorpus-work/hbpm/pkg/clock"
	"github.com/glorpus-work/hbpm/pkg/errors"
	hbhttp "github.com/glorpus-work/hbpm/pkg/http"
	"github.com/glorpus-work/hbpm/pkg/model"
)

// DefaultSearchSize is the number of results requested from the search endpoint.
const DefaultSearchSize = 99

// Options configure a Client.
type Options struct {
	RegistryURL string
	GitHubURL   string
	Timeout     time.Duration
	CacheTTL    time.Duration
	Clock       clock.Clock
	Auth        auth.Authenticator // optional
}

// Client is the registry client.
type Client struct {
	http      *hbhttp.Client
	baseURL   string
	githubURL string
	cache     *cache.TTL[string, []byte]
}

// New creates a registry client.
func New(opts Options) *Client {
	return &Client{
		http:      hbhttp.NewClient(opts.Timeout).WithAuth(opts.Auth),
		baseURL:   strings.TrimRight(opts.RegistryURL, "/"),
		githubURL: strings.TrimRight(opts.GitHubURL, "/"),
		cache:     cache.NewTTL[string, []byte](opts.CacheTTL, opts.Clock),
	}
}

// EncodeName escapes a (possibly scoped) package name for use in a registry path.
func EncodeName(name string) string {
	return strings.Replace(name, "/", "%2f", 1)
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	if data, ok := c.cache.Get(rawURL); ok {
		return data, nil
	}
	data, err := c.http.GetBytes(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}
	c.cache.Set(rawURL, data)
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	data, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "failed to decode response from %s", rawURL)
	}
	return nil
}

// Lookup fetches the full registry document for name.
func (c *Client) Lookup(ctx context.Context, name string) (*Packument, error) {
	var p Packument
	if err := c.getJSON(ctx, c.baseURL+"/"+EncodeName(name), &p); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.ErrNotFoundWithName("package", name)
		}
		return nil, err
	}
	return &p, nil
}

// LookupLatestVersion returns the version tagged latest.
func (c *Client) LookupLatestVersion(ctx context.Context, name string) (string, error) {
	var v VersionInfo
	if err := c.getJSON(ctx, c.baseURL+"/"+EncodeName(name)+"/latest", &v); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return "", errors.ErrNotFoundWithName("package", name)
		}
		return "", err
	}
	if v.Version == "" {
		return "", fmt.Errorf("registry returned no latest version for %s: %w", name, errors.ErrRegistryStatus)
	}
	return v.Version, nil
}

// Versions lists the published versions of name, newest first, plus its dist-tags.
func (c *Client) Versions(ctx context.Context, name string) (*Versions, error) {
	p, err := c.Lookup(ctx, name)
	if err != nil {
		return nil, err
	}

	out := &Versions{
		Tags:    p.DistTags,
		Engines: make(map[string]map[string]string),
	}
	for v, info := range p.Versions {
		out.Versions = append(out.Versions, v)
		if len(info.Engines) > 0 {
			out.Engines[v] = info.Engines
		}
	}
	sortVersionsDesc(out.Versions)
	return out, nil
}

func sortVersionsDesc(vs []string) {
	sort.SliceStable(vs, func(i, j int) bool {
		a, errA := goversion.NewVersion(vs[i])
		b, errB := goversion.NewVersion(vs[j])
		if errA != nil || errB != nil {
			return vs[i] > vs[j]
		}
		return a.GreaterThan(b)
	})
}

// Search queries the registry for plugins matching query. Results are filtered to
// conforming plugin names carrying the plugin keyword.
func (c *Client) Search(ctx context.Context, query string, size int) ([]model.PackageRecord, error) {
	if size <= 0 {
		size = DefaultSearchSize
	}
	q := url.Values{}
	q.Set("text", fmt.Sprintf("%s keywords:%s", strings.TrimSpace(query), model.PluginKeyword))
	q.Set("size", fmt.Sprint(size))

	var resp searchResponse
	if err := c.getJSON(ctx, c.baseURL+"/-/v1/search?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	var out []model.PackageRecord
	for _, o := range resp.Objects {
		pkg := o.Package
		if !model.ValidPluginName(pkg.Name) || !hasKeyword(pkg.Keywords, model.PluginKeyword) {
			continue
		}
		rec := model.PackageRecord{
			Name:          pkg.Name,
			Description:   strings.TrimSpace(pkg.Description),
			LatestVersion: pkg.Version,
			Links: model.Links{
				Registry: model.RegistryLink(pkg.Name),
				Homepage: pkg.Links.Homepage,
				Bugs:     pkg.Links.Bugs,
			},
			Author: pkg.Author.Name,
		}
		if rec.Author == "" {
			rec.Author = pkg.Publisher.Username
		}
		if t, err := time.Parse(time.RFC3339, pkg.Date); err == nil {
			rec.LastUpdated = &t
		}
		out = append(out, rec)
	}
	return out, nil
}

func hasKeyword(keywords []string, want string) bool {
	for _, k := range keywords {
		if k == want {
			return true
		}
	}
	return false
}

// Reconcile fills the registry-derived fields of an installed record: latest version,
// update availability, beta availability and last publish time. Private packages are
// left untouched.
func (c *Client) Reconcile(ctx context.Context, rec *model.PackageRecord) error {
	if rec.Private {
		return nil
	}
	p, err := c.Lookup(ctx, rec.Name)
	if err != nil {
		return err
	}
	ApplyPackument(rec, p)
	return nil
}

// ApplyPackument applies the registry document p to rec.
func ApplyPackument(rec *model.PackageRecord, p *Packument) {
	latest := p.DistTags["latest"]
	rec.LatestVersion = latest
	if rec.Description == "" {
		rec.Description = strings.TrimSpace(p.Description)
	}
	if modified, ok := p.Time["modified"]; ok {
		if t, err := time.Parse(time.RFC3339, modified); err == nil {
			rec.LastUpdated = &t
		}
	}

	if !rec.Installed() || latest == "" {
		return
	}
	installed, err := goversion.NewVersion(rec.InstalledVersion)
	if err != nil {
		logger.Debugf("Cannot parse installed version %q of %s: %v", rec.InstalledVersion, rec.Name, err)
		return
	}
	latestV, err := goversion.NewVersion(latest)
	if err != nil {
		logger.Debugf("Cannot parse latest version %q of %s: %v", latest, rec.Name, err)
		return
	}
	rec.UpdateAvailable = latestV.GreaterThan(installed)

	// a beta install ahead of latest is compared against the beta tag instead
	if isBeta(installed) && installed.GreaterThan(latestV) {
		beta := p.DistTags["beta"]
		if beta == "" {
			return
		}
		betaV, err := goversion.NewVersion(beta)
		if err != nil {
			return
		}
		if betaV.GreaterThan(installed) {
			rec.BetaVersion = beta
			rec.BetaUpdateAvailable = true
		}
	}
}

func isBeta(v *goversion.Version) bool {
	return strings.HasPrefix(v.Prerelease(), "beta")
}

// ParseGitHubRepo extracts owner and repository from a GitHub URL.
func ParseGitHubRepo(repoURL string) (owner, repo string, ok bool) {
	u, err := url.Parse(repoURL)
	if err != nil || !strings.EqualFold(u.Host, "github.com") {
		return "", "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), true
}

// LatestRelease returns the latest published GitHub release of repoURL.
func (c *Client) LatestRelease(ctx context.Context, repoURL string) (*model.Release, error) {
	owner, repo, ok := ParseGitHubRepo(repoURL)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a GitHub repository", errors.ErrInvalidInput, repoURL)
	}
	var rel model.Release
	endpoint := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.githubURL, owner, repo)
	if err := c.getJSON(ctx, endpoint, &rel); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.ErrNotFoundWithName("release for", owner+"/"+repo)
		}
		return nil, err
	}
	return &rel, nil
}

// Purge drops every cached response.
func (c *Client) Purge() {
	c.cache.Purge()
}
