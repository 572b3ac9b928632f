// Package verified keeps the verified-plugin allow-list and the plugin icon map fresh in
// the background. Lookups never block on the network; a failed refresh leaves the
// previous data in place.
package verified

import (
	"context"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/glorpus-work/hbpm/internal/logger"
	"github.com/glorpus-work/hbpm/pkg/clock"
	"github.com/glorpus-work/hbpm/pkg/errors"
	hbhttp "github.com/glorpus-work/hbpm/pkg/http"
)

const (
	// RefreshInterval is the regular refresh period.
	RefreshInterval = 12 * time.Hour
	// RetryDelay is how long to wait before the single retry after a failed refresh.
	RetryDelay = 60 * time.Second
)

// Cache holds the verified list and icon map.
type Cache struct {
	http     *hbhttp.Client
	listURL  string
	iconsURL string
	clock    clock.Clock

	mu           sync.RWMutex
	verified     map[string]struct{}
	icons        map[string]string
	loaded       bool
	retryPending bool
	periodic     clock.Timer
	retry        clock.Timer
	stopped      bool
}

// New creates a cache fetching from listURL and iconsURL.
func New(client *hbhttp.Client, listURL, iconsURL string, clk clock.Clock) *Cache {
	if clk == nil {
		clk = clock.New()
	}
	return &Cache{
		http:     client,
		listURL:  listURL,
		iconsURL: iconsURL,
		clock:    clk,
		verified: make(map[string]struct{}),
		icons:    make(map[string]string),
	}
}

// Start fetches immediately in the background and then every RefreshInterval until ctx is done.
func (c *Cache) Start(ctx context.Context) {
	go c.run(ctx, false)
	c.schedulePeriodic(ctx)
}

// Stop cancels pending timers.
func (c *Cache) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	for _, t := range []clock.Timer{c.periodic, c.retry} {
		if t != nil {
			t.Stop()
		}
	}
}

func (c *Cache) schedulePeriodic(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.periodic = c.clock.AfterFunc(RefreshInterval, func() {
		if ctx.Err() != nil {
			return
		}
		c.run(ctx, false)
		c.schedulePeriodic(ctx)
	})
}

// run refreshes once. A failed regular refresh schedules at most one retry.
func (c *Cache) run(ctx context.Context, isRetry bool) {
	if ctx.Err() != nil {
		return
	}
	err := c.Refresh(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if isRetry {
		c.retryPending = false
	}
	if err == nil {
		return
	}
	logger.Warnf("Failed to refresh verified plugin list: %v", err)
	if isRetry || c.retryPending || c.stopped {
		return
	}
	c.retryPending = true
	c.retry = c.clock.AfterFunc(RetryDelay, func() { c.run(ctx, true) })
}

// Refresh fetches both documents and swaps them in when both succeed.
func (c *Cache) Refresh(ctx context.Context) error {
	var names []string
	if err := c.http.GetJSON(ctx, c.listURL, &names); err != nil {
		return errors.Wrap(err, "fetching verified list")
	}
	var icons map[string]string
	if err := c.http.GetJSON(ctx, c.iconsURL, &icons); err != nil {
		return errors.Wrap(err, "fetching plugin icons")
	}

	verified := make(map[string]struct{}, len(names))
	for _, n := range names {
		verified[n] = struct{}{}
	}
	resolved := make(map[string]string, len(icons))
	for name, icon := range icons {
		resolved[name] = c.resolveIcon(icon)
	}

	c.mu.Lock()
	c.verified = verified
	c.icons = resolved
	c.loaded = true
	c.mu.Unlock()

	logger.Debugf("Loaded %d verified plugins and %d icons", len(verified), len(resolved))
	return nil
}

// resolveIcon makes relative icon paths absolute against the icon map location.
func (c *Cache) resolveIcon(icon string) string {
	if icon == "" || strings.Contains(icon, "://") {
		return icon
	}
	base, err := url.Parse(c.iconsURL)
	if err != nil {
		return icon
	}
	base.Path = path.Join(path.Dir(base.Path), icon)
	return base.String()
}

// IsVerified reports whether name is on the verified list.
func (c *Cache) IsVerified(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.verified[name]
	return ok
}

// Icon returns the icon URL for name, or "".
func (c *Cache) Icon(name string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.icons[name]
}

// Loaded reports whether at least one refresh succeeded.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}
