// Package download fetches remote bundle artifacts into a local cache directory with
// optional SHA-256 verification and de-duplication by URL.
package download

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/glorpus-work/hbpm/pkg/errors"
	"github.com/glorpus-work/hbpm/pkg/fsutil"
	hbhttp "github.com/glorpus-work/hbpm/pkg/http"
)

// Item is one remote resource to download.
type Item struct {
	ID       string // unique within a batch
	URL      string
	Checksum string // optional hex SHA-256; verified when set
	Filename string // optional; derived from the URL hash when empty
}

// Options control where and how items are stored.
type Options struct {
	Dir         string // absolute destination directory
	Concurrency int    // parallel downloads; <=0 picks a default
}

// Manager downloads items.
type Manager struct {
	client *hbhttp.Client
}

// NewManager creates a Manager on top of client.
func NewManager(client *hbhttp.Client) *Manager {
	return &Manager{client: client}
}

// FetchAll downloads items concurrently and returns Item.ID → local path.
// Items sharing a URL are downloaded once.
func (m *Manager) FetchAll(ctx context.Context, items []Item, opts Options) (map[string]string, error) {
	if err := prepareDir(opts.Dir); err != nil {
		return nil, err
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = max(2, runtime.NumCPU()/2)
	}

	byURL := make(map[string][]int)
	var order []string
	for i, it := range items {
		if it.URL == "" {
			return nil, fmt.Errorf("item %q has no URL: %w", it.ID, errors.ErrDownloadFailed)
		}
		if _, ok := byURL[it.URL]; !ok {
			order = append(order, it.URL)
		}
		byURL[it.URL] = append(byURL[it.URL], i)
	}

	paths := make([]string, len(order))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, u := range order {
		g.Go(func() error {
			p, err := m.fetchOne(gctx, items[byURL[u][0]], opts.Dir)
			if err != nil {
				return err
			}
			paths[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(items))
	for i, u := range order {
		for _, idx := range byURL[u] {
			out[items[idx].ID] = paths[i]
		}
	}
	return out, nil
}

// Fetch downloads a single item and returns its local path.
func (m *Manager) Fetch(ctx context.Context, item Item, opts Options) (string, error) {
	if err := prepareDir(opts.Dir); err != nil {
		return "", err
	}
	return m.fetchOne(ctx, item, opts.Dir)
}

func prepareDir(dir string) error {
	if dir == "" || !filepath.IsAbs(dir) {
		return fmt.Errorf("download dir must be absolute: %s: %w", dir, errors.ErrInvalidPath)
	}
	if err := os.MkdirAll(dir, fsutil.DirModeSecure); err != nil {
		return errors.Wrap(err, "could not create download dir")
	}
	return nil
}

func (m *Manager) fetchOne(ctx context.Context, item Item, dir string) (string, error) {
	absPath := filepath.Join(dir, selectFilename(item))
	if item.Checksum != "" {
		if ok, err := VerifySHA256(absPath, item.Checksum); err == nil && ok {
			return absPath, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.URL, http.NoBody)
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %v: %w", item.URL, err, errors.ErrDownloadFailed)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: unexpected status code %d: %w", item.URL, resp.StatusCode, errors.ErrDownloadFailed)
	}

	tmpPath, err := writeTemp(resp.Body, dir)
	if err != nil {
		return "", err
	}
	if item.Checksum != "" {
		ok, err := VerifySHA256(tmpPath, item.Checksum)
		if err != nil {
			_ = os.Remove(tmpPath)
			return "", err
		}
		if !ok {
			_ = os.Remove(tmpPath)
			return "", fmt.Errorf("checksum mismatch for %s: %w", item.URL, errors.ErrFileHashMismatch)
		}
	}
	if err := fsutil.Move(tmpPath, absPath); err != nil {
		return "", errors.Wrap(err, "could not finalize file")
	}
	if err := os.Chmod(absPath, fsutil.FileModeSecure); err != nil {
		return "", errors.Wrap(err, "could not set permissions")
	}
	return absPath, nil
}

func selectFilename(item Item) string {
	if item.Filename != "" {
		return item.Filename
	}
	h := sha256.Sum256([]byte(item.URL))
	return hex.EncodeToString(h[:])
}

func writeTemp(body io.Reader, dir string) (string, error) {
	tmp, err := os.CreateTemp(dir, "dl-*.tmp")
	if err != nil {
		return "", errors.Wrap(err, "could not create temp file")
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", errors.Wrap(err, "could not write file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", errors.Wrap(err, "could not close file")
	}
	return tmpPath, nil
}

// VerifySHA256 reports whether the file at path has the hex digest wantHex.
func VerifySHA256(path, wantHex string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, errors.Wrap(err, "open for checksum")
	}
	defer func() { _ = f.Close() }()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return false, errors.Wrap(err, "hashing")
	}
	return hex.EncodeToString(h.Sum(nil)) == normalizeHex(wantHex), nil
}

// ReadChecksumFile reads a sha256sum-style file ("<hex>  <name>" or just "<hex>").
func ReadChecksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "open checksum file")
	}
	defer func() { _ = f.Close() }()

	s := bufio.NewScanner(f)
	for s.Scan() {
		fields := strings.Fields(s.Text())
		if len(fields) == 0 {
			continue
		}
		sum := normalizeHex(fields[0])
		if len(sum) != sha256.Size*2 {
			break
		}
		if _, err := hex.DecodeString(sum); err != nil {
			break
		}
		return sum, nil
	}
	return "", fmt.Errorf("no sha256 digest in %s: %w", path, errors.ErrValidation)
}

func normalizeHex(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
