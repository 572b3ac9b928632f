package bundle

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/glorpus-work/hbpm/internal/logger"
	"github.com/glorpus-work/hbpm/pkg/archive"
	"github.com/glorpus-work/hbpm/pkg/cache"
	"github.com/glorpus-work/hbpm/pkg/download"
	"github.com/glorpus-work/hbpm/pkg/errors"
	"github.com/glorpus-work/hbpm/pkg/fsutil"
	"github.com/glorpus-work/hbpm/pkg/manifest"
)

// RebuildFunc rebuilds native modules of the package in dir, streaming output to out.
type RebuildFunc func(ctx context.Context, dir string, out io.Writer) error

// Installer installs a bundle: download, verify, extract, swap, rebuild.
type Installer struct {
	downloads *download.Manager
	archives  *archive.Manager
	cacheDir  *cache.Dir
	rebuild   RebuildFunc
}

// NewInstaller creates an Installer. rebuild may be nil to skip the rebuild step.
func NewInstaller(downloads *download.Manager, archives *archive.Manager, cacheDir *cache.Dir, rebuild RebuildFunc) *Installer {
	return &Installer{
		downloads: downloads,
		archives:  archives,
		cacheDir:  cacheDir,
		rebuild:   rebuild,
	}
}

// Install places the bundle at url into targetDir as package name. An existing targetDir
// is restored if the swap fails.
func (in *Installer) Install(ctx context.Context, url, name, targetDir string, out io.Writer) error {
	fmt.Fprintf(out, "Downloading bundle %s\r\n", url)

	base := filepath.Base(url)
	paths, err := in.downloads.FetchAll(ctx, []download.Item{
		{ID: "bundle", URL: url, Filename: base},
		{ID: "checksum", URL: url + ".sha256", Filename: base + ".sha256"},
	}, download.Options{Dir: in.cacheDir.BundleDir()})
	if err != nil {
		return errors.Wrap(err, "failed to download bundle")
	}

	digest, err := download.ReadChecksumFile(paths["checksum"])
	if err != nil {
		return err
	}
	ok, err := download.VerifySHA256(paths["bundle"], digest)
	if err != nil {
		return err
	}
	if !ok {
		_ = os.Remove(paths["bundle"])
		return fmt.Errorf("bundle %s: %w", base, errors.ErrFileHashMismatch)
	}

	if err := os.MkdirAll(in.cacheDir.StagingDir(), fsutil.DirModeSecure); err != nil {
		return errors.Wrap(err, "failed to create staging directory")
	}
	staging, err := os.MkdirTemp(in.cacheDir.StagingDir(), "bundle-*")
	if err != nil {
		return errors.Wrap(err, "failed to create staging directory")
	}
	defer func() { _ = os.RemoveAll(staging) }()

	fmt.Fprintf(out, "Extracting %s\r\n", base)
	if err := in.archives.ExtractAll(ctx, paths["bundle"], staging); err != nil {
		return errors.Wrap(err, "failed to extract bundle")
	}
	root, err := archive.PackageRoot(staging)
	if err != nil {
		return err
	}
	pkg, err := manifest.ReadPackageJSON(root)
	if err != nil {
		return err
	}
	if pkg.Name != name {
		return fmt.Errorf("%w: bundle contains %q, expected %q", errors.ErrValidation, pkg.Name, name)
	}

	if err := swap(root, targetDir); err != nil {
		return err
	}
	logger.InfofWithFields(logger.Fields{"plugin": name, "version": pkg.Version}, "Installed bundle into %s", targetDir)

	if in.rebuild != nil {
		fmt.Fprintf(out, "Rebuilding native modules for %s\r\n", name)
		if err := in.rebuild(ctx, targetDir, out); err != nil {
			return errors.Wrap(err, "bundle rebuild failed")
		}
	}
	return nil
}

// swap moves src to dst, keeping the previous dst until the move succeeded.
func swap(src, dst string) error {
	backup := ""
	if fsutil.Exists(dst) {
		backup = dst + ".hbpm-old"
		_ = os.RemoveAll(backup)
		if err := os.Rename(dst, backup); err != nil {
			return errors.Wrapf(err, "failed to move aside %s", dst)
		}
	}
	if err := fsutil.Move(src, dst); err != nil {
		if backup != "" {
			_ = os.RemoveAll(dst)
			_ = os.Rename(backup, dst)
		}
		return errors.Wrapf(err, "failed to move bundle into %s", dst)
	}
	if backup != "" {
		_ = os.RemoveAll(backup)
	}
	return nil
}
