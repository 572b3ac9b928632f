package cache

import (
	"os"
	"path/filepath"

	"github.com/glorpus-work/hbpm/pkg/errors"
	"github.com/glorpus-work/hbpm/pkg/fsutil"
)

const (
	bundlesDir = "bundles"
	stagingDir = "staging"
)

// CleanResult reports how many bytes each area freed.
type CleanResult struct {
	BundleFreed  int64
	StagingFreed int64
	TotalFreed   int64
}

// Info describes the on-disk cache.
type Info struct {
	Directory    string
	BundleSize   int64
	BundleFiles  int
	StagingSize  int64
	StagingFiles int
	TotalSize    int64
}

// Dir manages the on-disk cache used for downloaded bundles and extraction staging.
type Dir struct {
	directory string
}

// NewDir creates a cache rooted at directory.
func NewDir(directory string) *Dir {
	return &Dir{directory: directory}
}

// NewDefaultDir creates a cache in the user cache directory.
func NewDefaultDir() (*Dir, error) {
	cacheDir, err := fsutil.GetCacheDir()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get user cache directory")
	}
	if err := os.MkdirAll(cacheDir, fsutil.DirModeSecure); err != nil {
		return nil, errors.Wrapf(err, "failed to create cache directory")
	}
	return NewDir(cacheDir), nil
}

// Directory returns the cache root.
func (d *Dir) Directory() string {
	return d.directory
}

// BundleDir returns the directory downloaded bundle archives are stored in.
func (d *Dir) BundleDir() string {
	return filepath.Join(d.directory, bundlesDir)
}

// StagingDir returns the directory bundles are extracted into before being swapped into place.
func (d *Dir) StagingDir() string {
	return filepath.Join(d.directory, stagingDir)
}

// Clean removes all cached bundles and staging leftovers.
func (d *Dir) Clean() (*CleanResult, error) {
	result := &CleanResult{}

	size, err := cleanDirectory(d.BundleDir())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to clean bundle cache")
	}
	result.BundleFreed = size

	size, err = cleanDirectory(d.StagingDir())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to clean staging area")
	}
	result.StagingFreed = size
	result.TotalFreed = result.BundleFreed + result.StagingFreed

	return result, nil
}

// GetInfo returns size information about the cache.
func (d *Dir) GetInfo() (*Info, error) {
	info := &Info{Directory: d.directory}

	size, files, err := getDirSizeAndFiles(d.BundleDir())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get bundle cache info")
	}
	info.BundleSize, info.BundleFiles = size, files

	size, files, err = getDirSizeAndFiles(d.StagingDir())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get staging info")
	}
	info.StagingSize, info.StagingFiles = size, files
	info.TotalSize = info.BundleSize + info.StagingSize

	return info, nil
}

// cleanDirectory removes a directory, recreates it empty and returns bytes freed.
func cleanDirectory(dir string) (int64, error) {
	totalSize, _, err := getDirSizeAndFiles(dir)
	if err != nil {
		return 0, err
	}
	if !fsutil.Exists(dir) {
		return 0, nil
	}

	if err := os.RemoveAll(dir); err != nil {
		return 0, errors.Wrapf(err, "failed to remove directory %s", dir)
	}
	if err := os.MkdirAll(dir, fsutil.DirModeSecure); err != nil {
		return totalSize, errors.Wrapf(err, "failed to recreate directory %s", dir)
	}
	return totalSize, nil
}

func getDirSizeAndFiles(dir string) (size int64, count int, err error) {
	if _, err = os.Stat(dir); os.IsNotExist(err) {
		return 0, 0, nil
	}

	err = filepath.Walk(dir, func(_ string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !info.IsDir() {
			size += info.Size()
			count++
		}
		return nil
	})
	if err != nil {
		err = errors.Wrapf(err, "error walking directory %s", dir)
	}
	return size, count, err
}
