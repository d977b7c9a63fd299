// Package walker enumerates the regular files below a root directory.
package walker

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"time"
)

// FileInfo holds metadata about a single file discovered during traversal.
type FileInfo struct {
	Path    string    // Absolute path on disk.
	RelPath string    // Slash-separated path relative to the root directory.
	Name    string    // Base name.
	Size    int64     // File size in bytes.
	ModTime time.Time // Last modification time.
}

// WalkerConfig controls the behaviour of the Walk function.
type WalkerConfig struct {
	RootDir string   // Root directory to walk.
	Include []string // Glob patterns; only matching files are included.
	Exclude []string // Glob patterns; matching files and directories are skipped.
}

// Walk traverses the tree rooted at config.RootDir and returns every regular
// file that passes the include/exclude filters, sorted by RelPath.
// Directories are traversed but never reported. Unlike a best-effort crawl,
// any read error aborts the walk: a partial listing is not a valid index.
func Walk(ctx context.Context, config WalkerConfig) ([]FileInfo, error) {
	root, err := filepath.Abs(config.RootDir)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}
	if err := ValidatePatterns(config.Include); err != nil {
		return nil, err
	}
	if err := ValidatePatterns(config.Exclude); err != nil {
		return nil, err
	}

	var files []FileInfo

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if d.IsDir() {
			if relPath != "." && MatchesExclude(relPath, config.Exclude) {
				return filepath.SkipDir
			}
			return nil
		}

		// Sockets, devices and symlinks are not documents.
		if !d.Type().IsRegular() {
			return nil
		}

		if !MatchesInclude(relPath, config.Include) {
			return nil
		}
		if MatchesExclude(relPath, config.Exclude) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		files = append(files, FileInfo{
			Path:    path,
			RelPath: filepath.ToSlash(relPath),
			Name:    d.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}
