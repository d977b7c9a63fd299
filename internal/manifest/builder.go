package manifest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aibandobast/bandobast/internal/classifier"
	"github.com/aibandobast/bandobast/internal/progress"
	"github.com/aibandobast/bandobast/internal/walker"
)

// fileIDNamespace scopes the name-based file identifiers.
var fileIDNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:bandobast:manifest"))

// FileID derives the stable identifier of a file from its relative path, so a
// file keeps its id across rebuilds as long as it does not move.
func FileID(relPath string) string {
	return uuid.NewSHA1(fileIDNamespace, []byte(relPath)).String()
}

// Builder walks an inbox directory and classifies every file in it.
type Builder struct {
	// Root is the inbox directory to index.
	Root string
	// BaseDir is the directory relative paths are expressed against and
	// files are later served from. Empty means Root.
	BaseDir  string
	Include  []string
	Exclude  []string
	Reporter progress.Reporter
	Logger   *zap.Logger
}

func (b *Builder) logger() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}

func (b *Builder) reporter() progress.Reporter {
	if b.Reporter == nil {
		return progress.Nop{}
	}
	return b.Reporter
}

// Build returns one record per regular file below Root. A missing Root is
// created empty and yields an empty manifest; any other I/O error fails the
// whole build.
func (b *Builder) Build(ctx context.Context) ([]Record, error) {
	if err := b.ensureRoot(); err != nil {
		return nil, err
	}

	base := b.BaseDir
	if base == "" {
		base = b.Root
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("resolving base dir: %w", err)
	}

	files, err := walker.Walk(ctx, walker.WalkerConfig{
		RootDir: b.Root,
		Include: b.Include,
		Exclude: b.Exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("scanning inbox: %w", err)
	}

	rep := b.reporter()
	rep.Start(len(files))
	defer rep.Finish()

	records := make([]Record, 0, len(files))
	for i, f := range files {
		rel, err := filepath.Rel(absBase, f.Path)
		if err != nil {
			return nil, fmt.Errorf("relative path for %s: %w", f.Path, err)
		}
		rel = filepath.ToSlash(rel)

		c := classifier.Classify(f.Name)
		records = append(records, Record{
			FileID:        FileID(rel),
			RelativePath:  rel,
			Filename:      f.Name,
			Year:          c.Year,
			PoliceStation: c.Jurisdiction,
			Category:      c.Category,
			StageTag:      c.Stage,
			Tags:          classifier.Tags(c),
			PreviewType:   c.PreviewType,
			SizeBytes:     f.Size,
		})
		rep.Update(i+1, f.RelPath)
	}

	b.logger().Info("manifest built",
		zap.String("root", b.Root),
		zap.Int("files", len(records)),
	)
	return records, nil
}

func (b *Builder) ensureRoot() error {
	if b.Root == "" {
		return errors.New("manifest: inbox root is required")
	}
	info, err := os.Stat(b.Root)
	switch {
	case err == nil:
		if !info.IsDir() {
			return fmt.Errorf("manifest: inbox %s is not a directory", b.Root)
		}
		return nil
	case errors.Is(err, fs.ErrNotExist):
		b.logger().Warn("inbox directory not found, creating it empty", zap.String("root", b.Root))
		if err := os.MkdirAll(b.Root, 0o755); err != nil {
			return fmt.Errorf("creating inbox %s: %w", b.Root, err)
		}
		return nil
	default:
		return fmt.Errorf("accessing inbox %s: %w", b.Root, err)
	}
}
