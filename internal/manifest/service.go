package manifest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aibandobast/bandobast/internal/audit"
)

// Service ties a Builder to its on-disk outputs and the live Index so the
// CLI, the HTTP API and the scheduler all rebuild the same way.
type Service struct {
	Builder *Builder
	// OutDir receives manifest.json and metrics.json.
	OutDir string
	Index  *Index
	Audit  *audit.Store
	Logger *zap.Logger

	rebuildMu sync.Mutex
}

// NewService loads the manifest already in outDir into a fresh Index.
func NewService(b *Builder, outDir string, auditStore *audit.Store, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	records, err := LoadManifest(outDir)
	if err != nil {
		return nil, err
	}
	return &Service{
		Builder: b,
		OutDir:  outDir,
		Index:   NewIndex(records),
		Audit:   auditStore,
		Logger:  logger,
	}, nil
}

// Rebuild re-indexes the inbox, persists both outputs and swaps the Index.
// Concurrent calls are serialised; the outputs on disk are left untouched if
// the build fails.
func (s *Service) Rebuild(ctx context.Context, actor string) (*Result, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	start := time.Now()
	records, err := s.Builder.Build(ctx)
	if err != nil {
		return nil, err
	}
	res := &Result{Records: records, Metrics: ComputeMetrics(records)}

	if err := WriteOutputs(s.OutDir, res); err != nil {
		return nil, fmt.Errorf("writing manifest outputs: %w", err)
	}
	if s.Index != nil {
		s.Index.Replace(records)
	}

	s.Logger.Info("manifest rebuilt",
		zap.Int("files", res.Metrics.TotalFiles),
		zap.String("out_dir", s.OutDir),
		zap.Duration("took", time.Since(start)),
	)

	if err := audit.Record(ctx, s.Audit, audit.Entry{
		ActorType: actorType(actor),
		ActorID:   actor,
		Action:    audit.ActionManifestBuilt,
		Scope:     audit.ScopeManifest,
		Summary:   fmt.Sprintf("Indexed %d files", res.Metrics.TotalFiles),
	}); err != nil {
		s.Logger.Warn("recording audit entry", zap.Error(err))
	}
	return res, nil
}

func actorType(actor string) audit.ActorType {
	switch actor {
	case "", "system", "scheduler", "cli":
		return audit.ActorSystem
	default:
		return audit.ActorUser
	}
}
