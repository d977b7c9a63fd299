// Package scheduler runs a job on a cron schedule, used to rebuild the
// manifest periodically while the server is up.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is the work performed on every tick.
type Job func(ctx context.Context) error

// Scheduler wraps a single cron entry. Overlapping runs are skipped.
type Scheduler struct {
	spec   string
	cron   *cron.Cron
	entry  cron.EntryID
	logger *zap.Logger

	// mu serializes Start and Stop. ctxMu guards ctx, which run reads
	// while Stop holds mu and waits for it.
	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc

	ctxMu sync.RWMutex
	ctx   context.Context
}

// New validates spec (standard five-field cron or a descriptor such as
// "@every 15m") and prepares a scheduler for job.
func New(spec string, job Job, logger *zap.Logger) (*Scheduler, error) {
	if job == nil {
		return nil, errors.New("scheduler job is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	cl := cronLogger{logger.Sugar()}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))

	s := &Scheduler{
		spec:   spec,
		cron:   c,
		logger: logger,
	}
	s.entry = c.Schedule(schedule, cron.FuncJob(func() { s.run(job) }))
	return s, nil
}

func (s *Scheduler) run(job Job) {
	s.ctxMu.RLock()
	ctx := s.ctx
	s.ctxMu.RUnlock()
	if ctx == nil {
		return
	}

	start := time.Now()
	if err := job(ctx); err != nil {
		s.logger.Error("scheduled job failed", zap.String("schedule", s.spec), zap.Error(err))
		return
	}
	s.logger.Info("scheduled job finished",
		zap.String("schedule", s.spec),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// Start begins running the job in the background. A stopped scheduler may
// be started again; each run gets a fresh job context.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	ctx, cancel := context.WithCancel(context.Background())
	s.ctxMu.Lock()
	s.ctx = ctx
	s.ctxMu.Unlock()
	s.cancel = cancel
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("schedule", s.spec), zap.Time("next", s.Next()))
}

// Stop cancels the job context and waits for a running job to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// Next reports the next activation time. It is zero before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
