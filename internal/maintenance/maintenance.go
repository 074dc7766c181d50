// Package maintenance runs the housekeeping jobs of the server on a cron schedule:
// pruning old files from the cache directory, and logging how old each dataset is
// so a stalled data job shows up in the logs before visitors notice.
package maintenance

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/trentd187/f1-fansite/internal/datastore"
)

// Options configures a Scheduler.
type Options struct {
	Schedule    string             // Cron spec, e.g. "@daily" or "0 4 * * *"
	CacheDir    string             // Directory pruned by the cleanup job; empty disables it
	CacheMaxAge time.Duration      // Files older than this are removed
	Gateway     *datastore.Gateway // Source of dataset ages for the freshness report
	Datasets    []string           // Dataset names included in the freshness report
	Logger      *zap.Logger
}

// Scheduler owns the cron runner.
type Scheduler struct {
	opts Options
	cron *cron.Cron
	now  func() time.Time
}

// New returns a Scheduler; nothing runs until Start.
func New(opts Options) *Scheduler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Scheduler{
		opts: opts,
		cron: cron.New(),
		now:  time.Now,
	}
}

// Start registers both jobs and starts the cron runner in the background.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.opts.Schedule, s.cleanup); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.opts.Schedule, s.ReportFreshness); err != nil {
		return err
	}
	s.cron.Start()
	s.opts.Logger.Info("maintenance scheduled", zap.String("schedule", s.opts.Schedule))
	return nil
}

// Stop stops scheduling new runs. The returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) cleanup() {
	if s.opts.CacheDir == "" {
		return
	}
	removed, err := CleanCache(s.opts.CacheDir, s.opts.CacheMaxAge, s.now())
	if err != nil {
		s.opts.Logger.Error("cache cleanup failed", zap.String("dir", s.opts.CacheDir), zap.Error(err))
		return
	}
	s.opts.Logger.Info("cache cleanup done", zap.String("dir", s.opts.CacheDir), zap.Int("removed", removed))
}

// ReportFreshness logs the age of every configured dataset. Missing datasets are
// logged as warnings; they're the ones being served from fallbacks.
func (s *Scheduler) ReportFreshness() {
	if s.opts.Gateway == nil {
		return
	}
	for _, name := range s.opts.Datasets {
		age, err := s.opts.Gateway.Age(name)
		if err != nil {
			s.opts.Logger.Warn("dataset unavailable", zap.String("dataset", name), zap.Error(err))
			continue
		}
		s.opts.Logger.Info("dataset age", zap.String("dataset", name), zap.Duration("age", age))
	}
}

// CleanCache removes regular files under dir whose modification time is more
// than maxAge before now, and returns how many it removed. A missing dir is not
// an error. Files that can't be removed are skipped; the first such error is
// returned after the walk finishes.
func CleanCache(dir string, maxAge time.Duration, now time.Time) (int, error) {
	cutoff := now.Add(-maxAge)
	removed := 0
	var firstErr error

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == dir {
				return fs.SkipAll
			}
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return nil
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, err
	}
	return removed, firstErr
}
