// Package scheduler runs the daily backup of the listing store file.
package scheduler

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"listing-studio/internal/config"
	"listing-studio/internal/store"
)

// Scheduler copies the listing file into the backup directory on a daily
// cron schedule and prunes old copies.
type Scheduler struct {
	cron      *cron.Cron
	store     *store.Store
	config    *config.StoreConfig
	log       logrus.FieldLogger
	isRunning bool
}

// NewScheduler creates a backup scheduler.
func NewScheduler(st *store.Store, cfg *config.StoreConfig, logger logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		store:  st,
		config: cfg,
		log:    logger.WithField("component", "scheduler"),
	}
}

// Start registers the daily backup job. Disabled configs make this a no-op.
func (s *Scheduler) Start() error {
	if !s.config.BackupEnabled {
		s.log.Info("Store backups are disabled in configuration")
		return nil
	}

	cronSpec := s.parseDailyTime(s.config.BackupTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		if err := s.RunNow(); err != nil {
			s.log.WithError(err).Error("Daily backup failed")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	s.log.WithFields(logrus.Fields{"at": s.config.BackupTime, "cron": cronSpec}).Info("Backup scheduler started")
	return nil
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		s.log.Info("Backup scheduler stopped")
	}
}

// RunNow performs one backup immediately.
func (s *Scheduler) RunNow() error {
	if err := os.MkdirAll(s.config.BackupDir, 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	src, err := os.Open(s.store.Path())
	if err != nil {
		return fmt.Errorf("failed to open listing file: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("listings-%s.json", time.Now().Format("20060102-150405"))
	dstPath := filepath.Join(s.config.BackupDir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		return fmt.Errorf("failed to copy listing file: %w", err)
	}

	s.log.WithFields(logrus.Fields{"file": name, "bytes": written}).Info("Store backed up")
	return s.prune()
}

// prune keeps only the newest BackupKeep backup files.
func (s *Scheduler) prune() error {
	keep := s.config.BackupKeep
	if keep <= 0 {
		return nil
	}

	matches, err := filepath.Glob(filepath.Join(s.config.BackupDir, "listings-*.json"))
	if err != nil {
		return err
	}
	if len(matches) <= keep {
		return nil
	}

	// Timestamped names sort chronologically
	sort.Strings(matches)
	for _, old := range matches[:len(matches)-keep] {
		if err := os.Remove(old); err != nil {
			s.log.WithError(err).WithField("file", old).Warn("Failed to prune old backup")
		}
	}
	return nil
}

// parseDailyTime converts HH:MM format to a cron specification
// Example: "03:00" -> "0 3 * * *" (run at 3:00 AM every day)
func (s *Scheduler) parseDailyTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	s.log.WithField("value", timeStr).Warn("Failed to parse backup time, using default 03:00")
	return "0 3 * * *"
}
