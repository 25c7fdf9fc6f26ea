package scheduler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-studio/internal/config"
	"listing-studio/internal/models"
	"listing-studio/internal/store"
)

func setupScheduler(t *testing.T) (*Scheduler, *config.StoreConfig) {
	t.Helper()

	testLogger := logrus.New()
	testLogger.SetLevel(logrus.ErrorLevel)

	dir := t.TempDir()
	cfg := &config.StoreConfig{
		Path:          filepath.Join(dir, "listings.json"),
		BackupEnabled: true,
		BackupTime:    "03:00",
		BackupDir:     filepath.Join(dir, "backups"),
		BackupKeep:    2,
	}

	st := store.New(cfg.Path, testLogger)
	require.NoError(t, st.Initialize())
	require.NoError(t, st.Save(models.Listing{ID: "abc123", Title: "Cozy Bungalow"}))

	return NewScheduler(st, cfg, testLogger), cfg
}

func TestRunNow_CopiesStoreFile(t *testing.T) {
	s, cfg := setupScheduler(t)

	require.NoError(t, s.RunNow())

	matches, err := filepath.Glob(filepath.Join(cfg.BackupDir, "listings-*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "abc123", "Backup should contain the stored listings")
}

func TestPrune_KeepsNewestBackups(t *testing.T) {
	s, cfg := setupScheduler(t)
	require.NoError(t, os.MkdirAll(cfg.BackupDir, 0o755))

	// Older names sort first, so these should be the ones pruned
	for _, name := range []string{
		"listings-20240101-000000.json",
		"listings-20240102-000000.json",
		"listings-20240103-000000.json",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(cfg.BackupDir, name), []byte("[]"), 0o644))
	}

	require.NoError(t, s.prune())

	matches, err := filepath.Glob(filepath.Join(cfg.BackupDir, "listings-*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.NotContains(t, matches, filepath.Join(cfg.BackupDir, "listings-20240101-000000.json"))
}

func TestParseDailyTime(t *testing.T) {
	s, _ := setupScheduler(t)

	assert.Equal(t, "0 3 * * *", s.parseDailyTime("03:00"))
	assert.Equal(t, "30 14 * * *", s.parseDailyTime("14:30"))
	assert.Equal(t, "0 3 * * *", s.parseDailyTime("bogus"))
}
