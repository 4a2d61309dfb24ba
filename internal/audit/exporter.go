package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kestrelworks/docvault/backend/internal/logger"
)

// Exporter writes daily CSV snapshots of the audit log for the external
// reporting tool. Scheduled from the entrypoint via cron.
type Exporter struct {
	store *Store
	dir   string
	now   func() time.Time
}

// NewExporter returns an Exporter writing into dir.
func NewExporter(store *Store, dir string) *Exporter {
	return &Exporter{store: store, dir: dir, now: time.Now}
}

// WithClock overrides the export window clock, for deterministic tests.
func (e *Exporter) WithClock(now func() time.Time) *Exporter {
	e.now = now
	return e
}

// ExportDaily writes the previous calendar day's records to
// <dir>/audit_YYYYMMDD.csv and returns the file path.
func (e *Exporter) ExportDaily() (string, error) {
	now := e.now()
	// Midnight in the clock's own location; Truncate would cut at UTC
	// epoch-day boundaries and shift the window on non-UTC servers.
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	since := today.AddDate(0, 0, -1)

	records, err := e.store.Query(Filter{Since: since, Until: today.Add(-time.Nanosecond)})
	if err != nil {
		return "", err
	}

	path := filepath.Join(e.dir, fmt.Sprintf("audit_%s.csv", since.Format("20060102")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, records); err != nil {
		return "", err
	}

	logger.WithFields(map[string]interface{}{
		"path":    path,
		"records": len(records),
	}).Info("audit export written")

	return path, nil
}

// Run is the cron entrypoint; failures are logged, never fatal.
func (e *Exporter) Run() {
	if _, err := e.ExportDaily(); err != nil {
		logger.Log().WithError(err).Warn("daily audit export failed")
	}
}
