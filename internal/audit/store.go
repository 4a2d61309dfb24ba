// Package audit is the append-only operation log. Records are written once
// and never mutated or deleted; retention is handled by exporting, not
// pruning.
package audit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kestrelworks/docvault/backend/internal/models"
)

// ErrInvalidOperationType rejects records carrying an operation outside the
// closed enumeration.
var ErrInvalidOperationType = errors.New("invalid operation type")

// Filter narrows a Query. Zero values mean "no constraint".
type Filter struct {
	ActorUsernameContains string
	OperationType         models.OperationType
	Since                 time.Time
	Until                 time.Time
}

// Store persists audit records. Pagination is left to callers: they slice the
// full filtered sequence, which stays cheap because queries are time-bounded.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStore returns a Store using the provided DB and the wall clock.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// WithClock overrides the timestamp source, for deterministic tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Append writes one record and stamps its timestamp. A storage fault here
// must not roll back the business mutation that triggered it; callers log it
// as a warning once the mutation has committed.
func (s *Store) Append(rec *models.AuditRecord) error {
	if !rec.OperationType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidOperationType, rec.OperationType)
	}

	rec.CreatedAt = s.now()
	if err := s.db.Create(rec).Error; err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}

// Query returns the filtered records newest first, ties broken by descending
// ID so ordering is total even when timestamps collide.
func (s *Store) Query(f Filter) ([]models.AuditRecord, error) {
	q := s.db.Model(&models.AuditRecord{})

	if f.ActorUsernameContains != "" {
		pattern := "%" + strings.ToLower(f.ActorUsernameContains) + "%"
		q = q.Where("LOWER(actor_username) LIKE ?", pattern)
	}
	if f.OperationType != "" {
		q = q.Where("operation_type = ?", f.OperationType)
	}
	if !f.Since.IsZero() {
		q = q.Where("created_at >= ?", f.Since)
	}
	if !f.Until.IsZero() {
		q = q.Where("created_at <= ?", f.Until)
	}

	var records []models.AuditRecord
	if err := q.Order("created_at desc, id desc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	return records, nil
}

// Page slices a filtered sequence for display. Out-of-range and invalid
// pages yield an empty slice, not an error, so callers always serialize a
// JSON array.
func Page(records []models.AuditRecord, page, pageSize int) []models.AuditRecord {
	if page < 0 || pageSize <= 0 {
		return []models.AuditRecord{}
	}
	start := page * pageSize
	if start >= len(records) {
		return []models.AuditRecord{}
	}
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}
