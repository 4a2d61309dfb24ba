package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kestrelworks/docvault/backend/internal/audit"
	"github.com/kestrelworks/docvault/backend/internal/metrics"
	"github.com/kestrelworks/docvault/backend/internal/models"
	"github.com/kestrelworks/docvault/backend/internal/policy"
)

// DocumentService owns the document lifecycle and the filtered, paginated
// query path. Write gating and read filtering go through the same policy
// function; a document a listing shows is exactly a document a read allows.
type DocumentService struct {
	db    *gorm.DB
	audit *audit.Store
	now   func() time.Time
}

// NewDocumentService returns a DocumentService over db, appending to auditStore.
func NewDocumentService(db *gorm.DB, auditStore *audit.Store) *DocumentService {
	return &DocumentService{db: db, audit: auditStore, now: time.Now}
}

// WithClock overrides the timestamp source, for deterministic tests.
func (s *DocumentService) WithClock(now func() time.Time) *DocumentService {
	s.now = now
	return s
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len([]rune(title)) > models.MaxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters", ErrValidation, models.MaxTitleLength)
	}
	return nil
}

// Create persists a new document owned by the actor.
func (s *DocumentService) Create(title, content, category string, tags []string, isPublic bool, actor *models.User, meta RequestMeta) (*models.Document, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, policy.ReasonUnauthenticated)
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	createdAt := s.now()
	doc := models.Document{
		UUID:      uuid.New().String(),
		Title:     title,
		Content:   content,
		Category:  strings.TrimSpace(category),
		IsPublic:  isPublic,
		OwnerID:   actor.ID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	doc.SetTagList(tags)

	if err := s.db.Create(&doc).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	metrics.IncDocumentCreated()
	appendAudit(s.audit, &models.AuditRecord{
		ActorID:       actor.ID,
		ActorUsername: actor.Username,
		OperationType: models.OpDocumentCreate,
		Detail:        fmt.Sprintf("created document: %s (public: %t)", doc.Title, doc.IsPublic),
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
	})

	return &doc, nil
}

// GetAccessible returns the document if the principal may read it. Denied
// reads report the document as absent so private documents do not leak
// their existence.
func (s *DocumentService) GetAccessible(id uint, principal *models.User) (*models.Document, error) {
	doc, err := s.getByID(id)
	if err != nil {
		return nil, err
	}
	if !policy.CanRead(principal, doc) {
		return nil, fmt.Errorf("%w: document %d", ErrNotFound, id)
	}
	return doc, nil
}

// GetAccessibleByUUID is GetAccessible keyed by UUID for the HTTP surface.
func (s *DocumentService) GetAccessibleByUUID(docUUID string, principal *models.User) (*models.Document, error) {
	var doc models.Document
	if err := s.db.Where("uuid = ?", docUUID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: document %s", ErrNotFound, docUUID)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if !policy.CanRead(principal, &doc) {
		return nil, fmt.Errorf("%w: document %s", ErrNotFound, docUUID)
	}
	return &doc, nil
}

func (s *DocumentService) getByID(id uint) (*models.Document, error) {
	var doc models.Document
	if err := s.db.First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: document %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return &doc, nil
}

// Update rewrites title, content, category, tags and optionally the public
// flag. Owner identity never changes.
func (s *DocumentService) Update(id uint, title, content, category string, tags []string, isPublic *bool, actor *models.User, meta RequestMeta) (*models.Document, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	var doc models.Document
	var oldTitle string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&doc, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: document %d", ErrNotFound, id)
			}
			return fmt.Errorf("%w: %v", ErrStorage, err)
		}

		if d := policy.Decide(actor, policy.DocumentResource{Document: &doc}, policy.ActionUpdate); !d.Allowed {
			return fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
		}

		oldTitle = doc.Title
		doc.Title = title
		doc.Content = content
		doc.Category = strings.TrimSpace(category)
		doc.SetTagList(tags)
		if isPublic != nil {
			doc.IsPublic = *isPublic
		}
		doc.UpdatedAt = s.now()

		// Write only the edited columns; a whole-row save would clobber
		// counter increments committed since the read.
		err := tx.Model(&doc).
			Select("title", "content", "category", "tags", "is_public", "updated_at").
			UpdateColumns(&doc).Error
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorage, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	appendAudit(s.audit, &models.AuditRecord{
		ActorID:       actor.ID,
		ActorUsername: actor.Username,
		OperationType: models.OpDocumentUpdate,
		Detail:        fmt.Sprintf("updated document: %s -> %s", oldTitle, doc.Title),
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
	})

	return &doc, nil
}

// Delete hard-removes the document after a policy check.
func (s *DocumentService) Delete(id uint, actor *models.User, meta RequestMeta) error {
	var doc models.Document
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&doc, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: document %d", ErrNotFound, id)
			}
			return fmt.Errorf("%w: %v", ErrStorage, err)
		}

		if d := policy.Decide(actor, policy.DocumentResource{Document: &doc}, policy.ActionDelete); !d.Allowed {
			return fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
		}

		if err := tx.Delete(&models.Document{}, doc.ID).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrStorage, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.IncDocumentDeleted()
	appendAudit(s.audit, &models.AuditRecord{
		ActorID:       actor.ID,
		ActorUsername: actor.Username,
		OperationType: models.OpDocumentDelete,
		Detail:        fmt.Sprintf("deleted document: %s", doc.Title),
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
	})

	return nil
}

// IncrementView bumps the view counter in place. Missing documents are
// ignored; the counters are best-effort telemetry, not security-sensitive.
func (s *DocumentService) IncrementView(id uint) error {
	return s.incrementCounter(id, "view_count")
}

// IncrementDownload bumps the download counter in place, same semantics as
// IncrementView.
func (s *DocumentService) IncrementDownload(id uint) error {
	return s.incrementCounter(id, "download_count")
}

func (s *DocumentService) incrementCounter(id uint, column string) error {
	err := s.db.Model(&models.Document{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// SearchQuery narrows a document search. Zero values mean "no constraint".
type SearchQuery struct {
	Keyword    string
	Category   string
	Visibility *bool // public=true / private=false
	Principal  *models.User
	Page       int
	PageSize   int
}

// Search filters the corpus down to documents the principal may read and
// returns one page plus the total filtered count. Non-admins get createdAt
// descending with ID as tie-break; admins see storage order untouched.
func (s *DocumentService) Search(q SearchQuery) ([]models.Document, int64, error) {
	if q.PageSize <= 0 {
		return nil, 0, fmt.Errorf("%w: page size must be positive", ErrValidation)
	}
	if q.Page < 0 {
		return nil, 0, fmt.Errorf("%w: page must not be negative", ErrValidation)
	}

	var docs []models.Document
	if err := s.db.Find(&docs).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	keyword := strings.ToLower(strings.TrimSpace(q.Keyword))
	var filtered []models.Document
	for i := range docs {
		doc := &docs[i]
		if keyword != "" && !strings.Contains(strings.ToLower(doc.Title), keyword) {
			continue
		}
		if q.Category != "" && doc.Category != q.Category {
			continue
		}
		if q.Visibility != nil && doc.IsPublic != *q.Visibility {
			continue
		}
		if !policy.CanRead(q.Principal, doc) {
			continue
		}
		filtered = append(filtered, *doc)
	}

	if q.Principal == nil || !q.Principal.IsAdmin() {
		sort.SliceStable(filtered, func(i, j int) bool {
			if filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
				return filtered[i].ID > filtered[j].ID
			}
			return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
		})
	}

	total := int64(len(filtered))

	start := q.Page * q.PageSize
	if start >= len(filtered) {
		return []models.Document{}, total, nil
	}
	end := start + q.PageSize
	if end > len(filtered) {
		end = len(filtered)
	}

	return filtered[start:end], total, nil
}

// Categories enumerates distinct non-empty categories over the full corpus,
// sorted lexicographically.
func (s *DocumentService) Categories() ([]string, error) {
	docs, err := s.all()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var categories []string
	for i := range docs {
		c := strings.TrimSpace(docs[i].Category)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories, nil
}

// Tags enumerates distinct tags over the full corpus, sorted lexicographically.
func (s *DocumentService) Tags() ([]string, error) {
	docs, err := s.all()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var tags []string
	for i := range docs {
		for _, t := range docs[i].TagList() {
			if seen[t] {
				continue
			}
			seen[t] = true
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return tags, nil
}

func (s *DocumentService) all() ([]models.Document, error) {
	var docs []models.Document
	if err := s.db.Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return docs, nil
}

// DocumentStats aggregates per-owner document totals.
type DocumentStats struct {
	TotalDocuments   int64 `json:"total_documents"`
	PublicDocuments  int64 `json:"public_documents"`
	PrivateDocuments int64 `json:"private_documents"`
	TotalViews       int64 `json:"total_views"`
	TotalDownloads   int64 `json:"total_downloads"`
}

// Stats computes aggregate counters over one owner's documents.
func (s *DocumentService) Stats(ownerID uint) (DocumentStats, error) {
	var docs []models.Document
	if err := s.db.Where("owner_id = ?", ownerID).Find(&docs).Error; err != nil {
		return DocumentStats{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	stats := DocumentStats{TotalDocuments: int64(len(docs))}
	for i := range docs {
		if docs[i].IsPublic {
			stats.PublicDocuments++
		} else {
			stats.PrivateDocuments++
		}
		stats.TotalViews += docs[i].ViewCount
		stats.TotalDownloads += docs[i].DownloadCount
	}
	return stats, nil
}
