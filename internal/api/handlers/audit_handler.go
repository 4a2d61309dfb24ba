package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kestrelworks/docvault/backend/internal/audit"
	"github.com/kestrelworks/docvault/backend/internal/models"
)

// AuditHandler exposes the audit log to administrators: filtered listing and
// CSV export for the external reporting tool.
type AuditHandler struct {
	store *audit.Store
}

func NewAuditHandler(store *audit.Store) *AuditHandler {
	return &AuditHandler{store: store}
}

// defaultExportWindow bounds exports with no explicit time range.
const defaultExportWindow = 30 * 24 * time.Hour

func parseFilter(c *gin.Context) (audit.Filter, error) {
	f := audit.Filter{
		ActorUsernameContains: c.Query("username"),
	}

	if op := c.Query("operation_type"); op != "" {
		opType := models.OperationType(op)
		if !opType.Valid() {
			return audit.Filter{}, fmt.Errorf("unknown operation type %q", op)
		}
		f.OperationType = opType
	}

	for _, span := range []struct {
		param string
		dst   *time.Time
	}{
		{"since", &f.Since},
		{"until", &f.Until},
	} {
		if raw := c.Query(span.param); raw != "" {
			ts, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return audit.Filter{}, fmt.Errorf("invalid %s timestamp", span.param)
			}
			*span.dst = ts
		}
	}

	return f, nil
}

// List returns one page of the filtered audit log, newest first.
func (h *AuditHandler) List(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
		return
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if err != nil || pageSize <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page_size"})
		return
	}

	records, err := h.store.Query(f)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":     audit.Page(records, page, pageSize),
		"total":     len(records),
		"page":      page,
		"page_size": pageSize,
	})
}

// Export streams the filtered audit log as a CSV attachment. Without an
// explicit range it covers the last 30 days.
func (h *AuditHandler) Export(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if f.Since.IsZero() {
		f.Since = time.Now().Add(-defaultExportWindow)
	}

	records, err := h.store.Query(f)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("logs_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	if err := audit.WriteCSV(c.Writer, records); err != nil {
		respondError(c, err)
	}
}
