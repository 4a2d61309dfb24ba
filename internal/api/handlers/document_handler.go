package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kestrelworks/docvault/backend/internal/api/middleware"
	"github.com/kestrelworks/docvault/backend/internal/services"
)

// DocumentHandler exposes document lifecycle and search endpoints.
type DocumentHandler struct {
	documents *services.DocumentService
}

func NewDocumentHandler(documents *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

const defaultPageSize = 20

// List runs a filtered, paginated search over documents visible to the
// caller.
func (h *DocumentHandler) List(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
		return
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page_size"})
		return
	}

	query := services.SearchQuery{
		Keyword:   c.Query("keyword"),
		Category:  c.Query("category"),
		Principal: middleware.CurrentUser(c),
		Page:      page,
		PageSize:  pageSize,
	}

	switch c.Query("visibility") {
	case "public":
		v := true
		query.Visibility = &v
	case "private":
		v := false
		query.Visibility = &v
	}

	items, total, err := h.documents.Search(query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

type DocumentRequest struct {
	Title    string   `json:"title" binding:"required,max=200"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	IsPublic *bool    `json:"is_public"`
}

// Create stores a new document owned by the caller.
func (h *DocumentHandler) Create(c *gin.Context) {
	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	isPublic := req.IsPublic != nil && *req.IsPublic
	doc, err := h.documents.Create(req.Title, req.Content, req.Category, req.Tags, isPublic, middleware.CurrentUser(c), requestMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// Get returns a single document if the caller may read it.
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.documents.GetAccessibleByUUID(c.Param("uuid"), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Update rewrites a document's fields after a policy check.
func (h *DocumentHandler) Update(c *gin.Context) {
	doc, err := h.documents.GetAccessibleByUUID(c.Param("uuid"), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}

	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.documents.Update(doc.ID, req.Title, req.Content, req.Category, req.Tags, req.IsPublic, middleware.CurrentUser(c), requestMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete hard-removes a document after a policy check.
func (h *DocumentHandler) Delete(c *gin.Context) {
	doc, err := h.documents.GetAccessibleByUUID(c.Param("uuid"), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.documents.Delete(doc.ID, middleware.CurrentUser(c), requestMeta(c)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// View bumps the view counter for an accessible document.
func (h *DocumentHandler) View(c *gin.Context) {
	h.incrementCounter(c, h.documents.IncrementView)
}

// Download bumps the download counter for an accessible document.
func (h *DocumentHandler) Download(c *gin.Context) {
	h.incrementCounter(c, h.documents.IncrementDownload)
}

func (h *DocumentHandler) incrementCounter(c *gin.Context, inc func(uint) error) {
	doc, err := h.documents.GetAccessibleByUUID(c.Param("uuid"), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := inc(doc.ID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Categories enumerates the distinct categories across the corpus.
func (h *DocumentHandler) Categories(c *gin.Context) {
	categories, err := h.documents.Categories()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// Tags enumerates the distinct tags across the corpus.
func (h *DocumentHandler) Tags(c *gin.Context) {
	tags, err := h.documents.Tags()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// Stats returns the caller's aggregate document counters.
func (h *DocumentHandler) Stats(c *gin.Context) {
	stats, err := h.documents.Stats(middleware.CurrentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
