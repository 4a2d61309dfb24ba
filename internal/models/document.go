package models

import (
	"strings"
	"time"
)

// MaxTitleLength bounds document titles.
const MaxTitleLength = 200

// Document is a stored document owned by a single user. OwnerID is fixed at
// creation; view and download counters only ever grow.
type Document struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	UUID          string `json:"uuid" gorm:"uniqueIndex"`
	Title         string `json:"title" gorm:"not null"`
	Content       string `json:"content" gorm:"type:text"`
	Category      string `json:"category,omitempty"`
	Tags          string `json:"tags,omitempty"` // comma-joined, see TagList
	IsPublic      bool   `json:"is_public" gorm:"default:false"`
	ViewCount     int64  `json:"view_count" gorm:"default:0"`
	DownloadCount int64  `json:"download_count" gorm:"default:0"`
	OwnerID       uint   `json:"owner_id" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TagList splits the comma-joined tags column into trimmed, non-empty tags.
func (d *Document) TagList() []string {
	if strings.TrimSpace(d.Tags) == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(d.Tags, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// SetTagList joins tags into the stored form, dropping empties and duplicates
// while keeping first-seen order.
func (d *Document) SetTagList(tags []string) {
	seen := make(map[string]bool, len(tags))
	var kept []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		kept = append(kept, t)
	}
	d.Tags = strings.Join(kept, ",")
}

// HasTag reports whether the document carries the exact tag.
func (d *Document) HasTag(tag string) bool {
	for _, t := range d.TagList() {
		if t == tag {
			return true
		}
	}
	return false
}
