package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagList(t *testing.T) {
	t.Run("empty tags", func(t *testing.T) {
		d := &Document{}
		assert.Empty(t, d.TagList())
	})

	t.Run("splits and trims", func(t *testing.T) {
		d := &Document{Tags: "go, sqlite , ,backend"}
		assert.Equal(t, []string{"go", "sqlite", "backend"}, d.TagList())
	})
}

func TestSetTagList(t *testing.T) {
	d := &Document{}
	d.SetTagList([]string{" go", "go", "", "audit "})
	assert.Equal(t, "go,audit", d.Tags)

	d.SetTagList(nil)
	assert.Empty(t, d.Tags)
}

func TestHasTag(t *testing.T) {
	d := &Document{Tags: "go,audit"}
	assert.True(t, d.HasTag("audit"))
	assert.False(t, d.HasTag("aud"))
}

func TestOperationTypeValid(t *testing.T) {
	assert.True(t, OpDocumentCreate.Valid())
	assert.True(t, OpLoginFailed.Valid())
	assert.False(t, OperationType("DocumentRead").Valid())
}
