package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelworks/docvault/backend/internal/models"
)

func TestDecideDocuments(t *testing.T) {
	owner := &models.User{ID: 1, Role: models.RoleUser}
	other := &models.User{ID: 2, Role: models.RoleUser}
	admin := &models.User{ID: 3, Role: models.RoleAdmin}

	public := &models.Document{ID: 10, OwnerID: 1, IsPublic: true}
	private := &models.Document{ID: 11, OwnerID: 1, IsPublic: false}

	tests := []struct {
		name      string
		principal *models.User
		doc       *models.Document
		action    Action
		allowed   bool
		reason    string
	}{
		{"anonymous reads public", nil, public, ActionRead, true, ""},
		{"anonymous cannot read private", nil, private, ActionRead, false, ReasonUnauthenticated},
		{"anonymous cannot update public", nil, public, ActionUpdate, false, ReasonUnauthenticated},
		{"any principal reads public", other, public, ActionRead, true, ""},
		{"owner reads private", owner, private, ActionRead, true, ""},
		{"owner updates private", owner, private, ActionUpdate, true, ""},
		{"owner deletes private", owner, private, ActionDelete, true, ""},
		{"owner cannot admin", owner, private, ActionAdmin, false, ReasonNotAuthorized},
		{"non-owner cannot read private", other, private, ActionRead, false, ReasonNotAuthorized},
		{"non-owner cannot update public", other, public, ActionUpdate, false, ReasonNotAuthorized},
		{"admin reads private", admin, private, ActionRead, true, ""},
		{"admin deletes other's doc", admin, private, ActionDelete, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.principal, DocumentResource{Document: tt.doc}, tt.action)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestDecideAccounts(t *testing.T) {
	self := &models.User{ID: 5, Role: models.RoleUser}
	other := &models.User{ID: 6, Role: models.RoleUser}
	admin := &models.User{ID: 7, Role: models.RoleAdmin}

	t.Run("self profile update allowed", func(t *testing.T) {
		d := Decide(self, AccountResource{Account: self}, ActionSelfUpdate)
		assert.True(t, d.Allowed)
	})

	t.Run("updating another account denied", func(t *testing.T) {
		d := Decide(self, AccountResource{Account: other}, ActionSelfUpdate)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonNotAuthorized, d.Reason)
	})

	t.Run("role change requires admin", func(t *testing.T) {
		d := Decide(self, AccountResource{Account: self}, ActionAdmin)
		assert.False(t, d.Allowed)

		d = Decide(admin, AccountResource{Account: other}, ActionAdmin)
		assert.True(t, d.Allowed)
	})

	t.Run("anonymous denied", func(t *testing.T) {
		d := Decide(nil, AccountResource{Account: other}, ActionSelfUpdate)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonUnauthenticated, d.Reason)
	})
}

func TestCanReadMatchesDecide(t *testing.T) {
	// The query engine helper must agree with Decide for every combination.
	principals := []*models.User{
		nil,
		{ID: 1, Role: models.RoleUser},
		{ID: 2, Role: models.RoleUser},
		{ID: 3, Role: models.RoleAdmin},
	}
	docs := []*models.Document{
		{ID: 10, OwnerID: 1, IsPublic: true},
		{ID: 11, OwnerID: 1, IsPublic: false},
	}

	for _, p := range principals {
		for _, d := range docs {
			want := Decide(p, DocumentResource{Document: d}, ActionRead).Allowed
			assert.Equal(t, want, CanRead(p, d))
		}
	}
}
