package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelworks/docvault/backend/internal/audit"
	"github.com/kestrelworks/docvault/backend/internal/models"
)

func TestUserServiceRegister(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, newAuditStore(t, db))

	t.Run("creates active USER account and audit record", func(t *testing.T) {
		user, err := svc.Register("alice", "password123", "alice@example.com", "Alice A", RequestMeta{IPAddress: "10.0.0.1", UserAgent: "test-agent"})
		require.NoError(t, err)

		assert.NotZero(t, user.ID)
		assert.NotEmpty(t, user.UUID)
		assert.Equal(t, models.RoleUser, user.Role)
		assert.True(t, user.IsActive)
		assert.True(t, user.CheckPassword("password123"))

		records, err := newAuditStore(t, db).Query(audit.Filter{OperationType: models.OpUserRegister})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "alice", records[0].ActorUsername)
		assert.Contains(t, records[0].Detail, "alice@example.com")
		assert.Equal(t, "10.0.0.1", records[0].IPAddress)
	})

	t.Run("duplicate username conflicts without audit record", func(t *testing.T) {
		_, err := svc.Register("alice", "otherpass", "other@example.com", "Other", RequestMeta{})
		assert.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, int64(1), auditCount(t, db, models.OpUserRegister))
	})

	t.Run("duplicate email conflicts without audit record", func(t *testing.T) {
		_, err := svc.Register("alice2", "otherpass", "alice@example.com", "Other", RequestMeta{})
		assert.ErrorIs(t, err, ErrConflict)
		// exactly one UserRegister record exists for that email
		assert.Equal(t, int64(1), auditCount(t, db, models.OpUserRegister))
	})

	t.Run("uniqueness is case-sensitive", func(t *testing.T) {
		user, err := svc.Register("Alice", "password123", "ALICE@example.com", "Shouty Alice", RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, "Alice", user.Username)
	})

	t.Run("missing fields fail validation", func(t *testing.T) {
		_, err := svc.Register("", "password123", "x@example.com", "", RequestMeta{})
		assert.ErrorIs(t, err, ErrValidation)

		_, err = svc.Register("bob", "", "x@example.com", "", RequestMeta{})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestUserServiceAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	loginAt := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	svc := NewUserService(db, newAuditStore(t, db)).WithClock(func() time.Time { return loginAt })

	mustRegister(t, svc, "alice", "alice@example.com")

	t.Run("success updates last login", func(t *testing.T) {
		user, err := svc.Authenticate("alice", "password123", RequestMeta{})
		require.NoError(t, err)
		require.NotNil(t, user.LastLoginAt)
		assert.Equal(t, loginAt, user.LastLoginAt.UTC())
	})

	t.Run("wrong password fails", func(t *testing.T) {
		_, err := svc.Authenticate("alice", "nope", RequestMeta{})
		assert.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("unknown username fails the same way", func(t *testing.T) {
		_, err := svc.Authenticate("nobody", "password123", RequestMeta{})
		assert.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("no audit record for failed attempts by default", func(t *testing.T) {
		assert.Equal(t, int64(0), auditCount(t, db, models.OpLoginFailed))
	})

	t.Run("failed attempts audited when enabled", func(t *testing.T) {
		svc.AuditFailedLogins(true)
		_, err := svc.Authenticate("alice", "nope", RequestMeta{IPAddress: "203.0.113.9"})
		assert.ErrorIs(t, err, ErrAuthentication)

		records, err := newAuditStore(t, db).Query(audit.Filter{OperationType: models.OpLoginFailed})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "203.0.113.9", records[0].IPAddress)
	})
}

func TestUserServiceUpdate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, newAuditStore(t, db))

	alice := mustRegister(t, svc, "alice", "alice@example.com")
	bob := mustRegister(t, svc, "bob", "bob@example.com")
	admin := mustRegister(t, svc, "root", "root@example.com")
	promoteToAdmin(t, db, admin)

	t.Run("self-service email and name update", func(t *testing.T) {
		updated, err := svc.Update(alice.ID, "alice+new@example.com", "Alice Renamed", nil, nil, alice, RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, "alice+new@example.com", updated.Email)
		assert.Equal(t, "Alice Renamed", updated.FullName)

		records, err := newAuditStore(t, db).Query(audit.Filter{OperationType: models.OpUserUpdate})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Contains(t, records[0].Detail, "alice@example.com -> alice+new@example.com")
	})

	t.Run("email collision with another account conflicts", func(t *testing.T) {
		_, err := svc.Update(alice.ID, "bob@example.com", "Alice", nil, nil, alice, RequestMeta{})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("non-admin cannot change role", func(t *testing.T) {
		role := models.RoleAdmin
		_, err := svc.Update(alice.ID, "alice+new@example.com", "Alice", &role, nil, alice, RequestMeta{})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("non-admin cannot edit another account", func(t *testing.T) {
		_, err := svc.Update(bob.ID, "hijack@example.com", "Bob", nil, nil, alice, RequestMeta{})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin changes role and active flag", func(t *testing.T) {
		role := models.RoleAdmin
		active := false
		updated, err := svc.Update(bob.ID, "bob@example.com", "Bob", &role, &active, admin, RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, updated.Role)
		assert.False(t, updated.IsActive)
	})

	t.Run("unknown role fails validation", func(t *testing.T) {
		role := models.Role("SUPERUSER")
		_, err := svc.Update(alice.ID, "alice+new@example.com", "Alice", &role, nil, admin, RequestMeta{})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("absent account is not found", func(t *testing.T) {
		_, err := svc.Update(9999, "ghost@example.com", "Ghost", nil, nil, admin, RequestMeta{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUserServiceSoftDelete(t *testing.T) {
	db := setupTestDB(t)
	var notified []string
	notifier := NewNotificationService("discord://token@channel").WithSender(func(url, msg string) error {
		notified = append(notified, msg)
		return nil
	})
	svc := NewUserService(db, newAuditStore(t, db)).WithNotifier(notifier)

	alice := mustRegister(t, svc, "alice", "alice@example.com")
	bob := mustRegister(t, svc, "bob", "bob@example.com")
	admin := mustRegister(t, svc, "root", "root@example.com")
	promoteToAdmin(t, db, admin)

	t.Run("non-admin cannot delete", func(t *testing.T) {
		err := svc.SoftDelete(bob.ID, alice, RequestMeta{})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin deactivates, row survives", func(t *testing.T) {
		err := svc.SoftDelete(alice.ID, admin, RequestMeta{})
		require.NoError(t, err)

		// authenticating a deactivated account fails like an unknown one
		_, err = svc.Authenticate("alice", "password123", RequestMeta{})
		assert.ErrorIs(t, err, ErrAuthentication)

		// gone from active listings
		active, err := svc.ListActive()
		require.NoError(t, err)
		for _, u := range active {
			assert.NotEqual(t, "alice", u.Username)
		}

		// but still resolvable for audit purposes
		kept, err := svc.GetByID(alice.ID)
		require.NoError(t, err)
		assert.False(t, kept.IsActive)

		// audit history referencing alice remains queryable unchanged
		records, err := newAuditStore(t, db).Query(audit.Filter{ActorUsernameContains: "alice"})
		require.NoError(t, err)
		assert.NotEmpty(t, records)

		assert.Equal(t, int64(1), auditCount(t, db, models.OpUserDelete))
		require.Len(t, notified, 1)
		assert.Contains(t, notified[0], "alice")
	})

	t.Run("absent account is not found", func(t *testing.T) {
		err := svc.SoftDelete(9999, admin, RequestMeta{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUserServiceChangePassword(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, newAuditStore(t, db))

	alice := mustRegister(t, svc, "alice", "alice@example.com")
	bob := mustRegister(t, svc, "bob", "bob@example.com")

	t.Run("wrong old password fails authentication", func(t *testing.T) {
		err := svc.ChangePassword(alice.ID, "wrong", "newpassword1", alice, RequestMeta{})
		assert.ErrorIs(t, err, ErrAuthentication)
		assert.Equal(t, int64(0), auditCount(t, db, models.OpPasswordChange))
	})

	t.Run("other user cannot change it", func(t *testing.T) {
		err := svc.ChangePassword(alice.ID, "password123", "newpassword1", bob, RequestMeta{})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("success re-hashes and audits without password material", func(t *testing.T) {
		err := svc.ChangePassword(alice.ID, "password123", "newpassword1", alice, RequestMeta{})
		require.NoError(t, err)

		_, err = svc.Authenticate("alice", "newpassword1", RequestMeta{})
		assert.NoError(t, err)

		records, err := newAuditStore(t, db).Query(audit.Filter{OperationType: models.OpPasswordChange})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.NotContains(t, records[0].Detail, "password123")
		assert.NotContains(t, records[0].Detail, "newpassword1")
	})

	t.Run("empty new password fails validation", func(t *testing.T) {
		err := svc.ChangePassword(alice.ID, "newpassword1", "", alice, RequestMeta{})
		assert.ErrorIs(t, err, ErrValidation)
	})
}
