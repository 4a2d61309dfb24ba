package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kestrelworks/docvault/backend/internal/audit"
	"github.com/kestrelworks/docvault/backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Document{}, &models.AuditRecord{})
	require.NoError(t, err)

	return db
}

func newAuditStore(t *testing.T, db *gorm.DB) *audit.Store {
	t.Helper()
	return audit.NewStore(db)
}

func mustRegister(t *testing.T, svc *UserService, username, email string) *models.User {
	t.Helper()
	user, err := svc.Register(username, "password123", email, username+" Test", RequestMeta{})
	require.NoError(t, err)
	return user
}

func promoteToAdmin(t *testing.T, db *gorm.DB, user *models.User) {
	t.Helper()
	require.NoError(t, db.Model(user).Update("role", models.RoleAdmin).Error)
	user.Role = models.RoleAdmin
}

func auditCount(t *testing.T, db *gorm.DB, op models.OperationType) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.AuditRecord{}).Where("operation_type = ?", op).Count(&count).Error)
	return count
}
