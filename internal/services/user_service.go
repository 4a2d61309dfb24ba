package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kestrelworks/docvault/backend/internal/audit"
	"github.com/kestrelworks/docvault/backend/internal/metrics"
	"github.com/kestrelworks/docvault/backend/internal/models"
	"github.com/kestrelworks/docvault/backend/internal/policy"
)

// UserService owns the account lifecycle: registration, authentication,
// updates, soft-deletion and password changes. Every successful mutation
// emits exactly one audit record after the write commits.
//
// Username and email uniqueness is case-sensitive on purpose; the stored
// corpus was built that way and normalizing now would orphan near-duplicate
// accounts.
type UserService struct {
	db                *gorm.DB
	audit             *audit.Store
	notifier          *NotificationService
	auditFailedLogins bool
	now               func() time.Time
}

// NewUserService returns a UserService over db, appending to auditStore.
func NewUserService(db *gorm.DB, auditStore *audit.Store) *UserService {
	return &UserService{db: db, audit: auditStore, now: time.Now}
}

// WithClock overrides the timestamp source, for deterministic tests.
func (s *UserService) WithClock(now func() time.Time) *UserService {
	s.now = now
	return s
}

// WithNotifier attaches an outbound notifier for account deletions.
func (s *UserService) WithNotifier(n *NotificationService) *UserService {
	s.notifier = n
	return s
}

// AuditFailedLogins toggles audit records for failed authentication attempts.
// Off by default; flooding the log under brute force is a real concern, so
// this stays an operator decision.
func (s *UserService) AuditFailedLogins(enabled bool) *UserService {
	s.auditFailedLogins = enabled
	return s
}

// Register creates a new active USER account. Username and email must be
// unique; the checks and the insert share one transaction so two concurrent
// registrations cannot both pass the check.
func (s *UserService) Register(username, password, email, fullName string, meta RequestMeta) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || password == "" || email == "" {
		return nil, fmt.Errorf("%w: username, password and email are required", ErrValidation)
	}

	user := models.User{
		UUID:     uuid.New().String(),
		Username: username,
		Email:    email,
		FullName: fullName,
		Role:     models.RoleUser,
		IsActive: true,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrStorage, err)
		}
		if count > 0 {
			return fmt.Errorf("%w: username already taken", ErrConflict)
		}

		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrStorage, err)
		}
		if count > 0 {
			return fmt.Errorf("%w: email already registered", ErrConflict)
		}

		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}

	appendAudit(s.audit, &models.AuditRecord{
		ActorID:       user.ID,
		ActorUsername: user.Username,
		OperationType: models.OpUserRegister,
		Detail:        fmt.Sprintf("new user registered: %s (%s)", user.Username, user.Email),
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
	})

	return &user, nil
}

// Authenticate verifies credentials against active accounts only. A
// deactivated account fails exactly like an unknown username.
func (s *UserService) Authenticate(username, password string, meta RequestMeta) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ? AND is_active = ?", username, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.failLogin(username, "unknown or inactive account", meta)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if !user.CheckPassword(password) {
		return nil, s.failLogin(username, "wrong password", meta)
	}

	loginAt := s.now()
	user.LastLoginAt = &loginAt
	if err := s.db.Model(&user).Update("last_login_at", loginAt).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	metrics.IncLoginAttempt("success")
	return &user, nil
}

func (s *UserService) failLogin(username, cause string, meta RequestMeta) error {
	metrics.IncLoginAttempt("failure")
	if s.auditFailedLogins {
		appendAudit(s.audit, &models.AuditRecord{
			ActorUsername: username,
			OperationType: models.OpLoginFailed,
			Detail:        fmt.Sprintf("failed login for %s: %s", username, cause),
			IPAddress:     meta.IPAddress,
			UserAgent:     meta.UserAgent,
		})
	}
	return fmt.Errorf("%w: invalid username or password", ErrAuthentication)
}

// Update modifies an account. Email and full name are self-service for the
// account holder; role and active-flag changes require an admin actor.
func (s *UserService) Update(id uint, email, fullName string, role *models.Role, isActive *bool, actor *models.User, meta RequestMeta) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if role != nil && !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, *role)
	}

	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	wanted := policy.ActionSelfUpdate
	if role != nil || isActive != nil {
		wanted = policy.ActionAdmin
	}
	if d := policy.Decide(actor, policy.AccountResource{Account: &user}, wanted); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}

	oldEmail := user.Email

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if email != user.Email {
			var count int64
			if err := tx.Model(&models.User{}).Where("email = ? AND id <> ?", email, user.ID).Count(&count).Error; err != nil {
				return fmt.Errorf("%w: %v", ErrStorage, err)
			}
			if count > 0 {
				return fmt.Errorf("%w: email already in use", ErrConflict)
			}
		}

		user.Email = email
		user.FullName = fullName
		if role != nil {
			user.Role = *role
		}
		if isActive != nil {
			user.IsActive = *isActive
		}

		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, err
	}

	appendAudit(s.audit, &models.AuditRecord{
		ActorID:       actor.ID,
		ActorUsername: actor.Username,
		OperationType: models.OpUserUpdate,
		Detail:        fmt.Sprintf("account %s updated: email %s -> %s", user.Username, oldEmail, user.Email),
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
	})

	return &user, nil
}

// SoftDelete deactivates an account. The row is kept so existing audit
// records stay resolvable.
func (s *UserService) SoftDelete(id uint, actor *models.User, meta RequestMeta) error {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if d := policy.Decide(actor, policy.AccountResource{Account: &user}, policy.ActionAdmin); !d.Allowed {
		return fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}

	user.IsActive = false
	if err := s.db.Save(&user).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	appendAudit(s.audit, &models.AuditRecord{
		ActorID:       actor.ID,
		ActorUsername: actor.Username,
		OperationType: models.OpUserDelete,
		Detail:        fmt.Sprintf("user %s deactivated by %s", user.Username, actor.Username),
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
	})

	if s.notifier != nil {
		s.notifier.Notify("account deactivated", fmt.Sprintf("user %s was deactivated by %s", user.Username, actor.Username))
	}

	return nil
}

// ChangePassword re-hashes the password after verifying the old one. The
// audit detail never carries password material.
func (s *UserService) ChangePassword(id uint, oldPassword, newPassword string, actor *models.User, meta RequestMeta) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", ErrValidation)
	}

	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if d := policy.Decide(actor, policy.AccountResource{Account: &user}, policy.ActionSelfUpdate); !d.Allowed {
		return fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}

	if !user.CheckPassword(oldPassword) {
		return fmt.Errorf("%w: current password does not match", ErrAuthentication)
	}

	if err := user.SetPassword(newPassword); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.db.Save(&user).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	appendAudit(s.audit, &models.AuditRecord{
		ActorID:       actor.ID,
		ActorUsername: actor.Username,
		OperationType: models.OpPasswordChange,
		Detail:        fmt.Sprintf("password changed for %s", user.Username),
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
	})

	return nil
}

// GetByID returns an account regardless of active state; audit views need
// deactivated accounts to stay resolvable.
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return &user, nil
}

// GetActiveByUsername returns an active account by exact username.
func (s *UserService) GetActiveByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ? AND is_active = ?", username, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, username)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return &user, nil
}

// GetActiveByUUID returns an active account by UUID; the auth middleware
// resolves token subjects through this.
func (s *UserService) GetActiveByUUID(userUUID string) (*models.User, error) {
	var user models.User
	err := s.db.Where("uuid = ? AND is_active = ?", userUUID, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, userUUID)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return &user, nil
}

// ListActive returns active accounts, newest first.
func (s *UserService) ListActive() ([]models.User, error) {
	var users []models.User
	if err := s.db.Where("is_active = ?", true).Order("created_at desc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return users, nil
}

// ListAll returns every account including deactivated ones, newest first.
func (s *UserService) ListAll() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("created_at desc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return users, nil
}
