package models

import (
	"time"
)

// OperationType is the closed set of auditable operations.
type OperationType string

const (
	OpUserRegister   OperationType = "UserRegister"
	OpUserUpdate     OperationType = "UserUpdate"
	OpUserDelete     OperationType = "UserDelete"
	OpPasswordChange OperationType = "PasswordChange"
	OpDocumentCreate OperationType = "DocumentCreate"
	OpDocumentUpdate OperationType = "DocumentUpdate"
	OpDocumentDelete OperationType = "DocumentDelete"
	// OpLoginFailed is only recorded when failed-login auditing is enabled.
	OpLoginFailed OperationType = "LoginFailed"
)

// Valid reports whether op is a known operation type.
func (op OperationType) Valid() bool {
	switch op {
	case OpUserRegister, OpUserUpdate, OpUserDelete, OpPasswordChange,
		OpDocumentCreate, OpDocumentUpdate, OpDocumentDelete, OpLoginFailed:
		return true
	}
	return false
}

// AuditRecord captures who did what, when, and from where. Records are
// append-only: once written they are never mutated or deleted. Ordering is by
// CreatedAt, ties broken by the monotonically increasing ID.
type AuditRecord struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	ActorID       uint          `json:"actor_id" gorm:"index"`
	ActorUsername string        `json:"actor_username" gorm:"index"`
	OperationType OperationType `json:"operation_type" gorm:"not null;index"`
	Detail        string        `json:"detail" gorm:"type:text"`
	IPAddress     string        `json:"ip_address"`
	UserAgent     string        `json:"user_agent"`
	CreatedAt     time.Time     `json:"created_at" gorm:"index"`
}
