package services

import (
	"github.com/kestrelworks/docvault/backend/internal/audit"
	"github.com/kestrelworks/docvault/backend/internal/logger"
	"github.com/kestrelworks/docvault/backend/internal/metrics"
	"github.com/kestrelworks/docvault/backend/internal/models"
)

// RequestMeta carries request attribution into audit records. The HTTP layer
// fills it from X-Forwarded-For / X-Real-IP / RemoteAddr and the User-Agent
// header.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// appendAudit writes an audit record for an already-committed mutation. A
// failing append must not undo the mutation, so it is reported as a warning
// and a metric bump instead of an error.
func appendAudit(store *audit.Store, rec *models.AuditRecord) {
	if err := store.Append(rec); err != nil {
		metrics.IncAuditAppendFailure()
		logger.WithFields(map[string]interface{}{
			"operation_type": rec.OperationType,
			"actor":          rec.ActorUsername,
		}).WithError(err).Warn("audit append failed after mutation commit")
	}
}
