package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	loginAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docvault_login_attempts_total",
		Help: "Total number of login attempts by result",
	}, []string{"result"})
	documentsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "docvault_documents_created_total",
		Help: "Total number of documents created",
	})
	documentsDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "docvault_documents_deleted_total",
		Help: "Total number of documents deleted",
	})
	auditAppendFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "docvault_audit_append_failures_total",
		Help: "Total number of audit appends that failed after the business mutation committed",
	})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(
		loginAttemptsTotal,
		documentsCreatedTotal,
		documentsDeletedTotal,
		auditAppendFailuresTotal,
	)
}

// IncLoginAttempt records a login attempt; result is "success" or "failure".
func IncLoginAttempt(result string) { loginAttemptsTotal.WithLabelValues(result).Inc() }

// IncDocumentCreated increments the created documents counter.
func IncDocumentCreated() { documentsCreatedTotal.Inc() }

// IncDocumentDeleted increments the deleted documents counter.
func IncDocumentDeleted() { documentsDeletedTotal.Inc() }

// IncAuditAppendFailure increments the audit append failure counter.
func IncAuditAppendFailure() { auditAppendFailuresTotal.Inc() }
