// Package policy is the single source of truth for access decisions. Both the
// document query path and the lifecycle services call Decide; list visibility
// and mutation rights must never diverge.
package policy

import (
	"github.com/kestrelworks/docvault/backend/internal/models"
)

// Action is the closed set of things a principal can attempt.
type Action string

const (
	ActionRead       Action = "read"
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionSelfUpdate Action = "self_update"
	ActionAdmin      Action = "admin"
)

// Deny reasons surfaced in Decision.Reason.
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonNotAuthorized   = "not authorized"
)

// Decision is the outcome of a policy evaluation.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the positive decision.
var Allow = Decision{Allowed: true}

// DenyWith builds a deny decision carrying a reason.
func DenyWith(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Resource is anything a decision can be made about.
type Resource interface {
	isResource()
}

// DocumentResource wraps a document for policy evaluation.
type DocumentResource struct {
	Document *models.Document
}

func (DocumentResource) isResource() {}

// AccountResource wraps a user account for policy evaluation.
type AccountResource struct {
	Account *models.User
}

func (AccountResource) isResource() {}

// Decide maps (principal, resource, action) to an authorization decision.
// It is pure: no I/O, no side effects, deterministic given its inputs.
// Rules are evaluated in order, first match wins:
//
//  1. public document + read -> allow (even unauthenticated)
//  2. no principal -> deny "unauthenticated"
//  3. admin -> allow anything
//  4. document owner -> allow read/update/delete
//  5. self profile update -> allow
//  6. otherwise -> deny "not authorized"
func Decide(principal *models.User, res Resource, action Action) Decision {
	if doc, ok := res.(DocumentResource); ok {
		if doc.Document != nil && doc.Document.IsPublic && action == ActionRead {
			return Allow
		}
	}

	if principal == nil {
		return DenyWith(ReasonUnauthenticated)
	}

	if principal.IsAdmin() {
		return Allow
	}

	switch r := res.(type) {
	case DocumentResource:
		if r.Document != nil && principal.ID == r.Document.OwnerID {
			switch action {
			case ActionRead, ActionUpdate, ActionDelete:
				return Allow
			}
		}
	case AccountResource:
		if r.Account != nil && action == ActionSelfUpdate && principal.ID == r.Account.ID {
			return Allow
		}
	}

	return DenyWith(ReasonNotAuthorized)
}

// CanRead is a convenience wrapper used by the query engine when filtering
// candidate documents.
func CanRead(principal *models.User, doc *models.Document) bool {
	return Decide(principal, DocumentResource{Document: doc}, ActionRead).Allowed
}
