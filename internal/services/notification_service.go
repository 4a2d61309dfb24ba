package services

import (
	"fmt"

	"github.com/containrrr/shoutrrr"

	"github.com/kestrelworks/docvault/backend/internal/logger"
)

// NotificationService pushes operator-facing alerts (account deactivations,
// audit anomalies) to a shoutrrr destination. With no URL configured it is a
// no-op, so callers never need a nil check beyond construction.
type NotificationService struct {
	url  string
	send func(url, message string) error
}

// NewNotificationService returns a NotificationService for the given shoutrrr
// URL. An empty URL disables sending.
func NewNotificationService(url string) *NotificationService {
	return &NotificationService{url: url, send: shoutrrr.Send}
}

// WithSender overrides the delivery function, for tests.
func (s *NotificationService) WithSender(send func(url, message string) error) *NotificationService {
	s.send = send
	return s
}

// Enabled reports whether a destination is configured.
func (s *NotificationService) Enabled() bool {
	return s.url != ""
}

// Notify delivers a titled message. Delivery failures are logged, never
// returned; notifications must not affect the triggering operation.
func (s *NotificationService) Notify(title, message string) {
	if !s.Enabled() {
		return
	}

	msg := fmt.Sprintf("%s\n\n%s", title, message)
	if err := s.send(s.url, msg); err != nil {
		logger.WithFields(map[string]interface{}{
			"title": title,
		}).WithError(err).Warn("notification delivery failed")
	}
}
