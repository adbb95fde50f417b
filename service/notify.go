package service

import (
	"slices"

	"storefront/model"
)

// AddNotification queues a message and schedules its removal after the
// notification TTL. Unknown severities are recorded as info.
func (s *Service) AddNotification(message string, severity model.Severity) model.Notification {
	if !severity.Valid() {
		severity = model.SeverityInfo
	}
	n := model.Notification{ID: s.newID(), Message: message, Type: severity}

	s.mu.Lock()
	s.notifications = append(s.notifications, n)
	s.mu.Unlock()

	s.afterFunc(s.notificationTTL, func() { s.RemoveNotification(n.ID) })
	return n
}

// RemoveNotification drops the notification with id. Unknown ids are ignored,
// so an expiry firing after a manual dismissal is harmless.
func (s *Service) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = slices.DeleteFunc(s.notifications, func(n model.Notification) bool { return n.ID == id })
}

func (s *Service) Notifications() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.notifications)
}
