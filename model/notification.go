package model

// Severity classifies a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeveritySuccess, SeverityError, SeverityInfo:
		return true
	}
	return false
}

// Notification is a transient message for the user.
type Notification struct {
	ID      string   `json:"id"`
	Message string   `json:"message"`
	Type    Severity `json:"type"`
}
