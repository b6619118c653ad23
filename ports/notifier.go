package ports

// Notification severity levels.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier surfaces user-visible messages. Rejections are deliberately not
// notified (they are cancel-like); faults and forced logouts are.
type Notifier interface {
	Notify(severity Severity, message string)
}
