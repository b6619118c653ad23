package notify

import (
	"github.com/rs/zerolog"

	"github.com/gridmesh/station/ports"
)

// LogNotifier surfaces user-facing messages through the structured log. The
// dashboard UI picks them up from the session event stream; the log keeps an
// operator-visible trail.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a notifier writing to log.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "notify").Logger()}
}

var _ ports.Notifier = (*LogNotifier)(nil)

// Notify records a user-visible message at the matching log level.
func (n *LogNotifier) Notify(severity ports.Severity, message string) {
	switch severity {
	case ports.SeverityError:
		n.log.Error().Msg(message)
	case ports.SeverityWarning:
		n.log.Warn().Msg(message)
	default:
		n.log.Info().Msg(message)
	}
}
