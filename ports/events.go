package ports

import "context"

// Session event types published on the bus.
const (
	EventAuthenticated   = "session.authenticated"
	EventSessionCleared  = "session.cleared"
	EventSessionReset    = "session.reset"
	EventNetworkSwitched = "session.network_switched"
)

// SessionEvent describes a session lifecycle change.
type SessionEvent struct {
	Type    string `json:"type"`
	Address string `json:"address,omitempty"`
	Network string `json:"network,omitempty"`
	At      int64  `json:"at"`
}

// EventPublisher publishes session events so the dashboard UI and other
// instances can react to them.
type EventPublisher interface {
	PublishSessionEvent(ctx context.Context, event SessionEvent) error
}
