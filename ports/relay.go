package ports

import "context"

// WalletAuth is the signed challenge exchanged for a relay session.
type WalletAuth struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
}

// SessionGrant is the relay's answer to a successful wallet-auth exchange.
type SessionGrant struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// Relay is the wallet-auth surface of the relay API. The remaining relay
// endpoints are plain request/response wrappers outside the core and live on
// the concrete client.
type Relay interface {
	ConnectWallet(ctx context.Context, auth WalletAuth) (SessionGrant, error)
}

// UnauthorizedListener is invoked when any relay call reports an
// authorization failure.
type UnauthorizedListener func()

// UnauthorizedNotifier registers listeners on the relay transport. Listeners
// run synchronously in registration order; a panicking listener must not
// prevent the remaining ones from running.
type UnauthorizedNotifier interface {
	OnUnauthorized(listener UnauthorizedListener)
}
