package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/gridmesh/station/ports"
)

// Coordinator is the cross-cutting session policy: it reacts to
// relay-reported authorization failures and gates routes that require an
// authenticated session.
type Coordinator struct {
	wallet   *WalletSession
	auth     *AuthSession
	provider ports.WalletProvider
	notifier ports.Notifier
	events   ports.EventPublisher
	log      zerolog.Logger
}

// NewCoordinator wires the coordinator over both sessions.
func NewCoordinator(
	wallet *WalletSession,
	auth *AuthSession,
	provider ports.WalletProvider,
	notifier ports.Notifier,
	events ports.EventPublisher,
	log zerolog.Logger,
) *Coordinator {
	return &Coordinator{
		wallet:   wallet,
		auth:     auth,
		provider: provider,
		notifier: notifier,
		events:   events,
		log:      log.With().Str("component", "coordinator").Logger(),
	}
}

// HandleUnauthorized runs whenever any relay call reports an authorization
// failure: notify the user, reset the auth session, reset the wallet
// session, then signal the UI to return to the landing view. The steps run
// in that order and each is fault-isolated so one failing step never blocks
// the rest.
func (c *Coordinator) HandleUnauthorized() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.step("notify", func() {
		if c.notifier != nil {
			c.notifier.Notify(ports.SeverityWarning, "Your session has expired, please reconnect your wallet")
		}
	})
	c.step("reset auth", func() {
		c.auth.ClearSession(ctx)
	})
	c.step("reset wallet", func() {
		c.wallet.Reset(ctx)
	})
	c.step("navigate home", func() {
		if c.events != nil {
			_ = c.events.PublishSessionEvent(ctx, ports.SessionEvent{
				Type: ports.EventSessionReset,
				At:   time.Now().Unix(),
			})
		}
	})
}

// Authorized reports whether a view marked "requires authentication" may be
// entered: the session must be authenticated and a provider must currently
// be injected.
func (c *Coordinator) Authorized(ctx context.Context) bool {
	return c.auth.IsAuthenticated() && c.provider != nil && c.provider.Available(ctx)
}

// ForceLogout tears the session down when a guard check fails: provider
// permissions are revoked best-effort, then both sessions are reset.
func (c *Coordinator) ForceLogout(ctx context.Context) {
	if c.provider != nil && c.provider.Available(ctx) {
		if err := c.provider.RevokePermissions(ctx); err != nil {
			c.log.Debug().Err(err).Msg("permission revocation during forced logout failed")
		}
	}
	c.auth.ClearSession(ctx)
	c.wallet.Reset(ctx)
}

func (c *Coordinator) step(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Str("step", name).Msg("unauthorized handler step failed")
		}
	}()
	fn()
}
