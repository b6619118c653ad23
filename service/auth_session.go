package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/gridmesh/station/core"
	"github.com/gridmesh/station/ports"
)

const authStateKey = "station:auth_state"

// ChallengeAction is the fixed action label embedded in every signed
// challenge message. The relay rebuilds the message from the same label, the
// address and the submitted timestamp.
const ChallengeAction = "station-connect"

// AuthSession owns the relay session token and the end-to-end connect →
// sign → exchange flow. It is the only component that mutates AuthState.
type AuthSession struct {
	mu    sync.Mutex
	state core.AuthState

	// authenticating is the mutual-exclusion guard: at most one
	// Authenticate call may be in flight.
	authenticating atomic.Bool

	wallet   *WalletSession
	relay    ports.Relay
	provider ports.WalletProvider
	store    ports.StateStore
	events   ports.EventPublisher
	log      zerolog.Logger
	now      func() time.Time
}

// NewAuthSession creates an auth session bound to wallet. The wallet session
// learns about it so account refreshes can compare against the bound address.
func NewAuthSession(
	wallet *WalletSession,
	relay ports.Relay,
	provider ports.WalletProvider,
	store ports.StateStore,
	events ports.EventPublisher,
	log zerolog.Logger,
) *AuthSession {
	s := &AuthSession{
		wallet:   wallet,
		relay:    relay,
		provider: provider,
		store:    store,
		events:   events,
		log:      log.With().Str("component", "auth-session").Logger(),
		now:      time.Now,
	}
	wallet.auth = s
	return s
}

// Restore loads the persisted auth state, if any. A persisted-but-expired
// token is kept as stored; IsAuthenticated evaluates expiry lazily so it
// simply reads as unauthenticated.
func (s *AuthSession) Restore(ctx context.Context) {
	data, err := s.store.Get(ctx, authStateKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("loading persisted auth state")
		return
	}
	if data == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := json.Unmarshal(data, &s.state); err != nil {
		s.log.Warn().Err(err).Msg("decoding persisted auth state")
	}
}

// State returns a copy of the current auth state.
func (s *AuthSession) State() core.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsAuthenticated reports whether the session holds an unexpired token.
// Expiry is evaluated on every call, never stored.
func (s *AuthSession) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Authenticated(s.now())
}

// Token returns the current session token, or "" when unauthenticated.
func (s *AuthSession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Authenticated(s.now()) {
		return ""
	}
	return s.state.SessionToken
}

// BoundAddress returns the address the current session was issued for.
func (s *AuthSession) BoundAddress() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SessionAddress
}

// Authenticate runs the full wallet-auth flow: connect the wallet, sign the
// canonical challenge message, exchange it with the relay for a session
// token, then align the wallet to its selected network and refresh the
// balance. A second call while one is in flight returns immediately with
// already_authenticating. Any failure mid-flow rolls the whole session back:
// provider permissions are revoked best-effort, the wallet account and
// balance are cleared, and the auth state is reset.
func (s *AuthSession) Authenticate(ctx context.Context) core.AuthResult {
	if !s.authenticating.CompareAndSwap(false, true) {
		return core.AuthResult{Reason: core.ReasonAlreadyAuthenticating}
	}
	defer s.authenticating.Store(false)

	if s.provider == nil || !s.provider.Available(ctx) {
		return core.AuthResult{Reason: core.ReasonNoProvider}
	}

	connected := s.wallet.Connect(ctx)
	if !connected.Success {
		return core.AuthResult{Reason: connected.Reason}
	}

	if err := s.exchange(ctx, connected.Address); err != nil {
		s.log.Warn().Err(err).Msg("authentication failed, rolling back")
		s.rollback(ctx)
		return core.AuthResult{Reason: core.ReasonAuthFailed, Err: fmt.Errorf("%w: %v", core.ErrAuthFailed, err)}
	}

	s.wallet.EnsureNetworkOnWallet(ctx, "")
	s.wallet.FetchBalance(ctx)

	if s.events != nil {
		_ = s.events.PublishSessionEvent(ctx, ports.SessionEvent{
			Type:    ports.EventAuthenticated,
			Address: connected.Address,
			Network: s.wallet.State().SelectedNetworkKey,
			At:      s.now().Unix(),
		})
	}
	s.log.Info().Str("address", connected.Address).Msg("authenticated")
	return core.AuthResult{Success: true}
}

// exchange signs the challenge and trades it for a relay session.
func (s *AuthSession) exchange(ctx context.Context, address string) error {
	timestamp := s.now().Unix()
	message := ChallengeMessage(address, timestamp)

	signature, err := s.provider.PersonalSign(ctx, common.HexToAddress(address), []byte(message))
	if err != nil {
		return fmt.Errorf("signing challenge: %w", err)
	}

	grant, err := s.relay.ConnectWallet(ctx, ports.WalletAuth{
		Address:   address,
		Signature: signature,
		Timestamp: timestamp,
	})
	if err != nil {
		return fmt.Errorf("exchanging signature: %w", err)
	}

	s.SetSession(ctx, grant.Token, grant.ExpiresAt, address)
	return nil
}

func (s *AuthSession) rollback(ctx context.Context) {
	if s.provider != nil && s.provider.Available(ctx) {
		if err := s.provider.RevokePermissions(ctx); err != nil {
			s.log.Debug().Err(err).Msg("permission revocation during rollback failed")
		}
	}
	s.wallet.Reset(ctx)
	s.ClearSession(ctx)
}

// SetSession stores a session token and expiry. The bound address is only
// overwritten when a non-empty one is supplied, preserving a previously
// bound address otherwise.
func (s *AuthSession) SetSession(ctx context.Context, token string, expiresAt int64, address string) {
	s.mu.Lock()
	s.state.SessionToken = token
	s.state.SessionExpiresAt = expiresAt
	if address != "" {
		s.state.SessionAddress = address
	}
	s.mu.Unlock()
	s.persist(ctx)
}

// ClearSession drops the token, expiry and bound address.
func (s *AuthSession) ClearSession(ctx context.Context) {
	s.mu.Lock()
	s.state.Reset()
	s.mu.Unlock()
	s.persist(ctx)
}

// SessionMatchesWallet reports whether the bound session address matches the
// wallet's current address, case-insensitively. An unbound session counts as
// matching; a mismatch is surfaced, not auto-corrected.
func (s *AuthSession) SessionMatchesWallet() bool {
	bound := s.BoundAddress()
	if bound == "" {
		return true
	}
	return strings.EqualFold(bound, s.wallet.State().Address)
}

func (s *AuthSession) persist(ctx context.Context) {
	s.mu.Lock()
	data, err := json.Marshal(s.state)
	s.mu.Unlock()
	if err != nil {
		s.log.Warn().Err(err).Msg("encoding auth state")
		return
	}
	if err := s.store.Put(ctx, authStateKey, data); err != nil {
		s.log.Warn().Err(err).Msg("persisting auth state")
	}
}

// ChallengeMessage builds the canonical challenge message for address at the
// given unix timestamp. The address is lowercased so the signed bytes do not
// depend on checksum casing.
func ChallengeMessage(address string, timestamp int64) string {
	return fmt.Sprintf("%s:%s:%d", ChallengeAction, strings.ToLower(address), timestamp)
}
