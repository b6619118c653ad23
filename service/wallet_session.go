package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog"

	"github.com/gridmesh/station/core"
	"github.com/gridmesh/station/ports"
)

const walletStateKey = "station:wallet_state"

const codeUnrecognizedChain = 4902

// WalletSession owns the connected account, selected network and native
// balance, and negotiates chain switches with the injected provider. It is
// the only component that mutates WalletState.
type WalletSession struct {
	mu    sync.Mutex
	state core.WalletState

	registry *core.Registry
	provider ports.WalletProvider
	store    ports.StateStore
	events   ports.EventPublisher
	log      zerolog.Logger

	// set by NewAuthSession; nil until then
	auth *AuthSession
}

// NewWalletSession creates a wallet session starting disconnected on
// defaultNetworkKey. provider may be nil.
func NewWalletSession(
	registry *core.Registry,
	provider ports.WalletProvider,
	store ports.StateStore,
	events ports.EventPublisher,
	defaultNetworkKey string,
	log zerolog.Logger,
) *WalletSession {
	return &WalletSession{
		state:    core.NewWalletState(defaultNetworkKey),
		registry: registry,
		provider: provider,
		store:    store,
		events:   events,
		log:      log.With().Str("component", "wallet-session").Logger(),
	}
}

// Restore loads the persisted wallet state, if any.
func (s *WalletSession) Restore(ctx context.Context) {
	data, err := s.store.Get(ctx, walletStateKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("loading persisted wallet state")
		return
	}
	if data == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var restored core.WalletState
	if err := json.Unmarshal(data, &restored); err != nil {
		s.log.Warn().Err(err).Msg("decoding persisted wallet state")
		return
	}
	if restored.BalanceWei == "" {
		restored.BalanceWei = "0x0"
	}
	if restored.SelectedNetworkKey == "" || !s.registry.Has(restored.SelectedNetworkKey) {
		restored.SelectedNetworkKey = s.state.SelectedNetworkKey
	}
	s.state = restored
}

// State returns a copy of the current wallet state.
func (s *WalletSession) State() core.WalletState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SelectedNetwork returns the descriptor of the currently selected network.
func (s *WalletSession) SelectedNetwork() (core.NetworkDescriptor, error) {
	s.mu.Lock()
	key := s.state.SelectedNetworkKey
	s.mu.Unlock()
	return s.registry.Network(key)
}

// SetSelectedNetwork changes the selected network key. Unknown keys are
// ignored, matching the registry-backed dropdown it serves.
func (s *WalletSession) SetSelectedNetwork(ctx context.Context, key string) {
	if !s.registry.Has(key) {
		return
	}
	s.mu.Lock()
	s.state.SelectedNetworkKey = key
	s.mu.Unlock()
	s.persist(ctx)
}

// Connect requests account access from the provider and, on success, stores
// the checksummed address and fetches the native balance. Failures clear the
// account and balance and are reported in the result, never raised.
func (s *WalletSession) Connect(ctx context.Context) core.ConnectResult {
	if s.provider == nil || !s.provider.Available(ctx) {
		s.clearAccount(ctx)
		return core.ConnectResult{Reason: core.ReasonNoProvider}
	}

	accounts, err := s.provider.RequestAccounts(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("account request failed")
		s.clearAccount(ctx)
		return core.ConnectResult{Reason: core.ReasonRequestFailed}
	}
	if len(accounts) == 0 {
		s.clearAccount(ctx)
		return core.ConnectResult{Reason: core.ReasonNoAccounts}
	}

	address := accounts[0].Hex()
	chainID, err := s.provider.ChainID(ctx)
	if err != nil {
		chainID = 0
	}

	s.mu.Lock()
	s.state.Address = address
	s.state.ChainID = chainID
	s.state.IsConnected = true
	s.mu.Unlock()
	s.persist(ctx)

	s.FetchBalance(ctx)
	s.log.Info().Str("address", address).Msg("wallet connected")
	return core.ConnectResult{Success: true, Address: address}
}

// EnsureNetworkOnWallet moves the provider to the network registered under
// targetKey (the selected network when targetKey is empty). When the provider
// does not know the chain it is asked to add the definition, then the switch
// is retried once. Returns true only if the wallet ends up on the target
// chain; on any failure the selected network key is left unchanged.
func (s *WalletSession) EnsureNetworkOnWallet(ctx context.Context, targetKey string) bool {
	s.mu.Lock()
	key := targetKey
	if key == "" {
		key = s.state.SelectedNetworkKey
	}
	s.mu.Unlock()

	net, err := s.registry.Network(key)
	if err != nil {
		return false
	}
	if s.provider == nil || !s.provider.Available(ctx) {
		return false
	}
	if net.ChainID == 0 {
		return false
	}

	if active, err := s.provider.ChainID(ctx); err == nil && active == net.ChainID {
		s.commitNetwork(ctx, net)
		return true
	}

	if err := s.provider.SwitchChain(ctx, net.ChainID); err != nil {
		if !isUnrecognizedChain(err) {
			s.log.Warn().Err(err).Str("network", key).Msg("chain switch failed")
			return false
		}
		if err := s.provider.AddChain(ctx, addChainParams(net)); err != nil {
			s.log.Warn().Err(err).Str("network", key).Msg("chain add failed")
			return false
		}
		if err := s.provider.SwitchChain(ctx, net.ChainID); err != nil {
			s.log.Warn().Err(err).Str("network", key).Msg("chain switch retry failed")
			return false
		}
	}

	s.commitNetwork(ctx, net)
	return true
}

func (s *WalletSession) commitNetwork(ctx context.Context, net core.NetworkDescriptor) {
	s.mu.Lock()
	switched := s.state.SelectedNetworkKey != net.Key || s.state.ChainID != net.ChainID
	s.state.SelectedNetworkKey = net.Key
	s.state.ChainID = net.ChainID
	s.mu.Unlock()
	s.persist(ctx)
	if switched && s.events != nil {
		_ = s.events.PublishSessionEvent(ctx, ports.SessionEvent{
			Type:    ports.EventNetworkSwitched,
			Network: net.Key,
			At:      time.Now().Unix(),
		})
	}
}

// FetchBalance queries the native balance of the current address at the
// latest block. On any provider error the stored balance is reset to zero so
// a stale value never survives a failed refresh.
func (s *WalletSession) FetchBalance(ctx context.Context) *big.Int {
	s.mu.Lock()
	address := s.state.Address
	s.mu.Unlock()

	if s.provider == nil || !s.provider.Available(ctx) || address == "" {
		s.setBalance(ctx, nil)
		return new(big.Int)
	}
	bal, err := s.provider.BalanceAt(ctx, common.HexToAddress(address))
	if err != nil {
		s.log.Warn().Err(err).Msg("balance fetch failed")
		s.setBalance(ctx, nil)
		return new(big.Int)
	}
	s.setBalance(ctx, bal)
	return bal
}

// RefreshAccountAndBalance re-reads the provider's permitted accounts, which
// may have changed outside this session. It reports changed when the active
// account differs from the stored address or from the address bound to the
// auth session, so the caller can force re-authentication. The auth session
// is cleared only when no account is available at all.
func (s *WalletSession) RefreshAccountAndBalance(ctx context.Context) bool {
	s.mu.Lock()
	previous := s.state.Address
	s.mu.Unlock()

	if s.provider == nil || !s.provider.Available(ctx) {
		if previous == "" {
			return false
		}
		s.clearAccount(ctx)
		if s.auth != nil {
			s.auth.ClearSession(ctx)
		}
		return true
	}

	accounts, err := s.provider.Accounts(ctx)
	if err != nil || len(accounts) == 0 {
		if err != nil {
			s.log.Warn().Err(err).Msg("account refresh failed")
		}
		if previous == "" {
			return false
		}
		s.clearAccount(ctx)
		if s.auth != nil {
			s.auth.ClearSession(ctx)
		}
		return true
	}

	active := accounts[0].Hex()
	changed := previous != "" && !strings.EqualFold(active, previous)
	if s.auth != nil {
		if bound := s.auth.BoundAddress(); bound != "" && !strings.EqualFold(active, bound) {
			changed = true
		}
	}

	s.mu.Lock()
	s.state.Address = active
	s.state.IsConnected = true
	s.mu.Unlock()
	s.persist(ctx)
	s.FetchBalance(ctx)
	return changed
}

// Disconnect revokes the provider's granted permissions and unconditionally
// resets both the wallet and the auth session. A revocation failure is
// surfaced after the reset since it implies stale permission state on the
// provider side.
func (s *WalletSession) Disconnect(ctx context.Context) error {
	var revokeErr error
	if s.provider != nil && s.provider.Available(ctx) {
		revokeErr = s.provider.RevokePermissions(ctx)
	}

	s.Reset(ctx)
	if s.auth != nil {
		s.auth.ClearSession(ctx)
	}
	if s.events != nil {
		_ = s.events.PublishSessionEvent(ctx, ports.SessionEvent{
			Type: ports.EventSessionCleared,
			At:   time.Now().Unix(),
		})
	}
	if revokeErr != nil {
		return fmt.Errorf("revoking provider permissions: %w", revokeErr)
	}
	return nil
}

// Reset clears the account-dependent wallet state, keeping the selected
// network.
func (s *WalletSession) Reset(ctx context.Context) {
	s.mu.Lock()
	s.state.Reset()
	s.mu.Unlock()
	s.persist(ctx)
}

func (s *WalletSession) clearAccount(ctx context.Context) {
	s.Reset(ctx)
}

func (s *WalletSession) setBalance(ctx context.Context, bal *big.Int) {
	encoded := "0x0"
	if bal != nil {
		encoded = hexutil.EncodeBig(bal)
	}
	s.mu.Lock()
	s.state.BalanceWei = encoded
	s.mu.Unlock()
	s.persist(ctx)
}

func (s *WalletSession) persist(ctx context.Context) {
	s.mu.Lock()
	data, err := json.Marshal(s.state)
	s.mu.Unlock()
	if err != nil {
		s.log.Warn().Err(err).Msg("encoding wallet state")
		return
	}
	if err := s.store.Put(ctx, walletStateKey, data); err != nil {
		s.log.Warn().Err(err).Msg("persisting wallet state")
	}
}

func addChainParams(net core.NetworkDescriptor) ports.AddChainParams {
	return ports.AddChainParams{
		ChainID:           hexutil.EncodeUint64(net.ChainID),
		ChainName:         net.Key,
		RPCURLs:           net.RPCURLs,
		NativeCurrency:    net.NativeCurrency,
		BlockExplorerURLs: net.BlockExplorerURLs,
	}
}

// isUnrecognizedChain reports whether the provider rejected a switch because
// it does not know the chain (code 4902).
func isUnrecognizedChain(err error) bool {
	var provErr *core.ProviderError
	if !errors.As(err, &provErr) {
		return false
	}
	for e := provErr; e != nil; e = e.Inner {
		if e.Code == codeUnrecognizedChain {
			return true
		}
	}
	return false
}
