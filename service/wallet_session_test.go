package service

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridmesh/station/core"
	"github.com/gridmesh/station/ports"
)

var testAccount = common.HexToAddress("0xab5801a7d398351b8be11c439e05c5b3259aec9b")

func TestConnectSuccess(t *testing.T) {
	f := newFixture()
	f.provider.available = true
	f.provider.accounts = []common.Address{testAccount}
	f.provider.chainID = 1337
	f.provider.balance = big.NewInt(26)

	res := f.wallet.Connect(context.Background())

	require.True(t, res.Success)
	assert.Equal(t, testAccount.Hex(), res.Address, "address is checksummed")

	state := f.wallet.State()
	assert.Equal(t, testAccount.Hex(), state.Address)
	assert.Equal(t, uint64(1337), state.ChainID)
	assert.True(t, state.IsConnected)
	assert.Equal(t, "0x1a", state.BalanceWei)
}

func TestConnectNoProvider(t *testing.T) {
	f := newFixture()

	res := f.wallet.Connect(context.Background())

	assert.False(t, res.Success)
	assert.Equal(t, core.ReasonNoProvider, res.Reason)
	assert.Empty(t, f.wallet.State().Address)
}

func TestConnectFailuresClearAccount(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(p *fakeProvider)
		reason string
	}{
		{
			name:   "request rejected",
			setup:  func(p *fakeProvider) { p.requestErr = &core.ProviderError{Code: 4001, Message: "User rejected"} },
			reason: core.ReasonRequestFailed,
		},
		{
			name:   "no accounts granted",
			setup:  func(p *fakeProvider) { p.accounts = nil },
			reason: core.ReasonNoAccounts,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.provider.available = true
			tt.setup(f.provider)

			// Seed stale state so the clearing is observable.
			f.wallet.mu.Lock()
			f.wallet.state.Address = "0xstale"
			f.wallet.state.BalanceWei = "0x5"
			f.wallet.state.IsConnected = true
			f.wallet.mu.Unlock()

			res := f.wallet.Connect(context.Background())

			assert.False(t, res.Success)
			assert.Equal(t, tt.reason, res.Reason)
			state := f.wallet.State()
			assert.Empty(t, state.Address)
			assert.Equal(t, "0x0", state.BalanceWei)
			assert.False(t, state.IsConnected)
		})
	}
}

func TestEnsureNetworkAlreadyActive(t *testing.T) {
	f := newFixture()
	f.provider.available = true
	f.provider.chainID = 1337

	ok := f.wallet.EnsureNetworkOnWallet(context.Background(), "testnet")

	assert.True(t, ok)
	assert.Zero(t, f.provider.switchCalls, "no switch when already on the chain")
	assert.Equal(t, uint64(1337), f.wallet.State().ChainID)
}

func TestEnsureNetworkSwitches(t *testing.T) {
	f := newFixture()
	f.provider.available = true
	f.provider.chainID = 1337

	ok := f.wallet.EnsureNetworkOnWallet(context.Background(), "mainnet")

	assert.True(t, ok)
	assert.Equal(t, 1, f.provider.switchCalls)
	state := f.wallet.State()
	assert.Equal(t, "mainnet", state.SelectedNetworkKey)
	assert.Equal(t, uint64(1), state.ChainID)
	assert.Contains(t, f.events.types(), ports.EventNetworkSwitched)
}

func TestEnsureNetworkAddsUnrecognizedChain(t *testing.T) {
	f := newFixture()
	f.provider.available = true
	f.provider.chainID = 1337
	f.provider.switchErrs = []error{
		&core.ProviderError{Code: 4902, Message: "Unrecognized chain ID"},
		nil,
	}

	ok := f.wallet.EnsureNetworkOnWallet(context.Background(), "mainnet")

	assert.True(t, ok)
	assert.Equal(t, 1, f.provider.addChainCalls)
	assert.Equal(t, 2, f.provider.switchCalls, "switch retried after add")
	require.Len(t, f.provider.addedChains, 1)
	assert.Equal(t, "0x1", f.provider.addedChains[0].ChainID)
	assert.Equal(t, "mainnet", f.wallet.State().SelectedNetworkKey)
}

func TestEnsureNetworkNestedUnrecognizedCode(t *testing.T) {
	f := newFixture()
	f.provider.available = true
	f.provider.chainID = 1337
	f.provider.switchErrs = []error{
		&core.ProviderError{
			Code:    -32603,
			Message: "Internal JSON-RPC error",
			Inner:   &core.ProviderError{Code: 4902, Message: "Unrecognized chain ID"},
		},
		nil,
	}

	ok := f.wallet.EnsureNetworkOnWallet(context.Background(), "mainnet")

	assert.True(t, ok)
	assert.Equal(t, 1, f.provider.addChainCalls)
}

func TestEnsureNetworkFailureKeepsSelection(t *testing.T) {
	f := newFixture()
	f.provider.available = true
	f.provider.chainID = 1337
	f.provider.switchErrs = []error{
		&core.ProviderError{Code: 4001, Message: "User rejected the request"},
	}

	ok := f.wallet.EnsureNetworkOnWallet(context.Background(), "mainnet")

	assert.False(t, ok)
	assert.Zero(t, f.provider.addChainCalls, "rejection is not an unknown chain")
	assert.Equal(t, "testnet", f.wallet.State().SelectedNetworkKey, "selection unchanged on failure")
}

func TestEnsureNetworkUnknownKey(t *testing.T) {
	f := newFixture()
	f.provider.available = true

	assert.False(t, f.wallet.EnsureNetworkOnWallet(context.Background(), "devnet"))
}

func TestEnsureNetworkDefaultsToSelected(t *testing.T) {
	f := newFixture()
	f.provider.available = true
	f.provider.chainID = 1337

	ok := f.wallet.EnsureNetworkOnWallet(context.Background(), "")

	assert.True(t, ok)
	assert.Equal(t, "testnet", f.wallet.State().SelectedNetworkKey)
}

func TestFetchBalanceErrorResetsToZero(t *testing.T) {
	f := newFixture()
	f.provider.available = true
	f.provider.accounts = []common.Address{testAccount}
	f.provider.balance = big.NewInt(1000)
	f.wallet.Connect(context.Background())
	require.Equal(t, "0x3e8", f.wallet.State().BalanceWei)

	f.provider.mu.Lock()
	f.provider.balanceErr = errors.New("rpc timeout")
	f.provider.mu.Unlock()

	bal := f.wallet.FetchBalance(context.Background())

	assert.Zero(t, bal.Sign())
	assert.Equal(t, "0x0", f.wallet.State().BalanceWei, "stale balance never survives a failed refresh")
}

func TestRefreshUnchangedAccount(t *testing.T) {
	f := newFixture()
	f.provider.available = true
	f.provider.accounts = []common.Address{testAccount}
	f.wallet.Connect(context.Background())

	changed := f.wallet.RefreshAccountAndBalance(context.Background())

	assert.False(t, changed)
}

func TestRefreshDetectsSwitchedAccount(t *testing.T) {
	f := newFixture()
	f.provider.available = true
	f.provider.accounts = []common.Address{testAccount}
	f.wallet.Connect(context.Background())

	other := common.HexToAddress("0x1111111111111111111111111111111111111111")
	f.provider.mu.Lock()
	f.provider.accounts = []common.Address{other}
	f.provider.mu.Unlock()

	changed := f.wallet.RefreshAccountAndBalance(context.Background())

	assert.True(t, changed)
	assert.Equal(t, other.Hex(), f.wallet.State().Address, "state follows the active account")
}

func TestRefreshComparesAgainstSessionAddress(t *testing.T) {
	f := newFixture()
	f.provider.available = true
	f.provider.accounts = []common.Address{testAccount}
	f.wallet.Connect(context.Background())

	// The session was issued for a different account than the one the
	// provider now reports, even though the stored wallet address already
	// caught up. The mismatch must still be reported.
	f.auth.SetSession(context.Background(), "tok", 4_000_000_000, "0x2222222222222222222222222222222222222222")

	changed := f.wallet.RefreshAccountAndBalance(context.Background())

	assert.True(t, changed)
}

func TestRefreshNoAccountsClearsSessions(t *testing.T) {
	f := newFixture()
	f.provider.available = true
	f.provider.accounts = []common.Address{testAccount}
	f.wallet.Connect(context.Background())
	f.auth.SetSession(context.Background(), "tok", 4_000_000_000, testAccount.Hex())

	f.provider.mu.Lock()
	f.provider.accounts = nil
	f.provider.mu.Unlock()

	changed := f.wallet.RefreshAccountAndBalance(context.Background())

	assert.True(t, changed)
	assert.Empty(t, f.wallet.State().Address)
	assert.False(t, f.auth.IsAuthenticated())
}

func TestRefreshNothingToClear(t *testing.T) {
	f := newFixture()

	assert.False(t, f.wallet.RefreshAccountAndBalance(context.Background()))
}

func TestDisconnect(t *testing.T) {
	f := newFixture()
	f.provider.available = true
	f.provider.accounts = []common.Address{testAccount}
	f.wallet.Connect(context.Background())
	f.auth.SetSession(context.Background(), "tok", 4_000_000_000, testAccount.Hex())

	err := f.wallet.Disconnect(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, f.provider.revokeCalls)
	assert.Empty(t, f.wallet.State().Address)
	assert.False(t, f.auth.IsAuthenticated())
	assert.Contains(t, f.events.types(), ports.EventSessionCleared)
}

func TestDisconnectSurfacesRevocationFailure(t *testing.T) {
	f := newFixture()
	f.provider.available = true
	f.provider.accounts = []common.Address{testAccount}
	f.provider.revokeErr = errors.New("method not supported")
	f.wallet.Connect(context.Background())

	err := f.wallet.Disconnect(context.Background())

	assert.Error(t, err)
	assert.Empty(t, f.wallet.State().Address, "state is reset even when revocation fails")
}

func TestSetSelectedNetwork(t *testing.T) {
	f := newFixture()

	f.wallet.SetSelectedNetwork(context.Background(), "mainnet")
	assert.Equal(t, "mainnet", f.wallet.State().SelectedNetworkKey)

	f.wallet.SetSelectedNetwork(context.Background(), "devnet")
	assert.Equal(t, "mainnet", f.wallet.State().SelectedNetworkKey, "unknown keys are ignored")
}

func TestRestoreRoundTrip(t *testing.T) {
	f := newFixture()
	f.provider.available = true
	f.provider.accounts = []common.Address{testAccount}
	f.provider.chainID = 1337
	f.provider.balance = big.NewInt(7)
	f.wallet.Connect(context.Background())

	restored := NewWalletSession(testNetworks(), f.provider, f.store, f.events, "mainnet", zerolog.Nop())
	restored.Restore(context.Background())

	state := restored.State()
	assert.Equal(t, testAccount.Hex(), state.Address)
	assert.Equal(t, "testnet", state.SelectedNetworkKey, "persisted selection wins over the default")
	assert.Equal(t, "0x7", state.BalanceWei)
}

func TestRestoreDropsUnknownNetwork(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.store.Put(context.Background(), walletStateKey,
		[]byte(`{"address":"","selectedNetworkKey":"gone","balanceWei":""}`)))

	restored := NewWalletSession(testNetworks(), f.provider, f.store, f.events, "mainnet", zerolog.Nop())
	restored.Restore(context.Background())

	state := restored.State()
	assert.Equal(t, "mainnet", state.SelectedNetworkKey)
	assert.Equal(t, "0x0", state.BalanceWei)
}
