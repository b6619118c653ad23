package service

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/gridmesh/station/adapters/store"
	"github.com/gridmesh/station/core"
	"github.com/gridmesh/station/ports"
)

// fakeProvider is a scriptable WalletProvider. Zero value is an unavailable
// provider; set available and accounts for the happy path.
type fakeProvider struct {
	mu sync.Mutex

	available bool

	accounts     []common.Address
	requestErr   error
	accountsErr  error
	requestCalls int

	chainID    uint64
	chainIDErr error

	balance    *big.Int
	balanceErr error

	signature  string
	signErr    error
	signCalls  int
	lastSigned string
	// When set, PersonalSign closes signStarted on entry and then blocks
	// until signGate is closed. Used by the reentrancy test.
	signStarted chan struct{}
	signGate    chan struct{}

	switchErrs    []error
	switchCalls   int
	addChainErr   error
	addChainCalls int
	addedChains   []ports.AddChainParams

	sendHash common.Hash
	sendErr  error

	revokeErr   error
	revokeCalls int
}

var _ ports.WalletProvider = (*fakeProvider)(nil)

func (p *fakeProvider) Available(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available
}

func (p *fakeProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requestCalls++
	if p.requestErr != nil {
		return nil, p.requestErr
	}
	return p.accounts, nil
}

func (p *fakeProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.accountsErr != nil {
		return nil, p.accountsErr
	}
	return p.accounts, nil
}

func (p *fakeProvider) ChainID(ctx context.Context) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.chainIDErr != nil {
		return 0, p.chainIDErr
	}
	return p.chainID, nil
}

func (p *fakeProvider) BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.balanceErr != nil {
		return nil, p.balanceErr
	}
	if p.balance == nil {
		return new(big.Int), nil
	}
	return new(big.Int).Set(p.balance), nil
}

func (p *fakeProvider) PersonalSign(ctx context.Context, addr common.Address, message []byte) (string, error) {
	p.mu.Lock()
	p.signCalls++
	p.lastSigned = string(message)
	started := p.signStarted
	p.signStarted = nil
	gate := p.signGate
	err := p.signErr
	sig := p.signature
	p.mu.Unlock()

	if started != nil {
		close(started)
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return "", err
	}
	return sig, nil
}

func (p *fakeProvider) SwitchChain(ctx context.Context, chainID uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.switchCalls++
	if len(p.switchErrs) == 0 {
		return nil
	}
	err := p.switchErrs[0]
	p.switchErrs = p.switchErrs[1:]
	return err
}

func (p *fakeProvider) AddChain(ctx context.Context, params ports.AddChainParams) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addChainCalls++
	p.addedChains = append(p.addedChains, params)
	return p.addChainErr
}

func (p *fakeProvider) SendTransaction(ctx context.Context, tx ports.TransactionRequest) (common.Hash, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sendErr != nil {
		return common.Hash{}, p.sendErr
	}
	return p.sendHash, nil
}

func (p *fakeProvider) RevokePermissions(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revokeCalls++
	return p.revokeErr
}

func (p *fakeProvider) setChainID(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chainID = id
}

// fakeRelay records ConnectWallet exchanges.
type fakeRelay struct {
	mu    sync.Mutex
	grant ports.SessionGrant
	err   error
	calls []ports.WalletAuth
}

var _ ports.Relay = (*fakeRelay)(nil)

func (r *fakeRelay) ConnectWallet(ctx context.Context, auth ports.WalletAuth) (ports.SessionGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, auth)
	if r.err != nil {
		return ports.SessionGrant{}, r.err
	}
	return r.grant, nil
}

// fakeEvents records published session events.
type fakeEvents struct {
	mu     sync.Mutex
	events []ports.SessionEvent
}

var _ ports.EventPublisher = (*fakeEvents)(nil)

func (e *fakeEvents) PublishSessionEvent(ctx context.Context, event ports.SessionEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func (e *fakeEvents) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.events))
	for i, ev := range e.events {
		out[i] = ev.Type
	}
	return out
}

// fakeNotifier records notifications; panics when told to, for the
// fault-isolation test.
type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	panics   bool
}

var _ ports.Notifier = (*fakeNotifier)(nil)

func (n *fakeNotifier) Notify(severity ports.Severity, message string) {
	n.mu.Lock()
	n.messages = append(n.messages, message)
	panics := n.panics
	n.mu.Unlock()
	if panics {
		panic("notifier unavailable")
	}
}

func testNetworks() *core.Registry {
	return core.NewRegistry(map[string]core.NetworkDescriptor{
		"testnet": {
			ChainID: 1337,
			RPCURLs: []string{"http://localhost:8545"},
			NativeCurrency: core.NativeCurrency{
				Name:     "Test",
				Symbol:   "TST",
				Decimals: 18,
			},
		},
		"mainnet": {
			ChainID: 1,
			RPCURLs: []string{"https://rpc.example.com"},
			NativeCurrency: core.NativeCurrency{
				Name:     "Grid",
				Symbol:   "GRD",
				Decimals: 18,
			},
		},
	})
}

type fixture struct {
	provider *fakeProvider
	relay    *fakeRelay
	events   *fakeEvents
	store    *store.MemoryStore
	wallet   *WalletSession
	auth     *AuthSession
}

func newFixture() *fixture {
	f := &fixture{
		provider: &fakeProvider{},
		relay:    &fakeRelay{grant: ports.SessionGrant{Token: "tok", ExpiresAt: 4_000_000_000}},
		events:   &fakeEvents{},
		store:    store.NewMemoryStore(),
	}
	log := zerolog.Nop()
	f.wallet = NewWalletSession(testNetworks(), f.provider, f.store, f.events, "testnet", log)
	f.auth = NewAuthSession(f.wallet, f.relay, f.provider, f.store, f.events, log)
	return f
}
