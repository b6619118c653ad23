package core

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// StakingStatus is the on-chain lifecycle state of a node's stake.
type StakingStatus uint8

const (
	StatusUnstaked StakingStatus = iota
	StatusStaked
	StatusPendingUnstake
)

func (s StakingStatus) String() string {
	switch s {
	case StatusUnstaked:
		return "unstaked"
	case StatusStaked:
		return "staked"
	case StatusPendingUnstake:
		return "pending_unstake"
	default:
		return "unknown"
	}
}

// StakingInfo is the read model of a node's stake, produced fresh on every
// query and never cached here.
type StakingInfo struct {
	NodeAddress      common.Address `json:"nodeAddress"`
	StakedBalance    *big.Int       `json:"stakedBalance"`
	StakedCredits    *big.Int       `json:"stakedCredits"`
	Status           StakingStatus  `json:"status"`
	UnstakeTimestamp uint64         `json:"unstakeTimestamp"`
}

// DelegatorStakes lists every node a delegator has staked on with the staked
// amount per node. The two slices are parallel: Amounts[i] belongs to
// Nodes[i], in the order the chain returned them.
type DelegatorStakes struct {
	Nodes   []common.Address `json:"nodes"`
	Amounts []*big.Int       `json:"amounts"`
}

// WalletState holds the wallet-facing half of the client session. It is
// mutated only by the wallet session that owns it.
type WalletState struct {
	Address            string `json:"address"`
	ChainID            uint64 `json:"chainId"`
	SelectedNetworkKey string `json:"selectedNetworkKey"`
	BalanceWei         string `json:"balanceWei"`
	IsConnected        bool   `json:"isConnected"`
}

// NewWalletState returns a disconnected wallet state on the given network.
func NewWalletState(defaultNetworkKey string) WalletState {
	return WalletState{
		SelectedNetworkKey: defaultNetworkKey,
		BalanceWei:         "0x0",
	}
}

// Reset clears the account-dependent fields while keeping the selected
// network. Balance is always zeroed together with the address.
func (w *WalletState) Reset() {
	w.Address = ""
	w.ChainID = 0
	w.BalanceWei = "0x0"
	w.IsConnected = false
}

// Balance decodes the stored hex balance. Unparseable values count as zero.
func (w *WalletState) Balance() *big.Int {
	bal, err := hexutil.DecodeBig(w.BalanceWei)
	if err != nil {
		return new(big.Int)
	}
	return bal
}

// ShortAddress renders the address as 0xabcd…1234 for display.
func (w *WalletState) ShortAddress() string {
	if len(w.Address) < 10 {
		return ""
	}
	return w.Address[:6] + "…" + w.Address[len(w.Address)-4:]
}

// AuthState holds the relay-facing half of the client session. It is mutated
// only by the auth session that owns it.
type AuthState struct {
	SessionToken     string `json:"sessionToken"`
	SessionExpiresAt int64  `json:"sessionExpiresAt"`
	SessionAddress   string `json:"sessionAddress"`
}

// Reset clears the session token, expiry and bound address.
func (a *AuthState) Reset() {
	a.SessionToken = ""
	a.SessionExpiresAt = 0
	a.SessionAddress = ""
}

// Authenticated reports whether the session holds an unexpired token. Expiry
// is evaluated on every call, so a persisted-but-expired token reads as
// unauthenticated without an explicit clear.
func (a *AuthState) Authenticated(now time.Time) bool {
	return a.SessionToken != "" && a.SessionExpiresAt > now.Unix()
}

// Failure reasons carried in ConnectResult and AuthResult.
const (
	ReasonNoProvider            = "no_provider"
	ReasonRequestFailed         = "request_failed"
	ReasonNoAccounts            = "no_accounts"
	ReasonAlreadyAuthenticating = "already_authenticating"
	ReasonAuthFailed            = "auth_failed"
)

// ConnectResult is the outcome of a wallet connect attempt. Failures are
// reported here rather than raised, so the session state stays consistent.
type ConnectResult struct {
	Success bool   `json:"success"`
	Address string `json:"address,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// AuthResult is the outcome of an authenticate attempt.
type AuthResult struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
	Err     error  `json:"-"`
}
