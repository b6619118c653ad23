package ports

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gridmesh/station/core"
)

// AddChainParams carries the chain definition handed to a provider that does
// not yet know the target chain (wallet_addEthereumChain).
type AddChainParams struct {
	ChainID           string              `json:"chainId"`
	ChainName         string              `json:"chainName,omitempty"`
	RPCURLs           []string            `json:"rpcUrls"`
	NativeCurrency    core.NativeCurrency `json:"nativeCurrency"`
	BlockExplorerURLs []string            `json:"blockExplorerUrls,omitempty"`
}

// TransactionRequest is a contract write handed to the provider for signing
// and broadcast (eth_sendTransaction).
type TransactionRequest struct {
	From  common.Address
	To    common.Address
	Value *big.Int
	Data  []byte
}

// WalletProvider is the externally injected signing provider. Absence of a
// provider is a normal, handled condition: callers must treat a nil provider
// or Available() == false as "no provider", never as a fatal error.
type WalletProvider interface {
	// Available reports whether the provider is currently reachable.
	Available(ctx context.Context) bool

	// RequestAccounts prompts the user to grant account access (eth_requestAccounts).
	RequestAccounts(ctx context.Context) ([]common.Address, error)

	// Accounts returns the currently permitted accounts without prompting (eth_accounts).
	Accounts(ctx context.Context) ([]common.Address, error)

	// ChainID returns the provider's active chain id.
	ChainID(ctx context.Context) (uint64, error)

	// BalanceAt returns the native balance of addr at the latest block.
	BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error)

	// PersonalSign asks the user to sign message with addr (personal_sign).
	PersonalSign(ctx context.Context, addr common.Address, message []byte) (string, error)

	// SwitchChain asks the provider to activate chainID (wallet_switchEthereumChain).
	SwitchChain(ctx context.Context, chainID uint64) error

	// AddChain registers a chain definition with the provider (wallet_addEthereumChain).
	AddChain(ctx context.Context, params AddChainParams) error

	// SendTransaction signs and broadcasts tx, returning its hash.
	SendTransaction(ctx context.Context, tx TransactionRequest) (common.Hash, error)

	// RevokePermissions revokes previously granted account access
	// (wallet_revokePermissions). Not every provider supports revocation.
	RevokePermissions(ctx context.Context) error
}
