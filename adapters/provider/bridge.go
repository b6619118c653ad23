// Package provider adapts an externally injected wallet bridge (the user's
// signing provider, reached over JSON-RPC) to the WalletProvider port.
package provider

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog"

	"github.com/gridmesh/station/ports"
)

// Bridge talks to the injected signing provider. The provider both signs and
// broadcasts transactions; the daemon never sees a private key.
type Bridge struct {
	client *rpc.Client
	log    zerolog.Logger
}

// Dial connects to the wallet bridge at url. An empty url means no provider
// is injected and returns (nil, nil): callers treat a nil provider as the
// normal no-provider condition.
func Dial(ctx context.Context, url string, log zerolog.Logger) (*Bridge, error) {
	if url == "" {
		return nil, nil
	}
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, convertError(err)
	}
	return &Bridge{
		client: client,
		log:    log.With().Str("component", "wallet-bridge").Logger(),
	}, nil
}

var _ ports.WalletProvider = (*Bridge)(nil)

// Available probes the bridge with a chain id read.
func (b *Bridge) Available(ctx context.Context) bool {
	if b == nil || b.client == nil {
		return false
	}
	var id hexutil.Big
	return b.client.CallContext(ctx, &id, "eth_chainId") == nil
}

// RequestAccounts prompts the user for account access.
func (b *Bridge) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := b.client.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, convertError(err)
	}
	return accounts, nil
}

// Accounts returns the currently permitted accounts without prompting.
func (b *Bridge) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := b.client.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, convertError(err)
	}
	return accounts, nil
}

// ChainID returns the provider's active chain id.
func (b *Bridge) ChainID(ctx context.Context) (uint64, error) {
	var id hexutil.Big
	if err := b.client.CallContext(ctx, &id, "eth_chainId"); err != nil {
		return 0, convertError(err)
	}
	return id.ToInt().Uint64(), nil
}

// BalanceAt returns the native balance of addr at the latest block.
func (b *Bridge) BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error) {
	var balance hexutil.Big
	if err := b.client.CallContext(ctx, &balance, "eth_getBalance", addr, "latest"); err != nil {
		return nil, convertError(err)
	}
	return balance.ToInt(), nil
}

// PersonalSign asks the user to sign message with addr.
func (b *Bridge) PersonalSign(ctx context.Context, addr common.Address, message []byte) (string, error) {
	var signature string
	if err := b.client.CallContext(ctx, &signature, "personal_sign", hexutil.Encode(message), addr); err != nil {
		return "", convertError(err)
	}
	return signature, nil
}

type switchChainParam struct {
	ChainID string `json:"chainId"`
}

// SwitchChain asks the provider to activate chainID.
func (b *Bridge) SwitchChain(ctx context.Context, chainID uint64) error {
	param := switchChainParam{ChainID: hexutil.EncodeUint64(chainID)}
	if err := b.client.CallContext(ctx, nil, "wallet_switchEthereumChain", param); err != nil {
		return convertError(err)
	}
	return nil
}

// AddChain registers a chain definition with the provider.
func (b *Bridge) AddChain(ctx context.Context, params ports.AddChainParams) error {
	if err := b.client.CallContext(ctx, nil, "wallet_addEthereumChain", params); err != nil {
		return convertError(err)
	}
	return nil
}

type transactionParam struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to"`
	Value *hexutil.Big    `json:"value,omitempty"`
	Data  hexutil.Bytes   `json:"data,omitempty"`
}

// SendTransaction hands tx to the provider for signing and broadcast.
func (b *Bridge) SendTransaction(ctx context.Context, tx ports.TransactionRequest) (common.Hash, error) {
	param := transactionParam{
		From: tx.From,
		To:   &tx.To,
		Data: tx.Data,
	}
	if tx.Value != nil {
		param.Value = (*hexutil.Big)(tx.Value)
	}
	var hash common.Hash
	if err := b.client.CallContext(ctx, &hash, "eth_sendTransaction", param); err != nil {
		return common.Hash{}, convertError(err)
	}
	return hash, nil
}

type revokeParam struct {
	EthAccounts struct{} `json:"eth_accounts"`
}

// RevokePermissions revokes previously granted account access.
func (b *Bridge) RevokePermissions(ctx context.Context) error {
	if err := b.client.CallContext(ctx, nil, "wallet_revokePermissions", revokeParam{}); err != nil {
		return convertError(err)
	}
	return nil
}
