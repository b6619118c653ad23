// Package gateway builds read-only and signer-bound contract handles on top
// of the chain registry and the injected wallet provider.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"

	"github.com/gridmesh/station/core"
	"github.com/gridmesh/station/internal/token"
	"github.com/gridmesh/station/ports"
)

// NetworkEnsurer aligns the wallet provider's active chain with a target
// network before a write. The wallet session implements this.
type NetworkEnsurer interface {
	EnsureNetworkOnWallet(ctx context.Context, networkKey string) bool
}

// ReadHandle performs read-only contract calls. Results arrive as the raw
// output slice of the called method.
type ReadHandle interface {
	Call(ctx context.Context, results *[]interface{}, method string, args ...interface{}) error
}

// WriteHandle submits a state-changing contract call through the signing
// provider and waits for it to be mined.
type WriteHandle interface {
	Submit(ctx context.Context, value *big.Int, method string, args ...interface{}) (*types.Receipt, error)
}

// rpcBackend is the slice of ethclient the gateway needs. Carved out so tests
// can substitute the chain.
type rpcBackend interface {
	bind.ContractCaller
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Gateway resolves contract addresses through the registry and opens handles
// against each network's primary RPC endpoint.
type Gateway struct {
	registry *core.Registry
	provider ports.WalletProvider
	ensurer  NetworkEnsurer
	log      zerolog.Logger

	dial         func(url string) (rpcBackend, error)
	pollInterval time.Duration
}

// New creates a gateway. provider may be nil when no signing provider is
// injected; reads keep working, writes fail with ErrNoProvider.
func New(registry *core.Registry, provider ports.WalletProvider, ensurer NetworkEnsurer, log zerolog.Logger) *Gateway {
	return &Gateway{
		registry: registry,
		provider: provider,
		ensurer:  ensurer,
		log:      log.With().Str("component", "gateway").Logger(),
		dial: func(url string) (rpcBackend, error) {
			client, err := ethclient.Dial(url)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", core.ErrProviderUnavailable, err)
			}
			return client, nil
		},
		pollInterval: 2 * time.Second,
	}
}

// Read opens a read-only handle for the named contract on networkKey.
func (g *Gateway) Read(networkKey, contractName string, contractABI abi.ABI) (ReadHandle, error) {
	net, err := g.registry.Network(networkKey)
	if err != nil {
		return nil, err
	}
	addr, err := net.ContractAddress(contractName)
	if err != nil {
		return nil, err
	}
	if len(net.RPCURLs) == 0 {
		return nil, fmt.Errorf("%w: network %q has no rpc endpoints", core.ErrProviderUnavailable, networkKey)
	}
	backend, err := g.dial(net.RPCURLs[0])
	if err != nil {
		return nil, err
	}
	return &readHandle{
		bound: bind.NewBoundContract(addr, contractABI, backend, nil, nil),
	}, nil
}

// Write opens a signer-bound handle for the named contract on networkKey.
// The wallet is moved to the target chain first so the provider signs for
// the right network.
func (g *Gateway) Write(ctx context.Context, networkKey, contractName string, contractABI abi.ABI) (WriteHandle, error) {
	if g.provider == nil || !g.provider.Available(ctx) {
		return nil, core.ErrNoProvider
	}
	if !g.ensurer.EnsureNetworkOnWallet(ctx, networkKey) {
		return nil, fmt.Errorf("%w: network %q", core.ErrNetworkSwitchFailed, networkKey)
	}
	net, err := g.registry.Network(networkKey)
	if err != nil {
		return nil, err
	}
	addr, err := net.ContractAddress(contractName)
	if err != nil {
		return nil, err
	}
	accounts, err := g.provider.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading provider accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, core.ErrNoProvider
	}
	if len(net.RPCURLs) == 0 {
		return nil, fmt.Errorf("%w: network %q has no rpc endpoints", core.ErrProviderUnavailable, networkKey)
	}
	backend, err := g.dial(net.RPCURLs[0])
	if err != nil {
		return nil, err
	}
	return &writeHandle{
		contractABI:  contractABI,
		to:           addr,
		from:         accounts[0],
		provider:     g.provider,
		backend:      backend,
		pollInterval: g.pollInterval,
		log:          g.log.With().Str("contract", contractName).Str("network", networkKey).Logger(),
	}, nil
}

// ToMinorUnits converts a whole-token amount into the network's minor units
// using its registered decimal count.
func (g *Gateway) ToMinorUnits(networkKey, amount string) (*big.Int, error) {
	net, err := g.registry.Network(networkKey)
	if err != nil {
		return nil, err
	}
	return token.ParseTokenAmount(amount, net.NativeCurrency.Decimals)
}

type readHandle struct {
	bound *bind.BoundContract
}

func (h *readHandle) Call(ctx context.Context, results *[]interface{}, method string, args ...interface{}) error {
	opts := &bind.CallOpts{Context: ctx}
	if err := h.bound.Call(opts, results, method, args...); err != nil {
		return fmt.Errorf("%w: %v", core.ErrProviderUnavailable, err)
	}
	return nil
}

type writeHandle struct {
	contractABI  abi.ABI
	to           common.Address
	from         common.Address
	provider     ports.WalletProvider
	backend      rpcBackend
	pollInterval time.Duration
	log          zerolog.Logger
}

func (h *writeHandle) Submit(ctx context.Context, value *big.Int, method string, args ...interface{}) (*types.Receipt, error) {
	data, err := h.contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", method, err)
	}
	hash, err := h.provider.SendTransaction(ctx, ports.TransactionRequest{
		From:  h.from,
		To:    h.to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		if Classify(err) == ClassUserRejected {
			return nil, fmt.Errorf("%w: %s", core.ErrUserRejected, method)
		}
		return nil, fmt.Errorf("submitting %s: %w", method, err)
	}
	h.log.Debug().Str("tx", hash.Hex()).Str("method", method).Msg("transaction submitted")
	receipt, err := h.waitMined(ctx, hash)
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s reverted in tx %s", core.ErrTransactionFailed, method, hash.Hex())
	}
	return receipt, nil
}

func (h *writeHandle) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()
	for {
		receipt, err := h.backend.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("%w: waiting for tx %s: %v", core.ErrProviderUnavailable, hash.Hex(), err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
