package core

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// NativeCurrency describes the gas token of a network.
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// NetworkDescriptor is the static definition of one supported network.
// Descriptors are loaded once at startup and never mutated.
type NetworkDescriptor struct {
	Key               string            `json:"-"`
	ChainID           uint64            `json:"chainId"`
	RPCURLs           []string          `json:"rpcUrls"`
	NativeCurrency    NativeCurrency    `json:"nativeCurrency"`
	Contracts         map[string]string `json:"contracts"`
	BlockExplorerURLs []string          `json:"blockExplorerUrls,omitempty"`
}

// ContractAddress resolves a named contract deployed on this network.
func (n NetworkDescriptor) ContractAddress(name string) (common.Address, error) {
	addr, ok := n.Contracts[name]
	if !ok || addr == "" {
		return common.Address{}, fmt.Errorf("%w: contract %q on network %q", ErrUnknownContract, name, n.Key)
	}
	return common.HexToAddress(addr), nil
}

// Registry is a read-only lookup of network descriptors by key.
type Registry struct {
	networks map[string]NetworkDescriptor
}

// NewRegistry builds a registry from a key-to-descriptor map, stamping each
// descriptor with its own key.
func NewRegistry(networks map[string]NetworkDescriptor) *Registry {
	byKey := make(map[string]NetworkDescriptor, len(networks))
	for key, net := range networks {
		net.Key = key
		byKey[key] = net
	}
	return &Registry{networks: byKey}
}

// Network returns the descriptor registered under key.
func (r *Registry) Network(key string) (NetworkDescriptor, error) {
	net, ok := r.networks[key]
	if !ok {
		return NetworkDescriptor{}, fmt.Errorf("%w: %q", ErrUnknownNetwork, key)
	}
	return net, nil
}

// Has reports whether key is a registered network.
func (r *Registry) Has(key string) bool {
	_, ok := r.networks[key]
	return ok
}

// Keys returns all registered network keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.networks))
	for key := range r.networks {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
