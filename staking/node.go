// Package staking exposes typed operations over the node-staking and
// delegated-staking contracts.
package staking

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/gridmesh/station/core"
	"github.com/gridmesh/station/gateway"
)

// contractGateway is the slice of the gateway the staking services need.
type contractGateway interface {
	Read(networkKey, contractName string, contractABI abi.ABI) (gateway.ReadHandle, error)
	Write(ctx context.Context, networkKey, contractName string, contractABI abi.ABI) (gateway.WriteHandle, error)
	ToMinorUnits(networkKey, amount string) (*big.Int, error)
}

// NodeStaking operates the per-node staking contract. Unstaking is two-phase:
// TryUnstake starts the contract-enforced cooldown, ForceUnstake completes it
// once the delay has elapsed.
type NodeStaking struct {
	gw  contractGateway
	log zerolog.Logger
}

// NewNodeStaking creates a node-staking service over the given gateway.
func NewNodeStaking(gw contractGateway, log zerolog.Logger) *NodeStaking {
	return &NodeStaking{
		gw:  gw,
		log: log.With().Str("component", "node-staking").Logger(),
	}
}

// GetMinStakeAmount returns the minimum stake the contract accepts.
func (s *NodeStaking) GetMinStakeAmount(ctx context.Context, networkKey string) (*big.Int, error) {
	handle, err := s.gw.Read(networkKey, ContractNodeStaking, nodeStakingABI)
	if err != nil {
		return nil, err
	}
	var out []interface{}
	if err := handle.Call(ctx, &out, "getMinStakeAmount"); err != nil {
		return nil, err
	}
	return firstBigInt(out), nil
}

// GetStakingInfo returns the stake lifecycle state of nodeAddress. Fields the
// contract omits default to zero instead of failing the whole read.
func (s *NodeStaking) GetStakingInfo(ctx context.Context, networkKey string, nodeAddress common.Address) (core.StakingInfo, error) {
	handle, err := s.gw.Read(networkKey, ContractNodeStaking, nodeStakingABI)
	if err != nil {
		return core.StakingInfo{}, err
	}
	var out []interface{}
	if err := handle.Call(ctx, &out, "getStakingInfo", nodeAddress); err != nil {
		return core.StakingInfo{}, err
	}

	info := core.StakingInfo{
		StakedBalance: new(big.Int),
		StakedCredits: new(big.Int),
	}
	if len(out) > 0 {
		if addr, ok := out[0].(common.Address); ok {
			info.NodeAddress = addr
		}
	}
	if len(out) > 1 {
		info.StakedBalance = gateway.ToBigInt(out[1])
	}
	if len(out) > 2 {
		info.StakedCredits = gateway.ToBigInt(out[2])
	}
	if len(out) > 3 {
		info.Status = core.StakingStatus(gateway.ToBigInt(out[3]).Uint64())
	}
	if len(out) > 4 {
		info.UnstakeTimestamp = gateway.ToBigInt(out[4]).Uint64()
	}
	return info, nil
}

// GetBenefitAddress returns the beneficial address registered for a node.
func (s *NodeStaking) GetBenefitAddress(ctx context.Context, networkKey string, nodeAddress common.Address) (common.Address, error) {
	handle, err := s.gw.Read(networkKey, ContractBenefitAddress, benefitAddressABI)
	if err != nil {
		return common.Address{}, err
	}
	var out []interface{}
	if err := handle.Call(ctx, &out, "getBenefitAddress", nodeAddress); err != nil {
		return common.Address{}, err
	}
	if len(out) > 0 {
		if addr, ok := out[0].(common.Address); ok {
			return addr, nil
		}
	}
	return common.Address{}, nil
}

// TryUnstake starts the unstake cooldown and waits for confirmation.
func (s *NodeStaking) TryUnstake(ctx context.Context, networkKey string) (*types.Receipt, error) {
	handle, err := s.gw.Write(ctx, networkKey, ContractNodeStaking, nodeStakingABI)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("network", networkKey).Msg("initiating unstake")
	return handle.Submit(ctx, nil, "tryUnstake")
}

// ForceUnstake completes an unstake after the cooldown. Calling it before the
// delay elapses fails on-chain, there is no client-side check.
func (s *NodeStaking) ForceUnstake(ctx context.Context, networkKey string) (*types.Receipt, error) {
	handle, err := s.gw.Write(ctx, networkKey, ContractNodeStaking, nodeStakingABI)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("network", networkKey).Msg("forcing unstake")
	return handle.Submit(ctx, nil, "forceUnstake")
}

func firstBigInt(out []interface{}) *big.Int {
	if len(out) == 0 {
		return new(big.Int)
	}
	return gateway.ToBigInt(out[0])
}
