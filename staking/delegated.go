package staking

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/gridmesh/station/core"
	"github.com/gridmesh/station/gateway"
)

// DelegatedStaking operates the delegated-staking contract, where a delegator
// stakes on behalf of node operators.
type DelegatedStaking struct {
	gw  contractGateway
	log zerolog.Logger
}

// NewDelegatedStaking creates a delegated-staking service over the given gateway.
func NewDelegatedStaking(gw contractGateway, log zerolog.Logger) *DelegatedStaking {
	return &DelegatedStaking{
		gw:  gw,
		log: log.With().Str("component", "delegated-staking").Logger(),
	}
}

// GetMinStakeAmount returns the minimum delegation the contract accepts.
func (s *DelegatedStaking) GetMinStakeAmount(ctx context.Context, networkKey string) (*big.Int, error) {
	handle, err := s.gw.Read(networkKey, ContractDelegatedStaking, delegatedStakingABI)
	if err != nil {
		return nil, err
	}
	var out []interface{}
	if err := handle.Call(ctx, &out, "getMinStakeAmount"); err != nil {
		return nil, err
	}
	return firstBigInt(out), nil
}

// GetDelegationStakingAmount returns how much delegator has staked on nodeAddress.
func (s *DelegatedStaking) GetDelegationStakingAmount(ctx context.Context, networkKey string, delegator, nodeAddress common.Address) (*big.Int, error) {
	handle, err := s.gw.Read(networkKey, ContractDelegatedStaking, delegatedStakingABI)
	if err != nil {
		return nil, err
	}
	var out []interface{}
	if err := handle.Call(ctx, &out, "getDelegationStakingAmount", delegator, nodeAddress); err != nil {
		return nil, err
	}
	return firstBigInt(out), nil
}

// GetDelegatorStakingInfos returns every node the delegator staked on with
// the amount per node. The slices stay in the exact length and order the
// chain returned them.
func (s *DelegatedStaking) GetDelegatorStakingInfos(ctx context.Context, networkKey string, delegator common.Address) (core.DelegatorStakes, error) {
	handle, err := s.gw.Read(networkKey, ContractDelegatedStaking, delegatedStakingABI)
	if err != nil {
		return core.DelegatorStakes{}, err
	}
	var out []interface{}
	if err := handle.Call(ctx, &out, "getDelegatorStakingInfos", delegator); err != nil {
		return core.DelegatorStakes{}, err
	}

	stakes := core.DelegatorStakes{}
	if len(out) > 0 {
		if nodes, ok := out[0].([]common.Address); ok {
			stakes.Nodes = nodes
		}
	}
	if len(out) > 1 {
		if amounts, ok := out[1].([]*big.Int); ok {
			stakes.Amounts = make([]*big.Int, len(amounts))
			for i, a := range amounts {
				stakes.Amounts[i] = gateway.ToBigInt(a)
			}
		}
	}
	return stakes, nil
}

// GetDelegatorTotalStakeAmount returns the delegator's stake summed across all nodes.
func (s *DelegatedStaking) GetDelegatorTotalStakeAmount(ctx context.Context, networkKey string, delegator common.Address) (*big.Int, error) {
	handle, err := s.gw.Read(networkKey, ContractDelegatedStaking, delegatedStakingABI)
	if err != nil {
		return nil, err
	}
	var out []interface{}
	if err := handle.Call(ctx, &out, "getDelegatorTotalStakeAmount", delegator); err != nil {
		return nil, err
	}
	return firstBigInt(out), nil
}

// GetNodeTotalStakeAmount returns a node's stake summed across all delegators.
func (s *DelegatedStaking) GetNodeTotalStakeAmount(ctx context.Context, networkKey string, nodeAddress common.Address) (*big.Int, error) {
	handle, err := s.gw.Read(networkKey, ContractDelegatedStaking, delegatedStakingABI)
	if err != nil {
		return nil, err
	}
	var out []interface{}
	if err := handle.Call(ctx, &out, "getNodeTotalStakeAmount", nodeAddress); err != nil {
		return nil, err
	}
	return firstBigInt(out), nil
}

// GetNodeDelegatorShare returns the delegator share percentage (0-100) for a node.
func (s *DelegatedStaking) GetNodeDelegatorShare(ctx context.Context, networkKey string, nodeAddress common.Address) (uint64, error) {
	handle, err := s.gw.Read(networkKey, ContractDelegatedStaking, delegatedStakingABI)
	if err != nil {
		return 0, err
	}
	var out []interface{}
	if err := handle.Call(ctx, &out, "getNodeDelegatorShare", nodeAddress); err != nil {
		return 0, err
	}
	return firstBigInt(out).Uint64(), nil
}

// Stake delegates tokens to nodeAddress. The contract parameter is the final
// total stake after this call; the transaction value carries only the
// additional tokens transferred now. The two amounts are whole-token strings
// converted with the network's registered decimals.
func (s *DelegatedStaking) Stake(ctx context.Context, networkKey string, nodeAddress common.Address, totalAmount, additionalAmount string) (*types.Receipt, error) {
	totalWei, err := s.gw.ToMinorUnits(networkKey, totalAmount)
	if err != nil {
		return nil, err
	}
	additionalWei, err := s.gw.ToMinorUnits(networkKey, additionalAmount)
	if err != nil {
		return nil, err
	}
	handle, err := s.gw.Write(ctx, networkKey, ContractDelegatedStaking, delegatedStakingABI)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("network", networkKey).
		Str("node", nodeAddress.Hex()).
		Str("total", totalWei.String()).
		Str("additional", additionalWei.String()).
		Msg("staking")
	return handle.Submit(ctx, additionalWei, "stake", nodeAddress, totalWei)
}

// Unstake withdraws the delegator's entire stake from nodeAddress.
func (s *DelegatedStaking) Unstake(ctx context.Context, networkKey string, nodeAddress common.Address) (*types.Receipt, error) {
	handle, err := s.gw.Write(ctx, networkKey, ContractDelegatedStaking, delegatedStakingABI)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("network", networkKey).Str("node", nodeAddress.Hex()).Msg("unstaking")
	return handle.Submit(ctx, nil, "unstake", nodeAddress)
}
