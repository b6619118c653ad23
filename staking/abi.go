package staking

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Contract names as registered in each network descriptor.
const (
	ContractNodeStaking      = "nodeStaking"
	ContractDelegatedStaking = "delegatedStaking"
	ContractBenefitAddress   = "benefitAddress"
)

const nodeStakingABIJSON = `[
	{"type":"function","name":"getMinStakeAmount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getStakingInfo","stateMutability":"view","inputs":[{"name":"nodeAddress","type":"address"}],"outputs":[{"name":"nodeAddress","type":"address"},{"name":"stakedBalance","type":"uint256"},{"name":"stakedCredits","type":"uint256"},{"name":"status","type":"uint8"},{"name":"unstakeTimestamp","type":"uint256"}]},
	{"type":"function","name":"tryUnstake","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"forceUnstake","stateMutability":"nonpayable","inputs":[],"outputs":[]}
]`

const delegatedStakingABIJSON = `[
	{"type":"function","name":"getMinStakeAmount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getDelegationStakingAmount","stateMutability":"view","inputs":[{"name":"delegator","type":"address"},{"name":"nodeAddress","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getDelegatorStakingInfos","stateMutability":"view","inputs":[{"name":"delegator","type":"address"}],"outputs":[{"name":"nodes","type":"address[]"},{"name":"amounts","type":"uint256[]"}]},
	{"type":"function","name":"getDelegatorTotalStakeAmount","stateMutability":"view","inputs":[{"name":"delegator","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getNodeTotalStakeAmount","stateMutability":"view","inputs":[{"name":"nodeAddress","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getNodeDelegatorShare","stateMutability":"view","inputs":[{"name":"nodeAddress","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"stake","stateMutability":"payable","inputs":[{"name":"nodeAddress","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"unstake","stateMutability":"nonpayable","inputs":[{"name":"nodeAddress","type":"address"}],"outputs":[]}
]`

const benefitAddressABIJSON = `[
	{"type":"function","name":"getBenefitAddress","stateMutability":"view","inputs":[{"name":"nodeAddress","type":"address"}],"outputs":[{"name":"","type":"address"}]}
]`

var (
	nodeStakingABI      = mustParseABI(nodeStakingABIJSON)
	delegatedStakingABI = mustParseABI(delegatedStakingABIJSON)
	benefitAddressABI   = mustParseABI(benefitAddressABIJSON)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
