package http

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/gridmesh/station/core"
	"github.com/gridmesh/station/gateway"
	"github.com/gridmesh/station/internal/token"
	"github.com/gridmesh/station/service"
	"github.com/gridmesh/station/staking"
)

// Handlers contains the HTTP handlers backing the dashboard UI.
type Handlers struct {
	registry  *core.Registry
	wallet    *service.WalletSession
	auth      *service.AuthSession
	node      *staking.NodeStaking
	delegated *staking.DelegatedStaking
}

// NewHandlers creates the dashboard handlers.
func NewHandlers(
	registry *core.Registry,
	wallet *service.WalletSession,
	auth *service.AuthSession,
	node *staking.NodeStaking,
	delegated *staking.DelegatedStaking,
) *Handlers {
	return &Handlers{
		registry:  registry,
		wallet:    wallet,
		auth:      auth,
		node:      node,
		delegated: delegated,
	}
}

// Session reports the combined client-visible session state.
func (h *Handlers) Session(c *gin.Context) {
	wallet := h.wallet.State()
	c.JSON(http.StatusOK, gin.H{
		"wallet":          wallet,
		"shortAddress":    wallet.ShortAddress(),
		"isAuthenticated": h.auth.IsAuthenticated(),
		"sessionAddress":  h.auth.BoundAddress(),
		"sessionMatches":  h.auth.SessionMatchesWallet(),
	})
}

// Networks lists the registered network keys.
func (h *Handlers) Networks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"networks": h.registry.Keys()})
}

// Connect requests wallet account access.
func (h *Handlers) Connect(c *gin.Context) {
	result := h.wallet.Connect(c.Request.Context())
	c.JSON(http.StatusOK, result)
}

// Authenticate runs the full wallet-auth flow.
func (h *Handlers) Authenticate(c *gin.Context) {
	result := h.auth.Authenticate(c.Request.Context())
	c.JSON(http.StatusOK, result)
}

// Disconnect revokes provider permissions and resets both sessions.
func (h *Handlers) Disconnect(c *gin.Context) {
	if err := h.wallet.Disconnect(c.Request.Context()); err != nil {
		// Sessions are reset regardless; a revocation failure means the
		// provider may still hold stale permissions.
		c.JSON(http.StatusOK, gin.H{"success": true, "warning": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Refresh re-reads the provider's accounts and reports whether the active
// account changed, so the UI can force re-authentication.
func (h *Handlers) Refresh(c *gin.Context) {
	changed := h.wallet.RefreshAccountAndBalance(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

// SelectNetwork changes the session's selected network.
func (h *Handlers) SelectNetwork(c *gin.Context) {
	var req struct {
		Key string `json:"key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if !h.registry.Has(req.Key) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown network"})
		return
	}
	h.wallet.SetSelectedNetwork(c.Request.Context(), req.Key)
	c.JSON(http.StatusOK, gin.H{"selected": req.Key})
}

// MinStakeAmounts returns the minimum stake of both staking flavors.
func (h *Handlers) MinStakeAmounts(c *gin.Context) {
	network := c.Param("network")
	nodeMin, err := h.node.GetMinStakeAmount(c.Request.Context(), network)
	if err != nil {
		h.readError(c, err)
		return
	}
	delegatedMin, err := h.delegated.GetMinStakeAmount(c.Request.Context(), network)
	if err != nil {
		h.readError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"nodeStaking":      nodeMin.String(),
		"delegatedStaking": delegatedMin.String(),
	})
}

// StakingInfo returns the stake lifecycle state of one node.
func (h *Handlers) StakingInfo(c *gin.Context) {
	network := c.Param("network")
	address, ok := parseAddress(c, c.Param("address"))
	if !ok {
		return
	}
	info, err := h.node.GetStakingInfo(c.Request.Context(), network, address)
	if err != nil {
		h.readError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"nodeAddress":      info.NodeAddress.Hex(),
		"stakedBalance":    info.StakedBalance.String(),
		"stakedDisplay":    token.FormatBigInt18(info.StakedBalance, 2),
		"stakedCredits":    info.StakedCredits.String(),
		"status":           info.Status.String(),
		"unstakeTimestamp": info.UnstakeTimestamp,
	})
}

// DelegatorStakes lists every node a delegator staked on with amounts.
func (h *Handlers) DelegatorStakes(c *gin.Context) {
	network := c.Param("network")
	delegator, ok := parseAddress(c, c.Param("delegator"))
	if !ok {
		return
	}
	stakes, err := h.delegated.GetDelegatorStakingInfos(c.Request.Context(), network, delegator)
	if err != nil {
		h.readError(c, err)
		return
	}
	nodes := make([]string, len(stakes.Nodes))
	for i, n := range stakes.Nodes {
		nodes[i] = n.Hex()
	}
	amounts := make([]string, len(stakes.Amounts))
	for i, a := range stakes.Amounts {
		amounts[i] = a.String()
	}
	c.JSON(http.StatusOK, gin.H{"nodes": nodes, "amounts": amounts})
}

// Stake delegates tokens to a node and waits for confirmation.
func (h *Handlers) Stake(c *gin.Context) {
	var req struct {
		NodeAddress      string `json:"nodeAddress" binding:"required"`
		TotalAmount      string `json:"totalAmount" binding:"required"`
		AdditionalAmount string `json:"additionalAmount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	address, ok := parseAddress(c, req.NodeAddress)
	if !ok {
		return
	}
	receipt, err := h.delegated.Stake(c.Request.Context(), c.Param("network"), address, req.TotalAmount, req.AdditionalAmount)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tx": receipt.TxHash.Hex()})
}

// Unstake withdraws a delegator's entire stake from a node.
func (h *Handlers) Unstake(c *gin.Context) {
	var req struct {
		NodeAddress string `json:"nodeAddress" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	address, ok := parseAddress(c, req.NodeAddress)
	if !ok {
		return
	}
	receipt, err := h.delegated.Unstake(c.Request.Context(), c.Param("network"), address)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tx": receipt.TxHash.Hex()})
}

// TryUnstake starts the node-staking unstake cooldown.
func (h *Handlers) TryUnstake(c *gin.Context) {
	receipt, err := h.node.TryUnstake(c.Request.Context(), c.Param("network"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tx": receipt.TxHash.Hex()})
}

// ForceUnstake completes an unstake after the cooldown elapsed.
func (h *Handlers) ForceUnstake(c *gin.Context) {
	receipt, err := h.node.ForceUnstake(c.Request.Context(), c.Param("network"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tx": receipt.TxHash.Hex()})
}

// writeError maps a failed contract write to a response. A user rejection is
// a cancel, not an error dialog.
func (h *Handlers) writeError(c *gin.Context, err error) {
	if gateway.Classify(err) == gateway.ClassUserRejected {
		c.JSON(http.StatusOK, gin.H{"success": false, "cancelled": true})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
}

func (h *Handlers) readError(c *gin.Context, err error) {
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}

func parseAddress(c *gin.Context, raw string) (common.Address, bool) {
	if !common.IsHexAddress(raw) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address"})
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}
