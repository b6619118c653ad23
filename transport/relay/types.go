package relay

// NodeRecord is one row of the network-wide node statistics listing.
type NodeRecord struct {
	Address  string `json:"address"`
	Network  string `json:"network,omitempty"`
	CardType string `json:"card_type,omitempty"`
	Staked   string `json:"staked,omitempty"`
	Status   string `json:"status,omitempty"`
}

// DelegatedNode is a node accepting delegated stake.
type DelegatedNode struct {
	Address        string `json:"address"`
	Network        string `json:"network,omitempty"`
	TotalStaked    string `json:"total_staked,omitempty"`
	DelegatorShare uint64 `json:"delegator_share,omitempty"`
}

// NodeDetails is the relay's view of a single node.
type NodeDetails struct {
	Address        string `json:"address"`
	Network        string `json:"network,omitempty"`
	TotalStaked    string `json:"total_staked,omitempty"`
	DelegatorCount int    `json:"delegator_count,omitempty"`
	Status         string `json:"status,omitempty"`
}

// Delegation is one delegator's stake on a node.
type Delegation struct {
	Delegator string `json:"delegator"`
	Amount    string `json:"amount"`
	Since     int64  `json:"since,omitempty"`
}

// DelegationPage is one page of a node's delegation listing.
type DelegationPage struct {
	Delegations []Delegation `json:"delegations"`
	Page        int          `json:"page"`
	PageSize    int          `json:"page_size"`
	Total       int          `json:"total"`
}
