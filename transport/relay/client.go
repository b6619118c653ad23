// Package relay is the HTTP client for the relay service: wallet-auth
// exchange plus the thin statistics endpoints the dashboard shows.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gridmesh/station/core"
	"github.com/gridmesh/station/ports"
)

// TokenSource supplies the current bearer token, or "" when unauthenticated.
type TokenSource func() string

// Client talks to the relay API. Authorization failures on any call are
// fanned out to the registered unauthorized listeners before the error is
// returned.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
	log     zerolog.Logger

	mu        sync.Mutex
	listeners []ports.UnauthorizedListener
}

// NewClient creates a relay client. token may be nil for a client that never
// authenticates.
func NewClient(baseURL string, token TokenSource, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		token:   token,
		log:     log.With().Str("component", "relay").Logger(),
	}
}

var (
	_ ports.Relay                = (*Client)(nil)
	_ ports.UnauthorizedNotifier = (*Client)(nil)
)

// OnUnauthorized registers a listener invoked on every authorization
// failure reported by the relay.
func (c *Client) OnUnauthorized(listener ports.UnauthorizedListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, listener)
}

// ConnectWallet exchanges a signed challenge for a session token. When the
// relay omits expires_at but issued a JWT, the expiry is recovered from the
// token's exp claim.
func (c *Client) ConnectWallet(ctx context.Context, auth ports.WalletAuth) (ports.SessionGrant, error) {
	var grant ports.SessionGrant
	if err := c.do(ctx, http.MethodPost, "/client/connect_wallet", auth, &grant); err != nil {
		return ports.SessionGrant{}, err
	}
	if grant.ExpiresAt == 0 {
		grant.ExpiresAt = expiryFromToken(grant.Token)
	}
	return grant, nil
}

// GetAllNodesNumber returns the total node count on the network.
func (c *Client) GetAllNodesNumber(ctx context.Context) (int64, error) {
	var resp struct {
		Number int64 `json:"number"`
	}
	if err := c.do(ctx, http.MethodGet, "/network/nodes/number", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Number, nil
}

// GetAllNodesData returns a page of per-node statistics.
func (c *Client) GetAllNodesData(ctx context.Context, start, total int) ([]NodeRecord, error) {
	path := fmt.Sprintf("/network/nodes/data?start=%d&total=%d", start, total)
	var nodes []NodeRecord
	if err := c.do(ctx, http.MethodGet, path, nil, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// GetDelegatedNodes lists the nodes open for delegation.
func (c *Client) GetDelegatedNodes(ctx context.Context) ([]DelegatedNode, error) {
	var nodes []DelegatedNode
	if err := c.do(ctx, http.MethodGet, "/v2/nodes/delegated", nil, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// GetNodeDetails returns the relay's view of one node.
func (c *Client) GetNodeDetails(ctx context.Context, address string) (NodeDetails, error) {
	var details NodeDetails
	path := "/v2/node/" + url.PathEscape(address)
	if err := c.do(ctx, http.MethodGet, path, nil, &details); err != nil {
		return NodeDetails{}, err
	}
	return details, nil
}

// GetNodeDelegations returns a page of delegations on a node.
func (c *Client) GetNodeDelegations(ctx context.Context, nodeAddress, network string, page, pageSize int) (DelegationPage, error) {
	path := fmt.Sprintf("/v2/node/%s/delegations?network=%s&page=%d&page_size=%d",
		url.PathEscape(nodeAddress), url.QueryEscape(network), page, pageSize)
	var delegations DelegationPage
	if err := c.do(ctx, http.MethodGet, path, nil, &delegations); err != nil {
		return DelegationPage{}, err
	}
	return delegations, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.fireUnauthorized()
		return fmt.Errorf("%w: %s %s", core.ErrUnauthorized, method, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("relay returned %d for %s %s: %s", resp.StatusCode, method, path, msg)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// fireUnauthorized runs each listener in registration order; a panicking
// listener does not stop the rest.
func (c *Client) fireUnauthorized() {
	c.mu.Lock()
	listeners := make([]ports.UnauthorizedListener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, listener := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.log.Error().Interface("panic", r).Msg("unauthorized listener failed")
				}
			}()
			listener()
		}()
	}
}

// expiryFromToken pulls the exp claim out of a JWT without verifying it; the
// relay verified it when issuing, we only need the deadline.
func expiryFromToken(token string) int64 {
	parser := jwt.NewParser()
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return 0
	}
	if claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Unix()
}
