// Package config loads the static stationd configuration: the network
// registry plus the endpoints of the daemon's external collaborators.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gridmesh/station/core"
)

// Config is the on-disk configuration, read once at startup and treated as
// read-only afterwards.
type Config struct {
	ListenAddr     string                            `json:"listenAddr"`
	RelayURL       string                            `json:"relayUrl"`
	RedisURL       string                            `json:"redisUrl,omitempty"`
	BridgeURL      string                            `json:"bridgeUrl,omitempty"`
	DefaultNetwork string                            `json:"defaultNetwork"`
	LogLevel       string                            `json:"logLevel,omitempty"`
	Networks       map[string]core.NetworkDescriptor `json:"networks"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{
		ListenAddr: ":9100",
		LogLevel:   "info",
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.RelayURL == "" {
		return fmt.Errorf("config: relayUrl is required")
	}
	if len(c.Networks) == 0 {
		return fmt.Errorf("config: at least one network is required")
	}
	if c.DefaultNetwork == "" {
		return fmt.Errorf("config: defaultNetwork is required")
	}
	if _, ok := c.Networks[c.DefaultNetwork]; !ok {
		return fmt.Errorf("config: defaultNetwork %q is not a configured network", c.DefaultNetwork)
	}
	for key, net := range c.Networks {
		if net.ChainID == 0 {
			return fmt.Errorf("config: network %q has no chainId", key)
		}
		if len(net.RPCURLs) == 0 {
			return fmt.Errorf("config: network %q has no rpcUrls", key)
		}
		if net.NativeCurrency.Decimals == 0 {
			return fmt.Errorf("config: network %q has no nativeCurrency.decimals", key)
		}
	}
	return nil
}
