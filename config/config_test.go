package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "station.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validConfig = `{
	"relayUrl": "https://relay.example.com",
	"defaultNetwork": "testnet",
	"networks": {
		"testnet": {
			"chainId": 1337,
			"rpcUrls": ["http://localhost:8545"],
			"nativeCurrency": {"name": "Test", "symbol": "TST", "decimals": 18},
			"contracts": {"nodeStaking": "0x1111111111111111111111111111111111111111"}
		}
	}
}`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "testnet", cfg.DefaultNetwork)
	require.Contains(t, cfg.Networks, "testnet")
	assert.Equal(t, uint64(1337), cfg.Networks["testnet"].ChainID)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "missing relay", content: `{"defaultNetwork":"t","networks":{"t":{"chainId":1,"rpcUrls":["x"],"nativeCurrency":{"decimals":18}}}}`},
		{name: "no networks", content: `{"relayUrl":"r","defaultNetwork":"t","networks":{}}`},
		{name: "unknown default", content: `{"relayUrl":"r","defaultNetwork":"other","networks":{"t":{"chainId":1,"rpcUrls":["x"],"nativeCurrency":{"decimals":18}}}}`},
		{name: "network without chain id", content: `{"relayUrl":"r","defaultNetwork":"t","networks":{"t":{"rpcUrls":["x"],"nativeCurrency":{"decimals":18}}}}`},
		{name: "network without rpc", content: `{"relayUrl":"r","defaultNetwork":"t","networks":{"t":{"chainId":1,"nativeCurrency":{"decimals":18}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
