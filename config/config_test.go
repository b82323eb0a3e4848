package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	require.Equal(t, 4, GetInt(LogLevelKey))
	require.Equal(t, NetworkMainnet, GetString(NetworkKey))
	require.Equal(t, 5000, GetInt(CrawlIntervalKey))
	require.Equal(t, 1800, GetInt(RebroadcastIntervalKey))
	require.Empty(t, GetString(NodeWSEndpointKey))
	require.NotEmpty(t, GetDatadir())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{"unknown network", NetworkKey, "simnet"},
		{"log level out of range", LogLevelKey, 10},
		{"zero crawl interval", CrawlIntervalKey, 0},
		{"zero crawl limit", CrawlLimitKey, 0},
		{"zero token burst", CrawlTokenBurstKey, 0},
		{"negative rebroadcast interval", RebroadcastIntervalKey, -5},
		{"non websocket push endpoint", NodeWSEndpointKey, "http://localhost:8555/ws"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := vip.Get(tt.key)
			Set(tt.key, tt.value)
			defer Set(tt.key, old)

			require.Error(t, validate())
		})
	}
}
