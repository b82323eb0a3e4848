package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/odex-network/odex-daemon/pkg/explorer"
	"github.com/odex-network/odex-daemon/pkg/explorer/nodehttp"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	// DatadirKey is the local data directory storing the internal state of the daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// NodeEndpointKey is the endpoint where the full node REST API is listening
	NodeEndpointKey = "NODE_ENDPOINT"
	// NodeRequestTimeoutKey are the milliseconds to wait for HTTP responses before timeouts
	NodeRequestTimeoutKey = "NODE_REQUEST_TIMEOUT"
	// NodeWSEndpointKey is the websocket endpoint of the full node pushing coin
	// state updates. When empty the daemon relies on polling alone
	NodeWSEndpointKey = "NODE_WS_ENDPOINT"
	// CrawlIntervalKey is the interval in milliseconds to be used when watching the blockchain via the node
	CrawlIntervalKey = "CRAWL_INTERVAL"
	// CrawlLimitKey represents number of requests per second that crawler
	//makes to the node
	CrawlLimitKey = "CRAWL_LIMIT"
	// CrawlTokenBurstKey represents number of bursts tokens permitted from
	//crawler to the node
	CrawlTokenBurstKey = "CRAWL_TOKEN_BURST"
	// RebroadcastIntervalKey is the interval in seconds between resubmissions
	// of the pending settlement bundles. Zero disables rebroadcasting
	RebroadcastIntervalKey = "REBROADCAST_INTERVAL"
	// NetworkKey is the network to use. Either "mainnet" or "testnet"
	NetworkKey = "NETWORK"

	DbLocation = "db"

	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("odex-daemon", false)

func init() {
	vip = viper.New()
	vip.SetEnvPrefix("ODEX")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(NodeEndpointKey, "http://localhost:8555")
	vip.SetDefault(NodeRequestTimeoutKey, 15000)
	vip.SetDefault(NodeWSEndpointKey, "")
	vip.SetDefault(CrawlIntervalKey, 5000)
	vip.SetDefault(CrawlLimitKey, 10)
	vip.SetDefault(CrawlTokenBurstKey, 1)
	vip.SetDefault(RebroadcastIntervalKey, 1800)
	vip.SetDefault(NetworkKey, NetworkMainnet)

	if err := validate(); err != nil {
		log.WithError(err).Panic("error while validating config")
	}

	if err := initDatadir(); err != nil {
		log.WithError(err).Panic("error while creating datadir")
	}
}

//GetString ...
func GetString(key string) string {
	return vip.GetString(key)
}

//GetInt ...
func GetInt(key string) int {
	return vip.GetInt(key)
}

//GetFloat ...
func GetFloat(key string) float64 {
	return vip.GetFloat64(key)
}

//GetDuration ...
func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

//GetBool ...
func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

//GetExplorer returns the client of the configured full node endpoint
func GetExplorer() (explorer.Service, error) {
	endpoint := GetString(NodeEndpointKey)
	reqTimeout := time.Duration(GetInt(NodeRequestTimeoutKey)) * time.Millisecond
	return nodehttp.NewService(endpoint, reqTimeout)
}

// Set a value for the given key
func Set(key string, value interface{}) {
	vip.Set(key, value)
}

// IsSet returns whether the give key is set
func IsSet(key string) bool {
	return vip.IsSet(key)
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("datadir must not be null")
	}

	logLevel := GetInt(LogLevelKey)
	if logLevel < 0 || logLevel > int(log.TraceLevel) {
		return fmt.Errorf(
			"log level must be in range [0, %d]", int(log.TraceLevel),
		)
	}

	networkName := GetString(NetworkKey)
	if networkName != NetworkMainnet && networkName != NetworkTestnet {
		return fmt.Errorf(
			"network must be either '%s' or '%s'",
			NetworkMainnet, NetworkTestnet,
		)
	}

	nodeEndpoint := GetString(NodeEndpointKey)
	if _, err := url.Parse(nodeEndpoint); err != nil {
		return fmt.Errorf("node endpoint is not a valid url: %s", err)
	}

	if wsEndpoint := GetString(NodeWSEndpointKey); wsEndpoint != "" {
		u, err := url.Parse(wsEndpoint)
		if err != nil {
			return fmt.Errorf("node websocket endpoint is not a valid url: %s", err)
		}
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return fmt.Errorf("node websocket endpoint must use the ws or wss scheme")
		}
	}

	if GetInt(CrawlIntervalKey) <= 0 {
		return fmt.Errorf("crawl interval must be a positive number of milliseconds")
	}
	if GetFloat(CrawlLimitKey) <= 0 {
		return fmt.Errorf("crawl limit must be a positive number of requests per second")
	}
	if GetInt(CrawlTokenBurstKey) < 1 {
		return fmt.Errorf("crawl token burst must be at least 1")
	}
	if GetInt(RebroadcastIntervalKey) < 0 {
		return fmt.Errorf("rebroadcast interval must not be a negative number")
	}
	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	return makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation))
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
