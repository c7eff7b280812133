// Package config defines the yuvnode process configuration: network
// selection, storage location, chain backend, P2P listener, and the
// tunables of the checker pool, attacher retry policy, indexer poll
// loop, and controller inventory sharing.
package config

import (
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
)

// Config is the top-level yuvnode configuration, populated from the
// command line and/or a config file by jessevdk/go-flags.
type Config struct {
	Network string `long:"network" description:"Bitcoin network to run on" choice:"mainnet" choice:"testnet" choice:"regtest" choice:"signet" default:"testnet"`

	DataDir string `long:"datadir" description:"directory to store the node's database in"`

	RPCHost string `long:"rpchost" description:"host:port of the mempool.space-style REST API the node reads the chain from"`
	RPCUser string `long:"rpcuser" description:"username for the backing Bitcoin Core RPC server"`
	RPCPass string `long:"rpcpass" description:"password for the backing Bitcoin Core RPC server"`

	P2PListen  string   `long:"p2plisten" description:"address to listen for peer connections on" default:"0.0.0.0:8332"`
	ConnectTo  []string `long:"connect" description:"address of a peer to connect to on startup"`

	RPCListen string `long:"rpclisten" description:"address to serve the node's JSON-RPC surface on" default:"localhost:8432"`

	MetricsListen string `long:"metricslisten" description:"address to serve Prometheus metrics on" default:"localhost:9432"`

	Checker   CheckerConfig   `group:"checker" namespace:"checker"`
	Attacher  AttacherConfig  `group:"attacher" namespace:"attacher"`
	Indexer   IndexerConfig   `group:"indexer" namespace:"indexer"`
	Controller ControllerConfig `group:"controller" namespace:"controller"`
}

// CheckerConfig tunes the isolated checker's worker pool.
type CheckerConfig struct {
	PoolSize int `long:"poolsize" description:"number of concurrent workers used for isolated transaction checks" default:"4"`
}

// AttacherConfig tunes the attacher's ancestor-fetch retry policy.
type AttacherConfig struct {
	RetryStart time.Duration `long:"retrystart" description:"initial delay before refetching a missing ancestor" default:"2s"`
	RetryCap   time.Duration `long:"retrycap" description:"maximum delay between ancestor refetch attempts" default:"1m"`
}

// IndexerConfig tunes the block indexer's polling and block-loading
// concurrency.
type IndexerConfig struct {
	PollInterval   time.Duration `long:"pollinterval" description:"how often to poll for new blocks once caught up" default:"15s"`
	Workers        int           `long:"workers" description:"number of concurrent block-fetch workers" default:"4"`
	RequestsPerSec float64       `long:"requestspersec" description:"rate limit applied to backend block requests" default:"8"`
	Burst          int           `long:"burst" description:"burst size for the backend block request rate limiter" default:"4"`

	IndexStepBack int32 `long:"indexstepback" description:"number of blocks behind the cursor the reorg-recovery trail covers, both in steady state and when re-seeded from the chain at startup" default:"100"`

	BufferSize int `long:"buffersize" description:"number of blocks the block loader fetches per chunk; a scan still holds every block from the cursor to the tip in memory" default:"50"`

	MaxConfirmationTime time.Duration `long:"maxconfirmationtime" description:"how long a transaction may sit awaiting confirmation before it's evicted and rejected as expired" default:"1h"`
}

// ControllerConfig tunes P2P inventory sharing and dedup.
type ControllerConfig struct {
	InvSharingInterval time.Duration `long:"invsharinginterval" description:"how often queued inventory is flushed to peers" default:"2s"`
	MaxInvSize         int           `long:"maxinvsize" description:"maximum number of txids queued between inventory flushes" default:"5000"`
	SeenCacheSize      uint          `long:"seencachesize" description:"size of the recently-seen txid dedup cache" default:"50000"`
}

// Default returns a Config populated with the same defaults go-flags
// would apply, for callers that build a Config programmatically
// (tests, embedding) rather than through flag parsing.
func Default() *Config {
	return &Config{
		Network:       "testnet",
		P2PListen:     "0.0.0.0:8332",
		RPCListen:     "localhost:8432",
		MetricsListen: "localhost:9432",
		Checker:   CheckerConfig{PoolSize: 4},
		Attacher:  AttacherConfig{RetryStart: 2 * time.Second, RetryCap: time.Minute},
		Indexer: IndexerConfig{
			PollInterval:        15 * time.Second,
			Workers:             4,
			RequestsPerSec:      8,
			Burst:               4,
			IndexStepBack:       100,
			BufferSize:          50,
			MaxConfirmationTime: time.Hour,
		},
		Controller: ControllerConfig{
			InvSharingInterval: 2 * time.Second,
			MaxInvSize:         5000,
			SeenCacheSize:      50000,
		},
	}
}

// NetParams resolves the configured network name to chaincfg params.
func (c *Config) NetParams() (*chaincfg.Params, error) {
	switch c.Network {
	case "mainnet":
		return &chaincfg.MainNetParams, nil
	case "testnet":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	default:
		return nil, fmt.Errorf("unknown network %q", c.Network)
	}
}

// Validate checks the configuration for obvious misconfiguration
// before the node attempts to start.
func (c *Config) Validate() error {
	if _, err := c.NetParams(); err != nil {
		return err
	}
	if c.DataDir == "" {
		return fmt.Errorf("datadir is required")
	}
	if c.RPCHost == "" {
		return fmt.Errorf("rpchost is required")
	}
	if c.Checker.PoolSize <= 0 {
		return fmt.Errorf("checker.poolsize must be positive")
	}
	if c.Indexer.Workers <= 0 {
		return fmt.Errorf("indexer.workers must be positive")
	}
	if c.Indexer.RequestsPerSec <= 0 {
		return fmt.Errorf("indexer.requestspersec must be positive")
	}
	if c.Indexer.IndexStepBack <= 0 {
		return fmt.Errorf("indexer.indexstepback must be positive")
	}
	if c.Indexer.BufferSize <= 0 {
		return fmt.Errorf("indexer.buffersize must be positive")
	}
	if c.Indexer.MaxConfirmationTime <= 0 {
		return fmt.Errorf("indexer.maxconfirmationtime must be positive")
	}
	return nil
}
