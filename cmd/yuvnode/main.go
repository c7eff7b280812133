// Command yuvnode runs a standalone YUV protocol node: it watches the
// configured Bitcoin backend for confirmed transactions and OP_RETURN
// announcements, attaches the confirmed YUV transactions it tracks, and
// serves Prometheus metrics. It starts no P2P transport and no JSON-RPC
// server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yuv-protocol/yuv-node/attacher"
	"github.com/yuv-protocol/yuv-node/build"
	"github.com/yuv-protocol/yuv-node/chainbridge"
	"github.com/yuv-protocol/yuv-node/check"
	"github.com/yuv-protocol/yuv-node/config"
	"github.com/yuv-protocol/yuv-node/controller"
	"github.com/yuv-protocol/yuv-node/eventbus"
	"github.com/yuv-protocol/yuv-node/indexer"
	"github.com/yuv-protocol/yuv-node/metrics"
	"github.com/yuv-protocol/yuv-node/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store := storage.NewMemStore()

	bridge := chainbridge.NewMempoolBridge(&chainbridge.MempoolConfig{
		BaseURL:   "http://" + cfg.RPCHost,
		RateLimit: 10,
	})

	buses := eventbus.NewBuses()
	reg := metrics.New()

	checker := check.New(check.Config{PoolSize: cfg.Checker.PoolSize})

	atch := attacher.New(attacher.Config{
		Storage: store,
		Checker: checker,
		Buses:   buses,
		Policy: attacher.FetchPolicy{
			Start:  cfg.Attacher.RetryStart,
			Cap:    cfg.Attacher.RetryCap,
			Jitter: 0.10,
		},
	})

	go atch.RunFetchLoop(ctx)

	loader := indexer.NewBlockLoader(bridge, cfg.Indexer.Workers,
		cfg.Indexer.RequestsPerSec, cfg.Indexer.Burst, cfg.Indexer.BufferSize)

	idx := indexer.New(indexer.Config{
		Bridge:              bridge,
		Storage:             store,
		Attacher:            atch,
		Buses:               buses,
		Loader:              loader,
		PollInterval:        cfg.Indexer.PollInterval,
		IndexStepBack:       cfg.Indexer.IndexStepBack,
		MaxConfirmationTime: cfg.Indexer.MaxConfirmationTime,
	})

	ctl := controller.New(controller.Config{
		Checker:            checker,
		Indexer:            idx,
		Storage:            store,
		Buses:              buses,
		InvSharingInterval: cfg.Controller.InvSharingInterval,
		MaxInvSize:         cfg.Controller.MaxInvSize,
		SeenCacheSize:      cfg.Controller.SeenCacheSize,
	})

	build.SetLogLevels("info")

	go reportEvents(ctx, buses, reg)
	go ctl.RunInvSharing(ctx)
	go serveMetrics(cfg.MetricsListen, reg)

	return idx.Run(ctx)
}

// reportEvents drains the event buses into the Prometheus counters and
// gauges, the way a real node would also drive logging or webhook
// delivery off the same subscriptions.
func reportEvents(ctx context.Context, buses *eventbus.Buses, reg *metrics.Metrics) {
	attached := buses.TxAttached.Subscribe(256)
	rejected := buses.TxRejected.Subscribe(256)
	reorgs := buses.Reorg.Subscribe(16)
	defer attached.Cancel()
	defer rejected.Cancel()
	defer reorgs.Cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case <-attached.C():
			reg.TxsAttached.Inc()
		case ev := <-rejected.C():
			reg.TxsRejected.WithLabelValues(string(ev.Err.Kind)).Inc()
		case <-reorgs.C():
			reg.ReorgsHandled.Inc()
		}
	}
}

func serveMetrics(addr string, reg *metrics.Metrics) {
	if err := reg.Register(prometheus.DefaultRegisterer); err != nil {
		fmt.Fprintf(os.Stderr, "registering metrics: %v\n", err)
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		fmt.Fprintf(os.Stderr, "metrics server: %v\n", err)
	}
}
