package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/primaryrutabaga/braze-bridge/pkg/boot"
	"github.com/primaryrutabaga/braze-bridge/pkg/metrics"
	"github.com/primaryrutabaga/braze-bridge/pkg/natsx"
	"github.com/primaryrutabaga/braze-bridge/pkg/schemas"
	"github.com/primaryrutabaga/braze-bridge/pkg/tagbridge"
	"github.com/primaryrutabaga/braze-bridge/pkg/tap"
)

var (
	version   = "dev"
	commitSHA = "unknown"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	log.SetPrefix("[bridge] ")

	cfg := boot.LoadConfig("bridge")

	log.Printf("starting bridge service version=%s commit=%s", version, commitSHA)

	if !natsx.IsValidToken(cfg.Source) {
		log.Fatalf("config: BRIDGE_SOURCE %q is not a valid subject token", cfg.Source)
	}

	mapping := schemas.DefaultMapping()
	if cfg.MappingFile != "" {
		m, err := schemas.LoadMappingFile(cfg.MappingFile)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		mapping = m
		log.Printf("config: loaded e-commerce mapping from %s", cfg.MappingFile)
	}

	nc, err := boot.Connect(cfg, "braze-bridge")
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer nc.Close()
	log.Printf("connected to NATS at %s", cfg.NATSUrl)

	metrics.RegisterDefault()
	var servers []*http.Server
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	servers = append(servers, serve("metrics", cfg.MetricsAddr, metricsMux))

	sinks := tagbridge.MultiSink{natsx.NewSink(nc, cfg.Source, nil), metrics.CallCounter()}
	if cfg.TapAddr != "" {
		hub := tap.NewHub(nil)
		sinks = append(sinks, hub.Sink())
		tapMux := http.NewServeMux()
		tapMux.Handle("/tap", hub)
		servers = append(servers, serve("tap", cfg.TapAddr, tapMux))
	}

	bridge := tagbridge.New(
		sinks,
		natsx.NewPermissionClient(nc, cfg.PermissionSubject),
		tagbridge.WithMapping(mapping),
		tagbridge.WithRecorder(metrics.Recorder{}),
		tagbridge.WithPermissionTimeout(cfg.PermissionTimeout),
	)

	dlq := cfg.DLQSubject
	if dlq == "" {
		if dlq, err = natsx.BuildDLQSubject("tag_triggers", cfg.Source); err != nil {
			log.Fatalf("config: %v", err)
		}
	}

	sub, err := natsx.NewSource(bridge, nc, dlq, nil).Subscribe(nc, cfg.InboundSubject, cfg.InboundQueue)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	log.Printf("listening on %s (queue=%q, dlq=%s)", cfg.InboundSubject, cfg.InboundQueue, dlq)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Printf("shutting down")

	if err := sub.Drain(); err != nil {
		log.Printf("nats: drain subscription: %v", err)
	}
	if err := nc.Flush(); err != nil {
		log.Printf("nats: flush: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("http: shutdown %s: %v", srv.Addr, err)
		}
	}
}

func serve(name, addr string, h http.Handler) *http.Server {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("%s: listen %s: %v", name, addr, err)
		}
	}()
	log.Printf("%s: serving on %s", name, addr)
	return srv
}
