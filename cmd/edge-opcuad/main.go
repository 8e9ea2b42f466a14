// Command edge-opcuad runs the OPC UA client/server runtime: an
// address-space-backed server endpoint plus a client-side session
// manager, wired together behind the shared node store, method
// registry, subscription store, and service dispatcher.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/edgeiiot/opcua-runtime/internal/addrspace"
	"github.com/edgeiiot/opcua-runtime/internal/adminapi"
	"github.com/edgeiiot/opcua-runtime/internal/config"
	"github.com/edgeiiot/opcua-runtime/internal/coordinator"
	"github.com/edgeiiot/opcua-runtime/internal/dispatch"
	"github.com/edgeiiot/opcua-runtime/internal/fabric"
	"github.com/edgeiiot/opcua-runtime/internal/health"
	"github.com/edgeiiot/opcua-runtime/internal/method"
	"github.com/edgeiiot/opcua-runtime/internal/sessionmgr"
	"github.com/edgeiiot/opcua-runtime/internal/subscription"
	"github.com/edgeiiot/opcua-runtime/internal/transport/clienttransport"
	"github.com/edgeiiot/opcua-runtime/internal/transport/servertransport"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
		}
	}()

	log.Info().Msg("starting edge-opcuad")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Info().
		Str("applicationUri", cfg.ApplicationURI).
		Int("bindPort", cfg.BindPort).
		Dur("requestTimeout", cfg.RequestTimeout).
		Msg("configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := addrspace.NewStore()
	methods := method.NewRegistry()
	subs := subscription.NewStore()
	dispatcher := dispatch.New(store, methods, subs)
	coord := coordinator.New(store, subs)

	serverTransport := servertransport.New(servertransport.Options{
		BindAddress:     cfg.BindAddress,
		BindPort:        cfg.BindPort,
		ServerName:      cfg.ServerName,
		ApplicationURI:  cfg.ApplicationURI,
		ProductURI:      cfg.ProductURI,
		ApplicationName: cfg.ApplicationName,
		Store:           store,
	}, log.Logger)

	clientTransport := clienttransport.New(clienttransport.Options{
		RequestTimeout: cfg.RequestTimeout,
	})
	sessions := sessionmgr.New(clientTransport, sessionmgr.Options{
		RequestTimeout:   cfg.RequestTimeout,
		MaxContinuations: cfg.MaxBrowseContinuations,
		AutoConnect:      cfg.AutoConnectAfterDiscovery,
		EndpointFoundCb: func(ep sessionmgr.EndpointDescription) {
			log.Info().Str("endpoint", ep.EndpointURL).Msg("endpoint found")
		},
		DeviceFoundCb: func(app sessionmgr.ApplicationConfig) {
			log.Info().Str("applicationUri", app.ApplicationURI).Msg("device found")
		},
	})

	msgFabric := fabric.New(fabric.Config{
		SendQueueCapacity: 256,
		RecvQueueCapacity: 256,
		Workers:           2,
	}, func(msg fabric.Message) {
		log.Debug().Uint64("messageId", msg.MessageID).Msg("fabric message delivered")
	})

	healthHandler := health.NewHandler(store, sessions)
	adminHandler := adminapi.NewHandler(cfg.ApplicationName, subs, sessions)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler.HandleHealth)
	mux.HandleFunc("/health/live", healthHandler.HandleLive)
	mux.HandleFunc("/health/ready", healthHandler.HandleReady)
	mux.HandleFunc("/api/status", adminHandler.HandleStatus)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HealthPort),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	if err := serverTransport.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start OPC UA server transport")
	}
	healthHandler.SetTransportReady(true)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.HealthPort).Msg("starting admin/health HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("admin http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		msgFabric.Run()
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case now := <-ticker.C:
				coord.Tick(now)
				serverTransport.SyncValues(store)
			}
		}
	})

	// dispatcher serves every local Read/Write/Call/Subscribe caller
	// (sessionmgr-driven client sessions, tests); the OPC UA server
	// transport only has a confirmed hook to push store values outward
	// (SyncValues above), not to route a real client's inbound Read,
	// Write, or Call into this dispatcher. See servertransport's package
	// doc.
	_ = dispatcher

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("admin http server shutdown error")
	}
	if err := serverTransport.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("OPC UA server transport shutdown error")
	}
	msgFabric.Close()

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("component returned an error during shutdown")
	}

	log.Info().Msg("edge-opcuad stopped")
}
