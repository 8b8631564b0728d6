// Command jwtdemo serves RS256 token issuance and verification over HTTP.
//
// Endpoints:
//
//	GET  /jwt        token for the fixed demo claim set
//	POST /verify     raw token in the body; 200 verified, 401 did not verify, 400 malformed
//	GET  /health     UP/DOWN JSON status
//	GET  /metrics    Prometheus text exposition
//	GET  /protected  Bearer token that passes claim policy
//
// Run:
//
//	go run ./cmd/jwtdemo
//
// Then:
//
//	TOKEN=$(curl -s localhost:8080/jwt)
//	curl -i -X POST localhost:8080/verify --data "$TOKEN"
//	curl -i localhost:8080/protected -H "Authorization: Bearer $TOKEN"
//
// Keys default to an ephemeral pair; set KEYS_SOURCE=file|env|redis to load
// persistent material.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/MrEthical07/goJWT/internal/demo"
)

func main() {
	if err := run(); err != nil {
		slog.Error("jwtdemo exited", slog.Any("err", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := demo.LoadConfig()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kp, closeKeys, err := demo.LoadKeys(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeKeys()

	engine, err := demo.NewEngine(cfg, kp, logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	for _, w := range engine.SecurityReport().Warnings {
		logger.Warn("config lint", slog.String("code", w))
	}

	shutdownMetrics, err := demo.StartMetricsExport(ctx, cfg.OTel, engine)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = shutdownMetrics(sctx)
	}()

	server := demo.NewServer(cfg, engine, logger)
	if cfg.ClientRate.Enabled {
		rdb := demo.NewRedisClient(cfg.Redis)
		defer rdb.Close()
		server.WithClientLimiter(rdb, cfg.ClientRate)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			slog.String("addr", cfg.Addr),
			slog.String("key_source", string(cfg.Keys.Source)),
			slog.String("kid", kp.KeyID),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
