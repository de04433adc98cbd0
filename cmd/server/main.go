package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/seanlongden/asa-student-portal/internal/app"
	"github.com/seanlongden/asa-student-portal/internal/config"
	httpapi "github.com/seanlongden/asa-student-portal/internal/http"
	"github.com/seanlongden/asa-student-portal/internal/services"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, logFile := app.NewLogger(cfg)
	defer func() {
		log.Sync()
		if logFile != nil {
			_ = logFile.Close()
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	portal, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("startup failed", "error", err)
	}
	defer portal.Close()

	hub := services.NewSyncHub()
	go hub.Run(ctx)
	deps := portal.Deps
	deps.Hub = hub

	server := httpapi.NewServer(cfg, deps)
	go weeklySyncLoop(ctx, server)

	addr := ":" + cfg.Port
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Router(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	cancel()
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = httpServer.Shutdown(ctxShutdown)
	log.Info("shutdown complete")
}

// weeklySyncLoop runs the metrics sweep every WeeklySyncInterval. A zero
// interval disables it; the sweep can still be triggered from the admin API.
func weeklySyncLoop(ctx context.Context, server *httpapi.Server) {
	interval := server.Config.WeeklySyncInterval
	if interval <= 0 {
		server.Log.Info("weekly metrics sync disabled")
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, time.Hour)
			if _, err := server.Sync.SyncAll(runCtx); err != nil {
				server.Log.Warn("weekly metrics sync aborted", "error", err)
			}
			cancel()
		case <-ctx.Done():
			return
		}
	}
}
