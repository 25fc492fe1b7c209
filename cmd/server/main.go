package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	apihttp "moviestream/internal/api/http"
	"moviestream/internal/app"
	"moviestream/internal/catalog/yts"
	"moviestream/internal/domain"
	"moviestream/internal/domain/ports"
	"moviestream/internal/media"
	"moviestream/internal/metrics"
	"moviestream/internal/services/transfer/anacrolix"
	"moviestream/internal/services/transfer/unavailable"
	"moviestream/internal/store"
	"moviestream/internal/telemetry"
	"moviestream/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	cfg := app.LoadConfig()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics.Register(prometheus.DefaultRegisterer)

	shutdownTracer, err := telemetry.Init(context.Background(), "moviestream")
	if err != nil {
		logger.Warn("otel init failed", slog.String("error", err.Error()))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	logger.Info("configuration loaded",
		slog.String("service", "moviestream"),
		slog.String("httpAddr", cfg.HTTPAddr),
		slog.String("logLevel", cfg.LogLevel),
		slog.String("logFormat", cfg.LogFormat),
		slog.String("downloadDir", cfg.DownloadDir),
		slog.Duration("sessionIdleTimeout", cfg.SessionIdleTimeout),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(rootCtx, 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable, catalog cache disabled", slog.String("error", err.Error()))
			redisClient = nil
		}
		cancel()
	}

	catalog := yts.NewClient(yts.Config{
		BaseURL:  cfg.CatalogBaseURL,
		Redis:    redisClient,
		CacheTTL: cfg.CatalogCacheTTL,
	})

	var engine ports.Engine
	realEngine, err := anacrolix.New(anacrolix.Config{
		DataDir: cfg.DownloadDir,
		Logger:  logger,
	})
	if err != nil {
		// Browser-only mode: the catalog still works, playback does not.
		logger.Warn("torrent engine init failed, running without streaming",
			slog.String("error", err.Error()),
		)
		engine = unavailable.New()
	} else {
		engine = realEngine
	}

	torrents := store.NewTorrentStore()
	sessions := store.NewSessionRegistry(cfg.SessionIdleTimeout, torrents.Has, logger)
	detector := media.NewDetector()

	// The watch hook closes over monitor/readiness values assigned below,
	// after the server (and its WebSocket hub) exists. No play request can
	// arrive before ListenAndServe.
	var monitor usecase.ProgressMonitor
	var readiness usecase.ReadinessWatch
	watch := func(torrentID domain.TorrentID, sessionID domain.SessionID) {
		go monitor.Run(rootCtx, torrentID, sessionID)
		go readiness.Run(rootCtx, sessionID, torrentID)
	}

	playUC := usecase.PlayMovie{
		Catalog:  catalog,
		Engine:   engine,
		Torrents: torrents,
		Sessions: sessions,
		Watch:    watch,
		Logger:   logger,
		Now:      time.Now,
	}
	statusUC := usecase.SessionStatus{Sessions: sessions, Torrents: torrents}
	controlUC := usecase.ControlTorrent{Engine: engine, Torrents: torrents, Logger: logger}

	handler := apihttp.NewServer(playUC,
		apihttp.WithSessionStatus(statusUC),
		apihttp.WithControlTorrent(controlUC),
		apihttp.WithCatalog(catalog),
		apihttp.WithEngine(engine),
		apihttp.WithStores(torrents, sessions),
		apihttp.WithDetector(detector),
		apihttp.WithAllowedOrigins(cfg.AllowedOrigins),
		apihttp.WithLogger(logger),
	)

	publisher := handler.Publisher()
	monitor = usecase.ProgressMonitor{
		Engine:   engine,
		Torrents: torrents,
		Sessions: sessions,
		Events:   publisher,
		Logger:   logger,
		Interval: cfg.PollInterval,
	}
	readiness = usecase.ReadinessWatch{
		Engine:   engine,
		Torrents: torrents,
		Sessions: sessions,
		Detector: detector,
		Events:   publisher,
		Logger:   logger,
		Interval: cfg.ReadinessInterval,
	}

	go sessions.RunJanitor(rootCtx)
	go updateGauges(rootCtx, torrents, sessions)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("server started",
		slog.String("addr", cfg.HTTPAddr),
		slog.Bool("streamingAvailable", engine.Available()),
	)

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	handler.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown error", slog.String("error", err.Error()))
	}
	if err := engine.Close(); err != nil {
		logger.Warn("engine close error", slog.String("error", err.Error()))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close error", slog.String("error", err.Error()))
		}
	}

	logger.Info("server stopped")
}

// updateGauges refreshes the store-level Prometheus gauges from snapshots.
func updateGauges(ctx context.Context, torrents *store.TorrentStore, sessions *store.SessionRegistry) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			records := torrents.List()
			var dlTotal, ulTotal int64
			var peersTotal int
			for _, record := range records {
				dlTotal += record.DownloadRate
				ulTotal += record.UploadRate
				peersTotal += record.Peers
			}
			metrics.ActiveTorrents.Set(float64(len(records)))
			metrics.ActiveSessions.Set(float64(sessions.Len()))
			metrics.DownloadSpeedBytes.Set(float64(dlTotal))
			metrics.UploadSpeedBytes.Set(float64(ulTotal))
			metrics.PeersConnected.Set(float64(peersTotal))
		}
	}
}

func newLogger(levelRaw, formatRaw string) *slog.Logger {
	level := parseLogLevel(levelRaw)
	options := &slog.HandlerOptions{Level: level}
	format := strings.ToLower(strings.TrimSpace(formatRaw))
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, options))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, options))
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
