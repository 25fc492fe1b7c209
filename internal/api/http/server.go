package apihttp

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"moviestream/internal/domain"
	"moviestream/internal/domain/ports"
	"moviestream/internal/media"
	"moviestream/internal/store"
	"moviestream/internal/usecase"
)

type PlayMovieUseCase interface {
	Execute(ctx context.Context, input usecase.PlayInput) (usecase.PlayResult, error)
}

type SessionStatusUseCase interface {
	Execute(ctx context.Context, sessionID domain.SessionID) (usecase.SessionStatusView, error)
}

type ControlTorrentUseCase interface {
	Pause(ctx context.Context, id domain.TorrentID) error
	Resume(ctx context.Context, id domain.TorrentID) error
	Remove(ctx context.Context, id domain.TorrentID, deleteFiles bool) error
}

type Server struct {
	play           PlayMovieUseCase
	status         SessionStatusUseCase
	control        ControlTorrentUseCase
	catalog        ports.Catalog
	engine         ports.Engine
	torrents       *store.TorrentStore
	sessions       *store.SessionRegistry
	detector       *media.Detector
	allowedOrigins []string
	logger         *slog.Logger
	handler        http.Handler
	wsHub          *wsHub
}

type ServerOption func(*Server)

func WithSessionStatus(uc SessionStatusUseCase) ServerOption {
	return func(s *Server) {
		s.status = uc
	}
}

func WithControlTorrent(uc ControlTorrentUseCase) ServerOption {
	return func(s *Server) {
		s.control = uc
	}
}

func WithCatalog(catalog ports.Catalog) ServerOption {
	return func(s *Server) {
		s.catalog = catalog
	}
}

func WithEngine(engine ports.Engine) ServerOption {
	return func(s *Server) {
		s.engine = engine
	}
}

func WithStores(torrents *store.TorrentStore, sessions *store.SessionRegistry) ServerOption {
	return func(s *Server) {
		s.torrents = torrents
		s.sessions = sessions
	}
}

func WithDetector(detector *media.Detector) ServerOption {
	return func(s *Server) {
		s.detector = detector
	}
}

// WithAllowedOrigins configures the CORS allowed origins whitelist.
// When empty (default), any origin is permitted (development mode).
func WithAllowedOrigins(origins []string) ServerOption {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func NewServer(play PlayMovieUseCase, opts ...ServerOption) *Server {
	s := &Server{play: play}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.detector == nil {
		s.detector = media.NewDetector()
	}

	s.wsHub = newWSHub(s.logger)
	go s.wsHub.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/movies", s.handleMovies)
	mux.HandleFunc("/api/movies/", s.handleMovieByID)
	mux.HandleFunc("/api/play", s.handlePlay)
	mux.HandleFunc("/api/status/", s.handleStatus)
	mux.HandleFunc("/api/torrents", s.handleTorrents)
	mux.HandleFunc("/api/torrents/", s.handleTorrentByID)
	mux.HandleFunc("/api/video/", s.handleVideo)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", s.handleWS)

	traced := otelhttp.NewHandler(loggingMiddleware(s.logger, mux), "moviestream",
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			return p != "/metrics" && p != "/healthz" && !strings.HasPrefix(p, "/api/video/")
		}),
	)
	s.handler = recoveryMiddleware(s.logger, rateLimitMiddleware(100, 200, metricsMiddleware(corsMiddleware(s.allowedOrigins, traced))))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Publisher exposes the WebSocket hub as the event publisher port.
func (s *Server) Publisher() ports.Publisher {
	return s.wsHub
}

// Close disconnects all WebSocket clients and stops the hub.
func (s *Server) Close() {
	if s.wsHub != nil {
		s.wsHub.Close()
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	topic := ""
	if sessionID := strings.TrimSpace(r.URL.Query().Get("session_id")); sessionID != "" {
		topic = domain.SessionTopic(domain.SessionID(sessionID))
		// Subscribing counts as session activity.
		s.sessions.GetOrCreate(domain.SessionID(sessionID))
	}
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("ws upgrade failed", slog.String("error", err.Error()))
		return
	}
	client := &wsClient{
		hub:   s.wsHub,
		conn:  conn,
		topic: topic,
		send:  make(chan []byte, 256),
	}
	s.wsHub.register <- client
	go client.writePump()
	go client.readPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":             true,
		"status":              "ok",
		"streaming_available": s.engine != nil && s.engine.Available(),
	})
}
