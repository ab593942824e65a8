package server

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/MeKo-Tech/pogo-lens/internal/overlay"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Defaults used when Config leaves a field zero.
const (
	DefaultBlinkTimeout    = 50 * time.Millisecond
	DefaultShutdownTimeout = 5 * time.Second
)

// Config holds server configuration.
type Config struct {
	Host            string
	Port            int
	CORSOrigin      string
	BlinkTimeout    time.Duration
	ShutdownTimeout time.Duration
	// Region is the initial lens rectangle in screen coordinates.
	Region image.Rectangle
}

// InfoProvider returns a JSON-serializable snapshot for /stats.
type InfoProvider func() any

// Server is the lens control plane. It owns the render Surface and pushes overlay
// changes to connected renderers over websockets.
type Server struct {
	cfg     Config
	hub     *hub
	surface *Surface
	started time.Time

	mu   sync.RWMutex
	info InfoProvider
}

// Geometry is the lens rectangle as reported by the renderer.
type Geometry struct {
	X        int  `json:"x"`
	Y        int  `json:"y"`
	Width    int  `json:"width"`
	Height   int  `json:"height"`
	Dragging bool `json:"dragging"`
}

// Rect returns the geometry as a screen rectangle.
func (g Geometry) Rect() image.Rectangle {
	return image.Rect(g.X, g.Y, g.X+g.Width, g.Y+g.Height)
}

// Validate rejects empty lenses.
func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("invalid lens size %dx%d", g.Width, g.Height)
	}
	return nil
}

// GeometryOf converts a rectangle.
func GeometryOf(r image.Rectangle, dragging bool) Geometry {
	return Geometry{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy(), Dragging: dragging}
}

// Message types exchanged on /ws.
const (
	MsgHello    = "hello"
	MsgOverlay  = "overlay"
	MsgSuppress = "suppress"
	MsgRestore  = "restore"
	MsgAck      = "ack"
	MsgGeometry = "geometry"
)

// Message is the websocket envelope in both directions. Suppress messages carry a
// sequence number the renderer echoes back in an ack once the overlay is hidden.
type Message struct {
	Type     string                    `json:"type"`
	Seq      uint64                    `json:"seq,omitempty"`
	CycleID  string                    `json:"cycle_id,omitempty"`
	Blocks   []overlay.TranslatedBlock `json:"blocks,omitempty"`
	Geometry *Geometry                 `json:"geometry,omitempty"`
}

// Response types for API endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Uptime  string `json:"uptime"`
	Clients int    `json:"clients"`
	Time    string `json:"time"`
}

type OverlayResponse struct {
	CycleID    string                    `json:"cycle_id,omitempty"`
	Region     Geometry                  `json:"region"`
	Suppressed bool                      `json:"suppressed"`
	Blocks     []overlay.TranslatedBlock `json:"blocks"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// NewServer creates the server and its surface.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Region.Empty() {
		return nil, errors.New("server: lens region must not be empty")
	}
	if cfg.BlinkTimeout <= 0 {
		cfg.BlinkTimeout = DefaultBlinkTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "*"
	}
	h := newHub()
	return &Server{
		cfg:     cfg,
		hub:     h,
		surface: newSurface(h, cfg.Region, cfg.BlinkTimeout),
		started: time.Now(),
	}, nil
}

// Surface returns the render surface; it doubles as the scheduler's lens target.
func (s *Server) Surface() *Surface { return s.surface }

// SetInfoProvider installs the /stats source.
func (s *Server) SetInfoProvider(fn InfoProvider) {
	s.mu.Lock()
	s.info = fn
	s.mu.Unlock()
}

func (s *Server) infoProvider() InfoProvider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

// Clients returns the number of connected renderers.
func (s *Server) Clients() int { return s.hub.count() }

// SetupRoutes registers all endpoints on mux. /ws is not wrapped: upgrading needs the
// raw ResponseWriter.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/overlay", s.corsMiddleware(s.overlayHandler))
	mux.HandleFunc("/overlay.png", s.corsMiddleware(s.overlayPNGHandler))
	mux.HandleFunc("/geometry", s.corsMiddleware(s.geometryHandler))
	mux.HandleFunc("/stats", s.corsMiddleware(s.statsHandler))
	mux.HandleFunc("/ws", s.wsHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

// Handler returns a mux with all routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return mux
}

// Addr is the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting lens server", "host", s.cfg.Host, "port", s.cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("lens server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Starting graceful shutdown", "timeout", s.cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.hub.closeAll()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("lens server shutdown: %w", err)
	}
	slog.Info("Lens server stopped")
	return nil
}

// Close disconnects all renderers.
func (s *Server) Close() error {
	s.hub.closeAll()
	return nil
}
