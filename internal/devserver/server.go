package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/theacodes/blog.thea.codes/internal/fileutil"
	"github.com/theacodes/blog.thea.codes/internal/logfields"
)

// DefaultAddr is the preview server's listen address.
const DefaultAddr = "127.0.0.1:8000"

// Internal endpoints live under a prefix no post can produce.
const (
	MetricsPath = "/_/metrics"
	StatusPath  = "/_/status"
)

const shutdownTimeout = 5 * time.Second

// ErrListen indicates the server could not bind its address.
var ErrListen = errors.New("cannot listen")

// Server serves a built site for local preview. Every response carries
// Cache-Control: no-store so a reload always shows the latest build.
type Server struct {
	echo    *echo.Echo
	root    string
	addr    string
	logger  *slog.Logger
	metrics *Metrics
	status  func() Status
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithMetrics exposes m at MetricsPath.
func WithMetrics(m *Metrics) ServerOption {
	return func(s *Server) { s.metrics = m }
}

// WithStatus exposes the latest build status at StatusPath.
func WithStatus(fn func() Status) ServerOption {
	return func(s *Server) { s.status = fn }
}

// WithServerLogger sets the request logger.
func WithServerLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a server for the site under root, listening on addr
// (DefaultAddr when empty).
func NewServer(root, addr string, opts ...ServerOption) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	s := &Server{
		echo:   echo.New(),
		root:   root,
		addr:   addr,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				logfields.Duration(v.Latency))
			return nil
		},
	}))
	e.Use(noStore)

	if s.metrics != nil {
		e.GET(MetricsPath, echo.WrapHandler(s.metrics.Handler()))
	}
	if s.status != nil {
		e.GET(StatusPath, func(c echo.Context) error {
			return c.JSON(http.StatusOK, s.status())
		})
	}
	e.GET("/", s.serveFile)
	e.GET("/*", s.serveFile)
	e.HEAD("/*", s.serveFile)

	return s
}

// Addr returns the listen address.
func (s *Server) Addr() string { return s.addr }

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.echo }

// ListenAndServe serves until ctx is done, then shuts down gracefully.
// Returns an error wrapping ErrListen if the address cannot be bound.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(s.addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("%w: %s: %v", ErrListen, s.addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}

// serveFile maps a request path onto the output directory. Directories
// serve their index.html, and an extensionless path falls back to the
// .html file of the same name, matching how the site is hosted.
func (s *Server) serveFile(c echo.Context) error {
	clean := path.Clean("/" + c.Request().URL.Path)
	full := filepath.Join(s.root, filepath.FromSlash(clean))

	if fileutil.DirExists(full) {
		if clean != "/" && !strings.HasSuffix(c.Request().URL.Path, "/") {
			return c.Redirect(http.StatusMovedPermanently, clean+"/")
		}
		index := filepath.Join(full, "index.html")
		if fileutil.FileExists(index) {
			return c.File(index)
		}
		return echo.ErrNotFound
	}
	if fileutil.FileExists(full) {
		return c.File(full)
	}
	if path.Ext(clean) == "" && fileutil.FileExists(full+".html") {
		return c.File(full + ".html")
	}
	return echo.ErrNotFound
}

func noStore(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
		return next(c)
	}
}
