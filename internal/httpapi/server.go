package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/park285/cheese-web/internal/broker"
	"github.com/park285/cheese-web/internal/chess/openingbook"
	"github.com/park285/cheese-web/internal/render"
	"github.com/park285/cheese-web/internal/session"
)

// Deps are the collaborators the handlers need.
type Deps struct {
	Sessions *session.Manager
	Broker   broker.Broker
	Renderer *render.Renderer
	Openings *openingbook.Catalog
	Checks   []HealthCheck
	Logger   *zap.Logger
}

type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

func New(addr string, deps Deps) *Server {
	deps = deps.withDefaults()
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewHandler(deps),
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: deps.Logger,
	}
}

// NewHandler builds the router without binding a listener.
func NewHandler(deps Deps) http.Handler {
	deps = deps.withDefaults()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newStructuredLogger(deps.Logger))
	r.Use(middleware.Recoverer)

	addRoutes(r, deps)
	return r
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Renderer == nil {
		d.Renderer = render.NewRenderer()
	}
	if d.Openings == nil {
		if c, err := openingbook.Default(); err == nil {
			d.Openings = c
		}
	}
	return d
}

func (s *Server) Run(_ context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	s.logger.Info("http_listening", zap.String("addr", ln.Addr().String()))

	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func newStructuredLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("http_request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Int64("duration_ms", time.Since(start).Milliseconds()),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
