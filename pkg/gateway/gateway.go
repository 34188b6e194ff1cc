package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/CreonHQ/creon/pkg/config"
	"github.com/CreonHQ/creon/pkg/logging"
	"github.com/CreonHQ/creon/pkg/platform"
)

// Gateway exposes the platform over HTTP. It is a thin surface: every
// decision lives in the platform client, the gateway only translates
// requests and errors.
type Gateway struct {
	cfg      config.GatewayConfig
	logger   *logging.ColoredLogger
	platform *platform.Client
	server   *http.Server
}

// New creates an HTTP gateway over the platform client.
func New(cfg config.GatewayConfig, client *platform.Client, logger *logging.ColoredLogger) *Gateway {
	return &Gateway{
		cfg:      cfg,
		logger:   logger,
		platform: client,
	}
}

// Start serves HTTP until the context is cancelled, then drains
// in-flight requests.
func (g *Gateway) Start(ctx context.Context) error {
	router := g.routes()
	g.server = &http.Server{
		Addr:              g.cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		g.logger.ComponentInfo(logging.ComponentGateway, "http gateway listening",
			zap.String("addr", g.cfg.ListenAddr))
		if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return g.server.Shutdown(shutdownCtx)
	}
}

func (g *Gateway) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(g.cfg.RequestTimeout))

	r.Get("/health", g.handleHealth)
	r.Get("/status", g.handleStatus)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/wallet", func(r chi.Router) {
			r.Post("/connect", g.handleConnect)
			r.Post("/disconnect", g.handleDisconnect)
			r.Get("/session", g.handleSession)
			r.Get("/balance", g.handleBalance)
		})
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", g.handleListPosts)
			r.Post("/", g.handlePublish)
			r.Post("/refresh", g.handleRefresh)
			r.Post("/{postID}/disclose", g.handleDisclose)
		})
		r.Post("/withdraw", g.handleWithdraw)
		r.Get("/events", g.handleEvents)
	})

	return r
}
