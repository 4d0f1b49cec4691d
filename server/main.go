package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/kardianos/service"
	"go.uber.org/zap"

	"github.com/usagetop/usagetop/internal/config"
	"github.com/usagetop/usagetop/internal/fetch"
	"github.com/usagetop/usagetop/internal/logging"
	"github.com/usagetop/usagetop/server/internal/handlers"
	"github.com/usagetop/usagetop/server/internal/middleware"
)

// program implements service.Interface so the server can run either in
// the foreground or as an installed background service.
type program struct {
	server *http.Server
	log    *zap.Logger
}

func (p *program) Start(s service.Service) error {
	go func() {
		p.log.Info("starting usagetop-server", zap.String("addr", p.server.Addr))
		if err := p.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			p.log.Error("server failed", zap.Error(err))
			os.Exit(1)
		}
	}()
	return nil
}

func (p *program) Stop(s service.Service) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return p.server.Shutdown(ctx)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Logging)
	defer log.Sync()

	var fetcher fetch.DayFetcher
	if cfg.APIKey != "" {
		fetcher = fetch.NewClient(cfg.BaseURL, cfg.APIKey)
	} else {
		log.Warn("no API key configured; /api/usage will return 503")
	}

	h := handlers.New(fetcher, log)

	// The usage endpoint fans out up to a month of upstream requests per
	// call, so it gets a tighter limit than the rest of the API.
	usageLimiter := middleware.NewIPRateLimiter(1, 5)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.SecurityHeaders)

	r.Route("/api", func(r chi.Router) {
		r.With(usageLimiter.Limit).Get("/usage", h.Usage)
		r.Get("/usage/mock", h.Mock)
		r.Get("/health", h.Health)
	})

	port := getEnv("PORT", "8080")
	prg := &program{
		server: &http.Server{
			Addr:              ":" + port,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}

	svcConfig := &service.Config{
		Name:        "usagetop-server",
		DisplayName: "usagetop Server",
		Description: "Serves aggregated API usage reports as JSON",
	}

	s, err := service.New(prg, svcConfig)
	if err != nil {
		log.Error("failed to create service", zap.Error(err))
		os.Exit(1)
	}

	// Service control verbs: usagetop-server install|uninstall|start|stop
	if len(os.Args) > 1 {
		verb := os.Args[1]
		for _, action := range service.ControlAction {
			if verb == action {
				if err := service.Control(s, verb); err != nil {
					fmt.Fprintf(os.Stderr, "Failed to %s service: %v\n", verb, err)
					os.Exit(1)
				}
				fmt.Printf("Service %s: done.\n", verb)
				return
			}
		}
		fmt.Fprintf(os.Stderr, "Unknown command %q. Valid commands: %v\n", verb, service.ControlAction)
		os.Exit(1)
	}

	if err := s.Run(); err != nil {
		log.Error("service run failed", zap.Error(err))
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
