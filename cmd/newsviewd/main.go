package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/emurenMRz/newsview/internal/config"
	"github.com/emurenMRz/newsview/internal/logger"
	"github.com/emurenMRz/newsview/internal/metrics"
	"github.com/emurenMRz/newsview/internal/news"
	"github.com/emurenMRz/newsview/internal/nntp"
	"github.com/emurenMRz/newsview/internal/server"
	"github.com/emurenMRz/newsview/internal/spool"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		listen     = flag.String("listen", "", "listen address, overrides the config")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("newsviewd stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	srv := server.New(server.Options{
		Dialer:   dialer(cfg),
		Group:    cfg.Group,
		Logger:   log,
		Location: loc,
		ReplyURL: cfg.ReplyURL,
	})

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// a slow backend call has to fit in here
		WriteTimeout: cfg.NNTP.Timeout*3 + 15*time.Second,
	}
	servers := []*http.Server{httpServer}
	if cfg.MetricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		servers = append(servers, &http.Server{
			Addr:              cfg.MetricsListen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	errc := make(chan error, len(servers))
	for _, s := range servers {
		go func(s *http.Server) {
			log.Info("listening", zap.String("addr", s.Addr))
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- fmt.Errorf("serve %s: %w", s.Addr, err)
			}
		}(s)
	}
	log.Info("newsviewd started",
		zap.String("backend", cfg.Backend),
		zap.String("group", cfg.Group),
	)

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err = <-errc:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, s := range servers {
		if serr := s.Shutdown(shutdownCtx); serr != nil {
			log.Error("server shutdown", zap.String("addr", s.Addr), zap.Error(serr))
		}
	}
	return err
}

func dialer(cfg *config.Config) news.Dialer {
	if cfg.Backend == config.BackendSpool {
		return spool.Dir{Path: cfg.Spool.Path}
	}
	return nntp.Dialer{Addr: cfg.NNTPAddr(), Timeout: cfg.NNTP.Timeout}
}
