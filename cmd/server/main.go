package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rkRashik/deltacrown-registration/internal/catalog"
	"github.com/rkRashik/deltacrown-registration/internal/config"
	"github.com/rkRashik/deltacrown-registration/internal/httpapi"
	"github.com/rkRashik/deltacrown-registration/internal/hub"
	"github.com/rkRashik/deltacrown-registration/internal/logging"
	"github.com/rkRashik/deltacrown-registration/internal/registration"
	"github.com/rkRashik/deltacrown-registration/internal/submit"
	"github.com/rkRashik/deltacrown-registration/internal/wizard"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.DevLog)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flows := wizard.DefaultFlows()
	if cfg.FlowsFile != "" {
		if flows, err = wizard.LoadFlowsFile(cfg.FlowsFile); err != nil {
			return err
		}
		log.Info("loaded flow overrides", zap.String("file", cfg.FlowsFile))
	}

	cat, err := openCatalog(ctx, cfg, log)
	if err != nil {
		return err
	}

	sub, closeSub, err := openSubmitter(cfg, log)
	if err != nil {
		return err
	}
	defer closeSub()

	// The hub outlives the signal context; it is stopped explicitly once the
	// server has drained.
	h := hub.NewHub(context.WithoutCancel(ctx), log,
		registration.WithSubmitter(sub),
		registration.WithSubmitTimeout(cfg.SubmitTimeout),
		registration.WithIdleTimeout(cfg.IdleTimeout))
	handler := httpapi.SetupRoutes(httpapi.Deps{
		Hub:     h,
		Catalog: cat,
		Flows:   flows,
		Strict:  cfg.StrictNav,
		Log:     log,
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr), zap.String("submit", string(cfg.SubmitMode)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return shutdown(shutdownCtx, srv, h)
	})
	return g.Wait()
}

// shutdown drains in-flight requests first and only then stops the hub, so
// handlers still running can reach their registrations.
func shutdown(ctx context.Context, srv *http.Server, h *hub.Hub) error {
	err := srv.Shutdown(ctx)
	select {
	case h.Inbox() <- hub.ShutdownHub{}:
	case <-h.Done():
	}
	<-h.Done()
	return err
}

func openCatalog(ctx context.Context, cfg config.Config, log *zap.Logger) (catalog.Catalog, error) {
	switch {
	case cfg.DatabaseURL != "":
		db, err := catalog.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		c := catalog.NewGormCatalog(db)
		if err := c.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate catalog: %w", err)
		}
		log.Info("catalog: postgres")
		return c, nil
	case cfg.CatalogFile != "":
		c, err := catalog.LoadStaticFile(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		log.Info("catalog: file", zap.String("file", cfg.CatalogFile))
		return c, nil
	default:
		log.Warn("catalog: built-in demo tournaments")
		return catalog.Demo(), nil
	}
}

func openSubmitter(cfg config.Config, log *zap.Logger) (submit.Submitter, func(), error) {
	switch cfg.SubmitMode {
	case config.SubmitHTTP:
		client := &http.Client{Timeout: cfg.SubmitTimeout}
		return submit.NewHTTPSubmitter(cfg.SubmitURL, client), func() {}, nil
	case config.SubmitNATS:
		nc, err := nats.Connect(cfg.NATSURL, nats.Name("deltacrown-registration"))
		if err != nil {
			return nil, nil, fmt.Errorf("connect nats: %w", err)
		}
		return submit.NewNATSSubmitter(nc, cfg.NATSSubject), func() {
			if err := nc.Drain(); err != nil {
				log.Warn("nats drain failed", zap.Error(err))
			}
		}, nil
	default:
		return submit.NewLogSubmitter(log), func() {}, nil
	}
}
