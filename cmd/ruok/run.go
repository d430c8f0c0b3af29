package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/ruok/internal/config"
	"github.com/hamed0406/ruok/internal/domain"
	"github.com/hamed0406/ruok/internal/httpapi"
	apimw "github.com/hamed0406/ruok/internal/httpapi/middleware"
	"github.com/hamed0406/ruok/internal/logging"
	"github.com/hamed0406/ruok/internal/metrics"
	"github.com/hamed0406/ruok/internal/notify"
	"github.com/hamed0406/ruok/internal/probe"
	"github.com/hamed0406/ruok/internal/repo/memory"
	"github.com/hamed0406/ruok/internal/scheduler"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <monitor.yaml>",
		Short: "Start monitoring the services in a monitor file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			reg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
			if err != nil {
				log.Printf("logger: %v", err)
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, logger, cfg, reg)
		},
	}
}

func run(ctx context.Context, logger *zap.Logger, cfg config.Config, reg domain.Registry) error {
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(promReg)

	status := memory.New(reg.Services.Names())
	sender := &notify.Logged{
		Inner:   notify.Kinds{domain.KindSlack: notify.NewSlack(cfg.NotifyTimeout)},
		Logger:  logger.Named("notify"),
		Metrics: m,
	}
	mon := scheduler.NewMonitor(logger, reg, status, probe.NewHTTPChecker(cfg.ProbeTimeout), sender, m, scheduler.Options{
		CheckQueue:  cfg.CheckQueue,
		NotifyQueue: cfg.NotifyQueue,
		Diagnoser:   probe.NewDNSDiagnoser(),
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return mon.Run(ctx) })

	if cfg.APIEnabled() {
		api := httpapi.NewServer(logger.Named("api"), reg.Services, status, promReg)
		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           api.Router(apimw.Keys{Public: cfg.PublicAPIKeys}, cfg.AllowedOrigins, cfg.PublicRPM, cfg.PublicBurst),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("api_listen", zap.String("addr", cfg.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("status api: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	logger.Info("ruok_started",
		zap.Int("services", len(reg.Services)),
		zap.Int("channels", len(reg.Channels)),
		zap.Bool("api", cfg.APIEnabled()),
	)
	return g.Wait()
}
