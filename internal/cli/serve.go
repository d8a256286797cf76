package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/Eursukkul/table-booking/internal/handler"
	"github.com/Eursukkul/table-booking/internal/metrics"
	"github.com/Eursukkul/table-booking/internal/middleware"
	"github.com/Eursukkul/table-booking/internal/service"
	"github.com/Eursukkul/table-booking/pkg/rabbitmq"
)

const shutdownTimeout = 10 * time.Second

func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			repo, closeRepo, err := openRepository(cfg)
			if err != nil {
				return err
			}
			defer closeRepo()
			slog.Info("Storage initialized", "driver", cfg.StorageDriver)

			opts := []service.Option{
				service.WithMetrics(metrics.NewLedger(prometheus.DefaultRegisterer)),
			}
			if cfg.RabbitURL != "" {
				publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
				if err != nil {
					return err
				}
				defer publisher.Close()
				opts = append(opts, service.WithPublisher(publisher))
				slog.Info("Publishing reservation events", "exchange", rabbitmq.ExchangeName)
			}

			svc, err := service.NewLedgerService(cmd.Context(), repo, cfg.Capacity, opts...)
			if err != nil {
				return err
			}

			e := newEcho()
			handler.NewLedgerHandler(svc).RegisterRoutes(e)

			srvErr := make(chan error, 1)
			go func() {
				slog.Info("Table booking service starting", "port", cfg.ServerPort)
				srvErr <- e.Start(":" + cfg.ServerPort)
			}()

			stopCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			select {
			case err := <-srvErr:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-stopCtx.Done():
				slog.Info("Shutdown signal received, stopping server")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := e.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			slog.Info("Server stopped")
			return nil
		},
	}
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			slog.Info("Request completed",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"duration_ms", v.Latency.Milliseconds(),
			)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "table-booking"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return e
}
