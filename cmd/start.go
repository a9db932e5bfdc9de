package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"project-aggregator/core/loader"
	"project-aggregator/core/logger"
	"project-aggregator/core/middleware/auth"
	"project-aggregator/core/middleware/rayid"
	"project-aggregator/core/server"
	"project-aggregator/feature/documents"
	"project-aggregator/feature/integrity"
	docsync "project-aggregator/feature/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the document API server",
	Long:  `Starts the HTTP server serving stored documents, aggregates and metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		zap.ReplaceGlobals(a.logger)

		mgr := loader.NewManager(a.logger)
		mgr.Register(documents.NewFeature(a.stores, a.logger))

		db, _ := a.connectDB(true)
		schema := integrity.Schema{Table: docsync.SyncedDocument{}.TableName(), Columns: docsync.Columns}
		mgr.Register(integrity.NewFeature(a.store, a.cfg.Documents, db, schema, a.logger))

		app, err := buildServer(a.logger, a.cfg.Server, mgr, a.store.IsConnected)
		if err != nil {
			return err
		}

		go func() {
			a.logger.Info("Starting server", zap.String("port", a.cfg.Server.Port))
			if err := app.Listen(a.cfg.Server.Addr()); err != nil {
				a.logger.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		a.logger.Info("Shutting down server...")
		return app.Shutdown()
	},
}

// buildServer assembles the fiber app: ray id, request logging, public
// health and metrics endpoints, API key auth, then every feature.
func buildServer(logg *zap.Logger, cfg server.Config, mgr *loader.Manager, ready func() bool) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
	})

	// RayID must be first to trace everything
	app.Use(rayid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		if !ready() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "storage": false})
		}
		return c.JSON(fiber.Map{"status": "ok", "storage": true})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Use(auth.New(auth.Config{ApiKey: cfg.ApiKey, Skip: []string{"/health", "/metrics"}}))

	if err := mgr.LoadAll(app); err != nil {
		return nil, fmt.Errorf("failed to load features: %w", err)
	}
	return app, nil
}

func init() {
	RootCmd.AddCommand(startCmd)
}
