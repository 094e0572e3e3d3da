package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"flota-municipal-api/config"
	"flota-municipal-api/db"
	"flota-municipal-api/logger"
	"flota-municipal-api/pkg/backend"
	"flota-municipal-api/pkg/geocode"
	"flota-municipal-api/routes"
	"flota-municipal-api/tracking"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Inicia la API y el seguimiento de posiciones",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel, cfg.Production)

	if cfg.JwtSecret == "" {
		return errors.New("JWT_SECRET no configurado")
	}
	if cfg.GoogleMapsApiKey == "" {
		log.Warn("API key de Google Maps no configurada, /api/geocode y /api/get-map-key responderán 500")
	}
	if cfg.BackendEndpoint == "" {
		log.Warn("Endpoint del backend no configurado, las rutas del backend responderán 500")
	}

	// Iniciar la base de datos
	conn, err := db.InitDB(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	client := backend.New(cfg.BackendEndpoint, nil)
	var trackingBackend tracking.Backend
	if cfg.BackendEndpoint != "" {
		trackingBackend = client
	}
	tracker := tracking.New(cfg.Tracking, cfg.BackendEndpoint, trackingBackend, db.NewPositionRepository(conn))

	app := routes.NewApp(&routes.Handler{
		Config:   cfg,
		DB:       conn,
		Backend:  client,
		Geocoder: geocode.New(cfg.GeocodeURL, cfg.GoogleMapsApiKey, nil),
		Tracker:  tracker,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tracker.Run(gctx)
	})
	g.Go(func() error {
		log.Info("Servidor escuchando en el puerto ", cfg.Port)
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Deteniendo servidor")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
