// Package main provides the entry point for the Sphaera coordinate service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jobrunner/sphaera/internal/adapters/gpkg"
	"github.com/jobrunner/sphaera/internal/app"
	"github.com/jobrunner/sphaera/internal/application"
	"github.com/jobrunner/sphaera/internal/config"
	"github.com/jobrunner/sphaera/internal/domain"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var cfgFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sphaera",
	Short: "Sphaera - planetary and celestial coordinate service",
	Long: `Sphaera converts positions between planetary and celestial reference frames.

It provides a REST API for frame conversion, Cartesian and projected
coordinates, local topocentric frames and bound queries on GeoJSON datasets.

Features:
  - Geographic frames for Earth, Moon, Mars and the celestial sphere
  - Galactic and equatorial sky frames (J2000)
  - Mercator, Mollweide, Aitoff and azimuthal projections
  - Multiple dataset backends (local, AWS S3, Azure, HTTP)
  - Hot-reload of datasets
  - TLS with automatic certificate management
  - Prometheus metrics`,
	RunE: runServer,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("Sphaera %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Build Date: %s\n", buildDate)
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a position between frames",
	Example: `  sphaera convert --lon 266.4 --lat -28.94 --from Equatorial --to Galactic
  sphaera convert --lon 13.4 --lat 52.5 --from EPSG:4326 --to CRS:84`,
	RunE: runConvert,
}

var exportCmd = &cobra.Command{
	Use:   "export-srs",
	Short: "Write the frame catalogue into a GeoPackage",
	RunE:  runExport,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (json, text)")

	// Server flags
	rootCmd.Flags().String("host", "0.0.0.0", "server host")
	rootCmd.Flags().Int("port", 8080, "server port")
	rootCmd.Flags().Bool("tls", false, "enable TLS")
	rootCmd.Flags().StringSlice("tls-domains", nil, "TLS domains")
	rootCmd.Flags().String("tls-email", "", "TLS email for Let's Encrypt")

	// Engine flags
	rootCmd.Flags().String("globe", "CRS:84", "globe frame")
	rootCmd.Flags().String("projection", "", "default projection (Plate, Mercator, Mollweide, Azimuth, Aitoff)")

	// Storage flags
	rootCmd.Flags().String("storage-type", "local", "storage type (local, s3, azure, http)")
	rootCmd.Flags().String("storage-path", "./data", "local storage path")

	// CORS flags
	rootCmd.Flags().StringSlice("cors", nil, "allowed CORS origins (e.g., https://example.com,*.sub.domain.tld)")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("server.host", rootCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", rootCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("tls.enabled", rootCmd.Flags().Lookup("tls"))
	_ = viper.BindPFlag("tls.domains", rootCmd.Flags().Lookup("tls-domains"))
	_ = viper.BindPFlag("tls.email", rootCmd.Flags().Lookup("tls-email"))
	_ = viper.BindPFlag("engine.globe_frame", rootCmd.Flags().Lookup("globe"))
	_ = viper.BindPFlag("engine.projection", rootCmd.Flags().Lookup("projection"))
	_ = viper.BindPFlag("storage.type", rootCmd.Flags().Lookup("storage-type"))
	_ = viper.BindPFlag("storage.local_path", rootCmd.Flags().Lookup("storage-path"))
	_ = viper.BindPFlag("server.cors.allowed_origins", rootCmd.Flags().Lookup("cors"))

	convertCmd.Flags().Float64("lon", 0, "longitude or right ascension (degrees)")
	convertCmd.Flags().Float64("lat", 0, "latitude or declination (degrees)")
	convertCmd.Flags().Float64("height", 0, "height above the datum (meters)")
	convertCmd.Flags().String("from", "CRS:84", "source frame")
	convertCmd.Flags().String("to", "", "target frame")
	_ = convertCmd.MarkFlagRequired("to")

	exportCmd.Flags().String("output", "sphaera.gpkg", "GeoPackage file to write")

	rootCmd.AddCommand(versionCmd, convertCmd, exportCmd)
}

func initConfig() {
	config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

func runServer(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting Sphaera",
		"version", version,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"globe", cfg.Engine.GlobeFrame,
		"storage_type", cfg.Storage.Type,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	svc, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := svc.Start(ctx); err != nil {
			serverErr <- err
		}
	}()

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-serverErr:
		logger.Error("server error", "error", err)
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := svc.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}

func runConvert(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	lon, _ := flags.GetFloat64("lon")
	lat, _ := flags.GetFloat64("lat")
	height, _ := flags.GetFloat64("height")
	from, _ := flags.GetString("from")
	to, _ := flags.GetString("to")

	logger := setupLogger(config.LoggingConfig{Level: "error", Format: "text"})
	frames := application.NewFrameRegistry(app.NewEngine(logger))
	svc := application.NewCoordinateService(frames, nil, logger)

	pos := domain.Position{Lon: lon, Lat: lat, Height: height, Frame: domain.FrameID(from)}
	out, err := svc.Convert(pos, domain.FrameID(to))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%.9f %.9f %g %s\n", out.Lon, out.Lat, out.Height, out.Frame)
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("output")

	logger := setupLogger(config.LoggingConfig{Level: viper.GetString("logging.level"), Format: "text"})
	entries, err := app.NewEngine(logger).Catalogue()
	if err != nil {
		return fmt.Errorf("building catalogue: %w", err)
	}

	if err := gpkg.NewWriter().WriteSRS(cmd.Context(), path, entries); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d reference systems to %s\n", len(entries), path)
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(time.Now().UTC().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
