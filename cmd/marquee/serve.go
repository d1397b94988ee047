package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/duvall/marquee"
	"github.com/duvall/marquee/internal/logging"
	"github.com/duvall/marquee/internal/presentation/tui"
	beepAdapter "github.com/duvall/marquee/pkg/adapters/beep"
	httpAdapter "github.com/duvall/marquee/pkg/adapters/http"
	redisAdapter "github.com/duvall/marquee/pkg/adapters/redis"
	"github.com/duvall/marquee/pkg/dsl"
	"github.com/duvall/marquee/pkg/observability"
	"github.com/duvall/marquee/pkg/ports"
	"github.com/duvall/marquee/pkg/registry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sequence server",
	Long:  `Starts the marquee director with the stock themes and exposes the control API over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis")
		gmKey, _ := cmd.Flags().GetString("gm-key")
		seqDir, _ := cmd.Flags().GetString("sequences")
		logLevel, _ := cmd.Flags().GetString("log-level")
		audio, _ := cmd.Flags().GetBool("audio")

		tui.PrintBanner()

		logger := logging.New(logging.ParseLevel(logLevel))

		promReg := prometheus.NewRegistry()
		metrics := observability.NewMetrics(promReg)

		opts := []marquee.Option{
			marquee.WithLogger(logger),
			marquee.WithMetrics(metrics),
		}
		if audio {
			opts = append(opts, marquee.WithMediaPlayer(beepAdapter.NewPlayer()))
		}

		var bus ports.MessageBus
		var settings ports.SettingsStore
		if redisAddr != "" {
			client := backend.NewClient(&backend.Options{Addr: redisAddr})
			redisBus := redisAdapter.NewBus(client, fmt.Sprintf("marquee-%d", os.Getpid()),
				redisAdapter.WithBusLogger(logger))
			if err := redisBus.Start(cmd.Context()); err != nil {
				fmt.Printf("Error connecting to redis: %v\n", err)
				os.Exit(1)
			}
			defer redisBus.Close()
			bus = redisBus
			settings = redisAdapter.NewStore(client)
			opts = append(opts, marquee.WithBus(bus), marquee.WithSettings(settings))
		}

		director, err := marquee.New(opts...)
		if err != nil {
			fmt.Printf("Error initializing marquee: %v\n", err)
			os.Exit(1)
		}
		defer director.Close()

		if err := director.RegisterStock(); err != nil {
			fmt.Printf("Error registering stock themes: %v\n", err)
			os.Exit(1)
		}

		if seqDir != "" {
			if err := registerSequenceDir(director, seqDir); err != nil {
				fmt.Printf("Error loading sequences from %s: %v\n", seqDir, err)
				os.Exit(1)
			}
		}

		handlerOpts := []httpAdapter.Option{
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetricsHandler(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})),
		}
		if gmKey != "" {
			handlerOpts = append(handlerOpts, httpAdapter.WithGMKey(gmKey))
		}
		if bus != nil {
			handlerOpts = append(handlerOpts, httpAdapter.WithBus(bus))
		}
		handler := httpAdapter.NewHandler(director, handlerOpts...)

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Marquee Server on %s\n", srv.Addr)
			fmt.Printf("Registered families: %v\n", director.Families())
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			// Error when starting HTTP server.
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Marquee Server stopped gracefully")
		}
	},
}

// registerSequenceDir loads every *.yaml definition in dir as a playable
// family.
func registerSequenceDir(director *marquee.Director, dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return err
	}
	for _, path := range matches {
		def, err := dsl.LoadFile(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		if err := director.Register(registry.Static(def)); err != nil {
			return fmt.Errorf("registering %s: %w", def.Family, err)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for cross-host sync (empty = local only)")
	serveCmd.Flags().String("gm-key", "", "Shared key required on mutating API routes")
	serveCmd.Flags().String("sequences", "", "Directory of YAML sequence definitions to register")
	serveCmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().Bool("audio", false, "Play audio cues on the server's speaker")
}
