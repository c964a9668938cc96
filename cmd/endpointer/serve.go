package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/audiolab-ai/endpointer/pkg/metrics"
	"github.com/audiolab-ai/endpointer/pkg/server"
	"github.com/audiolab-ai/endpointer/pkg/trace"
)

func newServeCommand() *cobra.Command {
	var (
		addr       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the endpoint detection service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := server.DefaultConfig()
			if configPath != "" {
				loaded, err := server.LoadConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if addr != "" {
				cfg.Addr = addr
			}

			ctx := cmd.Context()
			if err := trace.Initialize(ctx, trace.DefaultConfig()); err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := trace.Shutdown(shutdownCtx); err != nil {
					log.Printf("[Trace] Shutdown: %v", err)
				}
			}()

			srv, err := server.NewServer(cfg, nil, metrics.New())
			if err != nil {
				return err
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				log.Printf("[VADServer] Received %s, shutting down", sig)
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides configuration")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML configuration file path")

	return cmd
}
