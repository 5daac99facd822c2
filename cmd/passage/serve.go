// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/passage-dev/passage/internal/chat"
	"github.com/passage-dev/passage/internal/server"
)

func newServeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Passage HTTP API server",
		Long: `Starts the HTTP API server exposing project, document, query and chat
endpoints. The server runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if viper.GetBool("verbose") {
				slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}

			a, err := wireApp(viper.GetViper())
			if err != nil {
				return err
			}
			defer a.Close()

			pipeline, err := a.requirePipeline()
			if err != nil {
				return err
			}

			addr := a.cfg.Server.Listen
			if listen != "" {
				addr = listen
			}

			srv, err := server.New(server.Config{
				ListenAddr:  addr,
				CORSOrigins: a.cfg.Server.AllowedOrigins,
			})
			if err != nil {
				return err
			}

			services, err := server.NewServices(a.store, pipeline)
			if err != nil {
				return err
			}
			srv.RegisterServices(services)

			chatProvider := a.cfg.Retrieval.EmbedProvider
			chatModel := a.cfg.Providers[chatProvider].ChatModel
			srv.RegisterStreamHandler(chat.NewService(a.registry, pipeline, a.store, chatProvider, chatModel))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			slog.Info("starting server", "listen", addr, "providers", a.registry.Names())
			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides config)")

	return cmd
}
