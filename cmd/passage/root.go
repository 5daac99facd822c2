// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/passage-dev/passage/internal/config"
	passerr "github.com/passage-dev/passage/pkg/errors"
)

// NewRootCmd creates the root passage command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "passage",
		Short:         "Passage — per-project semantic retrieval",
		Long:          "Passage indexes documents into per-project corpora and answers semantic queries and retrieval-grounded chat over them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initViper(cmd)
		},
	}

	// Global flags — these map to viper keys via initViper.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().String("db", "", "path to the corpus database")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	// Register subcommands
	root.AddCommand(
		newInitCmd(),
		newServeCmd(),
		newProjectCmd(),
		newIngestCmd(),
		newQueryCmd(),
		newSecretCmd(),
		newVersionCmd(),
	)

	return root
}

// initViper sets up the global Viper with defaults, env bindings, flag
// bindings, and optional config file so the standard precedence
// (flag > env > file > defaults) is handled uniformly.
func initViper(cmd *cobra.Command) error {
	v := viper.GetViper()

	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return passerr.Errorf(passerr.CodeConfigLoadReadFailure, "reading config file: %w", err)
		}
	} else {
		// Auto-discover passage.yaml from standard locations.
		// Note: SetConfigType is intentionally omitted. When set, Viper
		// falls back to trying the bare config name without extension,
		// which collides with the ./passage binary in the project root.
		v.SetConfigName("passage")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/passage")
		v.AddConfigPath("/etc/passage")
		// No config file is fine — defaults and env vars still apply.
		// Parse or permission errors must surface.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return passerr.Errorf(passerr.CodeConfigLoadReadFailure, "reading config: %w", err)
			}
		}
	}

	// Bind persistent flags to viper keys.
	if err := v.BindPFlag("storage.path", cmd.Root().PersistentFlags().Lookup("db")); err != nil {
		return passerr.Errorf(passerr.CodeCLISetupFailure, "binding db flag: %w", err)
	}
	if err := v.BindPFlag("verbose", cmd.Root().PersistentFlags().Lookup("verbose")); err != nil {
		return passerr.Errorf(passerr.CodeCLISetupFailure, "binding verbose flag: %w", err)
	}

	return nil
}
