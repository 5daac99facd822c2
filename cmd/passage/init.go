// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	passerr "github.com/passage-dev/passage/pkg/errors"
)

// starterConfig is the scaffold written by `passage init`. It mirrors the
// built-in defaults so editing any line changes exactly one setting.
const starterConfig = `# Passage configuration.
# Values here are overridden by PASSAGE_* environment variables and flags.

server:
  listen: "127.0.0.1:18680"
  # allowed_origins:
  #   - "http://localhost:*"

storage:
  path: "passage.db"

retrieval:
  chunk_size: 2048
  chunk_overlap: 200
  embed_batch_size: 32
  top_k_max: 100
  diversity_penalty: 0.3
  candidate_multiplier: 4
  embed_provider: "openai"

providers:
  openai: {}
  # API keys belong in the OS keyring ('passage secret set openai <key>')
  # or in PASSAGE_PROVIDERS_OPENAI_API_KEY, not in this file.
  # anthropic: {}
  # google: {}
`

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter configuration file",
		Long:  "Writes a commented passage.yaml scaffold with the default settings. Refuses to overwrite an existing file unless --force is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "passage.yaml"
			if len(args) == 1 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return passerr.Errorf(passerr.CodeCLIInputInvalid, "%s already exists; use --force to overwrite", path)
			}

			if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
				return passerr.Errorf(passerr.CodeCLISetupFailure, "writing %s: %w", path, err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Wrote %s\n", path)
			_, _ = fmt.Fprintln(out, "Next: store an API key with 'passage secret set openai <key>', then 'passage project create <name>'.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")

	return cmd
}
