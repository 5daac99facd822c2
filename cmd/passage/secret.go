// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	passerr "github.com/passage-dev/passage/pkg/errors"
)

func newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage provider API keys stored in the OS keyring",
		Long:  "Store, list and delete provider API keys under the Passage service in the operating system keyring.",
	}

	cmd.AddCommand(
		newSecretSetCmd(),
		newSecretListCmd(),
		newSecretDeleteCmd(),
	)

	return cmd
}

func newSecretSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <provider> <api-key>",
		Short: "Store an API key for a provider",
		Args:  cobra.ExactArgs(2),
		RunE:  runSecretSet,
	}
}

func newSecretListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List providers with a stored API key",
		RunE:  runSecretList,
	}
}

func newSecretDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <provider>",
		Short: "Delete a provider's stored API key",
		Args:  cobra.ExactArgs(1),
		RunE:  runSecretDelete,
	}
}

func runSecretSet(cmd *cobra.Command, args []string) error {
	provider := args[0]
	store := secretStoreFactory()

	if err := store.SetKey(provider, args[1]); err != nil {
		return passerr.Errorf(passerr.CodeSecretStoreFailure, "storing key for %q: %w", provider, err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stored API key for provider: %s\n", provider)
	return nil
}

func runSecretList(cmd *cobra.Command, _ []string) error {
	store := secretStoreFactory()
	providers, err := store.ListProviders()
	if err != nil {
		return passerr.Errorf(passerr.CodeSecretListFailure, "listing stored keys: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(providers) == 0 {
		_, _ = fmt.Fprintln(out, "No API keys stored.")
		return nil
	}

	for _, p := range providers {
		_, _ = fmt.Fprintln(out, p)
	}
	return nil
}

func runSecretDelete(cmd *cobra.Command, args []string) error {
	provider := args[0]
	store := secretStoreFactory()

	if err := store.DeleteKey(provider); err != nil {
		if passerr.HasCode(err, passerr.CodeSecretNotFound) {
			return passerr.Errorf(passerr.CodeSecretNotFound, "no API key stored for %q", provider)
		}
		return passerr.Errorf(passerr.CodeSecretDeleteFailure, "deleting key for %q: %w", provider, err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted API key for provider: %s\n", provider)
	return nil
}
