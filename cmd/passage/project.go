// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage corpus projects",
		Long:  "Create, list, inspect and delete the projects that scope documents and conversations.",
	}

	cmd.AddCommand(
		newProjectCreateCmd(),
		newProjectListCmd(),
		newProjectShowCmd(),
		newProjectDeleteCmd(),
	)

	return cmd
}

func newProjectCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wireApp(viper.GetViper())
			if err != nil {
				return err
			}
			defer a.Close()

			project, err := a.store.CreateProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created project %q (%s)\n", project.Name, project.ID)
			return nil
		},
	}
}

func newProjectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := wireApp(viper.GetViper())
			if err != nil {
				return err
			}
			defer a.Close()

			projects, err := a.store.ListProjects(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(projects) == 0 {
				_, _ = fmt.Fprintln(out, "No projects.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ID\tNAME\tUPDATED")
			for _, p := range projects {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
}

func newProjectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project and its documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wireApp(viper.GetViper())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			project, err := a.store.GetProject(ctx, args[0])
			if err != nil {
				return err
			}
			documents, err := a.store.ListDocuments(ctx, project.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Project: %s (%s)\n", project.Name, project.ID)
			_, _ = fmt.Fprintf(out, "Created: %s\n", project.CreatedAt.Format("2006-01-02 15:04"))
			_, _ = fmt.Fprintf(out, "Documents: %d\n", len(documents))
			for _, d := range documents {
				_, _ = fmt.Fprintf(out, "  %s\t%s\n", d.ID, d.Name)
			}
			return nil
		},
	}
}

func newProjectDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project and everything in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wireApp(viper.GetViper())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.DeleteProject(cmd.Context(), args[0]); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", args[0])
			return nil
		},
	}
}
