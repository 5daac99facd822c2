// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/passage-dev/passage/internal/retrieval"
	passerr "github.com/passage-dev/passage/pkg/errors"
)

// ingestManifest is the YAML shape accepted by --manifest: an explicit list
// of files with optional display names.
type ingestManifest struct {
	Documents []manifestEntry `yaml:"documents"`
}

type manifestEntry struct {
	Path string `yaml:"path"`
	Name string `yaml:"name"`
}

func newIngestCmd() *cobra.Command {
	var (
		globs    []string
		manifest string
		name     string
	)

	cmd := &cobra.Command{
		Use:   "ingest <project-id> [file...]",
		Short: "Ingest documents into a project",
		Long: `Reads files, splits them into chunks, embeds each chunk and stores the
result in the project's corpus. Files can be given as arguments, matched
with --glob patterns, or listed in a YAML manifest.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID := args[0]

			entries, err := collectEntries(args[1:], globs, manifest)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return passerr.New(passerr.CodeCLIInputInvalid, "no files to ingest; pass file arguments, --glob or --manifest")
			}
			if name != "" && len(entries) != 1 {
				return passerr.New(passerr.CodeCLIInputInvalid, "--name requires exactly one file")
			}
			if name != "" {
				entries[0].Name = name
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

			ctx := cmd.Context()
			if _, err := a.store.GetProject(ctx, projectID); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			bar := progressbar.NewOptions(len(entries),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("Ingesting"),
				progressbar.OptionOnCompletion(func() {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr())
				}),
			)

			var totalChunks, failed int
			for _, entry := range entries {
				chunks, err := ingestFile(ctx, a, pipeline, projectID, entry)
				if err != nil {
					failed++
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "\n%s: %v\n", entry.Path, err)
				} else {
					totalChunks += chunks
				}
				_ = bar.Add(1)
			}

			_, _ = fmt.Fprintf(out, "Ingested %d file(s), %d chunk(s)\n", len(entries)-failed, totalChunks)
			if failed > 0 {
				return passerr.Errorf(passerr.CodeCLIRequestFailure, "%d file(s) failed to ingest", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&globs, "glob", "g", nil, "doublestar pattern matching files to ingest (repeatable)")
	cmd.Flags().StringVarP(&manifest, "manifest", "m", "", "YAML manifest listing documents to ingest")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name for the document (single file only)")

	return cmd
}

// collectEntries merges explicit file arguments, glob matches and manifest
// entries into one de-duplicated list. Explicit arguments win on name
// conflicts because they come first.
func collectEntries(files, globs []string, manifestPath string) ([]manifestEntry, error) {
	var entries []manifestEntry
	seen := make(map[string]bool)

	add := func(e manifestEntry) {
		if e.Name == "" {
			e.Name = filepath.Base(e.Path)
		}
		if !seen[e.Path] {
			seen[e.Path] = true
			entries = append(entries, e)
		}
	}

	for _, f := range files {
		add(manifestEntry{Path: f})
	}

	for _, pattern := range globs {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, passerr.Errorf(passerr.CodeCLIInputInvalid, "invalid glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			add(manifestEntry{Path: m})
		}
	}

	if manifestPath != "" {
		raw, err := os.ReadFile(manifestPath)
		if err != nil {
			return nil, passerr.Errorf(passerr.CodeCLIInputInvalid, "reading manifest: %w", err)
		}
		var m ingestManifest
		if err := yaml.Unmarshal(raw, &m); err != nil {
			return nil, passerr.Errorf(passerr.CodeCLIInputInvalid, "parsing manifest %s: %w", manifestPath, err)
		}
		base := filepath.Dir(manifestPath)
		for _, e := range m.Documents {
			if e.Path == "" {
				return nil, passerr.Errorf(passerr.CodeCLIInputInvalid, "manifest %s: entry without path", manifestPath)
			}
			if !filepath.IsAbs(e.Path) {
				e.Path = filepath.Join(base, e.Path)
			}
			add(e)
		}
	}

	return entries, nil
}

// ingestFile reads one file, creates its document record and runs the
// retrieval pipeline over the content. The document is removed again when
// ingestion fails so no empty documents linger.
func ingestFile(ctx context.Context, a *app, pipeline *retrieval.Pipeline, projectID string, entry manifestEntry) (int, error) {
	raw, err := os.ReadFile(entry.Path)
	if err != nil {
		return 0, passerr.Errorf(passerr.CodeCLIInputInvalid, "reading %s: %w", entry.Path, err)
	}

	doc, err := a.store.CreateDocument(ctx, projectID, entry.Name, entry.Path)
	if err != nil {
		return 0, err
	}

	chunks, err := pipeline.Ingest(ctx, projectID, doc.ID, string(raw))
	if err != nil {
		_ = a.store.DeleteDocument(ctx, doc.ID)
		return 0, err
	}
	return chunks, nil
}
