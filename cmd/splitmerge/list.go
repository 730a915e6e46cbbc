package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/helixml/splitmerge"
	"github.com/helixml/splitmerge/domain/catalog"
	"github.com/helixml/splitmerge/domain/repository"
)

func listCmd() *cobra.Command {
	var (
		limit    int
		checksum string
		name     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded splits, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			client, logger, err := openClient(cfg)
			if err != nil {
				return err
			}
			defer closeClient(client, logger)

			opts := []repository.Option{catalog.Newest(), repository.WithLimit(limit)}
			if checksum != "" {
				opts = append(opts, catalog.WithChecksum(checksum))
			}
			if name != "" {
				opts = append(opts, catalog.WithSourceName(name))
			}
			return runList(cmd.Context(), cmd.OutOrStdout(), client, opts...)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of splits to show")
	cmd.Flags().StringVar(&checksum, "checksum", "", "Only show splits of a source with this checksum")
	cmd.Flags().StringVar(&name, "name", "", "Only show splits of a source with this file name")

	return cmd
}

func runList(ctx context.Context, out io.Writer, client *splitmerge.Client, opts ...repository.Option) error {
	if client.Catalog == nil {
		return splitmerge.ErrCatalogDisabled
	}
	entries, err := client.Catalog.Find(ctx, opts...)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSOURCE\tSIZE\tPARTS\tCHECKSUM\tFRAGMENTS\tCREATED\tMERGED TO")
	for _, e := range entries {
		merged := "-"
		if e.Merged() {
			merged = e.MergedTo()
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			e.ID(), e.SourceName(), formatSize(e.SourceSize()), e.Total(),
			shortChecksum(e.Checksum()), e.FragmentDir(), e.CreatedAt().Local().Format(time.DateTime), merged)
	}
	return w.Flush()
}

func shortChecksum(s string) string {
	if len(s) > 12 {
		return s[:12]
	}
	return s
}
