package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/helixml/splitmerge"
	"github.com/helixml/splitmerge/application/service"
	"github.com/helixml/splitmerge/domain/fragment"
)

func splitCmd() *cobra.Command {
	var (
		chunkSize string
		outDir    string
		manifest  bool
	)

	cmd := &cobra.Command{
		Use:   "split <source>...",
		Short: "Split files into fragments",
		Long: `Split one or more files into fragments of at most --chunk-size bytes.

With a single source the fragments are written directly to --out. With
several sources each one is written to --out/<source name>, and sources are
processed concurrently up to WORKER_COUNT at a time.

Fragment names have the form
  <name>.binary-Checksum-<sha256>-ChecksumEnd.splitPart<n>_<total>`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			size, err := parseChunkSize(chunkSize, cfg.ChunkSize())
			if err != nil {
				return err
			}

			var extra []splitmerge.Option
			if cmd.Flags().Changed("manifest") {
				extra = append(extra, splitmerge.WithManifest(manifest))
			}
			client, logger, err := openClient(cfg, extra...)
			if err != nil {
				return err
			}
			defer closeClient(client, logger)

			return runSplit(cmd.Context(), cmd.OutOrStdout(), client, args, size, outDir)
		},
	}

	cmd.Flags().StringVarP(&chunkSize, "chunk-size", "c", "", "Maximum fragment size, e.g. 1048576, 512KiB, 4MB (default: CHUNK_SIZE)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory to write fragments to")
	cmd.Flags().BoolVar(&manifest, "manifest", false, "Write a manifest next to the fragments (default: WRITE_MANIFEST)")

	return cmd
}

func runSplit(ctx context.Context, out io.Writer, client *splitmerge.Client, sources []string, chunkSize int64, outDir string) error {
	if len(sources) == 1 {
		result, err := client.Split(ctx, service.SplitParams{
			Source:    sources[0],
			ChunkSize: chunkSize,
			TargetDir: outDir,
		})
		if err != nil {
			return err
		}
		printSplit(out, sources[0], result)
		return nil
	}

	results, err := client.SplitAll(ctx, sources, chunkSize, outDir)
	for i, result := range results {
		if result.Succeeded() {
			printSplit(out, sources[i], result)
		}
	}
	return err
}

func printSplit(out io.Writer, source string, result fragment.SplitResult) {
	var total int64
	fragments := result.Fragments()
	for _, f := range fragments {
		total += f.Size()
		_, _ = fmt.Fprintln(out, f.Path())
	}
	_, _ = fmt.Fprintf(out, "%s: %d fragments, %s, sha256 %s\n", source, len(fragments), formatSize(total), result.Checksum())
}
