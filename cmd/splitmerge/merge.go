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

type mergeFlags struct {
	checksum        string
	dest            string
	deleteFragments bool
	splitID         int64
	useManifest     bool
	fragments       []string
}

func mergeCmd() *cobra.Command {
	var flags mergeFlags

	cmd := &cobra.Command{
		Use:   "merge [fragment-dir]",
		Short: "Merge fragments back into a file and verify it",
		Long: `Concatenate every fragment in fragment-dir into --dest and compare the
SHA-256 of the result with --checksum.

Without a manifest, every regular file in the directory is treated as a
fragment and files are joined in lexicographic path order. With
--use-manifest the manifest written by split --manifest supplies the order
and, when --checksum is omitted, the expected checksum.

With --split-id the fragment directory and checksum are taken from the
catalog entry of a recorded split instead. With one --fragment per file the
listed fragments are joined in the order given and no directory is read.

A result that fails verification is left at --dest and the fragments are
kept. Exit status is 4 on a checksum mismatch.`,
		Args: cobra.MaximumNArgs(1),
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

			var dir string
			if len(args) == 1 {
				dir = args[0]
			}
			return runMerge(cmd.Context(), cmd.OutOrStdout(), client, dir, flags)
		},
	}

	cmd.Flags().StringVar(&flags.checksum, "checksum", "", "Expected SHA-256 of the merged file")
	cmd.Flags().StringVarP(&flags.dest, "dest", "d", "", "Destination file (required)")
	cmd.Flags().BoolVar(&flags.deleteFragments, "delete-fragments", false, "Delete fragments once the result is verified")
	cmd.Flags().Int64Var(&flags.splitID, "split-id", 0, "Merge the recorded split with this catalog id")
	cmd.Flags().BoolVar(&flags.useManifest, "use-manifest", false, "Order fragments by the manifest when one exists")
	cmd.Flags().StringArrayVar(&flags.fragments, "fragment", nil, "Fragment to merge, repeated in merge order")

	return cmd
}

func runMerge(ctx context.Context, out io.Writer, client *splitmerge.Client, dir string, flags mergeFlags) error {
	var (
		result fragment.MergeResult
		err    error
	)
	sources := 0
	for _, set := range []bool{dir != "", flags.splitID != 0, len(flags.fragments) > 0} {
		if set {
			sources++
		}
	}
	switch {
	case flags.dest == "":
		return fragment.NewValidationError("destination", "--dest is required", nil)
	case sources > 1:
		return fragment.NewValidationError("fragments", "give one of a directory, --split-id or --fragment", nil)
	case flags.splitID != 0:
		result, err = client.MergeSplit(ctx, flags.splitID, flags.dest, flags.deleteFragments)
	case len(flags.fragments) > 0:
		result, err = client.Merge(ctx, service.MergeParams{
			Paths:            flags.fragments,
			ExpectedChecksum: flags.checksum,
			Destination:      flags.dest,
			DeleteFragments:  flags.deleteFragments,
		})
	case dir == "":
		return fragment.NewValidationError("fragment directory", "is required without --split-id or --fragment", nil)
	default:
		result, err = client.Merge(ctx, service.MergeParams{
			FragmentDir:      dir,
			ExpectedChecksum: flags.checksum,
			Destination:      flags.dest,
			DeleteFragments:  flags.deleteFragments,
			UseManifest:      flags.useManifest,
		})
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "%s: verified\n", result.Destination())
	return nil
}
