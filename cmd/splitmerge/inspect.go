package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/helixml/splitmerge/domain/fragment"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <fragment>...",
		Short: "Decode fragment file names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				if err := inspect(cmd.OutOrStdout(), arg); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func inspect(out io.Writer, path string) error {
	name, err := fragment.ParseName(filepath.Base(path))
	if err != nil {
		return fragment.NewValidationError("fragment", filepath.Base(path), err)
	}

	_, _ = fmt.Fprintf(out, "%s\n", path)
	_, _ = fmt.Fprintf(out, "  original: %s\n", name.Original())
	_, _ = fmt.Fprintf(out, "  checksum: %s\n", name.Checksum())
	_, _ = fmt.Fprintf(out, "  part:     %d of %d\n", name.Ordinal(), name.Total())
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		_, _ = fmt.Fprintf(out, "  size:     %s\n", formatSize(info.Size()))
	}
	return nil
}
