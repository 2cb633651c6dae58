package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smazurov/depthvideo/internal/colormap"
)

// CreateColormapsCmd creates the colormaps command.
func CreateColormapsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "colormaps",
		Short: "List supported depth palettes",
		Long: `Prints every palette accepted by --colormap. Names are matched without regard to case; ` +
			`an unknown name falls back to ` + colormap.DefaultName + `.`,
		Args: cobra.NoArgs,
		Run: func(c *cobra.Command, _ []string) {
			for _, name := range colormap.Names() {
				marker := ""
				if name == colormap.DefaultName {
					marker = " (default)"
				}
				fmt.Fprintf(c.OutOrStdout(), "%s%s\n", name, marker)
			}
		},
	}
}
