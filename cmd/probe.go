package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/smazurov/depthvideo/internal/logging"
	"github.com/smazurov/depthvideo/internal/render"
	"github.com/smazurov/depthvideo/internal/video"
)

// CreateProbeCmd creates the probe command.
func CreateProbeCmd() *cobra.Command {
	var outdir string
	var onlyDepth bool

	cmd := &cobra.Command{
		Use:   "probe [video-path]",
		Short: "Show what a run would process",
		Long: `Discovers inputs the same way a run does (single file, .txt list, or directory) and prints ` +
			`each video's resolution, frame rate and the size and path of the rendered output. No model is loaded.`,
		Args: cobra.ExactArgs(1),
		Run: func(c *cobra.Command, args []string) {
			logger := logging.GetLogger("probe")

			inputs, err := video.Discover(args[0])
			if err != nil {
				logger.Error("Failed to discover inputs", "path", args[0], "error", err)
				os.Exit(1)
			}
			if len(inputs) == 0 {
				logger.Error("No inputs found", "path", args[0])
				os.Exit(1)
			}

			tw := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "INPUT\tSIZE\tFPS\tFRAMES\tAUDIO\tOUTPUT SIZE\tOUTPUT")

			failed := 0
			for _, input := range inputs {
				info, probeErr := video.Probe(c.Context(), input)
				if probeErr != nil {
					logger.Warn("Failed to probe", "input", input, "error", probeErr)
					failed++
					continue
				}
				fmt.Fprintf(tw, "%s\t%dx%d\t%s\t%d\t%t\t%dx%d\t%s\n",
					input,
					info.Width, info.Height,
					info.FrameRate,
					info.Frames,
					info.HasAudio,
					render.OutputWidth(info.Width, onlyDepth), info.Height,
					video.OutputPath(outdir, input, video.SuffixDepth))
			}
			if flushErr := tw.Flush(); flushErr != nil {
				logger.Error("Failed to write table", "error", flushErr)
			}
			if failed == len(inputs) {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVar(&outdir, "outdir", "./vis_video_depth", "Output directory used for the printed output paths")
	cmd.Flags().BoolVar(&onlyDepth, "only-depth", false, "Report output size for depth-only rendering")

	return cmd
}
