package cli

import (
	"github.com/spf13/cobra"

	"subgen/internal/logging"
)

var (
	verbose bool
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "subgen",
	Short: "Generate translated subtitles for video files",
	Long: `Subgen turns a local video file into subtitle tracks in one or more
languages. Speech is transcribed with a GPU transcription engine, then
translated per language and written as SRT or WEBVTT files next to the
video.

Without a translation API key the free DeepL endpoint is used; quality
may be lower for long inputs but the run still succeeds.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}
