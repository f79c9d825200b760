package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"subgen/internal/media"
	"subgen/internal/preflight"
)

var runCmd = &cobra.Command{
	Use:   "run [video_file]",
	Short: "Generate subtitles for a single video",
	Long: `Generate subtitle files for the given video in every requested
language. The transcript is produced once, translated per language, and
written as one file per language into a folder named after the video.

Examples:
  subgen run demo.mp4 --languages en,es
  subgen run talk.mkv -l en,fr,de -m medium -f vtt
  subgen run demo.mp4 -l es --api-key free
  subgen run demo.mp4 -l es --provider openai -k $OPENAI_API_KEY`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addJobFlags(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := resolveRunConfig(cmd)
	if err != nil {
		return err
	}
	if _, err := preflight.NewChecker(logger).Check(ctx); err != nil {
		return err
	}

	info, err := media.Probe(args[0])
	if err != nil {
		return err
	}
	logger.Infow("Probed video",
		"path", info.Path,
		"duration", info.Duration,
	)

	coordinator := cfg.newCoordinator()
	handle, err := coordinator.Submit(ctx, cfg.job(info.Path), nil)
	if err != nil {
		return err
	}
	if err := handle.Wait(ctx); err != nil {
		return err
	}

	bundle, _ := handle.Result()
	fmt.Fprintf(cmd.OutOrStdout(), "Subtitles written to %s\n", bundle.Dir)
	for _, lang := range cfg.languages {
		if path, ok := bundle.Files[lang]; ok {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", path)
		}
	}
	for _, warning := range bundle.Warnings {
		fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", warning)
	}

	if err := cfg.persist(); err != nil {
		logger.Warnw("Could not persist settings", "error", err)
	}
	return nil
}
