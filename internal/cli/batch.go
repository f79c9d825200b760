package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"subgen/internal/jobs"
	"subgen/internal/media"
	"subgen/internal/notify"
	"subgen/internal/preflight"
	"subgen/internal/stage"
)

var batchCmd = &cobra.Command{
	Use:   "batch [video_files...]",
	Short: "Generate subtitles for several videos concurrently",
	Long: `Run one independent subtitle job per video. Jobs execute in
parallel and each is reported as it finishes; a summary table is printed
once all jobs are done.

Examples:
  subgen batch a.mp4 b.mp4 c.mkv --languages en,es
  subgen batch lectures/*.mp4 -l en --speak`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	addJobFlags(batchCmd)
	batchCmd.Flags().Bool("speak", false, "Announce each completion out loud")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := resolveRunConfig(cmd)
	if err != nil {
		return err
	}
	if _, err := preflight.NewChecker(logger).Check(ctx); err != nil {
		return err
	}

	notifier := notify.Notifier(notify.Console{Out: cmd.OutOrStdout()})
	if speak, _ := cmd.Flags().GetBool("speak"); speak {
		notifier = fanout{notifier, notify.NewSpeech(logger)}
	}

	coordinator := cfg.newCoordinator()
	handles := make([]*jobs.Handle, 0, len(args))
	var failed int
	for _, video := range args {
		submit := func() error {
			info, err := media.Probe(video)
			if err != nil {
				return err
			}
			handle, err := coordinator.Submit(ctx, cfg.job(info.Path), func(h *jobs.Handle) {
				if _, err := h.Result(); err != nil {
					notifier.JobFailed(h)
					return
				}
				notifier.JobCompleted(h)
			})
			if err != nil {
				return err
			}
			handles = append(handles, handle)
			return nil
		}
		if err := submit(); err != nil {
			// a rejected video only skips that video; anything else
			// aborts the whole batch
			if !stage.Fatal(err) {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "skipping %s: %v\n", video, err)
			failed++
		}
	}
	for _, handle := range handles {
		if err := handle.Wait(ctx); err != nil {
			failed++
		}
	}
	if err := coordinator.Shutdown(ctx); err != nil {
		return err
	}

	printSummary(cmd, handles)
	if err := cfg.persist(); err != nil {
		logger.Warnw("Could not persist settings", "error", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(args))
	}
	return nil
}

// fanout delivers each event to every wrapped notifier.
type fanout []notify.Notifier

func (f fanout) JobCompleted(h *jobs.Handle) {
	for _, n := range f {
		n.JobCompleted(h)
	}
}

func (f fanout) JobFailed(h *jobs.Handle) {
	for _, n := range f {
		n.JobFailed(h)
	}
}

func printSummary(cmd *cobra.Command, handles []*jobs.Handle) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Video", "Status", "Files", "Detail"})
	for _, handle := range handles {
		bundle, err := handle.Result()
		switch {
		case err != nil:
			t.AppendRow(table.Row{handle.Job.VideoPath, handle.Status(), 0, err.Error()})
		default:
			t.AppendRow(table.Row{handle.Job.VideoPath, handle.Status(), len(bundle.Files), bundle.Dir})
		}
	}
	if isatty.IsTerminal(os.Stdout.Fd()) {
		t.SetStyle(table.StyleRounded)
		t.Style().Color.Header = text.Colors{text.Bold}
	}
	t.Render()
}
