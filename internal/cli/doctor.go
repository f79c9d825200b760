package cli

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"subgen/internal/preflight"
	"subgen/internal/transcribe"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that required hardware and tools are available",
	Long: `Verify the transcription engine, ffprobe, and at least one CUDA
video card are present. Jobs are refused until every check passes.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	report, err := preflight.NewChecker(logger).Check(context.Background())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "transcription engine: %s\n", report.EnginePath)
	fmt.Fprintf(out, "ffprobe:              %s\n", report.FFprobePath)

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"GPU", "Name", "Memory (MiB)"})
	for _, gpu := range report.GPUs {
		t.AppendRow(table.Row{gpu.Index, gpu.Name, gpu.MemoryMiB})
	}
	t.Render()

	m := table.NewWriter()
	m.SetOutputMirror(out)
	m.AppendHeader(table.Row{"Model", "Tradeoff"})
	for _, model := range transcribe.Models() {
		m.AppendRow(table.Row{model, transcribe.Describe(transcribe.Model(model))})
	}
	m.Render()
	return nil
}
