package preflight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"subgen/internal/stage"
)

func allToolsPresent(name string) (string, error) {
	return "/usr/bin/" + name, nil
}

func smiOutput(out string) runnerFunc {
	return func(context.Context, string, ...string) (string, error) {
		return out, nil
	}
}

func TestCheckReportsGPUsAndToolPaths(t *testing.T) {
	checker := NewCheckerForTests(allToolsPresent, smiOutput(
		"0, NVIDIA GeForce RTX 3090, 24576 MiB\n1, NVIDIA GeForce RTX 3060, 12288 MiB\n"))

	report, err := checker.Check(context.Background())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(report.GPUs) != 2 {
		t.Fatalf("gpus = %d, want 2", len(report.GPUs))
	}
	if report.GPUs[0].Name != "NVIDIA GeForce RTX 3090" || report.GPUs[0].MemoryMiB != 24576 {
		t.Errorf("gpu 0 = %+v", report.GPUs[0])
	}
	if report.GPUs[1].Index != 1 {
		t.Errorf("gpu 1 index = %d", report.GPUs[1].Index)
	}
	if !strings.HasSuffix(report.EnginePath, "transcribe-anything") {
		t.Errorf("engine path = %q", report.EnginePath)
	}
	if !strings.HasSuffix(report.FFprobePath, "ffprobe") {
		t.Errorf("ffprobe path = %q", report.FFprobePath)
	}
}

func TestCheckFailsWithoutGPUs(t *testing.T) {
	checker := NewCheckerForTests(allToolsPresent, smiOutput("\n"))
	_, err := checker.Check(context.Background())
	if !errors.Is(err, stage.ErrPreflight) {
		t.Errorf("error = %v, want ErrPreflight", err)
	}
}

func TestCheckFailsWhenToolMissing(t *testing.T) {
	for _, missing := range []string{"transcribe-anything", "ffprobe", "nvidia-smi"} {
		t.Run(missing, func(t *testing.T) {
			lookPath := func(name string) (string, error) {
				if name == missing {
					return "", fmt.Errorf("%s: executable file not found in $PATH", name)
				}
				return "/usr/bin/" + name, nil
			}
			checker := NewCheckerForTests(lookPath, smiOutput("0, RTX, 8192 MiB\n"))
			_, err := checker.Check(context.Background())
			if !errors.Is(err, stage.ErrPreflight) {
				t.Fatalf("error = %v, want ErrPreflight", err)
			}
			if !strings.Contains(err.Error(), missing) {
				t.Errorf("error %q does not name the missing tool", err)
			}
		})
	}
}

func TestCheckFailsWhenSmiErrors(t *testing.T) {
	runner := func(context.Context, string, ...string) (string, error) {
		return "NVIDIA-SMI has failed", errors.New("exit status 9")
	}
	checker := NewCheckerForTests(allToolsPresent, runner)
	_, err := checker.Check(context.Background())
	if !errors.Is(err, stage.ErrPreflight) {
		t.Errorf("error = %v, want ErrPreflight", err)
	}
}

func TestCheckRejectsMalformedSmiOutput(t *testing.T) {
	checker := NewCheckerForTests(allToolsPresent, smiOutput("not,a number,at all\n"))
	_, err := checker.Check(context.Background())
	if !errors.Is(err, stage.ErrPreflight) {
		t.Errorf("error = %v, want ErrPreflight", err)
	}
}
