// Package preflight verifies the hardware and external tools a subtitle
// job depends on before anything is submitted.
package preflight

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"subgen/internal/logging"
	"subgen/internal/stage"
	"subgen/internal/transcribe"
)

// GPU describes one CUDA device reported by nvidia-smi.
type GPU struct {
	Index     int
	Name      string
	MemoryMiB int
}

// Report lists what the checks found.
type Report struct {
	GPUs        []GPU
	EnginePath  string
	FFprobePath string
}

type lookPathFunc func(string) (string, error)
type runnerFunc func(ctx context.Context, name string, args ...string) (string, error)

// Checker runs the preflight checks. The lookup and runner functions are
// injectable so tests can simulate missing tools and nvidia-smi output.
type Checker struct {
	lookPath lookPathFunc
	runner   runnerFunc
	logger   *logging.Logger
}

func NewChecker(logger *logging.Logger) *Checker {
	return &Checker{
		lookPath: exec.LookPath,
		runner: func(ctx context.Context, name string, args ...string) (string, error) {
			out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
			return string(out), err
		},
		logger: logger,
	}
}

// NewCheckerForTests builds a Checker with injected lookups.
func NewCheckerForTests(lookPath lookPathFunc, runner runnerFunc) *Checker {
	return &Checker{lookPath: lookPath, runner: runner, logger: logging.NewNop()}
}

// Check verifies the transcription binary and ffprobe are on PATH and at
// least one CUDA device is present. Any missing piece fails the whole
// check; no job should be submitted after a failure.
func (c *Checker) Check(ctx context.Context) (*Report, error) {
	report := &Report{}

	enginePath, err := c.lookPath(transcribe.DefaultBinary)
	if err != nil {
		return nil, stage.Errorf(stage.ErrPreflight,
			"%s not found on PATH; install it before running", transcribe.DefaultBinary)
	}
	report.EnginePath = enginePath

	ffprobePath, err := c.lookPath("ffprobe")
	if err != nil {
		return nil, stage.Errorf(stage.ErrPreflight, "ffprobe not found on PATH")
	}
	report.FFprobePath = ffprobePath

	gpus, err := c.queryGPUs(ctx)
	if err != nil {
		return nil, err
	}
	if len(gpus) == 0 {
		return nil, stage.Errorf(stage.ErrPreflight, "no Nvidia/CUDA video cards found")
	}
	report.GPUs = gpus

	c.logger.Debugw("Preflight passed",
		"engine", report.EnginePath,
		"gpus", len(report.GPUs),
	)
	return report, nil
}

func (c *Checker) queryGPUs(ctx context.Context) ([]GPU, error) {
	if _, err := c.lookPath("nvidia-smi"); err != nil {
		return nil, stage.Errorf(stage.ErrPreflight, "nvidia-smi not found on PATH")
	}
	out, err := c.runner(ctx, "nvidia-smi",
		"--query-gpu=index,name,memory.total",
		"--format=csv,noheader")
	if err != nil {
		return nil, stage.Errorf(stage.ErrPreflight, "nvidia-smi failed: %v", err)
	}

	var gpus []GPU
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		gpu, err := parseGPULine(line)
		if err != nil {
			return nil, stage.Errorf(stage.ErrPreflight, "unexpected nvidia-smi output %q: %v", line, err)
		}
		gpus = append(gpus, gpu)
	}
	return gpus, nil
}

// parseGPULine parses one csv,noheader row, e.g.
// "0, NVIDIA GeForce RTX 3090, 24576 MiB".
func parseGPULine(line string) (GPU, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return GPU{}, strconv.ErrSyntax
	}
	index, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return GPU{}, err
	}
	memField := strings.TrimSpace(parts[2])
	memField = strings.TrimSuffix(memField, " MiB")
	memory, err := strconv.Atoi(strings.TrimSpace(memField))
	if err != nil {
		return GPU{}, err
	}
	return GPU{
		Index:     index,
		Name:      strings.TrimSpace(parts[1]),
		MemoryMiB: memory,
	}, nil
}
