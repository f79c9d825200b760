package transcribe

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"

	"subgen/internal/logging"
	"subgen/internal/stage"
	"subgen/internal/subtitle"
)

// DefaultBinary is the external speech-to-text command. It drives whisper on
// the GPU and writes an out.srt next to its other artifacts.
const DefaultBinary = "transcribe-anything"

// commandResult captures one external command invocation.
type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (commandResult, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}
	return result, nil
}

// CLIEngine shells out to the transcribe-anything binary and parses the SRT
// file it produces.
type CLIEngine struct {
	binary         string
	device         string
	sourceLanguage string
	logger         *logging.Logger

	runner    commandRunner
	mkdirTemp func(dir, pattern string) (string, error)
	removeAll func(path string) error
	readFile  func(name string) ([]byte, error)
}

// NewCLIEngine builds the production engine. sourceLanguage tags the
// resulting track; whisper itself auto-detects the spoken language.
func NewCLIEngine(sourceLanguage string, logger *logging.Logger) *CLIEngine {
	return &CLIEngine{
		binary:         DefaultBinary,
		device:         "insane",
		sourceLanguage: sourceLanguage,
		logger:         logger,
		runner:         execRunner{},
		mkdirTemp:      os.MkdirTemp,
		removeAll:      os.RemoveAll,
		readFile:       os.ReadFile,
	}
}

// Transcribe runs the external engine against the video and returns the
// source-language track. The executing goroutine blocks for the duration of
// the external call.
func (e *CLIEngine) Transcribe(ctx context.Context, videoPath string, model Model) (*subtitle.Track, error) {
	tempDir, err := e.mkdirTemp("", "subgen-*")
	if err != nil {
		return nil, stage.Wrap(stage.ErrTranscription, "transcribe", "create workspace", err)
	}
	defer func() {
		_ = e.removeAll(tempDir)
	}()

	args := []string{
		videoPath,
		"--model", string(model),
		"--device", e.device,
		"--output_dir", tempDir,
	}

	e.logger.Infow("Running transcription engine",
		"binary", e.binary,
		"model", model,
		"input", videoPath,
	)

	result, runErr := e.runner.Run(ctx, e.binary, args...)
	if runErr != nil {
		e.logger.Debugw("Transcription engine failed",
			"exit_code", result.ExitCode,
			"stderr", tail(result.Stderr, 2000),
		)
		return nil, stage.Wrap(stage.ErrTranscription, "transcribe",
			e.binary+" exited abnormally", runErr)
	}

	srtPath := filepath.Join(tempDir, "out.srt")
	data, err := e.readFile(srtPath)
	if err != nil {
		return nil, stage.Wrap(stage.ErrTranscription, "transcribe",
			"engine completed but out.srt is missing", err)
	}

	track, err := subtitle.ParseSRT(bytes.NewReader(data))
	if err != nil {
		return nil, stage.Wrap(stage.ErrTranscription, "transcribe", "parse out.srt", err)
	}
	track.Language = e.sourceLanguage

	if err := track.Validate(); err != nil {
		return nil, stage.Wrap(stage.ErrTranscription, "transcribe", "engine output", err)
	}

	e.logger.Infow("Transcription complete", "cues", len(track.Cues))
	return track, nil
}

// NewCLIEngineForTests constructs an engine with injectable dependencies.
func NewCLIEngineForTests(
	binary string,
	sourceLanguage string,
	runner commandRunner,
	mkdirTemp func(dir, pattern string) (string, error),
	readFile func(name string) ([]byte, error),
) *CLIEngine {
	return &CLIEngine{
		binary:         binary,
		device:         "insane",
		sourceLanguage: sourceLanguage,
		logger:         logging.NewNop(),
		runner:         runner,
		mkdirTemp:      mkdirTemp,
		removeAll:      func(string) error { return nil },
		readFile:       readFile,
	}
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
