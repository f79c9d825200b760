// Package notify delivers job completion events to the user.
//
// The console notifier prints to a writer and is what the command line
// uses. The speech notifier announces completions out loud through the
// platform's text-to-speech tool and degrades to silence when no such
// tool is installed. Front ends that have their own presentation surface
// depend only on the Notifier interface.
package notify

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"

	"subgen/internal/jobs"
	"subgen/internal/logging"
)

// Notifier is the completion reporting surface handed to the coordinator's
// callers. Implementations must be safe for concurrent use; completions
// arrive from independent job goroutines.
type Notifier interface {
	JobCompleted(handle *jobs.Handle)
	JobFailed(handle *jobs.Handle)
}

// Noop discards all events.
type Noop struct{}

func (Noop) JobCompleted(*jobs.Handle) {}
func (Noop) JobFailed(*jobs.Handle)    {}

// Console writes one line per event. fmt.Fprintf serializes writes to a
// single writer well enough for line-oriented output.
type Console struct {
	Out io.Writer
}

func (c Console) JobCompleted(handle *jobs.Handle) {
	bundle, _ := handle.Result()
	fmt.Fprintf(c.Out, "done: %s -> %s (%d files)\n",
		handle.Job.VideoPath, bundle.Dir, len(bundle.Files))
	for _, warning := range bundle.Warnings {
		fmt.Fprintf(c.Out, "  warning: %s\n", warning)
	}
}

func (c Console) JobFailed(handle *jobs.Handle) {
	_, err := handle.Result()
	fmt.Fprintf(c.Out, "failed: %s: %v\n", handle.Job.VideoPath, err)
}

// Speech announces completions through `say` or `espeak`, whichever is
// installed. Built through NewSpeech; when neither tool exists the
// constructor returns Noop instead.
type Speech struct {
	binary string
	runner func(ctx context.Context, name string, args ...string) error
	logger *logging.Logger
}

// NewSpeech returns a speaking notifier when a text-to-speech tool is on
// PATH, otherwise a Noop.
func NewSpeech(logger *logging.Logger) Notifier {
	for _, candidate := range []string{"say", "espeak"} {
		if _, err := exec.LookPath(candidate); err == nil {
			return &Speech{
				binary: candidate,
				runner: func(ctx context.Context, name string, args ...string) error {
					return exec.CommandContext(ctx, name, args...).Run()
				},
				logger: logger,
			}
		}
	}
	logger.Debugw("No text-to-speech tool found, completions will be silent")
	return Noop{}
}

// NewSpeechForTests builds a Speech with an injected runner.
func NewSpeechForTests(binary string, runner func(ctx context.Context, name string, args ...string) error) *Speech {
	return &Speech{binary: binary, runner: runner, logger: logging.NewNop()}
}

func (s *Speech) JobCompleted(handle *jobs.Handle) {
	s.speak(fmt.Sprintf("Subtitles for %s are ready", baseName(handle)))
}

func (s *Speech) JobFailed(handle *jobs.Handle) {
	s.speak(fmt.Sprintf("Subtitles for %s failed", baseName(handle)))
}

func (s *Speech) speak(phrase string) {
	if err := s.runner(context.Background(), s.binary, phrase); err != nil {
		// announcement is best effort, never a job failure
		s.logger.Debugw("Speech announcement failed", "error", err)
	}
}

func baseName(handle *jobs.Handle) string {
	return filepath.Base(handle.Job.VideoPath)
}
