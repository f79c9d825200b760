package transcribe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"subgen/internal/stage"
)

type fakeRunner struct {
	result   commandResult
	err      error
	gotName  string
	gotArgs  []string
	onInvoke func()
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (commandResult, error) {
	f.gotName = name
	f.gotArgs = args
	if f.onInvoke != nil {
		f.onInvoke()
	}
	return f.result, f.err
}

const sampleSRT = "1\n00:00:00,000 --> 00:00:02,000\nhello world\n\n" +
	"2\n00:00:02,500 --> 00:00:04,000\nsecond cue\n\n"

func TestCLIEngineTranscribe(t *testing.T) {
	tempDir := t.TempDir()
	runner := &fakeRunner{}
	runner.onInvoke = func() {
		// simulate the engine writing its SRT artifact
		path := filepath.Join(tempDir, "out.srt")
		if err := os.WriteFile(path, []byte(sampleSRT), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	engine := NewCLIEngineForTests(
		"transcribe-anything",
		"en",
		runner,
		func(string, string) (string, error) { return tempDir, nil },
		os.ReadFile,
	)

	track, err := engine.Transcribe(context.Background(), "/videos/demo.mp4", ModelLarge)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	if track.Language != "en" {
		t.Errorf("language = %q, want en", track.Language)
	}
	if len(track.Cues) != 2 {
		t.Fatalf("cue count = %d, want 2", len(track.Cues))
	}
	if track.Cues[0].Text != "hello world" || track.Cues[0].End != 2*time.Second {
		t.Errorf("first cue = %+v", track.Cues[0])
	}

	wantArgs := []string{
		"/videos/demo.mp4",
		"--model", "large",
		"--device", "insane",
		"--output_dir", tempDir,
	}
	if len(runner.gotArgs) != len(wantArgs) {
		t.Fatalf("args = %v, want %v", runner.gotArgs, wantArgs)
	}
	for i, arg := range wantArgs {
		if runner.gotArgs[i] != arg {
			t.Errorf("arg %d = %q, want %q", i, runner.gotArgs[i], arg)
		}
	}
}

func TestCLIEngineEngineFailure(t *testing.T) {
	runner := &fakeRunner{
		result: commandResult{ExitCode: 1, Stderr: "CUDA out of memory"},
		err:    errors.New("exit status 1"),
	}
	engine := NewCLIEngineForTests(
		"transcribe-anything",
		"en",
		runner,
		func(string, string) (string, error) { return t.TempDir(), nil },
		os.ReadFile,
	)

	_, err := engine.Transcribe(context.Background(), "/videos/demo.mp4", ModelSmall)
	if !errors.Is(err, stage.ErrTranscription) {
		t.Errorf("error = %v, want ErrTranscription", err)
	}
}

func TestCLIEngineMissingArtifact(t *testing.T) {
	engine := NewCLIEngineForTests(
		"transcribe-anything",
		"en",
		&fakeRunner{},
		func(string, string) (string, error) { return t.TempDir(), nil },
		os.ReadFile,
	)

	_, err := engine.Transcribe(context.Background(), "/videos/demo.mp4", ModelLarge)
	if !errors.Is(err, stage.ErrTranscription) {
		t.Errorf("error = %v, want ErrTranscription", err)
	}
}

func TestParseModel(t *testing.T) {
	tests := []struct {
		in      string
		want    Model
		wantErr bool
	}{
		{"large", ModelLarge, false},
		{"TINY", ModelTiny, false},
		{" medium ", ModelMedium, false},
		{"huge", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseModel(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseModel(%q) should fail", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseModel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}
