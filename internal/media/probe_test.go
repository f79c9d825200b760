package media

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"subgen/internal/stage"
)

func writeTempFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo.mp4")
	if err := os.WriteFile(path, []byte("stub"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProbeParsesStreamsAndDuration(t *testing.T) {
	path := writeTempFile(t)
	fake := func(string) (string, error) {
		return `{
			"streams": [
				{"codec_type": "video"},
				{"codec_type": "audio"}
			],
			"format": {"duration": "12.480000"}
		}`, nil
	}

	info, err := probeWith(fake, path)
	if err != nil {
		t.Fatalf("probeWith: %v", err)
	}
	if !info.HasAudio || !info.HasVideo {
		t.Errorf("streams = audio %v video %v, want both", info.HasAudio, info.HasVideo)
	}
	if info.Duration != 12480*time.Millisecond {
		t.Errorf("duration = %s, want 12.48s", info.Duration)
	}
}

func TestProbeRejectsMissingFile(t *testing.T) {
	fake := func(string) (string, error) { return "{}", nil }
	_, err := probeWith(fake, filepath.Join(t.TempDir(), "missing.mp4"))
	if !errors.Is(err, stage.ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}
}

func TestProbeRejectsSilentVideo(t *testing.T) {
	path := writeTempFile(t)
	fake := func(string) (string, error) {
		return `{"streams": [{"codec_type": "video"}], "format": {}}`, nil
	}
	_, err := probeWith(fake, path)
	if !errors.Is(err, stage.ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}
}

func TestProbeRejectsProbeFailure(t *testing.T) {
	path := writeTempFile(t)
	fake := func(string) (string, error) { return "", errors.New("ffprobe exploded") }
	_, err := probeWith(fake, path)
	if !errors.Is(err, stage.ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}
}
