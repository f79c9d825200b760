package media

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"subgen/internal/stage"
)

// Info describes the streams of a media file relevant to subtitling.
type Info struct {
	Path     string
	Duration time.Duration
	HasAudio bool
	HasVideo bool
}

// JSON shape emitted by ffprobe.
type probeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// prober allows tests to stub the ffprobe invocation.
type prober func(path string) (string, error)

func ffmpegProbe(path string) (string, error) {
	return ffmpeg.Probe(path)
}

// Probe inspects a media file via ffprobe. A file without an audio stream
// cannot be transcribed and is rejected up front.
func Probe(path string) (*Info, error) {
	return probeWith(ffmpegProbe, path)
}

func probeWith(probe prober, path string) (*Info, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, stage.Wrap(stage.ErrInvalidRequest, "probe", path, err)
	}

	raw, err := probe(path)
	if err != nil {
		return nil, stage.Wrap(stage.ErrInvalidRequest, "probe", "ffprobe failed", err)
	}

	var out probeOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, stage.Wrap(stage.ErrInvalidRequest, "probe", "parse ffprobe output", err)
	}

	info := &Info{Path: path}
	for _, s := range out.Streams {
		switch s.CodecType {
		case "audio":
			info.HasAudio = true
		case "video":
			info.HasVideo = true
		}
	}

	if out.Format.Duration != "" {
		seconds, err := strconv.ParseFloat(out.Format.Duration, 64)
		if err != nil {
			return nil, stage.Wrap(stage.ErrInvalidRequest, "probe",
				fmt.Sprintf("parse duration %q", out.Format.Duration), err)
		}
		info.Duration = time.Duration(seconds * float64(time.Second))
	}

	if !info.HasAudio {
		return nil, stage.Errorf(stage.ErrInvalidRequest,
			"no audio stream in %s", path)
	}
	return info, nil
}
