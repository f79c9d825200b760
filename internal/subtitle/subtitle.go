package subtitle

import (
	"fmt"
	"strings"
	"time"

	"subgen/internal/stage"
)

// Cue is a single timed subtitle line.
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// Track is an ordered cue sequence in one language. Tracks are treated as
// immutable once produced by a pipeline stage; Degraded marks output from a
// translation run without a paid credential.
type Track struct {
	Cues     []Cue
	Language string
	Degraded bool
}

// Clone returns a deep copy of the track tagged with the given language.
// Used for the identity mapping when a target language equals the source.
func (t *Track) Clone(lang string) *Track {
	cues := make([]Cue, len(t.Cues))
	copy(cues, t.Cues)
	return &Track{
		Cues:     cues,
		Language: lang,
		Degraded: t.Degraded,
	}
}

// Validate enforces cue sequence invariants: start <= end for every cue,
// cues sorted by start time, and no overlap between consecutive cues.
func (t *Track) Validate() error {
	for i, cue := range t.Cues {
		if cue.Start < 0 {
			return stage.Errorf(
				stage.ErrFormat,
				"cue %d has negative start %s", i+1, cue.Start,
			)
		}
		if cue.End < cue.Start {
			return stage.Errorf(
				stage.ErrFormat,
				"cue %d ends (%s) before it starts (%s)", i+1, cue.End, cue.Start,
			)
		}
		if i > 0 && cue.Start < t.Cues[i-1].End {
			return stage.Errorf(
				stage.ErrFormat,
				"cue %d starts (%s) before cue %d ends (%s)",
				i+1, cue.Start, i, t.Cues[i-1].End,
			)
		}
	}
	return nil
}

// Format is a supported subtitle output format.
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
)

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "srt":
		return FormatSRT, nil
	case "vtt", "webvtt":
		return FormatVTT, nil
	default:
		return "", fmt.Errorf("unsupported subtitle format %q: use srt or vtt", s)
	}
}

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatVTT:
		return ".vtt"
	default:
		return ".srt"
	}
}
