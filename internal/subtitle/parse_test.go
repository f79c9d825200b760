package subtitle

import (
	"strings"
	"testing"
	"time"
)

func TestParseSRT(t *testing.T) {
	input := "1\n" +
		"00:00:01,000 --> 00:00:03,200\n" +
		"First cue.\n" +
		"\n" +
		"2\n" +
		"00:00:04,000 --> 00:00:06,000\n" +
		"Second cue\nsecond line.\n" +
		"\n"

	track, err := ParseSRT(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(track.Cues) != 2 {
		t.Fatalf("cue count = %d, want 2", len(track.Cues))
	}

	first := track.Cues[0]
	if first.Start != time.Second || first.End != 3200*time.Millisecond {
		t.Errorf("first cue times = %s, %s", first.Start, first.End)
	}
	if first.Text != "First cue." {
		t.Errorf("first cue text = %q", first.Text)
	}

	second := track.Cues[1]
	if second.Text != "Second cue\nsecond line." {
		t.Errorf("second cue text = %q", second.Text)
	}
}

func TestParseSRTStripsBOM(t *testing.T) {
	input := "\ufeff1\n00:00:00,000 --> 00:00:01,000\nhello\n\n"
	track, err := ParseSRT(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(track.Cues) != 1 || track.Cues[0].Text != "hello" {
		t.Errorf("unexpected cues: %+v", track.Cues)
	}
}

func TestParseSRTWithoutTrailingBlankLine(t *testing.T) {
	input := "1\n00:00:00,500 --> 00:00:01,500\nlast cue"
	track, err := ParseSRT(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(track.Cues) != 1 || track.Cues[0].Text != "last cue" {
		t.Errorf("unexpected cues: %+v", track.Cues)
	}
}

func TestParseVTT(t *testing.T) {
	input := "WEBVTT\n" +
		"\n" +
		"00:00:01.000 --> 00:00:03.000\n" +
		"First cue.\n" +
		"\n" +
		"NOTE this should be skipped\n" +
		"with its continuation\n" +
		"\n" +
		"00:00:04.000 --> 00:00:06.500\n" +
		"Second cue.\n"

	track, err := ParseVTT(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseVTT: %v", err)
	}
	if len(track.Cues) != 2 {
		t.Fatalf("cue count = %d, want 2: %+v", len(track.Cues), track.Cues)
	}
	if track.Cues[1].End != 6500*time.Millisecond {
		t.Errorf("second cue end = %s, want 6.5s", track.Cues[1].End)
	}
}

func TestParseVTTShortTimestamps(t *testing.T) {
	input := "WEBVTT\n\n01:30.000 --> 01:45.250\nshort form\n"
	track, err := ParseVTT(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseVTT: %v", err)
	}
	if len(track.Cues) != 1 {
		t.Fatalf("cue count = %d, want 1", len(track.Cues))
	}
	cue := track.Cues[0]
	if cue.Start != 90*time.Second {
		t.Errorf("start = %s, want 1m30s", cue.Start)
	}
	if cue.End != 105*time.Second+250*time.Millisecond {
		t.Errorf("end = %s, want 1m45.25s", cue.End)
	}
}

func TestParseVTTIgnoresCueIdentifiers(t *testing.T) {
	input := "WEBVTT\n" +
		"\n" +
		"intro\n" +
		"00:00:00.000 --> 00:00:02.000\n" +
		"identified cue\n"

	track, err := ParseVTT(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseVTT: %v", err)
	}
	if len(track.Cues) != 1 || track.Cues[0].Text != "identified cue" {
		t.Errorf("unexpected cues: %+v", track.Cues)
	}
}

func TestParseSRTEmptyInput(t *testing.T) {
	track, err := ParseSRT(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(track.Cues) != 0 {
		t.Errorf("cue count = %d, want 0", len(track.Cues))
	}
}
