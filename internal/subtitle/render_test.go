package subtitle

import (
	"errors"
	"strings"
	"testing"
	"time"

	"subgen/internal/stage"
)

func sampleTrack() *Track {
	return &Track{
		Language: "en",
		Cues: []Cue{
			{Index: 1, Start: 0, End: 2500 * time.Millisecond, Text: "Hello there."},
			{
				Index: 2,
				Start: 3 * time.Second,
				End:   5*time.Second + 40*time.Millisecond,
				Text:  "Two lines\nof text.",
			},
			{
				Index: 3,
				Start: time.Hour + 2*time.Minute + 3*time.Second,
				End:   time.Hour + 2*time.Minute + 6*time.Second,
				Text:  "Past the hour mark.",
			},
		},
	}
}

func TestRenderSRT(t *testing.T) {
	out, err := Render(sampleTrack(), FormatSRT)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := "1\n" +
		"00:00:00,000 --> 00:00:02,500\n" +
		"Hello there.\n\n" +
		"2\n" +
		"00:00:03,000 --> 00:00:05,040\n" +
		"Two lines\nof text.\n\n" +
		"3\n" +
		"01:02:03,000 --> 01:02:06,000\n" +
		"Past the hour mark.\n\n"

	if out != want {
		t.Errorf("SRT output mismatch:\ngot:\n%s\nwant:\n%s", out, want)
	}
}

func TestRenderVTT(t *testing.T) {
	out, err := Render(sampleTrack(), FormatVTT)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if !strings.HasPrefix(out, "WEBVTT\n\n") {
		t.Errorf("VTT output missing WEBVTT header:\n%s", out)
	}
	if !strings.Contains(out, "00:00:00.000 --> 00:00:02.500\n") {
		t.Errorf("VTT output missing dot-delimited timestamps:\n%s", out)
	}
	if strings.Contains(out, ",500") {
		t.Errorf("VTT output contains SRT comma delimiter:\n%s", out)
	}
}

func TestRenderRejectsInvalidTrack(t *testing.T) {
	tests := []struct {
		name  string
		track *Track
	}{
		{
			"end before start",
			&Track{Cues: []Cue{{Start: 2 * time.Second, End: time.Second, Text: "x"}}},
		},
		{
			"overlapping cues",
			&Track{Cues: []Cue{
				{Start: 0, End: 3 * time.Second, Text: "a"},
				{Start: 2 * time.Second, End: 4 * time.Second, Text: "b"},
			}},
		},
		{
			"negative start",
			&Track{Cues: []Cue{{Start: -time.Second, End: time.Second, Text: "x"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Render(tt.track, FormatSRT)
			if !errors.Is(err, stage.ErrFormat) {
				t.Errorf("Render error = %v, want ErrFormat", err)
			}
		})
	}
}

// Rendering to SRT, parsing, rendering the parse result to VTT, and parsing
// again must preserve every start, end, and text exactly.
func TestFormatRoundTrip(t *testing.T) {
	original := sampleTrack()

	srtText, err := Render(original, FormatSRT)
	if err != nil {
		t.Fatalf("Render SRT: %v", err)
	}
	fromSRT, err := ParseSRT(strings.NewReader(srtText))
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}

	vttText, err := Render(fromSRT, FormatVTT)
	if err != nil {
		t.Fatalf("Render VTT: %v", err)
	}
	fromVTT, err := ParseVTT(strings.NewReader(vttText))
	if err != nil {
		t.Fatalf("ParseVTT: %v", err)
	}

	if len(fromVTT.Cues) != len(original.Cues) {
		t.Fatalf("cue count = %d, want %d", len(fromVTT.Cues), len(original.Cues))
	}
	for i, cue := range fromVTT.Cues {
		want := original.Cues[i]
		if cue.Start != want.Start || cue.End != want.End || cue.Text != want.Text {
			t.Errorf("cue %d = {%s %s %q}, want {%s %s %q}",
				i+1, cue.Start, cue.End, cue.Text, want.Start, want.End, want.Text)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"srt", FormatSRT, false},
		{"SRT", FormatSRT, false},
		{"vtt", FormatVTT, false},
		{"WEBVTT", FormatVTT, false},
		{"ass", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q) should fail", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	src := sampleTrack()
	clone := src.Clone("es")

	if clone.Language != "es" {
		t.Errorf("clone language = %q, want es", clone.Language)
	}
	clone.Cues[0].Text = "mutated"
	if src.Cues[0].Text == "mutated" {
		t.Error("mutating clone changed the source track")
	}
}
