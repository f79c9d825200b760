package subtitle

import (
	"fmt"
	"strings"
	"time"

	"subgen/internal/stage"
)

// Render converts a track to subtitle file text. Pure function, no I/O.
func Render(track *Track, format Format) (string, error) {
	if err := track.Validate(); err != nil {
		return "", err
	}

	switch format {
	case FormatSRT:
		return renderSRT(track), nil
	case FormatVTT:
		return renderVTT(track), nil
	default:
		return "", stage.Errorf(stage.ErrFormat, "unsupported format %q", format)
	}
}

func renderSRT(track *Track) string {
	var sb strings.Builder
	for i, cue := range track.Cues {
		// index (1-based)
		sb.WriteString(fmt.Sprintf("%d\n", i+1))

		// timestamps: 00:00:00,000 --> 00:00:00,000
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			formatSRTTime(cue.Start),
			formatSRTTime(cue.End)))

		sb.WriteString(cue.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func renderVTT(track *Track) string {
	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")

	for _, cue := range track.Cues {
		// timestamps: 00:00:00.000 --> 00:00:00.000
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			formatVTTTime(cue.Start),
			formatVTTTime(cue.End)))

		sb.WriteString(cue.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func formatSRTTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

func formatVTTTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
}
