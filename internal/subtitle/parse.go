package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	srtTimestampRegex = regexp.MustCompile(
		`(\d{2}):(\d{2}):(\d{2}),(\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2}),(\d{3})`,
	)
	vttTimestampRegex = regexp.MustCompile(
		`(\d{2}):(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})\.(\d{3})`,
	)
	vttShortTimestampRegex = regexp.MustCompile(
		`(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2}):(\d{2})\.(\d{3})`,
	)
)

// ParseSRT reads SubRip text into a track. Round-trips losslessly with
// Render for start/end/text.
func ParseSRT(r io.Reader) (*Track, error) {
	var cues []Cue
	scanner := bufio.NewScanner(r)

	var current *Cue
	var textLines []string
	lineNum := 0

	flush := func() {
		if current != nil && len(textLines) > 0 {
			current.Text = strings.Join(textLines, "\n")
			cues = append(cues, *current)
		}
		current = nil
		textLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if current == nil {
			index, err := strconv.Atoi(strings.TrimSpace(line))
			if err == nil {
				current = &Cue{Index: index}
				continue
			}
		}

		if current != nil && current.Start == 0 && current.End == 0 {
			matches := srtTimestampRegex.FindStringSubmatch(line)
			if len(matches) == 9 {
				start, end, err := parseTimestampPair(matches, lineNum)
				if err != nil {
					return nil, err
				}
				current.Start = start
				current.End = end
				continue
			}
		}

		if current != nil {
			textLines = append(textLines, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT data: %w", err)
	}

	return &Track{Cues: cues}, nil
}

// ParseVTT reads WebVTT text into a track. NOTE and STYLE blocks are
// skipped; both full and short timestamp forms are accepted.
func ParseVTT(r io.Reader) (*Track, error) {
	var cues []Cue
	scanner := bufio.NewScanner(r)

	var current *Cue
	var textLines []string
	lineNum := 0
	cueIndex := 0

	flush := func() {
		if current != nil && len(textLines) > 0 {
			current.Text = strings.Join(textLines, "\n")
			cues = append(cues, *current)
		}
		current = nil
		textLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		trimmed := strings.TrimSpace(line)
		if lineNum == 1 && strings.HasPrefix(trimmed, "WEBVTT") {
			continue
		}

		if strings.HasPrefix(trimmed, "NOTE") || strings.HasPrefix(trimmed, "STYLE") {
			for scanner.Scan() {
				lineNum++
				if strings.TrimSpace(scanner.Text()) == "" {
					break
				}
			}
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}

		var matches []string
		if m := vttTimestampRegex.FindStringSubmatch(line); len(m) == 9 {
			matches = m
		} else if m := vttShortTimestampRegex.FindStringSubmatch(line); len(m) == 7 {
			// pad the short MM:SS.mmm form up to the full shape
			matches = []string{m[0], "00", m[1], m[2], m[3], "00", m[4], m[5], m[6]}
		}

		if matches != nil {
			flush()
			start, end, err := parseTimestampPair(matches, lineNum)
			if err != nil {
				return nil, err
			}
			cueIndex++
			current = &Cue{Index: cueIndex, Start: start, End: end}
			continue
		}

		if current != nil {
			textLines = append(textLines, line)
		}
		// anything before the first timestamp (cue identifiers, headers)
		// is ignored
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading VTT data: %w", err)
	}

	return &Track{Cues: cues}, nil
}

// parseTimestampPair converts the 8 captured groups of a timestamp line
// into start and end durations.
func parseTimestampPair(matches []string, lineNum int) (time.Duration, time.Duration, error) {
	start, err := parseTimestamp(matches[1], matches[2], matches[3], matches[4])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start timestamp at line %d: %w", lineNum, err)
	}
	end, err := parseTimestamp(matches[5], matches[6], matches[7], matches[8])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end timestamp at line %d: %w", lineNum, err)
	}
	return start, end, nil
}

func parseTimestamp(hours, minutes, seconds, millis string) (time.Duration, error) {
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, err
	}
	ms, err := strconv.Atoi(millis)
	if err != nil {
		return 0, err
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}
