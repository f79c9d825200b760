package stage

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for each failure class. Callers branch with errors.Is
// rather than inspecting message text.
var (
	ErrPreflight      = errors.New("preflight error")
	ErrInvalidRequest = errors.New("invalid request")
	ErrTranscription  = errors.New("transcription error")
	ErrTranslation    = errors.New("translation error")
	ErrFormat         = errors.New("format error")
	ErrPersistence    = errors.New("persistence error")
)

// Wrap tags err with the given marker and stage/operation context. The marker
// should be one of the exported sentinels above.
func Wrap(marker error, stage, operation string, err error) error {
	detail := buildDetail(stage, operation, "")
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Errorf tags a formatted message with the given marker.
func Errorf(marker error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", marker, fmt.Sprintf(format, args...))
}

// Fatal reports whether err belongs to a class that should be surfaced
// before any job is submitted.
func Fatal(err error) bool {
	return errors.Is(err, ErrPreflight) || errors.Is(err, ErrInvalidRequest)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "stage failure"
	}
	return strings.Join(parts, ": ")
}
