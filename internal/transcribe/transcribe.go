package transcribe

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"subgen/internal/subtitle"
)

// Model selects the speech-to-text model size.
type Model string

const (
	ModelTiny   Model = "tiny"
	ModelBase   Model = "base"
	ModelSmall  Model = "small"
	ModelMedium Model = "medium"
	ModelLarge  Model = "large"
)

var models = map[Model]string{
	ModelTiny:   "fastest, lowest accuracy",
	ModelBase:   "fast, low accuracy",
	ModelSmall:  "balanced",
	ModelMedium: "slower, high accuracy",
	ModelLarge:  "slowest, best accuracy",
}

// Models returns the valid model names in sorted order.
func Models() []string {
	names := make([]string, 0, len(models))
	for m := range models {
		names = append(names, string(m))
	}
	sort.Strings(names)
	return names
}

// Describe returns a short description of a model, or empty for unknown.
func Describe(m Model) string {
	return models[m]
}

// ParseModel validates a user-supplied model name.
func ParseModel(s string) (Model, error) {
	m := Model(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := models[m]; !ok {
		return "", fmt.Errorf(
			"unknown model %q: valid models are %s",
			s, strings.Join(Models(), ", "),
		)
	}
	return m, nil
}

// Engine produces a source-language cue track from a video file. The
// speech-to-text implementation behind it is opaque.
type Engine interface {
	Transcribe(ctx context.Context, videoPath string, model Model) (*subtitle.Track, error)
}
