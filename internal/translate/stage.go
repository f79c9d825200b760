package translate

import (
	"context"
	"strings"

	"subgen/internal/logging"
	"subgen/internal/stage"
	"subgen/internal/subtitle"
)

// Stage adapts a cue track to the Translator contract. It guarantees the
// translated track has the same cue count and identical timing as the
// source; only the text changes.
type Stage struct {
	provider   Provider
	credential string
	model      string
	batchSize  int
	logger     *logging.Logger
	factory    func(ctx context.Context, provider Provider, credential string, opts Options) (Translator, error)
}

// NewStage builds a translation stage. An empty credential selects degraded
// mode for every track this stage produces.
func NewStage(provider Provider, credential, model string, logger *logging.Logger) *Stage {
	return &Stage{
		provider:   provider,
		credential: credential,
		model:      model,
		logger:     logger,
		factory:    Factory,
	}
}

// Degraded reports whether this stage translates without a credential.
func (s *Stage) Degraded() bool {
	return strings.TrimSpace(s.credential) == ""
}

// Translate produces a track in the target language. Cue boundaries never
// shift: the result carries the source timestamps verbatim.
func (s *Stage) Translate(ctx context.Context, src *subtitle.Track, target string) (*subtitle.Track, error) {
	opts := Options{
		SourceLanguage: src.Language,
		TargetLanguage: target,
		Model:          s.model,
		BatchSize:      s.batchSize,
	}

	translator, err := s.factory(ctx, s.provider, s.credential, opts)
	if err != nil {
		return nil, stage.Wrap(stage.ErrTranslation, "translate", string(s.provider), err)
	}

	items := make([]Item, len(src.Cues))
	for i, cue := range src.Cues {
		items[i] = Item{Index: i, Text: cue.Text}
	}

	s.logger.Infow("Translating track",
		"target", target,
		"cues", len(items),
		"provider", s.provider,
		"degraded", s.Degraded(),
	)

	results, err := translator.Translate(ctx, items)
	if err != nil {
		return nil, stage.Wrap(stage.ErrTranslation, "translate", target, err)
	}
	if len(results) != len(src.Cues) {
		return nil, stage.Errorf(stage.ErrTranslation,
			"translate %s: got %d results for %d cues", target, len(results), len(src.Cues))
	}

	byIndex := make(map[int]string, len(results))
	for _, r := range results {
		byIndex[r.Index] = r.Text
	}

	out := &subtitle.Track{
		Language: target,
		Degraded: s.Degraded(),
		Cues:     make([]subtitle.Cue, len(src.Cues)),
	}
	for i, cue := range src.Cues {
		text, ok := byIndex[i]
		if !ok {
			return nil, stage.Errorf(stage.ErrTranslation,
				"translate %s: missing result for cue %d", target, i+1)
		}
		out.Cues[i] = subtitle.Cue{
			Index: cue.Index,
			Start: cue.Start,
			End:   cue.End,
			Text:  text,
		}
	}

	if s.Degraded() {
		s.logger.Warnw("Translated without a credential; expect degraded quality for long videos",
			"target", target,
		)
	}
	return out, nil
}

// NewStageForTests builds a stage with an injectable translator factory.
func NewStageForTests(
	credential string,
	factory func(ctx context.Context, provider Provider, credential string, opts Options) (Translator, error),
) *Stage {
	return &Stage{
		provider:   ProviderDeepL,
		credential: credential,
		logger:     logging.NewNop(),
		factory:    factory,
	}
}
