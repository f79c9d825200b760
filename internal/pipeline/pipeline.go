package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"

	"subgen/internal/language"
	"subgen/internal/logging"
	"subgen/internal/output"
	"subgen/internal/stage"
	"subgen/internal/subtitle"
	"subgen/internal/transcribe"
)

// FailurePolicy selects how a multi-language job reacts when translating
// one language fails.
type FailurePolicy string

const (
	// PolicyAllOrNothing aborts the whole job on the first translation
	// failure. This is the default.
	PolicyAllOrNothing FailurePolicy = "all-or-nothing"

	// PolicyBestEffort skips a failed language with a warning and still
	// produces a bundle, unless every translation fails.
	PolicyBestEffort FailurePolicy = "best-effort"
)

// Job is one immutable end-to-end request: subtitle a single video into one
// or more languages. Constructed by the caller and never mutated.
type Job struct {
	VideoPath      string
	Model          transcribe.Model
	Languages      []string
	SourceLanguage string
	Credential     string
	Format         subtitle.Format
	Policy         FailurePolicy
}

// Degraded reports whether translation will run without a credential.
func (j Job) Degraded() bool {
	return strings.TrimSpace(j.Credential) == ""
}

// Validate rejects malformed jobs before any stage runs.
func (j Job) Validate() error {
	if len(j.Languages) == 0 {
		return stage.Errorf(stage.ErrInvalidRequest, "at least one output language is required")
	}
	for _, code := range j.Languages {
		if !language.Supported(code) {
			return stage.Errorf(stage.ErrInvalidRequest, "unsupported language code %q", code)
		}
	}
	if j.SourceLanguage != "" && !language.Supported(j.SourceLanguage) {
		return stage.Errorf(stage.ErrInvalidRequest, "unsupported source language %q", j.SourceLanguage)
	}
	if _, err := transcribe.ParseModel(string(j.Model)); err != nil {
		return stage.Errorf(stage.ErrInvalidRequest, "%v", err)
	}
	if j.Format != subtitle.FormatSRT && j.Format != subtitle.FormatVTT {
		return stage.Errorf(stage.ErrInvalidRequest, "unsupported subtitle format %q", j.Format)
	}
	switch j.Policy {
	case "", PolicyAllOrNothing, PolicyBestEffort:
	default:
		return stage.Errorf(stage.ErrInvalidRequest, "unknown failure policy %q", j.Policy)
	}
	if _, err := os.Stat(j.VideoPath); err != nil {
		return stage.Wrap(stage.ErrInvalidRequest, "validate", j.VideoPath, err)
	}
	return nil
}

// Translator is the narrow translation surface the orchestrator drives.
type Translator interface {
	Translate(ctx context.Context, src *subtitle.Track, target string) (*subtitle.Track, error)
}

// Writer persists rendered tracks and aggregates them into a bundle.
type Writer interface {
	Write(videoPath string, tracks []*subtitle.Track, format subtitle.Format) (*output.Bundle, error)
}

// TranslatorFactory builds the translation stage for one job; the job's
// credential decides full or degraded mode.
type TranslatorFactory func(job Job) Translator

// Runner sequences transcription, per-language translation, format
// conversion, and output layout into one end-to-end job.
type Runner struct {
	engine      transcribe.Engine
	translators TranslatorFactory
	writer      Writer
	logger      *logging.Logger
}

func NewRunner(
	engine transcribe.Engine,
	translators TranslatorFactory,
	writer Writer,
	logger *logging.Logger,
) *Runner {
	return &Runner{
		engine:      engine,
		translators: translators,
		writer:      writer,
		logger:      logger,
	}
}

// Execute drives one job through the pipeline and returns its bundle.
// Stages run strictly in order; any stage failure aborts the job under the
// default policy and no partial bundle is returned.
func (r *Runner) Execute(ctx context.Context, job Job) (*output.Bundle, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	r.logger.Infow("Starting subtitle job",
		"video", job.VideoPath,
		"languages", strings.Join(job.Languages, ","),
		"model", job.Model,
		"format", job.Format,
		"degraded", job.Degraded(),
	)

	src, err := r.engine.Transcribe(ctx, job.VideoPath, job.Model)
	if err != nil {
		return nil, err
	}

	translator := r.translators(job)
	tracks := make([]*subtitle.Track, 0, len(job.Languages))
	var skipped []string

	for _, lang := range job.Languages {
		if lang == src.Language {
			// identity mapping: no translation, no degraded advisory
			tracks = append(tracks, src.Clone(lang))
			continue
		}

		translated, err := translator.Translate(ctx, src, lang)
		if err != nil {
			if job.Policy == PolicyBestEffort {
				r.logger.Warnw("Skipping failed language",
					"language", lang,
					"error", err,
				)
				skipped = append(skipped, fmt.Sprintf("skipped %s: %v", lang, err))
				continue
			}
			return nil, err
		}
		tracks = append(tracks, translated)
	}

	if len(tracks) == 0 {
		return nil, stage.Errorf(stage.ErrTranslation,
			"every requested language failed: %s", strings.Join(skipped, "; "))
	}

	bundle, err := r.writer.Write(job.VideoPath, tracks, job.Format)
	if err != nil {
		return nil, err
	}
	bundle.Warnings = append(bundle.Warnings, skipped...)

	r.logger.Infow("Subtitle job complete",
		"dir", bundle.Dir,
		"files", len(bundle.Files),
	)
	return bundle, nil
}
