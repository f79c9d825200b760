package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"subgen/internal/config"
	"subgen/internal/jobs"
	"subgen/internal/language"
	"subgen/internal/output"
	"subgen/internal/pipeline"
	"subgen/internal/stage"
	"subgen/internal/subtitle"
	"subgen/internal/transcribe"
	"subgen/internal/translate"
)

// runConfig is the merged view of persisted settings and command flags
// for one invocation. Flags win over settings, settings over defaults.
type runConfig struct {
	languages        []string
	model            transcribe.Model
	format           subtitle.Format
	provider         translate.Provider
	translationModel string
	sourceLanguage   string
	credential       string
	policy           pipeline.FailurePolicy
	outputBaseDir    string
	store            *config.Store
}

func addJobFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("languages", "l", "",
		"Output languages as a comma-separated list ("+strings.Join(language.Codes(), ",")+")")
	cmd.Flags().StringP("model", "m", "", "Transcription model (tiny, base, small, medium, large)")
	cmd.Flags().StringP("format", "f", "", "Subtitle format (srt, vtt)")
	cmd.Flags().String("provider", "", "Translation provider (deepl, openai, anthropic, gemini)")
	cmd.Flags().String("translation-model", "", "Model name for AI translation providers")
	cmd.Flags().StringP("api-key", "k", "", "Translation API key; 'free' selects the keyless degraded mode")
	cmd.Flags().String("source-language", "en", "Spoken language of the video")
	cmd.Flags().Bool("best-effort", false, "Skip languages whose translation fails instead of aborting")
	cmd.Flags().StringP("output-dir", "o", "", "Base directory for subtitle folders (default: next to each video)")
}

// resolveRunConfig merges flags over the persisted settings and resolves
// the credential. Invalid values are rejected here, before preflight.
func resolveRunConfig(cmd *cobra.Command) (*runConfig, error) {
	store, err := config.NewStore()
	if err != nil {
		return nil, err
	}
	settings, err := store.Load()
	if err != nil {
		return nil, err
	}

	cfg := &runConfig{
		languages:      settings.Languages,
		sourceLanguage: "en",
		outputBaseDir:  settings.OutputBaseDir,
		store:          store,
	}

	if cmd.Flags().Changed("languages") {
		raw, _ := cmd.Flags().GetString("languages")
		cfg.languages, err = language.Parse(raw)
		if err != nil {
			return nil, err
		}
	}
	if len(cfg.languages) == 0 {
		return nil, stage.Errorf(stage.ErrInvalidRequest, "at least one output language is required (--languages)")
	}

	modelName := settings.Model
	if cmd.Flags().Changed("model") {
		modelName, _ = cmd.Flags().GetString("model")
	}
	if cfg.model, err = transcribe.ParseModel(modelName); err != nil {
		return nil, stage.Errorf(stage.ErrInvalidRequest, "%v", err)
	}

	formatName := settings.Format
	if cmd.Flags().Changed("format") {
		formatName, _ = cmd.Flags().GetString("format")
	}
	if cfg.format, err = subtitle.ParseFormat(formatName); err != nil {
		return nil, stage.Errorf(stage.ErrInvalidRequest, "%v", err)
	}

	providerName := settings.Provider
	if cmd.Flags().Changed("provider") {
		providerName, _ = cmd.Flags().GetString("provider")
	}
	if cfg.provider, err = translate.ParseProvider(providerName); err != nil {
		return nil, stage.Errorf(stage.ErrInvalidRequest, "%v", err)
	}

	cfg.translationModel, _ = cmd.Flags().GetString("translation-model")
	cfg.sourceLanguage, _ = cmd.Flags().GetString("source-language")
	if cmd.Flags().Changed("output-dir") {
		cfg.outputBaseDir, _ = cmd.Flags().GetString("output-dir")
	}
	if bestEffort, _ := cmd.Flags().GetBool("best-effort"); bestEffort {
		cfg.policy = pipeline.PolicyBestEffort
	}

	if cfg.credential, err = resolveCredential(cmd, store); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveCredential prefers the flag over the cached key file. A flag
// value is cached for later runs; the literal "free" means run without
// a credential and is never cached.
func resolveCredential(cmd *cobra.Command, store *config.Store) (string, error) {
	if cmd.Flags().Changed("api-key") {
		key, _ := cmd.Flags().GetString("api-key")
		if key == "free" {
			return "", nil
		}
		if err := store.SaveCredential(key); err != nil {
			return "", err
		}
		return key, nil
	}
	return store.LoadCredential()
}

func (cfg *runConfig) job(videoPath string) pipeline.Job {
	return pipeline.Job{
		VideoPath:      videoPath,
		Model:          cfg.model,
		Languages:      cfg.languages,
		SourceLanguage: cfg.sourceLanguage,
		Credential:     cfg.credential,
		Format:         cfg.format,
		Policy:         cfg.policy,
	}
}

// newCoordinator wires the full pipeline behind a job coordinator.
func (cfg *runConfig) newCoordinator() *jobs.Coordinator {
	runner := pipeline.NewRunner(
		transcribe.NewCLIEngine(cfg.sourceLanguage, logger),
		func(job pipeline.Job) pipeline.Translator {
			return translate.NewStage(cfg.provider, job.Credential, cfg.translationModel, logger)
		},
		output.NewLayout(cfg.outputBaseDir, logger),
		logger,
	)
	return jobs.NewCoordinator(runner, logger)
}

// persist writes the run's effective choices back as the new defaults.
func (cfg *runConfig) persist() error {
	return cfg.store.Save(config.Settings{
		Languages:     cfg.languages,
		Model:         string(cfg.model),
		Format:        string(cfg.format),
		Provider:      string(cfg.provider),
		OutputBaseDir: cfg.outputBaseDir,
	})
}
