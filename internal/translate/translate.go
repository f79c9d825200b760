package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"subgen/internal/language"
)

// Item is a single text to translate, keyed by cue position.
type Item struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Result is a translated text keyed back to its cue position.
type Result struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Translator converts a set of items to the target language configured at
// construction time. Implementations batch items per request; callers never
// see per-cue network calls.
type Translator interface {
	Translate(ctx context.Context, items []Item) ([]Result, error)
}

// Provider identifies a translation backend.
type Provider string

const (
	ProviderDeepL     Provider = "deepl"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// Providers returns the selectable provider names.
func Providers() []string {
	return []string{
		string(ProviderDeepL),
		string(ProviderOpenAI),
		string(ProviderAnthropic),
		string(ProviderGemini),
	}
}

// ParseProvider validates a provider name.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderDeepL:
		return ProviderDeepL, nil
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	case ProviderAnthropic:
		return ProviderAnthropic, nil
	case ProviderGemini:
		return ProviderGemini, nil
	}
	return "", fmt.Errorf("unknown translation provider %q: use one of %s",
		s, strings.Join(Providers(), ", "))
}

// DefaultBatchSize is the number of cues sent per API request.
const DefaultBatchSize = 50

// Options configures a translator for one target language.
type Options struct {
	SourceLanguage string
	TargetLanguage string
	Model          string
	BatchSize      int
}

func (o Options) batchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return DefaultBatchSize
}

// Factory creates a Translator. An empty credential always selects the
// degraded free DeepL path regardless of the requested provider: translation
// still succeeds, with lower expected quality for long inputs.
func Factory(ctx context.Context, provider Provider, credential string, opts Options) (Translator, error) {
	if opts.TargetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}

	if strings.TrimSpace(credential) == "" {
		return NewDeepLFreeTranslator(opts), nil
	}

	switch provider {
	case ProviderDeepL:
		return NewDeepLTranslator(credential, opts), nil
	case ProviderOpenAI:
		return NewOpenAITranslator(credential, opts)
	case ProviderAnthropic:
		return NewAnthropicTranslator(credential, opts)
	case ProviderGemini:
		return NewGeminiTranslator(ctx, credential, opts)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
}

// batchFunc performs one API request for a single batch.
type batchFunc func(ctx context.Context, items []Item) ([]Result, error)

// translateInBatches splits items into batches of at most batchSize, runs
// them sequentially, and returns the merged results in index order.
func translateInBatches(ctx context.Context, items []Item, batchSize int, fn batchFunc) ([]Result, error) {
	if len(items) == 0 {
		return []Result{}, nil
	}

	var all []Result
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}

		results, err := fn(ctx, items[i:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d failed: %w", i/batchSize, err)
		}
		all = append(all, results...)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].Index < all[j].Index
	})
	return all, nil
}

// buildPrompt creates the translation prompt for the LLM providers. The
// response contract is a JSON array mirroring the input indices.
func buildPrompt(opts Options, items []Item) string {
	var sb strings.Builder

	target := language.Name(opts.TargetLanguage)
	if opts.SourceLanguage != "" {
		fmt.Fprintf(&sb, "Translate the following %s subtitle texts to %s.\n\n",
			language.Name(opts.SourceLanguage), target)
	} else {
		fmt.Fprintf(&sb, "Translate the following subtitle texts to %s.\n\n", target)
	}

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString("1. Translate ONLY the text content, preserving the meaning.\n")
	sb.WriteString("2. Preserve line breaks in the same positions.\n")
	sb.WriteString("3. Return ONLY a JSON array with the same structure.\n")
	sb.WriteString("4. Each object must have 'index' and 'text' fields.\n")
	sb.WriteString("5. The 'index' values must match the input indices exactly.\n")
	sb.WriteString("6. Do not add any explanation or markdown formatting.\n\n")

	sb.WriteString("Input JSON:\n")
	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)
	sb.WriteString("\n\nOutput the translated JSON array only:")

	return sb.String()
}
