package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	deeplAPIEndpoint     = "https://api.deepl.com/v2/translate"
	deeplAPIFreeEndpoint = "https://api-free.deepl.com/v2/translate"
	deeplWebEndpoint     = "https://www2.deepl.com/jsonrpc"
)

// DeepLTranslator translates via the DeepL HTTP API. Without a credential it
// falls back to the unauthenticated legacy web endpoint: the degraded mode.
// Degraded output is usable but measurably worse on long cue sequences.
type DeepLTranslator struct {
	apiKey   string
	endpoint string
	degraded bool
	client   *http.Client
	options  Options
}

// NewDeepLTranslator builds a credentialed translator. Free-plan keys
// (":fx" suffix) are routed to the free API host.
func NewDeepLTranslator(apiKey string, opts Options) *DeepLTranslator {
	endpoint := deeplAPIEndpoint
	if strings.HasSuffix(apiKey, ":fx") {
		endpoint = deeplAPIFreeEndpoint
	}
	return &DeepLTranslator{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 120 * time.Second},
		options:  opts,
	}
}

// NewDeepLFreeTranslator builds the degraded, credential-less translator.
func NewDeepLFreeTranslator(opts Options) *DeepLTranslator {
	return &DeepLTranslator{
		endpoint: deeplWebEndpoint,
		degraded: true,
		client:   &http.Client{Timeout: 120 * time.Second},
		options:  opts,
	}
}

// Degraded reports whether this translator runs without a credential.
func (t *DeepLTranslator) Degraded() bool {
	return t.degraded
}

func (t *DeepLTranslator) Translate(ctx context.Context, items []Item) ([]Result, error) {
	return translateInBatches(ctx, items, t.options.batchSize(), t.translateBatch)
}

func (t *DeepLTranslator) translateBatch(ctx context.Context, items []Item) ([]Result, error) {
	if t.degraded {
		return t.webBatch(ctx, items)
	}
	return t.apiBatch(ctx, items)
}

type deeplAPIRequest struct {
	Text       []string `json:"text"`
	SourceLang string   `json:"source_lang,omitempty"`
	TargetLang string   `json:"target_lang"`
}

type deeplAPIResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
	Message string `json:"message,omitempty"`
}

// apiBatch sends one authenticated v2/translate request for the batch.
// DeepL preserves input order in its response.
func (t *DeepLTranslator) apiBatch(ctx context.Context, items []Item) ([]Result, error) {
	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Text
	}

	payload := deeplAPIRequest{
		Text:       texts,
		SourceLang: strings.ToUpper(t.options.SourceLanguage),
		TargetLang: strings.ToUpper(t.options.TargetLanguage),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "DeepL-Auth-Key "+t.apiKey)

	var out deeplAPIResponse
	if err := t.do(req, &out); err != nil {
		return nil, err
	}

	if len(out.Translations) != len(items) {
		return nil, fmt.Errorf(
			"deepl returned %d translations for %d texts",
			len(out.Translations), len(items),
		)
	}

	results := make([]Result, len(items))
	for i, tr := range out.Translations {
		results[i] = Result{Index: items[i].Index, Text: tr.Text}
	}
	return results, nil
}

type deeplWebJob struct {
	Kind     string `json:"kind"`
	Sentence string `json:"raw_en_sentence"`
}

type deeplWebRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  struct {
		Jobs []deeplWebJob `json:"jobs"`
		Lang struct {
			SourceLangUserSelected string `json:"source_lang_user_selected"`
			TargetLang             string `json:"target_lang"`
		} `json:"lang"`
	} `json:"params"`
}

type deeplWebResponse struct {
	Result struct {
		Translations []struct {
			Beams []struct {
				PostprocessedSentence string `json:"postprocessed_sentence"`
			} `json:"beams"`
		} `json:"translations"`
	} `json:"result"`
}

// webBatch sends one unauthenticated jsonrpc request for the batch, the
// path the degraded mode rides on.
func (t *DeepLTranslator) webBatch(ctx context.Context, items []Item) ([]Result, error) {
	payload := deeplWebRequest{
		JSONRPC: "2.0",
		Method:  "LMT_handle_jobs",
	}
	for _, item := range items {
		payload.Params.Jobs = append(payload.Params.Jobs, deeplWebJob{
			Kind:     "default",
			Sentence: item.Text,
		})
	}
	payload.Params.Lang.SourceLangUserSelected = strings.ToUpper(t.options.SourceLanguage)
	payload.Params.Lang.TargetLang = strings.ToUpper(t.options.TargetLanguage)

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out deeplWebResponse
	if err := t.do(req, &out); err != nil {
		return nil, err
	}

	if len(out.Result.Translations) != len(items) {
		return nil, fmt.Errorf(
			"deepl web returned %d translations for %d texts",
			len(out.Result.Translations), len(items),
		)
	}

	results := make([]Result, len(items))
	for i, tr := range out.Result.Translations {
		if len(tr.Beams) == 0 {
			return nil, fmt.Errorf("deepl web returned no beams for item %d", items[i].Index)
		}
		results[i] = Result{Index: items[i].Index, Text: tr.Beams[0].PostprocessedSentence}
	}
	return results, nil
}

func (t *DeepLTranslator) do(req *http.Request, out any) error {
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("deepl request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read deepl response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deepl returned HTTP %d: %s", resp.StatusCode, truncate(string(data), 200))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode deepl response: %w", err)
	}
	return nil
}
