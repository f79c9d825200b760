package translate

import (
	"testing"
)

func TestParseModelResponsePlainArray(t *testing.T) {
	text := `[{"index": 0, "text": "hola"}, {"index": 1, "text": "adiós"}]`
	results, err := parseModelResponse(text, 2)
	if err != nil {
		t.Fatalf("parseModelResponse: %v", err)
	}
	if results[0].Text != "hola" || results[1].Text != "adiós" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestParseModelResponseMarkdownFence(t *testing.T) {
	text := "Here you go:\n```json\n[{\"index\": 0, \"text\": \"bonjour\"}]\n```"
	results, err := parseModelResponse(text, 1)
	if err != nil {
		t.Fatalf("parseModelResponse: %v", err)
	}
	if results[0].Text != "bonjour" {
		t.Errorf("text = %q, want bonjour", results[0].Text)
	}
}

func TestParseModelResponseWrapperObject(t *testing.T) {
	text := `{"translations": [{"index": 0, "text": "ciao"}]}`
	results, err := parseModelResponse(text, 1)
	if err != nil {
		t.Fatalf("parseModelResponse: %v", err)
	}
	if results[0].Text != "ciao" {
		t.Errorf("text = %q, want ciao", results[0].Text)
	}
}

func TestParseModelResponseInvalidEscape(t *testing.T) {
	// \N is a subtitle line break, not a valid JSON escape
	text := `[{"index": 0, "text": "line one\Nline two"}]`
	results, err := parseModelResponse(text, 1)
	if err != nil {
		t.Fatalf("parseModelResponse: %v", err)
	}
	if results[0].Text != `line one\Nline two` {
		t.Errorf("text = %q, want literal backslash-N preserved", results[0].Text)
	}
}

func TestParseModelResponseCountMismatch(t *testing.T) {
	text := `[{"index": 0, "text": "uno"}]`
	if _, err := parseModelResponse(text, 2); err == nil {
		t.Error("expected count mismatch error")
	}
}

func TestParseModelResponseGarbage(t *testing.T) {
	for _, text := range []string{"", "not json at all", "[]", `{"note": "nothing here"}`} {
		if _, err := parseModelResponse(text, 1); err == nil {
			t.Errorf("parseModelResponse(%q) should fail", text)
		}
	}
}

func TestFixInvalidEscapes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain`, `plain`},
		{`a\nb`, `a\nb`},
		{`a\Nb`, `a\\Nb`},
		{`quote \" kept`, `quote \" kept`},
		{`trailing\`, `trailing\`},
	}
	for _, tt := range tests {
		if got := fixInvalidEscapes(tt.in); got != tt.want {
			t.Errorf("fixInvalidEscapes(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
