package language

import (
	"sort"
	"strings"

	"subgen/internal/stage"
)

// supported maps each language code to its display name. Translation targets
// must come from this set.
var supported = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ru": "Russian",
	"zh": "Chinese",
}

// Codes returns the supported language codes in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(supported))
	for code := range supported {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Name returns the display name for a supported code, or the code itself.
func Name(code string) string {
	if name, ok := supported[code]; ok {
		return name
	}
	return code
}

// Supported reports whether code belongs to the fixed language set.
func Supported(code string) bool {
	_, ok := supported[code]
	return ok
}

// Parse splits a comma-separated language list and validates every code.
// An empty list or any unknown code rejects the whole request.
func Parse(list string) ([]string, error) {
	var codes []string
	seen := make(map[string]bool)

	for _, raw := range strings.Split(list, ",") {
		code := strings.ToLower(strings.TrimSpace(raw))
		if code == "" {
			continue
		}
		if !Supported(code) {
			return nil, stage.Errorf(
				stage.ErrInvalidRequest,
				"unsupported language code %q (supported: %s)",
				code,
				strings.Join(Codes(), ", "),
			)
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}

	if len(codes) == 0 {
		return nil, stage.Errorf(
			stage.ErrInvalidRequest,
			"at least one output language is required",
		)
	}
	return codes, nil
}
