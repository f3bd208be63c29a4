package chunking

import (
	"regexp"
	"strings"
)

// Precompiled patterns for the OCR variant.
var (
	pageMarkerPattern = regexp.MustCompile(`(?i)page\s*\d+\s*of\s*\d+`)
	ocrJunkPattern    = regexp.MustCompile(`[^A-Za-z0-9\s.,;:!?'\-()/]`)
	spaceRunPattern   = regexp.MustCompile(`\s+`)
)

var quoteReplacer = strings.NewReplacer(
	"’", "'",
	"‘", "'",
	"“", `"`,
	"”", `"`,
)

// CleanText is the light cleanup used on the csv path.
//
// It normalizes line breaks, drops form feeds, strips and drops empty lines,
// then joins everything into one logical line with single spaces so csv rows
// stay on one line. It never fails; the worst case is an empty string, which
// callers treat as "skip this document".
func CleanText(raw string) string {
	if raw == "" {
		return ""
	}

	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	// Form feeds show up as page breaks in OCR output.
	text = strings.ReplaceAll(text, "\x0c", " ")

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	text = strings.Join(kept, " ")

	for strings.Contains(text, "  ") {
		text = strings.ReplaceAll(text, "  ", " ")
	}

	return strings.TrimSpace(text)
}

// CleanOCRText is the heavier cleanup used on the upload path. On top of
// CleanText it removes "page N of M" markers, normalizes curly quotes and
// strips characters outside a small OCR-safe allow-list.
func CleanOCRText(raw string) string {
	text := CleanText(raw)
	if text == "" {
		return ""
	}

	text = pageMarkerPattern.ReplaceAllString(text, " ")

	// Quotes first: curly quotes would otherwise be eaten by the junk filter.
	text = quoteReplacer.Replace(text)

	text = ocrJunkPattern.ReplaceAllString(text, " ")
	text = spaceRunPattern.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
