package ingest

import (
	"regexp"
	"strings"
	"unicode"
)

// Scanned PDFs with a bold or shadow layer render every glyph twice, giving
// text like "MMss.. AAnnjjaallii".  When more than 15% of consecutive pairs
// are doubled the whole document is treated as a doubled-OCR artifact and
// every run of repeats collapses to one character.
const doubledPairThreshold = 0.15

var (
	spacesRe   = regexp.MustCompile(`[ \t]+`)
	blankRunRe = regexp.MustCompile(`\n{3,}`)
	paraStopRe = regexp.MustCompile(`\n\s*\n`)
	sentenceRe = regexp.MustCompile(`([.!?])\s+`)
)

// doubledPairRatio returns the fraction of non-whitespace characters that
// belong to an exact two-character repeat.
func doubledPairRatio(text string) float64 {
	runes := []rune(text)
	total, doubled := 0, 0
	for i := 0; i < len(runes); i++ {
		if unicode.IsSpace(runes[i]) {
			continue
		}
		total++
		if i+1 < len(runes) && runes[i+1] == runes[i] {
			doubled++
			total++
			i++ // count each pair once
		}
	}
	if total == 0 {
		return 0
	}
	return float64(doubled*2) / float64(total)
}

// collapseRuns rewrites every run of the same rune longer than keep down to a
// single occurrence.  Whitespace runs are left alone so paragraph breaks
// survive OCR repair and stay for the whitespace pass.
func collapseRuns(text string, keep int) string {
	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(runes); {
		j := i + 1
		for j < len(runes) && runes[j] == runes[i] {
			j++
		}
		n := j - i
		if n > keep && !unicode.IsSpace(runes[i]) {
			n = 1
		}
		for ; n > 0; n-- {
			b.WriteRune(runes[i])
		}
		i = j
	}
	return b.String()
}

// dedupeOCRChars repairs the repeated-character artifact described above.
func dedupeOCRChars(text string) string {
	if doubledPairRatio(text) > doubledPairThreshold {
		// Whole-document collapse handles both 2x and 4x repeats.
		return collapseRuns(text, 1)
	}
	// Low global ratio: collapse only obvious 3+ runs, which is safe for
	// normal prose ("aggrieved" keeps its double g).
	return collapseRuns(text, 2)
}

// NormalizeText cleans raw extracted text: NUL removal, OCR repair, and
// whitespace canonicalisation.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\x00", " ")
	text = dedupeOCRChars(text)
	text = spacesRe.ReplaceAllString(text, " ")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// SplitParagraphs breaks normalized text on blank lines; documents without
// blank-line structure fall back to sentence boundaries.  Paragraph numbers
// start at 1.
func SplitParagraphs(text string) []string {
	normalized := NormalizeText(text)
	if normalized == "" {
		return nil
	}

	var parts []string
	for _, p := range paraStopRe.Split(normalized, -1) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 1 {
		return parts
	}

	parts = parts[:0]
	marked := sentenceRe.ReplaceAllString(normalized, "$1\x1f")
	for _, s := range strings.Split(marked, "\x1f") {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}

// DetectLanguage examines the first 4000 runes for Indic or Arabic script
// ranges and falls back to English.
func DetectLanguage(text string) string {
	sample := []rune(text)
	if len(sample) > 4000 {
		sample = sample[:4000]
	}
	for _, r := range sample {
		switch {
		case r >= 0x0C00 && r <= 0x0C7F:
			return "te"
		case r >= 0x0900 && r <= 0x097F:
			return "hi"
		case r >= 0x0600 && r <= 0x06FF:
			return "ur"
		}
	}
	return "en"
}

// Section bucket keywords.  The default bucket is facts so pre-heading
// introductory text lands there.
var (
	factsKW = []string{"facts", "background", "brief facts", "brief background",
		"case background", "parties", "factual", "complaint", "fir", "petition", "plaint"}
	argumentsKW = []string{"argument", "submissions", "contention", "submitted", "urged",
		"counsel", "pleaded", "respondent submits", "petitioner submits"}
	analysisKW = []string{"analysis", "reasoning", "discussion", "consideration",
		"findings", "court observes", "we note", "it is noted"}
	decisionKW = []string{"decision", "order", "judgment", "conclusion", "held that",
		"disposed", "decree", "dismissed", "allowed", "granted", "result", "accordingly"}
)

// SectionBlocks classifies document lines into facts, arguments, analysis and
// decision buckets based on heading keywords.
func SectionBlocks(text string) map[string]string {
	buckets := map[string][]string{
		"facts": nil, "arguments": nil, "analysis": nil, "decision": nil,
	}
	current := "facts"

	for _, line := range strings.Split(NormalizeText(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case containsAny(lower, factsKW):
			current = "facts"
		case containsAny(lower, argumentsKW):
			current = "arguments"
		case containsAny(lower, analysisKW):
			current = "analysis"
		case containsAny(lower, decisionKW):
			current = "decision"
		default:
			buckets[current] = append(buckets[current], line)
		}
	}

	out := make(map[string]string, len(buckets))
	for k, v := range buckets {
		out[k] = strings.TrimSpace(strings.Join(v, " "))
	}
	return out
}

func containsAny(s string, kws []string) bool {
	for _, kw := range kws {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
