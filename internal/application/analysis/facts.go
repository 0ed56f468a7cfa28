package analysis

import (
	"regexp"
	"sort"
	"strings"
)

const maxFacts = 5

// ScoredSentence is one candidate fact with its signal score.
type ScoredSentence struct {
	Text  string
	Score float64
}

// ExtractFacts returns the most fact-laden sentences of the judgment body,
// at most maxFacts, best first.  When no sentence carries a fact signal the
// opening sentences are returned with a zero score so the artifact is never
// empty for a non-empty document.
func ExtractFacts(text string) []ScoredSentence {
	sentences := splitSentences(removeHeaderNoise(text))

	var candidates []ScoredSentence
	for _, s := range sentences {
		if len(s) < 30 {
			continue
		}
		candidates = append(candidates, ScoredSentence{
			Text:  s,
			Score: float64(signalCount(s, factSignals)),
		})
	}

	scored := make([]ScoredSentence, len(candidates))
	copy(scored, candidates)
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	var out []ScoredSentence
	for _, c := range scored {
		if c.Score < 1 {
			break
		}
		out = append(out, c)
		if len(out) == maxFacts {
			break
		}
	}
	if len(out) == 0 {
		out = firstNScored(candidates, maxFacts)
	}
	return out
}

func firstNScored(ss []ScoredSentence, n int) []ScoredSentence {
	if len(ss) > n {
		return ss[:n]
	}
	return ss
}

// Statute references feeding the keyword set.
var (
	actAbbrevRe  = regexp.MustCompile(`\b(?:IPC|CrPC|CPC|PMLA|NDPS|POCSO|RERA|FEMA)\b`)
	actNameRe    = regexp.MustCompile(`(?i)\b(?:Indian\s+Penal\s+Code|Code\s+of\s+Criminal\s+Procedure|Code\s+of\s+Civil\s+Procedure|(?:Indian\s+)?Evidence\s+Act|(?:Indian\s+)?Contract\s+Act|Negotiable\s+Instruments\s+Act|NI\s+Act|Transfer\s+of\s+Property\s+Act|Motor\s+Vehicles\s+Act|Limitation\s+Act|Companies\s+Act|Specific\s+Relief\s+Act|Domestic\s+Violence\s+Act|Registration\s+Act|Stamp\s+Act|Constitution\s+of\s+India)\b`)
	sectionRefRe = regexp.MustCompile(`(?i)\bsection\s+\d+[A-Za-z]?\b`)
	articleRefRe = regexp.MustCompile(`(?i)\barticle\s+\d+[A-Za-z]?\b`)
)

// issueTerms are subject-matter markers that make two judgments comparable
// even when they cite different statutes.
var issueTerms = []string{
	"bail", "anticipatory bail", "murder", "culpable homicide", "cheating",
	"dowry", "divorce", "maintenance", "custody", "injunction", "specific performance",
	"partition", "possession", "eviction", "tenancy", "compensation",
	"negligence", "defamation", "cheque bounce", "dishonour of cheque",
	"land acquisition", "service matter", "quashing", "habeas corpus",
}

// ExtractKeywords collects the legal-keyword set of a case: statute
// abbreviations, act names, section/article references and issue terms.
// Keywords are lowercased and deduplicated in first-seen order.
func ExtractKeywords(text string) []string {
	var raw []string
	raw = append(raw, actAbbrevRe.FindAllString(text, -1)...)
	raw = append(raw, actNameRe.FindAllString(text, -1)...)
	raw = append(raw, sectionRefRe.FindAllString(text, -1)...)
	raw = append(raw, articleRefRe.FindAllString(text, -1)...)

	lower := strings.ToLower(text)
	for _, term := range issueTerms {
		if strings.Contains(lower, term) {
			raw = append(raw, term)
		}
	}

	seen := make(map[string]bool)
	var out []string
	for _, kw := range raw {
		kw = strings.ToLower(strings.Join(strings.Fields(kw), " "))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}
