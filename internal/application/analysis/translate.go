package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

// languageNames registers every language the translator accepts.  simple_en
// is the rule-based plain-English rendering; everything else needs a model.
var languageNames = map[string]string{
	"en":        "English",
	"hi":        "Hindi",
	"te":        "Telugu",
	"kn":        "Kannada",
	"ta":        "Tamil",
	"ml":        "Malayalam",
	"mr":        "Marathi",
	"ur":        "Urdu",
	"bn":        "Bengali",
	"pa":        "Punjabi",
	"gu":        "Gujarati",
	"simple_en": "Simple English",
}

// protectPatterns match legal tokens that must survive translation verbatim:
// section references, act names, case numbers, citations and dates.  Most
// specific patterns come first so partial matches never win.
var protectPatterns = compileAll([]string{
	`(?i)\bSection\s+\d+[A-Za-z]?(?:\s*\(\d+\))?(?:\s+of\s+[\w\s]+?(?:Act|Code))?\b`,
	`(?i)\bSec\.\s*\d+[A-Za-z]?\b`,
	`(?i)\bArticle\s+\d+[A-Za-z]?(?:\s*\(\d+\))?\b`,
	`(?i)\bArt\.\s*\d+[A-Za-z]?\b`,
	`(?i)\bClause\s+\d+[A-Za-z]?\b`,
	`(?i)\bOrder\s+\d+\s+Rule\s+\d+\b`,
	`(?i)\bRule\s+\d+[A-Za-z]?\b`,
	`(?i)\bSchedule\s+[IVXLC]+\b|\bSchedule\s+\d+\b`,

	`\b(?:IPC|CrPC|CPC|FIR|PMLA|NDPS|POCSO|RERA|GST|RTI|RTE|FEMA|IT\s+Act)\b`,

	`(?i)\b(?:NI\s+Act|Indian\s+Penal\s+Code|Code\s+of\s+Criminal\s+Procedure|` +
		`Code\s+of\s+Civil\s+Procedure|Evidence\s+Act|Indian\s+Evidence\s+Act|` +
		`Constitution(?:\s+of\s+India)?|Contract\s+Act|Indian\s+Contract\s+Act|` +
		`Transfer\s+of\s+Property\s+Act|Motor\s+Vehicles\s+Act|Limitation\s+Act|` +
		`Companies\s+Act|Insolvency\s+.{0,20}Code|Arbitration\s+.{0,20}Act|` +
		`Protection\s+of\s+Women|Domestic\s+Violence\s+Act|` +
		`Specific\s+Relief\s+Act|Registration\s+Act|Stamp\s+Act)\b`,

	`(?i)\b(?:O\.S\.|CS|CRL\.A\.|W\.P\.|C\.C\.|M\.C\.|B\.A\.|OS|WP|WPC|CWP|CC|MC|BA|` +
		`OP|O\.P\.|CMA|SA|RSA|RFA|EP|IA|CRP|TA|MA|FA|SLP|FMAT|MAT|CA|AS)\s*` +
		`(?:No\.?)?\s*\d+\s*(?:/|of)\s*\d{4}\b`,

	`\(\s*(?:19|20)\d{2}\s*\)\s+\d+\s+(?:SCC|SCR|AIR|MLJ|ALT|ALR|BLR|CLR)\s+\d+`,
	`\bAIR\s+(?:19|20)\d{2}\s+(?:SC|HC|AP|Bom|Cal|Del|Ker|Mad|Raj)\s+\d+\b`,

	`\b\d{1,2}[./\-]\d{1,2}[./\-](?:19|20)\d{2}\b`,
	`(?i)\b\d{1,2}\s+(?:January|February|March|April|May|June|July|August|` +
		`September|October|November|December)\s+(?:19|20)\d{2}\b`,
})

// simpleEnglishRules rewrite legal jargon into plain English for the
// simple_en target.
var simpleEnglishRules = buildJargon([][2]string{
	{`\bnot maintainable\b`, "may be rejected by the court"},
	{`\bmaintainable\b`, "acceptable by the court"},
	{`\blocus standi\b`, "legal right to file a case"},
	{`\bdisposed of?\b`, "case closed / finished"},
	{`\bex.?parte\b`, "without the other side present"},
	{`\binter.?alia\b`, "among other things"},
	{`\binjunction\b`, "court order to stop or allow something"},
	{`\bstay order\b`, "temporary pause on proceedings"},
	{`\bquash(?:ed)?\b`, "cancelled by the court"},
	{`\bwrit\b`, "formal legal request to court"},
	{`\bpetitioner\b`, "person who filed this case"},
	{`\brespondent\b`, "person defending against this case"},
	{`\bplaintiff\b`, "person who filed this case"},
	{`\bdefendant\b`, "person defending against this case"},
	{`\bapplicant\b`, "person who made this request"},
	{`\badjournment\b`, "postponed to a later date"},
	{`\bprima facie\b`, "based on first look / appears to be"},
	{`\bjurisdiction\b`, "authority of the court"},
	{`\blimitation\b`, "time limit to file a case"},
	{`\baffidavit\b`, "written sworn statement"},
	{`\bsubmission\b`, "argument presented in court"},
	{`\bcontention\b`, "argument made in court"},
	{`\bexhibit\b`, "document shown as evidence"},
	{`\bdeposition\b`, "evidence given under oath"},
	{`\bremand\b`, "sent back to custody"},
	{`\bcognizance\b`, "formally taking up the case"},
	{`\bfir\b`, "police complaint (FIR)"},
	{`\bbail\b`, "temporary release from custody"},
	{`\bheld\b`, "decided / ruled"},
	{`\bvide\b`, "as per / referring to"},
	{`\binter se\b`, "between themselves"},
	{`\bopined\b`, "said / stated"},
	{`\bprayed\b`, "requested from court"},
})

const translateChunkLen = 4500

// SupportedLanguage reports whether code is a registered translation target.
func SupportedLanguage(code string) bool {
	_, ok := languageNames[strings.ToLower(code)]
	return ok
}

// LanguageName returns the display name for a language code, or the code
// itself when unregistered.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

// protectedTerm pairs a placeholder token with the original legal term it
// replaced.  Restoration runs in insertion order.
type protectedTerm struct {
	token string
	term  string
}

// protectLegalTokens replaces legal tokens and caller-supplied proper nouns
// (party names, judge names) with __LAWn__ placeholders so the model cannot
// mangle them.  Each pattern runs against the current text, so placeholders
// are never double-processed.
func protectLegalTokens(text string, extraTerms []string) (string, []protectedTerm) {
	patterns := protectPatterns
	for _, term := range extraTerms {
		term = strings.TrimSpace(term)
		if len(term) > 2 {
			re, err := regexp.Compile(`\b` + regexp.QuoteMeta(term) + `\b`)
			if err != nil {
				continue
			}
			patterns = append(patterns, re)
		}
	}

	out := text
	var protected []protectedTerm
	seen := make(map[string]bool)
	idx := 0

	for _, re := range patterns {
		for _, term := range re.FindAllString(out, -1) {
			if seen[term] {
				continue
			}
			token := fmt.Sprintf("__LAW%d__", idx)
			out = strings.ReplaceAll(out, term, token)
			protected = append(protected, protectedTerm{token: token, term: term})
			seen[term] = true
			idx++
		}
	}
	return out, protected
}

// restoreLegalTokens puts every placeholder back.
func restoreLegalTokens(text string, protected []protectedTerm) string {
	for _, p := range protected {
		text = strings.ReplaceAll(text, p.token, p.term)
	}
	return text
}

// chunkForTranslation splits text into pieces of at most translateChunkLen
// characters at newline or sentence boundaries so each piece is
// independently translatable.
func chunkForTranslation(text string) []string {
	if len(text) <= translateChunkLen {
		return []string{text}
	}

	var chunks []string
	remaining := strings.TrimSpace(text)
	for remaining != "" {
		if len(remaining) <= translateChunkLen {
			chunks = append(chunks, remaining)
			break
		}
		cut := strings.LastIndex(remaining[:translateChunkLen], "\n")
		if cut < translateChunkLen/3 {
			cut = strings.LastIndex(remaining[:translateChunkLen], ". ")
		}
		if cut < translateChunkLen/4 {
			cut = translateChunkLen
		} else {
			cut++
		}
		if chunk := strings.TrimSpace(remaining[:cut]); chunk != "" {
			chunks = append(chunks, chunk)
		}
		remaining = strings.TrimSpace(remaining[cut:])
	}
	return chunks
}

// SimplifyEnglish rewrites legal jargon into plain English.
func SimplifyEnglish(text string) string {
	for _, rule := range simpleEnglishRules {
		text = rule.re.ReplaceAllString(text, rule.replacement)
	}
	return text
}
