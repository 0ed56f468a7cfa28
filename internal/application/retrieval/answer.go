package retrieval

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/juristack/juristack/internal/domain/judgment"
)

// Canned fallbacks keep the chatbot honest: it never invents an answer.
const (
	msgNotInHeader    = "This information is not mentioned in the uploaded document."
	msgNotInJudgment  = "The judgment does not discuss this information."
	msgAnswerPreamble = "Based on the uploaded document:"
)

// metadataField binds query signals to one case-header field.
type metadataField struct {
	signals []string
	label   string
	value   func(c *judgment.Case) string
}

var metadataFields = []metadataField{
	{
		signals: []string{"judge", "bench", "coram"},
		label:   "Judges",
		value: func(c *judgment.Case) string {
			if len(c.Metadata.Judges) > 0 {
				return strings.Join(c.Metadata.Judges, ", ")
			}
			return c.Metadata.Bench
		},
	},
	{
		signals: []string{"court", "tribunal"},
		label:   "Court",
		value: func(c *judgment.Case) string {
			if c.Metadata.CourtName != "" && c.Metadata.CourtLevel != "" {
				return c.Metadata.CourtName + " (" + c.Metadata.CourtLevel + ")"
			}
			if c.Metadata.CourtName != "" {
				return c.Metadata.CourtName
			}
			return c.Metadata.CourtLevel
		},
	},
	{
		signals: []string{"petitioner", "complainant", "appellant", "plaintiff", "who filed"},
		label:   "Petitioner",
		value:   func(c *judgment.Case) string { return c.Metadata.Parties.Petitioner },
	},
	{
		signals: []string{"respondent", "accused", "defendant"},
		label:   "Respondent",
		value:   func(c *judgment.Case) string { return c.Metadata.Parties.Respondent },
	},
	{
		signals: []string{"parties", "versus", " vs "},
		label:   "Parties",
		value: func(c *judgment.Case) string {
			p, r := c.Metadata.Parties.Petitioner, c.Metadata.Parties.Respondent
			if p == "" || r == "" {
				return ""
			}
			return p + " vs " + r
		},
	},
	{
		signals: []string{"advocate", "lawyer", "counsel"},
		label:   "Advocates",
		value:   func(c *judgment.Case) string { return strings.Join(c.Metadata.Advocates, ", ") },
	},
	{
		signals: []string{"case number", "case no"},
		label:   "Case number",
		value: func(c *judgment.Case) string {
			if c.Metadata.CaseNumber != "" {
				return c.Metadata.CaseNumber
			}
			return c.CaseNumber
		},
	},
	{
		signals: []string{"case type", "type of case"},
		label:   "Case type",
		value:   func(c *judgment.Case) string { return c.Metadata.CaseType },
	},
	{
		signals: []string{"filing date", "filed on", "when was the case filed"},
		label:   "Filing date",
		value:   func(c *judgment.Case) string { return formatDate(c.Metadata.FilingDate) },
	},
	{
		signals: []string{"decision date", "date of decision", "decided on", "judgment date", "date of judgment"},
		label:   "Decision date",
		value:   func(c *judgment.Case) string { return formatDate(c.Metadata.DecisionDate) },
	},
	{
		signals: []string{"citation"},
		label:   "Citation",
		value:   func(c *judgment.Case) string { return c.Metadata.Citation },
	},
	{
		signals: []string{"disposition", "outcome", "result of the case", "status of the case"},
		label:   "Disposition",
		value:   func(c *judgment.Case) string { return c.Metadata.Disposition },
	},
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 January 2006")
}

// answerMetadata composes an answer from the case header.  Only fields the
// query asked about are reported; when every asked-about field is empty the
// canned not-found message comes back instead of blank lines.
func answerMetadata(c *judgment.Case, query string) string {
	q := strings.ToLower(query)
	var lines []string
	for _, f := range metadataFields {
		if !containsAny(q, f.signals) {
			continue
		}
		if v := strings.TrimSpace(f.value(c)); v != "" {
			lines = append(lines, f.label+": "+v)
		}
	}
	if len(lines) == 0 {
		return msgNotInHeader
	}
	return strings.Join(lines, "\n")
}

// queryStopwords are dropped before lexical matching so that question
// scaffolding ("what does the judgment say about …") never counts as overlap.
var queryStopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"what": {}, "who": {}, "whom": {}, "when": {}, "where": {}, "which": {},
	"how": {}, "why": {}, "of": {}, "in": {}, "on": {}, "at": {}, "to": {},
	"for": {}, "and": {}, "or": {}, "this": {}, "that": {}, "these": {},
	"those": {}, "tell": {}, "me": {}, "about": {}, "does": {}, "did": {},
	"do": {}, "under": {}, "case": {}, "judgment": {}, "judgement": {},
	"court": {}, "say": {}, "said": {}, "mention": {}, "mentioned": {},
	"explain": {}, "give": {}, "any": {}, "there": {}, "with": {}, "can": {},
	"you": {}, "please": {},
}

var wordRe = regexp.MustCompile(`[a-zA-Z]{3,}`)

// queryTokens extracts the content-bearing lowercase tokens of a query.
func queryTokens(query string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, w := range wordRe.FindAllString(strings.ToLower(query), -1) {
		if _, stop := queryStopwords[w]; stop {
			continue
		}
		tokens[w] = struct{}{}
	}
	return tokens
}

var answerSentenceRe = regexp.MustCompile(`([.!?])\s+`)

// tokenOverlap counts how many query tokens appear as whole words in text.
// Substring hits do not count, so "fir" never matches inside "confirmed".
func tokenOverlap(text string, tokens map[string]struct{}) int {
	overlap := 0
	seen := make(map[string]struct{})
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if _, ok := tokens[w]; ok {
			overlap++
		}
	}
	return overlap
}

// relevantSentences pulls the sentences of the retrieved chunks that share at
// least minOverlap content tokens with the query, best matches first.
func relevantSentences(chunks []string, tokens map[string]struct{}, minOverlap, limit int) []string {
	type scored struct {
		text    string
		overlap int
		ord     int
	}
	var hits []scored
	seen := make(map[string]struct{})
	ord := 0
	for _, chunk := range chunks {
		marked := answerSentenceRe.ReplaceAllString(chunk, "$1\x1f")
		for _, s := range strings.Split(marked, "\x1f") {
			s = strings.TrimSpace(s)
			if len(s) <= 15 {
				continue
			}
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			if overlap := tokenOverlap(s, tokens); overlap >= minOverlap {
				hits = append(hits, scored{text: s, overlap: overlap, ord: ord})
			}
			ord++
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].overlap != hits[j].overlap {
			return hits[i].overlap > hits[j].overlap
		}
		return hits[i].ord < hits[j].ord
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.text
	}
	return out
}

// composeAnswer renders retrieved sentences as a bulleted answer.
func composeAnswer(sentences []string) string {
	var b strings.Builder
	b.WriteString(msgAnswerPreamble)
	for _, s := range sentences {
		b.WriteString("\n- ")
		b.WriteString(s)
	}
	return b.String()
}

// legalConcept is one glossary entry for questions about the law in general
// rather than the uploaded document.
type legalConcept struct {
	keywords    []string
	explanation string
}

var legalConcepts = []legalConcept{
	{
		keywords:    []string{"anticipatory bail"},
		explanation: "Anticipatory bail (Section 438 CrPC) is a direction to release a person on bail before arrest, sought when someone anticipates being arrested on an accusation.",
	},
	{
		keywords:    []string{"bail"},
		explanation: "Bail is the temporary release of an accused person from custody while the case is pending, usually on conditions such as sureties or travel restrictions.",
	},
	{
		keywords:    []string{"fir", "first information report"},
		explanation: "An FIR (First Information Report) is the document the police prepare when they first receive information about a cognizable offence; it sets the criminal process in motion.",
	},
	{
		keywords:    []string{"cognizable offence", "cognizable"},
		explanation: "A cognizable offence is one in which the police may register a case and arrest without a warrant, such as murder or robbery.",
	},
	{
		keywords:    []string{"habeas corpus"},
		explanation: "Habeas corpus is a writ requiring a person holding someone in custody to produce them before a court and justify the detention.",
	},
	{
		keywords:    []string{"writ petition", "writ"},
		explanation: "A writ petition asks a High Court or the Supreme Court to enforce fundamental rights or correct an authority acting without jurisdiction.",
	},
	{
		keywords:    []string{"maintenance"},
		explanation: "Maintenance is a periodic payment a court orders one person to make for the support of a spouse, child or parent who cannot support themselves.",
	},
	{
		keywords:    []string{"injunction"},
		explanation: "An injunction is a court order requiring a party to do, or refrain from doing, a specific act until the dispute is decided.",
	},
	{
		keywords:    []string{"cheque bounce", "dishonour of cheque", "section 138"},
		explanation: "Cheque dishonour under Section 138 of the Negotiable Instruments Act makes issuing a cheque that is returned unpaid for insufficient funds a punishable offence after statutory notice.",
	},
	{
		keywords:    []string{"quashing", "quash"},
		explanation: "Quashing is a High Court setting aside an FIR or criminal proceeding, typically when the allegations do not disclose an offence or the process is an abuse of law.",
	},
	{
		keywords:    []string{"ipc", "indian penal code"},
		explanation: "The Indian Penal Code (IPC) is the principal statute defining criminal offences and their punishments in India.",
	},
	{
		keywords:    []string{"crpc", "code of criminal procedure"},
		explanation: "The Code of Criminal Procedure (CrPC) lays down how criminal cases are investigated, tried and appealed.",
	},
}

// conceptRes holds one word-boundary matcher per glossary keyword, in the
// same order as legalConcepts.
var conceptRes = func() [][]*regexp.Regexp {
	res := make([][]*regexp.Regexp, len(legalConcepts))
	for i, lc := range legalConcepts {
		res[i] = make([]*regexp.Regexp, len(lc.keywords))
		for j, kw := range lc.keywords {
			res[i][j] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		}
	}
	return res
}()

// answerLegalConcept returns glossary text when the query names a known legal
// concept, or "" when it does not.  Longer keyword matches win.
func answerLegalConcept(query string) string {
	q := strings.ToLower(query)
	best := ""
	bestLen := 0
	for i, lc := range legalConcepts {
		for j, kw := range lc.keywords {
			if conceptRes[i][j].MatchString(q) && len(kw) > bestLen {
				best = lc.explanation
				bestLen = len(kw)
			}
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf("%s\n\nNote: this is general legal information, not drawn from the uploaded document.", best)
}
