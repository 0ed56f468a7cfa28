// Package analysis provides the text-understanding services of the pipeline:
// fact extraction, legal keyword extraction, section-aware summarization and
// multilingual translation.  Every engine in this package has a deterministic
// rule-based core; a generative model, when configured, only refines the
// output and its absence never aborts a stage.
package analysis

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/juristack/juristack/internal/domain/judgment"
)

// Lines matching these patterns are pure header metadata (court headings,
// cause-title lines, advocate appearances, dated lines) and never belong in a
// summary.
var headerNoiseRes = compileAll([]string{
	`(?i)^in the (court|high court|supreme court|district court|sessions|tribunal)`,
	`(?i)^before (the hon|hon'ble|magistrate|judge)`,
	`(?i)^(present|coram)\s*:`,
	`(?i)^case\s*(no|number|id)[.:# ]`,
	`(?i)^cc\s*no\b`,
	`(?i)^dated[.:# ]`,
	`(?i)^date[.:# ]`,
	`(?i)^(appearance|appearances)\s*:`,
	`(?i)^for (the )?(petitioner|respondent|accused|state|appellant|complainant|plaintiff|defendant)\s*:`,
	`(?i)^(advocate|adv|counsel|sr\.?\s*counsel|ld\.?\s*counsel)`,
	`(?i)^(mr|mrs|ms|dr|smt|shri)\.\s+[a-z].*?adv`,
	`(?i)^\s*page\s*\d+`,
	`^\d+\s*$`,
	`(?i)^(civil appellate|criminal appellate|original jurisdiction)`,
	`(?i)^(writ petition|criminal appeal|civil appeal|mat|fmat|slp)\s*(no|number)?\s*\d`,
	`(?i)^(heard on|judgment on|order dated|decided on)\s*:`,
	`(?i)^(judgment|order)\s+dated`,
	`(?i)^(j\s*u\s*d\s*g\s*m\s*e\s*n\s*t|o\s*r\s*d\s*e\s*r)\s*$`,
})

var factSignals = []string{
	"allegation", "alleged", "complaint", "complained",
	"prosecution case", "fir", "first information report",
	"accused", "accused person", "accused is alleged",
	"incident", "occurrence", "offence", "offense",
	"it is stated", "it is alleged", "the case of", "prosecution states",
	"the deceased", "victim", "injured", "administered", "poisoned",
	"arrested", "detention", "in custody", "taken into custody",
	"confessed", "confession", "admitted", "statement of",
	"witness", "evidence", "material on record",
}

var decisionSignals = []string{
	"petition allowed", "application allowed", "appeal allowed",
	"bail granted", "bail is granted", "granted bail",
	"released on bail", "accused released", "set at liberty",
	"petition dismissed", "application rejected", "appeal dismissed",
	"dismissed", "quashed", "set aside",
	"the court is satisfied", "no merit", "no case",
	"in the result", "in the circumstances", "accordingly",
	"for the foregoing reasons", "in view of",
	"therefore", "thus", "hence", "we hold", "it is held",
	"disposed of", "case is closed",
}

var argumentSignals = []string{
	"learned counsel", "sr. counsel", "senior counsel",
	"it is submitted", "it is contended", "argued that",
	"submitted that", "contended that", "urged that",
	"on behalf of", "for the accused", "for the petitioner",
	"defense argued", "defence argued", "the other side",
	"objected", "opposed", "no opposition",
}

// jargonRule rewrites one legal term into plain English.  The rules are
// ordered so that longer phrases win over their substrings.
type jargonRule struct {
	re          *regexp.Regexp
	replacement string
}

var jargonRules = buildJargon([][2]string{
	{`\bnot maintainable\b`, "may be rejected by the court"},
	{`\bmaintainable\b`, "acceptable by the court"},
	{`\blocus standi\b`, "legal right to file this case"},
	{`\bdisposed of\b`, "case has been closed"},
	{`\bdisposed\b`, "the case is finished"},
	{`\bex-parte\b`, "decided without the other side present"},
	{`\binter-alia\b`, "among other things"},
	{`\binjunction\b`, "court order to stop or allow something"},
	{`\bstay order\b`, "temporary pause on a decision"},
	{`\bquash(?:ed)?\b`, "cancel / set aside"},
	{`\bwrit\b`, "formal legal request to the court"},
	{`\bpetitioner\b`, "the person who filed this case"},
	{`\brespondent\b`, "the other party defending the case"},
	{`\bplaintiff\b`, "the person who filed this case"},
	{`\bdefendant\b`, "the person defending the case"},
	{`\bapplicant\b`, "the person who made this request"},
	{`\badjournment\b`, "postponing to a later date"},
	{`\bsubmission\b`, "argument"},
	{`\bcontention\b`, "argument made in court"},
	{`\bprima facie\b`, "based on first look"},
	{`\bjurisdiction\b`, "legal authority of the court"},
	{`\blimitation\b`, "time limit for filing"},
	{`\binstant case\b`, "this case"},
	{`\bheld\b`, "the court decided"},
	{`\baffidavit\b`, "sworn written statement"},
	{`\bencumbrance\b`, "claim or burden on property"},
	{`\bcounsel\b`, "lawyer"},
	{`\badvocate\b`, "lawyer"},
	{`\bgranted\b`, "approved"},
	{`\bdismissed\b`, "rejected"},
	{`\bappeal\b`, "challenge to a lower court decision"},
	{`\bdeposed\b`, "gave testimony"},
	{`\bexamined\b`, "questioned in court"},
	{`\bremanded\b`, "sent back"},
	{`\bin custody\b`, "under arrest"},
	{`\bdetained\b`, "held by police"},
	{`\bfurnish(?:ing)? (?:a )?surety\b`, "provide a guarantor"},
	{`\bfurnish(?:ing)? (?:a )?bail bond\b`, "submit a bail document"},
	{`\bpecuniary\b`, "financial"},
	{`\bherein\b`, "in this case"},
	{`\btherein\b`, "in that"},
	{`\bwherein\b`, "where"},
	{`\bviz\.?\b`, "that is"},
})

var summarySentenceRe = regexp.MustCompile(`([.!?])\s+`)

const tooShortThreshold = 80

// StructuredSummary is the output of the rule-based summarizer before it is
// persisted as a judgment.Summary artifact.
type StructuredSummary struct {
	Short     string
	Detailed  string
	Basic     string
	KeyPoints []judgment.KeyPoint
}

func compileAll(patterns []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(p)
	}
	return res
}

func buildJargon(pairs [][2]string) []jargonRule {
	rules := make([]jargonRule, len(pairs))
	for i, p := range pairs {
		rules[i] = jargonRule{re: regexp.MustCompile(`(?i)` + p[0]), replacement: p[1]}
	}
	return rules
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

func isNoiseLine(line string) bool {
	stripped := strings.TrimSpace(line)
	if len(stripped) < 3 {
		return true
	}
	// Short all-caps lines are almost always headers.
	if len(stripped) < 60 && isAllUpper(stripped) {
		return true
	}
	for _, re := range headerNoiseRes {
		if re.MatchString(stripped) {
			return true
		}
	}
	return false
}

// removeHeaderNoise drops the first-page header block and any metadata lines
// scattered through the body.  Blank lines survive so paragraph boundaries
// stay intact for the scoring passes.
func removeHeaderNoise(text string) string {
	var clean []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			clean = append(clean, "")
			continue
		}
		if !isNoiseLine(line) {
			clean = append(clean, line)
		}
	}
	return strings.Join(clean, "\n")
}

// signalCount counts how many signals appear in text as whole words, so
// "fir" never fires inside "first" or "confirmed".
func signalCount(text string, signals []string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, s := range signals {
		if containsWord(lower, s) {
			n++
		}
	}
	return n
}

func containsWord(haystack, needle string) bool {
	for start := 0; ; {
		i := strings.Index(haystack[start:], needle)
		if i < 0 {
			return false
		}
		i += start
		ok := i == 0
		if !ok {
			r := rune(haystack[i-1])
			ok = !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}
		if ok {
			end := i + len(needle)
			if end == len(haystack) {
				return true
			}
			r := rune(haystack[end])
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return true
			}
		}
		start = i + 1
	}
}

var blankBlockRe = regexp.MustCompile(`\n{2,}`)

// summaryParagraphs splits text into candidate paragraphs of at least 40
// characters.
func summaryParagraphs(text string) []string {
	var out []string
	for _, p := range blankBlockRe.Split(text, -1) {
		p = strings.TrimSpace(p)
		if len(p) >= 40 {
			out = append(out, p)
		}
	}
	return out
}

// topParagraphs returns at most limit paragraphs that mention at least one
// signal, ordered by descending signal count.  The sort is stable so equally
// scored paragraphs keep document order.
func topParagraphs(paras []string, signals []string, limit int) []string {
	type scored struct {
		text  string
		score int
	}
	ss := make([]scored, 0, len(paras))
	for _, p := range paras {
		ss = append(ss, scored{text: p, score: signalCount(p, signals)})
	}
	sort.SliceStable(ss, func(i, j int) bool { return ss[i].score > ss[j].score })

	var out []string
	for _, s := range ss {
		if s.score < 1 {
			break
		}
		out = append(out, s.text)
		if len(out) == limit {
			break
		}
	}
	return out
}

func findFactParagraphs(text string) []string {
	return topParagraphs(summaryParagraphs(text), factSignals, 4)
}

func findDecisionParagraphs(text string) []string {
	// The operative part usually sits at the very end, so the tail is
	// scanned a second time in case paragraph splitting merged it away.
	tail := text
	if len(tail) > 2000 {
		tail = tail[len(tail)-2000:]
	}
	paras := append(summaryParagraphs(text), summaryParagraphs(tail)...)
	return topParagraphs(paras, decisionSignals, 3)
}

func findArgumentParagraphs(text string) []string {
	return topParagraphs(summaryParagraphs(text), argumentSignals, 2)
}

func simplifyJargon(text string) string {
	for _, rule := range jargonRules {
		text = rule.re.ReplaceAllString(text, rule.replacement)
	}
	return text
}

func splitSentences(text string) []string {
	marked := summarySentenceRe.ReplaceAllString(strings.TrimSpace(text), "$1\x1f")
	parts := strings.Split(marked, "\x1f")
	var out []string
	for _, s := range parts {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// bestSentence picks the most informative sentence of a paragraph: most
// fact/decision signal mentions, with a slight bias to longer sentences.
func bestSentence(paragraph string) string {
	var good []string
	for _, s := range splitSentences(paragraph) {
		if len(s) > 30 {
			good = append(good, s)
		}
	}
	if len(good) == 0 {
		p := strings.TrimSpace(paragraph)
		if len(p) > 300 {
			p = p[:300]
		}
		return p
	}

	score := func(s string) float64 {
		return float64(signalCount(s, factSignals)+signalCount(s, decisionSignals)) + float64(len(s))/500
	}
	best := good[0]
	bestScore := score(best)
	for _, s := range good[1:] {
		if sc := score(s); sc > bestScore {
			best, bestScore = s, sc
		}
	}
	return best
}

// buildQuickSummary composes a four-to-five sentence plain-English account:
// what the case is about, the main allegation, what the other side argued,
// and what the court decided.  It never copies raw header lines.
func buildQuickSummary(factParas, decisionParas, argParas []string, fullText string) string {
	var parts []string

	if len(factParas) > 0 {
		parts = append(parts, simplifyJargon(bestSentence(factParas[0])))
	}
	if len(factParas) > 1 {
		s := simplifyJargon(bestSentence(factParas[1]))
		if s != "" && s != parts[0] {
			parts = append(parts, s)
		}
	}
	if len(argParas) > 0 {
		parts = append(parts, simplifyJargon(bestSentence(argParas[0])))
	}
	for _, dp := range decisionParas {
		if len(parts) >= 5 {
			break
		}
		s := simplifyJargon(bestSentence(dp))
		if !containsString(parts, s) {
			parts = append(parts, s)
		}
	}

	if len(parts) == 0 {
		if paras := summaryParagraphs(removeHeaderNoise(fullText)); len(paras) > 0 {
			parts = append(parts, simplifyJargon(bestSentence(paras[0])))
		}
	}
	if len(parts) == 0 {
		return "Summary could not be generated from the document content."
	}
	if len(parts) > 5 {
		parts = parts[:5]
	}
	return strings.Join(parts, " ")
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// buildKeyPoints produces the five labelled cards of the key-points view.
// Each slot has a canned explanation used when no paragraph matched.
func buildKeyPoints(factParas, decisionParas, argParas []string) []judgment.KeyPoint {
	pick := func(paras []string, fallback string) string {
		if len(paras) > 0 {
			return simplifyJargon(bestSentence(paras[0]))
		}
		return fallback
	}

	issueParas := factParas
	if len(factParas) > 1 {
		issueParas = factParas[1:]
	}

	return []judgment.KeyPoint{
		{Label: "Who filed the case",
			Explanation: pick(factParas, "The case was filed based on a police complaint or court petition.")},
		{Label: "Main issue",
			Explanation: pick(issueParas, "The main issue involves allegations that need to be examined by the court.")},
		{Label: "What the other side says",
			Explanation: pick(argParas, "The defense has argued that the accusations are not supported by sufficient evidence.")},
		{Label: "What the court examined",
			Explanation: pick(factParas, "The court reviewed the available evidence and circumstances of the case.")},
		{Label: "Current status",
			Explanation: pick(decisionParas, "The case is currently pending before the court.")},
	}
}

// Summarize runs the section-aware pipeline: strip header noise, score fact,
// argument and decision paragraphs, then compose the short, detailed, basic
// and key-point views.  Documents under 80 characters get a fixed sentinel.
func Summarize(text string) StructuredSummary {
	text = strings.TrimSpace(text)
	if len(text) < tooShortThreshold {
		return StructuredSummary{
			Short:    "The document does not have enough text to summarize.",
			Detailed: "Not enough content available.",
			Basic:    "The document does not have enough text to summarize.",
			KeyPoints: []judgment.KeyPoint{{
				Label:       "Note",
				Explanation: "The uploaded document is too short or could not be read.",
			}},
		}
	}

	clean := removeHeaderNoise(text)
	factParas := findFactParagraphs(clean)
	decisionParas := findDecisionParagraphs(clean)
	argParas := findArgumentParagraphs(clean)

	join := func(paras []string, n int) string {
		var ss []string
		for _, p := range paras {
			if len(ss) == n {
				break
			}
			ss = append(ss, simplifyJargon(bestSentence(p)))
		}
		if len(ss) == 0 {
			return "Not identified in the document."
		}
		return strings.Join(ss, " ")
	}

	return StructuredSummary{
		Short: buildQuickSummary(factParas, decisionParas, argParas, clean),
		Detailed: "Facts: " + join(factParas, 2) + "\n" +
			"Arguments: " + join(argParas, 2) + "\n" +
			"Outcome: " + join(decisionParas, 2),
		Basic:     buildBasicSummary(clean, factParas, decisionParas, argParas),
		KeyPoints: buildKeyPoints(factParas, decisionParas, argParas),
	}
}

// buildBasicSummary composes at most six jargon-free sentences suitable as
// translation source text.
func buildBasicSummary(clean string, factParas, decisionParas, argParas []string) string {
	var sentences []string
	for _, p := range firstN(factParas, 2) {
		sentences = append(sentences, simplifyJargon(bestSentence(p)))
	}
	for _, p := range firstN(argParas, 1) {
		sentences = append(sentences, simplifyJargon(bestSentence(p)))
	}
	for _, p := range firstN(decisionParas, 2) {
		sentences = append(sentences, simplifyJargon(bestSentence(p)))
	}

	if len(sentences) == 0 {
		for _, p := range firstN(summaryParagraphs(clean), 3) {
			sentences = append(sentences, simplifyJargon(bestSentence(p)))
		}
	}
	if len(sentences) == 0 {
		return "Summary could not be generated."
	}
	if len(sentences) > 6 {
		sentences = sentences[:6]
	}
	return strings.Join(sentences, " ")
}

func firstN(ss []string, n int) []string {
	if len(ss) > n {
		return ss[:n]
	}
	return ss
}
