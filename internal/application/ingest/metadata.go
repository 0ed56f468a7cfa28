package ingest

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/juristack/juristack/internal/domain/judgment"
)

// Metadata extraction is strictly deterministic, zone based header analysis.
// Fields that cannot be confidently extracted stay empty; the caller stores
// them as NULL rather than guessing.
//
// Zones over the cleaned first-page header:
//   top zone     lines 1-10    court name
//   upper zone   lines 5-26    case number, case type, filing year
//   middle zone  lines 6-80    parties
//   lower zone   lines 1-80    judge names

// caseTypeMap resolves a normalized case-number prefix to its case type.
var caseTypeMap = map[string]string{
	"OS": "Civil Suit", "CS": "Civil Suit",
	"CRL": "Criminal Case", "CRLA": "Criminal Appeal", "CC": "Criminal Case",
	"WP": "Writ Petition", "WPC": "Writ Petition (Civil)", "CWP": "Writ Petition",
	"BA": "Bail Application", "MC": "Maintenance Case",
	"FC": "Family Court Case", "FCOP": "Family Court Original Petition",
	"EP": "Execution Petition", "AS": "Appeal Suit",
	"SA": "Second Appeal", "RSA": "Regular Second Appeal", "RFA": "Regular First Appeal",
	"CMA": "Civil Miscellaneous Appeal", "OP": "Original Petition", "CP": "Company Petition",
	"LA": "Land Acquisition Case", "RC": "Rent Control Case",
	"FMAT": "First Miscellaneous Appeal", "MAT": "Matrimonial Case",
	"SLP": "Special Leave Petition", "CA": "Civil Appeal",
	"IA": "Interlocutory Application", "TA": "Transfer Application", "MA": "Miscellaneous Appeal",
}

// courtLevelMap is ordered: the first matching keyword wins.
var courtLevelMap = []struct{ keyword, level string }{
	{"SUPREME COURT", "Supreme Court"},
	{"HIGH COURT", "High Court"},
	{"PRINCIPAL DISTRICT", "District Court"},
	{"DISTRICT JUDGE", "District Court"},
	{"DISTRICT COURT", "District Court"},
	{"SESSIONS COURT", "Sessions Court"},
	{"SESSIONS JUDGE", "Sessions Court"},
	{"CHIEF JUDICIAL MAGISTRATE", "Magistrate Court"},
	{"JUDICIAL FIRST CLASS", "Magistrate Court"},
	{"JUDICIAL MAGISTRATE", "Magistrate Court"},
	{"FAMILY COURT", "Family Court"},
	{"TRIBUNAL", "Tribunal"},
	{"CONSUMER", "Consumer Forum"},
	{"COURT OF", "District Court"},
}

var courtLineTriggers = []string{
	"COURT", "TRIBUNAL", "BENCH", "IN THE HIGH", "IN THE SUPREME",
	"BEFORE THE HON", "DISTRICT JUDGE", "HIGH COURT OF",
	"SESSIONS COURT", "FAMILY COURT", "CHIEF JUDICIAL MAGISTRATE",
	"JUDICIAL FIRST CLASS", "PRINCIPAL DISTRICT",
}

var judgeTriggers = []string{
	"HON'BLE", "JUSTICE", "CORAM:", "CORAM :", "PRESENT:", "PRESENT :",
	"DR.JUSTICE", "MR.JUSTICE", "MS.JUSTICE", "BEFORE THE HON",
}

var skipTitles = []string{
	"THE HON'BLE", "HON'BLE", "CORAM:", "PRESENT:", "JUSTICE", "JUDGE",
	"SHRI", "SRI", "SMT", "MR.", "MS.", "DR.", "HON.", "CORAM", "PRESENT", "BEFORE",
}

var advocateTriggers = []string{
	"ADVOCATE", "COUNSEL FOR", "LEARNED COUNSEL", "SENIOR COUNSEL",
	"ADV.", "AOR", "AMICUS", "SOLICITOR", "ATTORNEY",
}

// dispositionWords are checked in order so compound values win over their
// single-word substrings.
var dispositionWords = []struct{ match, canonical string }{
	{"PARTLY ALLOWED", "Partly Allowed"},
	{"PARTLY DISMISSED", "Partly Dismissed"},
	{"DISPOSED OF", "Disposed"},
	{"ALLOWED", "Allowed"},
	{"DISMISSED", "Dismissed"},
	{"DISPOSED", "Disposed"},
	{"QUASHED", "Quashed"},
}

// Case number patterns, most specific first.
var caseNoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bF\.?C\.?O\.?P\.?\s*(?:No\.?)?\s*(\d{1,6})\s*(?:/|of)\s*((19|20)\d{2})\b`),
	regexp.MustCompile(`(?i)\b(O\.?S\.?|C\.?S\.?)\s*(?:No\.?)?\s*(\d{1,6})\s*(?:/|of)\s*((19|20)\d{2})\b`),
	regexp.MustCompile(`(?i)\b(Crl\.?A\.?|CRLA)\s*(?:No\.?)?\s*(\d{1,6})\s*(?:/|of)\s*((19|20)\d{2})\b`),
	regexp.MustCompile(`(?i)\b(C?W\.?P\.?C?)\s*(?:No\.?)?\s*(\d{1,6})\s*(?:/|of)\s*((19|20)\d{2})\b`),
	regexp.MustCompile(`(?i)\b(CWP|WP|WPC)\s*-\s*(\d{1,6})\s*-\s*((19|20)\d{2})\b`),
	regexp.MustCompile(`(?i)\b(C\.?C\.?)\s*(?:No\.?)?\s*(\d{1,6})\s*(?:/|of)\s*((19|20)\d{2})\b`),
	regexp.MustCompile(`(?i)\b(M\.?C\.?)\s*(?:No\.?)?\s*(\d{1,6})\s*(?:/|of)\s*((19|20)\d{2})\b`),
	regexp.MustCompile(`(?i)\b(B\.?A\.?)\s*(?:No\.?)?\s*(\d{1,6})\s*(?:/|of)\s*((19|20)\d{2})\b`),
	regexp.MustCompile(`(?i)\b(FMAT|MAT|SLP|CMA|RFA|RSA|SA|AS|EP|OP|O\.P|CP|LA|RC|CA|IA|TA|MA)\s*(?:No\.?)?\s*(\d{1,6})\s*(?:of|/)\s*((19|20)\d{2})\b`),
	regexp.MustCompile(`\b([A-Z]{2,5})\s*\.?\s*(?:No\.?|Case)?\s*(\d{1,6})\s*(?:/|of)\s*((19|20)\d{2})\b`),
}

var (
	pageNumberRe = regexp.MustCompile(`(?i)^[-\s]*(Page\s+)?\d{1,3}[-\s]*$`)
	multiSpaceRe = regexp.MustCompile(`[ \t]{2,}`)
	yearRe       = regexp.MustCompile(`(19|20)\d{2}`)
	benchRe      = regexp.MustCompile(`(?i)\b(Division\s+Bench|Single\s+Bench|Full\s+Bench|DB|SB|FB)\b`)
	coramRe      = regexp.MustCompile(`(?i)\bPRESENT\b|\bCORAM\b`)

	inlineVersusRe = regexp.MustCompile(`(?i)([A-Za-z][^\n]{2,100})\s+(?:Versus|Vs\.?|V/[Ss])\s+([A-Za-z][^\n]{2,100})`)
	versusLineRe   = regexp.MustCompile(`(?i)^(VERSUS|VS\.?|V/S)$`)
	betweenRe      = regexp.MustCompile(`(?is)Between[:\s]+(.+?)\s+And[:\s]+(.+?)(?:\n\n|$)`)
	petitionerRe   = regexp.MustCompile(`(?i)^(PETITIONER|PLAINTIFF|COMPLAINANT|APPELLANT)\s*[:\-]\s*`)
	respondentRe   = regexp.MustCompile(`(?i)^(RESPONDENT|DEFENDANT|OPPOSITE PARTY|ACCUSED)\s*[:\-]\s*`)
	wordRe         = regexp.MustCompile(`[A-Za-z]{2,}`)
	advocateHeadRe = regexp.MustCompile(`(?i)(Advocate for |Counsel for |Sr\.? Counsel |Senior Counsel |Adv\.|AOR\s+|learned counsel)\s*`)

	citationRe1 = regexp.MustCompile(`(?i)\(((19|20)\d{2})\)\s+\d+\s+(SCC|AIR|SCR|MLJ|ALT|ALR|ALJR|HLR|BLR|CLR)\s+\d+`)
	citationRe2 = regexp.MustCompile(`(?i)\bAIR\s+(19|20)\d{2}\s+(SC|SCC|HC|AP|Bom|Cal|Del|Ker|Mad)\s+\d+\b`)

	dmyDateRe  = regexp.MustCompile(`\b(\d{1,2})[./\-](\d{1,2})[./\-]((19|20)\d{2})\b`)
	dMonYearRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*[,.\s]+((19|20)\d{2})\b`)
	monDYearRe = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2})[,.\s]+((19|20)\d{2})\b`)
	filingRe   = regexp.MustCompile(`(?i)FILED ON|FILING DATE|DATE OF FILING|PRESENTED ON|PRESENTATION DATE|DATE OF PRESENTATION`)
	regDateRe  = regexp.MustCompile(`(?i)REGISTRATION DATE|REGISTERED ON`)
	decisionRe = regexp.MustCompile(`(?i)DECIDED ON|JUDGMENT ON|JUDGMENT DATE|ORDER DATED|DATED:\s*|PRONOUNCED ON|DATE OF PRONOUNCEMENT|DATE OF DECISION|JUDGEMENT ON|DATE OF JUDGEMENT`)
	heardRe    = regexp.MustCompile(`(?i)HEARD ON|HEARING DATE|ARGUED ON`)
)

var monthMap = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "june": time.June, "july": time.July, "august": time.August,
	"september": time.September, "october": time.October, "november": time.November,
	"december": time.December,
}

var partyBadKeywords = []string{
	"judgment", "judgement", "dated", "order", "reserved", "heard",
	"present", "application", "petition filed", "in the", "high court",
	"district court", "sessions", "tribunal", "versus", "v/s",
	"through", "represented", "government of", "ministry of",
}

// ExtractMetadata runs the full deterministic header analysis over extracted
// judgment text.
func ExtractMetadata(fullText string) judgment.Metadata {
	lines := prepareHeader(fullText, 80)

	courtName, courtLevel, bench := extractCourt(lines)

	courtLineIdx := 0
	for i, line := range lines[:minInt(len(lines), 15)] {
		if containsAnyUpper(strings.ToUpper(line), courtLineTriggers) {
			courtLineIdx = i
			break
		}
	}

	caseNumber, caseType := extractCaseNumber(lines, courtLineIdx)
	petitioner, respondent := extractParties(lines)
	judges := extractJudges(lines)
	advocates := extractAdvocates(fullText)
	disposition := extractDisposition(fullText)
	citation := extractCitation(fullText)
	filing, registration, decision := extractDates(fullText)

	if petitioner != "" && strings.Contains(strings.ToLower(petitioner), "court") {
		petitioner = ""
	}
	if respondent != "" && strings.Contains(strings.ToLower(respondent), "court") {
		respondent = ""
	}

	return judgment.Metadata{
		CaseNumber:       caseNumber,
		CourtName:        courtName,
		CourtLevel:       courtLevel,
		Bench:            bench,
		CaseType:         caseType,
		Parties:          judgment.Parties{Petitioner: petitioner, Respondent: respondent},
		Judges:           judges,
		Advocates:        advocates,
		FilingDate:       filing,
		RegistrationDate: registration,
		DecisionDate:     decision,
		Disposition:      disposition,
		Citation:         citation,
	}
}

// DeriveTitle builds a display title, preferring "petitioner vs respondent".
func DeriveTitle(meta judgment.Metadata, fullText string) string {
	if meta.Parties.Petitioner != "" && meta.Parties.Respondent != "" {
		return fmt.Sprintf("%s vs %s", meta.Parties.Petitioner, meta.Parties.Respondent)
	}
	for _, line := range strings.Split(fullText, "\n")[:minInt(strings.Count(fullText, "\n")+1, 10)] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		up := strings.ToUpper(line)
		if strings.Contains(up, "IN THE") || strings.Contains(up, "BEFORE THE") ||
			strings.Contains(up, "HIGH COURT") || strings.Contains(up, "SUPREME COURT") {
			continue
		}
		if len(line) > 20 {
			if len(line) > 200 {
				return line[:200]
			}
			return line
		}
	}
	return meta.CaseNumber
}

// prepareHeader returns the first n lines, blank lines and page-number lines
// removed, internal whitespace collapsed.
func prepareHeader(text string, n int) []string {
	raw := strings.Split(text, "\n")
	if len(raw) > n {
		raw = raw[:n]
	}
	var cleaned []string
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" || pageNumberRe.MatchString(line) {
			continue
		}
		cleaned = append(cleaned, multiSpaceRe.ReplaceAllString(line, " "))
	}
	return cleaned
}

func containsAnyUpper(upper string, triggers []string) bool {
	for _, t := range triggers {
		if strings.Contains(upper, t) {
			return true
		}
	}
	return false
}

// extractCourt scans the top zone (first 10 cleaned lines).
func extractCourt(lines []string) (name, level, bench string) {
	zone := lines[:minInt(len(lines), 10)]
	for _, line := range zone {
		if containsAnyUpper(strings.ToUpper(line), courtLineTriggers) {
			name = line
			break
		}
	}
	if name == "" {
		return "", "", ""
	}

	upCourt := strings.ToUpper(name)
	for _, cl := range courtLevelMap {
		if strings.Contains(upCourt, cl.keyword) {
			level = cl.level
			break
		}
	}

	benchZone := strings.Join(lines[:minInt(len(lines), 20)], "\n")
	if m := benchRe.FindString(benchZone); m != "" {
		bench = strings.TrimSpace(m)
	}
	return name, level, bench
}

// extractCaseNumber scans the upper zone (cleaned lines 5-26), scoring
// candidates by proximity to the court line.
func extractCaseNumber(lines []string, courtLineIdx int) (caseNumber, caseType string) {
	if len(lines) < 5 {
		return "", ""
	}
	upperLines := lines[4:minInt(len(lines), 26)]
	upperZone := strings.Join(upperLines, "\n")

	type candidate struct {
		proximity int
		number    string
		caseType  string
	}
	var candidates []candidate

	for _, pat := range caseNoPatterns {
		for _, loc := range pat.FindAllStringIndex(upperZone, -1) {
			match := upperZone[loc[0]:loc[1]]
			lineOffset := strings.Count(upperZone[:loc[0]], "\n")
			srcLine := ""
			if lineOffset < len(upperLines) {
				srcLine = upperLines[lineOffset]
			}
			if len(srcLine) > 120 || coramRe.MatchString(srcLine) || isAdvocateContext(match, upperZone) {
				continue
			}

			yearStr := yearRe.FindString(match)
			if !validYear(yearStr) {
				continue
			}

			prefix := normalizePrefix(prefixOf(pat, match))
			ct := caseTypeMap[prefix]

			proximity := lineOffset - (courtLineIdx - 4)
			if proximity < 0 {
				proximity = -proximity
			}
			candidates = append(candidates, candidate{proximity, strings.TrimSpace(match), ct})
		}
	}
	if len(candidates) == 0 {
		return "", ""
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.proximity < best.proximity {
			best = c
		}
	}
	if !yearRe.MatchString(best.number) {
		return "", ""
	}
	return best.number, best.caseType
}

// prefixOf returns the leading letter prefix of a case number match.  The
// FCOP pattern has no prefix capture group, so fall back to the match text.
func prefixOf(pat *regexp.Regexp, match string) string {
	groups := pat.FindStringSubmatch(match)
	for _, g := range groups[1:] {
		if g == "" {
			continue
		}
		if yearRe.MatchString(g) {
			continue
		}
		if strings.IndexFunc(g, func(r rune) bool { return r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' }) >= 0 {
			return g
		}
	}
	return "FCOP"
}

func normalizePrefix(raw string) string {
	key := strings.ToUpper(strings.NewReplacer(" ", "", ".", "").Replace(raw))
	if _, ok := caseTypeMap[key]; ok {
		return key
	}
	// Longest known prefix wins so CRLA never lands in the CRL bucket.
	best := ""
	for k := range caseTypeMap {
		if strings.HasPrefix(key, k) && len(k) > len(best) {
			best = k
		}
	}
	if best != "" {
		return best
	}
	return key
}

func validYear(yearStr string) bool {
	if len(yearStr) != 4 {
		return false
	}
	var y int
	if _, err := fmt.Sscanf(yearStr, "%d", &y); err != nil {
		return false
	}
	return y >= 1950 && y <= time.Now().Year()
}

// isAdvocateContext reports whether the match sits shortly after an advocate
// or phone-number reference, which disqualifies it as a case number.
func isAdvocateContext(match, context string) bool {
	idx := strings.Index(context, match)
	if idx < 0 {
		return false
	}
	start := idx - 100
	if start < 0 {
		start = 0
	}
	snippet := strings.ToLower(context[start:idx])
	for _, w := range []string{"advocate", "counsel", "phone", "mob", "tel", "enrolment",
		"bar council", "registration no", "enrol"} {
		if strings.Contains(snippet, w) {
			return true
		}
	}
	return false
}

// cleanPartyName validates a candidate party name, returning "" on rejection.
func cleanPartyName(raw string) string {
	if raw == "" {
		return ""
	}
	name := strings.SplitN(strings.TrimSpace(raw), "\n", 2)[0]
	name = strings.Trim(name, " .:-,|")
	name = multiSpaceRe.ReplaceAllString(name, " ")

	if len(name) < 3 || len(name) > 80 {
		return ""
	}

	alpha := 0
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			alpha++
		}
	}
	if float64(alpha)/float64(len(name)) < 0.70 {
		return ""
	}

	lower := strings.ToLower(name)
	for _, kw := range partyBadKeywords {
		if strings.Contains(lower, kw) {
			return ""
		}
	}
	if strings.Contains(lower, "court") {
		return ""
	}
	if !wordRe.MatchString(name) {
		return ""
	}
	return name
}

// extractParties scans the middle zone (cleaned lines 6-80) trying the versus
// patterns in priority order.
func extractParties(lines []string) (petitioner, respondent string) {
	if len(lines) < 6 {
		return "", ""
	}
	zoneLines := lines[5:minInt(len(lines), 80)]
	zoneText := strings.Join(zoneLines, "\n")

	// Inline "A Versus B" on one line.
	if m := inlineVersusRe.FindStringSubmatch(zoneText); m != nil {
		p, r := cleanPartyName(m[1]), cleanPartyName(m[2])
		if p != "" && r != "" {
			return p, r
		}
	}

	// "Versus" on its own line: parties sit on the neighbouring lines.
	for i, line := range zoneLines {
		if versusLineRe.MatchString(strings.ToUpper(strings.TrimSpace(line))) {
			if i > 0 {
				petitioner = cleanPartyName(zoneLines[i-1])
			}
			if i+1 < len(zoneLines) {
				respondent = cleanPartyName(zoneLines[i+1])
			}
			if petitioner != "" && respondent != "" {
				return petitioner, respondent
			}
		}
	}

	// Between / And block.
	if m := betweenRe.FindStringSubmatch(zoneText); m != nil {
		p, r := cleanPartyName(m[1]), cleanPartyName(m[2])
		if p != "" && r != "" {
			return p, r
		}
	}

	// Keyword-labelled lines.
	for _, line := range zoneLines {
		trimmed := strings.TrimSpace(line)
		if petitionerRe.MatchString(trimmed) {
			petitioner = cleanPartyName(petitionerRe.ReplaceAllString(trimmed, ""))
		} else if respondentRe.MatchString(trimmed) {
			respondent = cleanPartyName(respondentRe.ReplaceAllString(trimmed, ""))
		}
	}
	return petitioner, respondent
}

// extractJudges collects names from JUSTICE / CORAM / HON'BLE lines.
func extractJudges(lines []string) []string {
	var judges []string
	zone := lines[:minInt(len(lines), 80)]

	for i, line := range zone {
		up := strings.ToUpper(strings.TrimSpace(line))
		if !containsAnyUpper(up, judgeTriggers) {
			continue
		}

		name := strings.TrimSpace(line)
		for _, title := range skipTitles {
			re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(title))
			name = re.ReplaceAllString(name, "")
		}
		name = strings.Trim(name, " :-\t,.")
		name = multiSpaceRe.ReplaceAllString(name, " ")

		if len(name) < 4 && i+1 < len(zone) {
			name = strings.TrimSpace(zone[i+1])
		}
		if len(name) >= 4 && len(name) <= 150 && !strings.Contains(strings.ToLower(name), "court") {
			if !containsString(judges, name) {
				judges = append(judges, name)
			}
		}
	}
	return judges
}

// extractAdvocates collects up to six advocate names from the first 100 lines.
func extractAdvocates(text string) []string {
	var advocates []string
	lines := strings.Split(text, "\n")
	for _, line := range lines[:minInt(len(lines), 100)] {
		up := strings.ToUpper(strings.TrimSpace(line))
		if !containsAnyUpper(up, advocateTriggers) {
			continue
		}
		name := strings.Trim(advocateHeadRe.ReplaceAllString(strings.TrimSpace(line), ""), " :,-")
		name = multiSpaceRe.ReplaceAllString(name, " ")
		if len(name) > 3 && len(name) <= 120 && !containsString(advocates, name) {
			advocates = append(advocates, name)
			if len(advocates) == 6 {
				break
			}
		}
	}
	return advocates
}

// extractDisposition checks the last 1500 characters for an outcome word.
func extractDisposition(text string) string {
	start := len(text) - 1500
	if start < 0 {
		start = 0
	}
	tail := strings.ToUpper(text[start:])
	for _, d := range dispositionWords {
		if strings.Contains(tail, d.match) {
			return d.canonical
		}
	}
	return ""
}

func extractCitation(text string) string {
	if m := citationRe1.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	if m := citationRe2.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	return ""
}

// parseDate parses the first recognisable date in s.  A zero time means no
// parseable date was found.
func parseDate(s string) time.Time {
	if m := dmyDateRe.FindStringSubmatch(s); m != nil {
		var d, mo, y int
		fmt.Sscanf(m[1], "%d", &d)
		fmt.Sscanf(m[2], "%d", &mo)
		fmt.Sscanf(m[3], "%d", &y)
		if mo >= 1 && mo <= 12 && d >= 1 && d <= 31 {
			return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
		}
	}
	if m := dMonYearRe.FindStringSubmatch(s); m != nil {
		var d, y int
		fmt.Sscanf(m[1], "%d", &d)
		fmt.Sscanf(m[3], "%d", &y)
		if mo, ok := monthMap[strings.ToLower(m[2])]; ok && d >= 1 && d <= 31 {
			return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
		}
	}
	if m := monDYearRe.FindStringSubmatch(s); m != nil {
		var d, y int
		fmt.Sscanf(m[2], "%d", &d)
		fmt.Sscanf(m[3], "%d", &y)
		if mo, ok := monthMap[strings.ToLower(m[1])]; ok && d >= 1 && d <= 31 {
			return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Time{}
}

// extractDates finds keyword-tagged dates in the first 3000 characters.
// "Heard on" serves only as a last-resort decision date.
func extractDates(text string) (filing, registration, decision time.Time) {
	header := text[:minInt(len(text), 3000)]
	var heardOn time.Time

	for _, line := range strings.Split(header, "\n") {
		switch {
		case filingRe.MatchString(line):
			if d := parseDate(line); !d.IsZero() && filing.IsZero() {
				filing = d
			}
		case regDateRe.MatchString(line):
			if d := parseDate(line); !d.IsZero() && registration.IsZero() {
				registration = d
			}
		case decisionRe.MatchString(line):
			if d := parseDate(line); !d.IsZero() && decision.IsZero() {
				decision = d
			}
		case heardRe.MatchString(line):
			if d := parseDate(line); !d.IsZero() && heardOn.IsZero() {
				heardOn = d
			}
		}
	}
	if decision.IsZero() {
		decision = heardOn
	}
	return filing, registration, decision
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
