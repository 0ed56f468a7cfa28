package retrieval

import "strings"

// Intent is the resolved route of a chat query.
type Intent string

const (
	IntentSummarize Intent = "summarize"
	IntentTranslate Intent = "translate"
	IntentMetadata  Intent = "metadata"
	IntentGeneral   Intent = "general"
)

// translateSignals mark an explicit translation request.
var translateSignals = []string{
	"translate",
	"translation",
	"convert to",
	"render in",
}

// summarizeSignals mark a request for the stored summary.
var summarizeSignals = []string{
	"summary",
	"summarize",
	"summarise",
	"summarized",
	"brief overview",
	"overview of the case",
	"gist",
	"key points",
	"main points",
	"in short",
	"tl;dr",
}

// metadataSignals mark questions answerable from the case header alone.
var metadataSignals = []string{
	"judge",
	"bench",
	"court",
	"petitioner",
	"respondent",
	"complainant",
	"appellant",
	"accused",
	"plaintiff",
	"defendant",
	"advocate",
	"lawyer",
	"counsel",
	"parties",
	"who filed",
	"who is the",
	"case number",
	"case no",
	"case type",
	"type of case",
	"filing date",
	"filed on",
	"when was the case filed",
	"date of decision",
	"decision date",
	"decided on",
	"judgment date",
	"date of judgment",
	"citation",
	"disposition",
	"outcome",
	"result of the case",
	"status of the case",
}

// languageRequests maps language names a user may type to the translation
// registry codes.  Multi-word names sort before their substrings so
// "simple english" wins over "english".
var languageRequests = []struct {
	name string
	code string
}{
	{"simple english", "simple_en"},
	{"plain english", "simple_en"},
	{"hindi", "hi"},
	{"telugu", "te"},
	{"kannada", "kn"},
	{"tamil", "ta"},
	{"malayalam", "ml"},
	{"marathi", "mr"},
	{"urdu", "ur"},
	{"bengali", "bn"},
	{"punjabi", "pa"},
	{"gujarati", "gu"},
	{"english", "en"},
}

// classifyIntent routes a query by pattern tables.  Translation requests win
// over everything else because they name an action, then summaries, then
// header questions; anything unmatched goes to document retrieval.
func classifyIntent(query string) Intent {
	q := strings.ToLower(query)
	if containsAny(q, translateSignals) {
		return IntentTranslate
	}
	// "summary in hindi" is a translation request even without the word
	// "translate"; a plain English summary request is not.
	if lang := requestedLanguage(q); lang != "" && lang != "en" && containsAny(q, summarizeSignals) {
		return IntentTranslate
	}
	if containsAny(q, summarizeSignals) {
		return IntentSummarize
	}
	if containsAny(q, metadataSignals) {
		return IntentMetadata
	}
	return IntentGeneral
}

// requestedLanguage returns the registry code of the first language named in
// the query, or "" when none is named.
func requestedLanguage(query string) string {
	q := strings.ToLower(query)
	for _, lr := range languageRequests {
		if strings.Contains(q, lr.name) {
			return lr.code
		}
	}
	return ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
