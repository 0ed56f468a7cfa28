// Package judgment implements the legal-judgment bounded context: the Case
// aggregate root, its derived artifacts (facts, summaries, translations,
// chunks, similarity edges, predictions), and invariant enforcement.  All
// business rules that concern judgments live here; infrastructure concerns
// (persistence, object storage, search) are handled by separate repository
// and adapter layers.
package judgment

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/juristack/juristack/pkg/errors"
)

// reCaseNumber accepts the registry formats seen across Indian courts:
//
//	CRL.A. 1234/2019, W.P.(C) 456/2021, CS(OS) 89/2020, SLP (Crl) 2021/7 …
//
// The check is deliberately loose; the case number is an external identifier
// and we only reject values that cannot possibly be one.
var reCaseNumber = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ./()\-]{2,127}$`)

// Parties holds the two sides of the cause title.
type Parties struct {
	Petitioner string `json:"petitioner,omitempty"`
	Respondent string `json:"respondent,omitempty"`
}

// Metadata carries the header fields recovered during normalization.
// Every field is optional; absence means the zone scan found nothing.
// CaseNumber here is the registry number read off the document header,
// which may differ from the number the case was uploaded under.
type Metadata struct {
	CaseNumber string   `json:"case_number,omitempty"`
	CourtName  string   `json:"court_name,omitempty"`
	CourtLevel string   `json:"court_level,omitempty"` // "Supreme Court", "High Court", "District Court", …
	Bench      string   `json:"bench,omitempty"`
	CaseType   string   `json:"case_type,omitempty"`
	Parties    Parties  `json:"parties"`
	Judges     []string `json:"judges,omitempty"`
	Advocates  []string `json:"advocates,omitempty"`

	// Zero time values mean the date was not found in the header.
	FilingDate       time.Time `json:"filing_date,omitempty"`
	RegistrationDate time.Time `json:"registration_date,omitempty"`
	DecisionDate     time.Time `json:"decision_date,omitempty"`

	Disposition string `json:"disposition,omitempty"`
	Citation    string `json:"citation,omitempty"`
}

// Case is the aggregate root of the judgment context.  A Case is created at
// upload with whatever the collaborator supplied; the NORMALIZE stage refines
// Metadata from the extracted text.
type Case struct {
	ID         uuid.UUID `json:"id"`
	CaseNumber string    `json:"case_number"`
	Title      string    `json:"title"`
	Metadata   Metadata  `json:"metadata"`

	// Language is the detected dominant language of the source text
	// (ISO 639-1 code, e.g. "en", "hi", "te").
	Language string `json:"language"`

	// SourceKey and TextKey are object-store keys for the raw upload bytes
	// and the extracted plain text respectively.
	SourceKey string `json:"source_key"`
	TextKey   string `json:"text_key"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCase constructs a Case with a fresh ID and validated case number.
func NewCase(caseNumber, title string) (*Case, error) {
	caseNumber = strings.TrimSpace(caseNumber)
	if caseNumber == "" {
		return nil, errors.New(errors.ErrCodeCaseNumberInvalid, "case number must not be empty")
	}
	if !reCaseNumber.MatchString(caseNumber) {
		return nil, errors.New(errors.ErrCodeCaseNumberInvalid, "case number contains invalid characters").
			WithDetail("case_number=" + caseNumber)
	}
	now := time.Now().UTC()
	return &Case{
		ID:         uuid.New(),
		CaseNumber: caseNumber,
		Title:      strings.TrimSpace(title),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Touch bumps UpdatedAt.  Repositories call it before persisting mutations.
func (c *Case) Touch() {
	c.UpdatedAt = time.Now().UTC()
}

// Paragraph is one ordered unit of the normalized judgment text.  Paragraphs
// are replaced wholesale whenever normalization reruns.
type Paragraph struct {
	ID      uuid.UUID `json:"id"`
	CaseID  uuid.UUID `json:"case_id"`
	Ordinal int       `json:"ordinal"`
	Text    string    `json:"text"`
}

// Fact is one extracted factual statement, ordered by salience.
type Fact struct {
	ID      uuid.UUID `json:"id"`
	CaseID  uuid.UUID `json:"case_id"`
	Ordinal int       `json:"ordinal"`
	Text    string    `json:"text"`
	Score   float64   `json:"score"`
}

// KeyPoint pairs a labelled aspect of the judgment with a plain-language
// explanation for the key-points summary view.
type KeyPoint struct {
	Label       string `json:"label"`
	Explanation string `json:"explanation"`
}

// Summary is the current summary artifact of a case.  One row per case;
// regeneration overwrites the previous artifact.
type Summary struct {
	ID        uuid.UUID  `json:"id"`
	CaseID    uuid.UUID  `json:"case_id"`
	Short     string     `json:"short"`
	Detailed  string     `json:"detailed"`
	Basic     string     `json:"basic"`
	KeyPoints []KeyPoint `json:"key_points"`
	Model     string     `json:"model"`
	CreatedAt time.Time  `json:"created_at"`
}

// TranslationMode selects what gets translated.
type TranslationMode string

const (
	TranslateSummary TranslationMode = "summary"
	TranslateRaw     TranslationMode = "raw"
)

// Translation is a stored translation artifact keyed by (case, language, mode).
type Translation struct {
	ID        uuid.UUID       `json:"id"`
	CaseID    uuid.UUID       `json:"case_id"`
	Language  string          `json:"language"`
	Mode      TranslationMode `json:"mode"`
	Text      string          `json:"text"`
	ModelUsed string          `json:"model_used"`
	CreatedAt time.Time       `json:"created_at"`
}

// Chunk is one embedded retrieval unit of the case text.  The chunker is
// deterministic, so regenerating chunks for unchanged text yields identical
// ordinals, spans, and embeddings.
type Chunk struct {
	ID        uuid.UUID `json:"id"`
	CaseID    uuid.UUID `json:"case_id"`
	Ordinal   int       `json:"ordinal"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"-"`
}

// Keywords is the extracted legal-keyword set of a case (acts, sections,
// issue terms), used by the lexical half of the similarity score.
type Keywords struct {
	CaseID   uuid.UUID `json:"case_id"`
	Keywords []string  `json:"keywords"`
}

// SimilarityEdge is one directional ranked match from a case to a similar
// case.  Edges for a case are replaced wholesale on each recompute.
type SimilarityEdge struct {
	CaseID        uuid.UUID `json:"case_id"`
	SimilarCaseID uuid.UUID `json:"similar_case_id"`
	Rank          int       `json:"rank"`
	Score         float64   `json:"score"`
	KeywordScore  float64   `json:"keyword_score"`
	CosineScore   float64   `json:"cosine_score"`
	ComputedAt    time.Time `json:"computed_at"`
}

// PredictionSource records which path produced a prediction.
type PredictionSource string

const (
	PredictionDerived PredictionSource = "derived"
	PredictionManual  PredictionSource = "manual"
)

// PredictionFactor is one ranked human-readable factor behind a prediction.
type PredictionFactor struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Detail string  `json:"detail,omitempty"`
}

// Prediction is one outcome prediction.  Predictions are append-only; readers
// take the latest row per case.
type Prediction struct {
	ID               uuid.UUID          `json:"id"`
	CaseID           uuid.UUID          `json:"case_id"`
	Outcome          string             `json:"outcome"`
	Probability      float64            `json:"probability"`
	Confidence       float64            `json:"confidence"`
	Factors          []PredictionFactor `json:"factors"`
	SampleSize       int                `json:"sample_size"`
	InsufficientData bool               `json:"insufficient_data"`
	Source           PredictionSource   `json:"source"`
	CreatedAt        time.Time          `json:"created_at"`
}

// ChatExchange is one logged question/answer pair.  Append-only.
type ChatExchange struct {
	ID         uuid.UUID   `json:"id"`
	CaseID     uuid.UUID   `json:"case_id"`
	Query      string      `json:"query"`
	Response   string      `json:"response"`
	Intent     string      `json:"intent"`
	ContextIDs []uuid.UUID `json:"context_ids,omitempty"`
	LatencyMS  int64       `json:"latency_ms"`
	CreatedAt  time.Time   `json:"created_at"`
}

// OutcomeStat is one historical win-rate bucket: of the completed cases whose
// feature (e.g. "case_type") had this value (e.g. "criminal appeal"), how many
// resolved in the initiating party's favour.  Single writer per (feature,
// value) key; Version supports optimistic concurrency.
type OutcomeStat struct {
	Feature   string    `json:"feature"`
	Value     string    `json:"value"`
	Wins      int       `json:"wins"`
	Total     int       `json:"total"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WinRate returns the bucket's win ratio, or 0 when the bucket is empty.
func (s OutcomeStat) WinRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Total)
}
