// Package judgment defines the shared wire-level types for the JuriStack API.
// These DTOs are used by the HTTP handlers and the Go client so that both
// sides of the wire agree on field names and semantics.
package judgment

// Stage identifies a pipeline processing stage.
type Stage string

const (
	StageExtraction Stage = "EXTRACTION"
	StageNormalize  Stage = "NORMALIZE"
	StageFacts      Stage = "FACTS"
	StageSummary    Stage = "SUMMARY"
	StageTranslate  Stage = "TRANSLATE"
	StageChunkEmbed Stage = "CHUNK_EMBED"
	StageSimilarity Stage = "SIMILARITY"
	StagePredict    Stage = "PREDICT"
	StageCompleted  Stage = "COMPLETED"
	StageFailed     Stage = "FAILED"
)

// IsValid checks if the Stage is a known pipeline stage.
func (s Stage) IsValid() bool {
	switch s {
	case StageExtraction, StageNormalize, StageFacts, StageSummary, StageTranslate,
		StageChunkEmbed, StageSimilarity, StagePredict, StageCompleted, StageFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether processing stops at this stage.
func (s Stage) IsTerminal() bool {
	return s == StageCompleted || s == StageFailed
}

// StageStatus is the execution status of the current stage.
type StageStatus string

const (
	StatusPending StageStatus = "PENDING"
	StatusRunning StageStatus = "RUNNING"
	StatusDone    StageStatus = "DONE"
	StatusFailed  StageStatus = "FAILED"
)

// IsValid checks if the StageStatus is known.
func (s StageStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusDone, StatusFailed:
		return true
	default:
		return false
	}
}

// CaseStatus is the processing status snapshot returned by the status endpoint.
type CaseStatus struct {
	CaseNumber string      `json:"case_number"`
	Stage      Stage       `json:"stage"`
	Status     StageStatus `json:"status"`
	Attempts   int         `json:"attempts"`
	LastError  string      `json:"last_error,omitempty"`
	EnqueuedAt string      `json:"enqueued_at"`
	UpdatedAt  string      `json:"updated_at"`
}

// UploadRequest is the contract delivered by the upload collaborator.
type UploadRequest struct {
	CaseNumber  string `json:"case_number"`
	Title       string `json:"title,omitempty"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
	Language    string `json:"language,omitempty"`
}

// UploadResponse acknowledges an accepted upload.
type UploadResponse struct {
	CaseNumber string      `json:"case_number"`
	CaseID     string      `json:"case_id"`
	Stage      Stage       `json:"stage"`
	Status     StageStatus `json:"status"`
}

// Summaries mirrors the stored summary artifact.
type Summaries struct {
	Short     string     `json:"short"`
	Detailed  string     `json:"detailed"`
	Basic     string     `json:"basic"`
	KeyPoints []KeyPoint `json:"key_points"`
	Model     string     `json:"model"`
}

// KeyPoint pairs a labelled aspect of the judgment with a plain-language explanation.
type KeyPoint struct {
	Label       string `json:"label"`
	Explanation string `json:"explanation"`
}

// Translation is a stored or on-demand translation artifact.
type Translation struct {
	Language  string `json:"language"`
	Text      string `json:"text"`
	ModelUsed string `json:"model_used"`
}

// SimilarCase is one ranked entry of a similarity result.
type SimilarCase struct {
	CaseNumber   string  `json:"case_number"`
	Title        string  `json:"title"`
	CourtName    string  `json:"court_name,omitempty"`
	DecisionDate string  `json:"decision_date,omitempty"`
	Score        float64 `json:"score"`
	KeywordScore float64 `json:"keyword_score"`
	CosineScore  float64 `json:"cosine_score"`
}

// PredictionFactor is one ranked human-readable factor behind a prediction.
type PredictionFactor struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Detail string  `json:"detail,omitempty"`
}

// Prediction is the outcome prediction artifact.
type Prediction struct {
	Outcome          string             `json:"outcome"`
	Probability      float64            `json:"probability"`
	Confidence       float64            `json:"confidence"`
	Factors          []PredictionFactor `json:"factors"`
	SampleSize       int                `json:"sample_size"`
	InsufficientData bool               `json:"insufficient_data"`
}

// AnalyzeResult is the consolidated analysis view of a processed case.
// Missing lists the artifact names that are not yet available.
type AnalyzeResult struct {
	CaseNumber   string        `json:"case_number"`
	Translation  *Translation  `json:"translation,omitempty"`
	Summaries    *Summaries    `json:"summaries,omitempty"`
	SimilarCases []SimilarCase `json:"similar_cases"`
	Prediction   *Prediction   `json:"prediction,omitempty"`
	Missing      []string      `json:"missing,omitempty"`
}

// ChatRequest is a question about a processed case.
type ChatRequest struct {
	CaseNumber string `json:"case_number"`
	Query      string `json:"query"`
	Language   string `json:"language,omitempty"`
}

// ChatResponse carries the grounded answer and its provenance.
type ChatResponse struct {
	Answer    string   `json:"answer"`
	Intent    string   `json:"intent"`
	Sources   []string `json:"sources,omitempty"`
	Grounded  bool     `json:"grounded"`
	LatencyMS int64    `json:"latency_ms"`
}

// ManualPredictionRequest carries hand-entered case features.
type ManualPredictionRequest struct {
	CaseType         string `json:"case_type"`
	CourtLevel       string `json:"court_level"`
	DisputeType      string `json:"dispute_type"`
	EvidenceStrength string `json:"evidence_strength"`
	DelayInFiling    bool   `json:"delay_in_filing"`
	ReliefType       string `json:"relief_type"`
	ActsSections     string `json:"acts_sections,omitempty"`
}
