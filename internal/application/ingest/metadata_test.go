package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePrefix_ExactKeyBeatsShorterPrefix(t *testing.T) {
	t.Parallel()

	// Repeated runs: map iteration order must never change the answer.
	for i := 0; i < 50; i++ {
		assert.Equal(t, "CRLA", normalizePrefix("Crl.A."))
		assert.Equal(t, "CRL", normalizePrefix("Crl."))
	}
}

const sampleJudgmentHeader = `IN THE HIGH COURT OF JUDICATURE AT MADRAS
(CRIMINAL APPELLATE JURISDICTION)
PRESENT:
THE HON'BLE MR.JUSTICE V. RAMASUBRAMANIAN
Crl.A. No. 1482 of 2012
Pradeep Kumar
Versus
State of Tamil Nadu
Decided on: 14.03.2014
Reported in (2014) 3 SCC 112

The appellant stood convicted by the learned Sessions Judge.
`

func TestExtractMetadata_FullHeader(t *testing.T) {
	t.Parallel()

	text := sampleJudgmentHeader + strings.Repeat("The evidence was examined in detail.\n", 20) +
		"\nIn the result, the appeal is ALLOWED and the conviction is set aside.\n"

	meta := ExtractMetadata(text)

	assert.Equal(t, "IN THE HIGH COURT OF JUDICATURE AT MADRAS", meta.CourtName)
	assert.Equal(t, "High Court", meta.CourtLevel)
	assert.Contains(t, meta.CaseNumber, "1482")
	assert.Contains(t, meta.CaseNumber, "2012")
	assert.Equal(t, "Criminal Appeal", meta.CaseType)
	assert.Equal(t, "Pradeep Kumar", meta.Parties.Petitioner)
	assert.Equal(t, "State of Tamil Nadu", meta.Parties.Respondent)
	assert.Equal(t, "Allowed", meta.Disposition)
	assert.Equal(t, "(2014) 3 SCC 112", meta.Citation)
	assert.Equal(t, time.Date(2014, time.March, 14, 0, 0, 0, 0, time.UTC), meta.DecisionDate)

	require.NotEmpty(t, meta.Judges)
	joined := strings.Join(meta.Judges, "; ")
	assert.Contains(t, joined, "RAMASUBRAMANIAN")
}

func TestExtractMetadata_EmptyText(t *testing.T) {
	t.Parallel()

	meta := ExtractMetadata("")
	assert.Empty(t, meta.CaseNumber)
	assert.Empty(t, meta.CourtName)
	assert.Empty(t, meta.Parties.Petitioner)
	assert.True(t, meta.DecisionDate.IsZero())
}

func TestExtractMetadata_PartyNamedAfterCourtIsRejected(t *testing.T) {
	t.Parallel()

	// Party extraction must never return a court name as a litigant.
	text := `IN THE SUPREME COURT OF INDIA
PRESENT:
HON'BLE JUSTICE A. SHARMA
filler line one
SLP No. 221 of 2021
High Court of Delhi
Versus
Union of India
`
	meta := ExtractMetadata(text)
	assert.Empty(t, meta.Parties.Petitioner)
}

func TestCleanPartyName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"valid", "  Pradeep Kumar ", "Pradeep Kumar"},
		{"too short", "Ab", ""},
		{"mostly digits", "02.02.2012", ""},
		{"boilerplate", "Judgment reserved on 1.1.2020", ""},
		{"court name", "High Court of Kerala", ""},
		{"strips punctuation", "-- Anjali Devi :", "Anjali Devi"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cleanPartyName(tt.in))
		})
	}
}

func TestExtractDisposition_CompoundBeforeSimple(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("x", 100) + "\nThe appeal is PARTLY ALLOWED as indicated above."
	assert.Equal(t, "Partly Allowed", extractDisposition(text))
}

func TestExtractDisposition_OnlyChecksTail(t *testing.T) {
	t.Parallel()

	// An outcome word buried early in a long document is not the disposition.
	text := "The earlier suit was DISMISSED in 2001.\n" + strings.Repeat("neutral filler text here. ", 100)
	assert.Empty(t, extractDisposition(text))
}

func TestParseDate_Formats(t *testing.T) {
	t.Parallel()

	want := time.Date(2019, time.July, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, want, parseDate("Decided on 02.07.2019"))
	assert.Equal(t, want, parseDate("Decided on 2 July 2019"))
	assert.Equal(t, want, parseDate("Decided on July 2, 2019"))
	assert.True(t, parseDate("no date here").IsZero())
	assert.True(t, parseDate("45.99.2019").IsZero(), "impossible day and month rejected")
}

func TestValidYear(t *testing.T) {
	t.Parallel()

	assert.True(t, validYear("2019"))
	assert.True(t, validYear("1950"))
	assert.False(t, validYear("1949"))
	assert.False(t, validYear("2190"))
	assert.False(t, validYear("19"))
}

func TestDeriveTitle_PrefersParties(t *testing.T) {
	t.Parallel()

	meta := ExtractMetadata(sampleJudgmentHeader)
	title := DeriveTitle(meta, sampleJudgmentHeader)
	assert.Equal(t, "Pradeep Kumar vs State of Tamil Nadu", title)
}
