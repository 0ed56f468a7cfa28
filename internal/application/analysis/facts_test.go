package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFacts_RanksSignalHeavySentencesFirst(t *testing.T) {
	t.Parallel()

	facts := ExtractFacts(sampleJudgmentText)
	require.NotEmpty(t, facts)
	assert.LessOrEqual(t, len(facts), maxFacts)

	assert.Contains(t, facts[0].Text, "poison")
	for i := 1; i < len(facts); i++ {
		assert.GreaterOrEqual(t, facts[i-1].Score, facts[i].Score)
	}
	for _, f := range facts {
		assert.GreaterOrEqual(t, f.Score, 1.0)
	}
}

func TestExtractFacts_NoSignalsFallsBackToOpeningSentences(t *testing.T) {
	t.Parallel()

	text := "The quarterly report was published on the first Monday of the month. " +
		"The board reviewed the figures during the afternoon session."
	facts := ExtractFacts(text)

	require.Len(t, facts, 2)
	assert.Contains(t, facts[0].Text, "quarterly report")
	assert.Zero(t, facts[0].Score)
}

func TestExtractFacts_EmptyText(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ExtractFacts(""))
}

func TestExtractKeywords(t *testing.T) {
	t.Parallel()

	text := "The accused was convicted under Section 302 of the Indian Penal Code " +
		"read with Section 34 IPC. The application for bail was rejected."
	kws := ExtractKeywords(text)

	assert.Contains(t, kws, "ipc")
	assert.Contains(t, kws, "indian penal code")
	assert.Contains(t, kws, "section 302")
	assert.Contains(t, kws, "section 34")
	assert.Contains(t, kws, "bail")
}

func TestExtractKeywords_Deduplicates(t *testing.T) {
	t.Parallel()

	kws := ExtractKeywords("Section 138, Section 138 and again Section 138 of the Negotiable Instruments Act.")
	count := 0
	for _, kw := range kws {
		if kw == "section 138" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Contains(t, kws, "negotiable instruments act")
}

func TestExtractKeywords_NoLegalContent(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ExtractKeywords("The weather report for the coming week looks pleasant."))
}
