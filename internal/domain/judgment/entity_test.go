package judgment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juristack/juristack/pkg/errors"
)

func TestNewCase_Valid(t *testing.T) {
	t.Parallel()

	cases := []string{
		"CRL.A. 1234/2019",
		"W.P.(C) 456/2021",
		"CS(OS) 89/2020",
		"SLP (Crl) 2021/7",
		"AIR 1973 SC 1461",
	}
	for _, num := range cases {
		num := num
		t.Run(num, func(t *testing.T) {
			t.Parallel()
			c, err := NewCase(num, "State v. Accused")
			require.NoError(t, err)
			assert.Equal(t, num, c.CaseNumber)
			assert.Equal(t, "State v. Accused", c.Title)
			assert.NotEqual(t, c.ID.String(), "00000000-0000-0000-0000-000000000000")
			assert.False(t, c.CreatedAt.IsZero())
		})
	}
}

func TestNewCase_TrimsWhitespace(t *testing.T) {
	t.Parallel()

	c, err := NewCase("  CRL.A. 1/2020  ", "  Title  ")
	require.NoError(t, err)
	assert.Equal(t, "CRL.A. 1/2020", c.CaseNumber)
	assert.Equal(t, "Title", c.Title)
}

func TestNewCase_RejectsInvalidNumbers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		num  string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"too short", "A1"},
		{"control characters", "CRL\x00123"},
		{"leading punctuation", "/1234"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewCase(tc.num, "title")
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeCaseNumberInvalid))
		})
	}
}

func TestCase_TouchBumpsUpdatedAt(t *testing.T) {
	t.Parallel()

	c, err := NewCase("CRL.A. 1/2020", "t")
	require.NoError(t, err)
	before := c.UpdatedAt
	c.Touch()
	assert.False(t, c.UpdatedAt.Before(before))
}

func TestOutcomeStat_WinRate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, OutcomeStat{}.WinRate())
	assert.Equal(t, 0.5, OutcomeStat{Wins: 5, Total: 10}.WinRate())
	assert.Equal(t, 1.0, OutcomeStat{Wins: 3, Total: 3}.WinRate())
}
