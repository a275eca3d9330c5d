package slug

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Kyoto":              "kyoto",
		"Kyoto!!":            "kyoto",
		"  São Paulo  ":      "sao-paulo",
		"Crème Brûlée -- 24": "creme-brulee-24",
		"---a___b---":        "a-b",
		"Zürich 2024":        "zurich-2024",
		"":                   "",
		"!!!":                "",
		"東京 Tokyo":           "tokyo",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "Normalize(%q)", in)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Kyoto!!", "  Ärger -- über  ", "a--b", "-x-", "Ñandú 99", "ÅÄÖ åäö",
		"multiple   spaces\tand\nnewlines", "already-a-slug-24", "UPPER_case_09",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestValidateFormat_Location(t *testing.T) {
	require.NoError(t, ValidateFormat("kyoto-24", LocationPattern))
	require.NoError(t, ValidateFormat("new-york-city-99", LocationPattern))

	err := ValidateFormat("kyoto", LocationPattern)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidFormat))

	assert.Error(t, ValidateFormat("kyoto-2024", LocationPattern))
	assert.Error(t, ValidateFormat("Kyoto-24", LocationPattern))
	assert.True(t, errors.Is(ValidateFormat("", LocationPattern), ErrEmpty))
}

func TestValidateFormat_Collection(t *testing.T) {
	require.NoError(t, ValidateFormat("spring-blossoms", CollectionPattern))
	require.NoError(t, ValidateFormat("day1", CollectionPattern))
	assert.Error(t, ValidateFormat("-leading", CollectionPattern))
	assert.Error(t, ValidateFormat("double--hyphen", CollectionPattern))
	assert.Error(t, ValidateFormat("Upper", CollectionPattern))
}

func TestForLocation(t *testing.T) {
	s, ok := ForLocation("Kyoto", "2024")
	require.True(t, ok)
	assert.Equal(t, "kyoto-24", s)
	require.NoError(t, ValidateFormat(s, LocationPattern))

	_, ok = ForLocation("Kyoto", "Spring")
	assert.False(t, ok)
	_, ok = ForLocation("!!!", "2024")
	assert.False(t, ok)
}
