package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"3095", "3095"},
		{"  3095 ", "3095"},
		{"003095", "3095"},
		{"0", "0"},
		{"000", "0"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeNumber(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeCNPJ(t *testing.T) {
	assert.Equal(t, "12345678000190", NormalizeCNPJ("12.345.678/0001-90"))
	assert.Equal(t, "17122471000175", NormalizeCNPJ("17122471000175"))
	assert.Equal(t, "", NormalizeCNPJ("n/a"))
}

func TestValidCNPJ(t *testing.T) {
	assert.True(t, ValidCNPJ("12345678000190"))
	assert.False(t, ValidCNPJ("1234567800019"))
	assert.False(t, ValidCNPJ("12.345.678/0001-90"))
	assert.False(t, ValidCNPJ(""))
}

func TestFormatCNPJ(t *testing.T) {
	assert.Equal(t, "12.345.678/0001-90", FormatCNPJ("12345678000190"))
	// Wrong length passes through untouched.
	assert.Equal(t, "123", FormatCNPJ("123"))
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "Idêntica", CategoryIdentical.Label())
	assert.Equal(t, "Divergente Agrupada", CategoryGroupedDivergent.Label())
	assert.Equal(t, "Não Encontrada", CategoryNotFound.Label())
}
