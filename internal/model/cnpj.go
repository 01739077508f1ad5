package model

import "strings"

// cnpjLen is the number of digits in a Brazilian company tax identifier.
const cnpjLen = 14

// NormalizeCNPJ strips all non-digit characters from a CNPJ.
func NormalizeCNPJ(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCNPJ reports whether s is a normalized 14-digit CNPJ.
func ValidCNPJ(s string) bool {
	if len(s) != cnpjLen {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatCNPJ renders a normalized CNPJ for display:
// "12345678000190" -> "12.345.678/0001-90". Inputs of the wrong length
// are returned unchanged.
func FormatCNPJ(s string) string {
	if len(s) != cnpjLen {
		return s
	}
	return s[:2] + "." + s[2:5] + "." + s[5:8] + "/" + s[8:12] + "-" + s[12:]
}
