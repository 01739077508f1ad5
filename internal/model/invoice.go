package model

import (
	"strings"
	"time"

	"github.com/confronto-dev/confronto/internal/money"
)

// Invoice is one electronic fuel invoice (NFe) extracted from a vendor XML.
type Invoice struct {
	Number      string // as printed, normalized via NormalizeNumber
	IssueDate   time.Time
	IssuerID    string // issuer CNPJ, digits only
	RecipientID string // recipient CNPJ, digits only
	Total       money.Value
	SourcePath  string // XML file the invoice came from, for audit
}

// NormalizeNumber canonicalizes an invoice number reference: surrounding
// whitespace and leading zeros are not significant when matching against
// spreadsheet references.
func NormalizeNumber(number string) string {
	n := strings.TrimSpace(number)
	trimmed := strings.TrimLeft(n, "0")
	if trimmed == "" && n != "" {
		return "0"
	}
	return trimmed
}
