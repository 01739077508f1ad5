package model

import (
	"time"

	"github.com/confronto-dev/confronto/internal/money"
)

// Transaction is one row of the fleet-management spreadsheet: a declared
// fueling event expected to correspond to a single invoice.
type Transaction struct {
	InvoiceNumber string // reference to Invoice.Number, normalized
	EventDate     time.Time
	IssuerID      string // fuel station CNPJ, digits only
	RecipientID   string // fleet company CNPJ, digits only
	Declared      money.Value
	FlaggedLate   bool   // postponed flag as declared by the sheet; informational
	DeclaredDays  int    // days-late value as recorded in the sheet; informational
	GroupID       string // explicit group identifier, when the sheet carries one
	Row           int    // 1-based spreadsheet row, for error reporting
}
