package model

import "github.com/confronto-dev/confronto/internal/money"

// Category classifies the outcome of matching one transaction.
type Category string

const (
	// CategoryIdentical: invoice and spreadsheet values agree within tolerance.
	CategoryIdentical Category = "identica"
	// CategoryDivergent: values disagree beyond tolerance and no partner
	// transaction cancels the difference.
	CategoryDivergent Category = "divergente"
	// CategoryGroupedDivergent: the transaction pairs with another whose
	// difference cancels its own within tolerance.
	CategoryGroupedDivergent Category = "divergente_agrupada"
	// CategoryNotFound: the referenced invoice does not exist in the batch.
	CategoryNotFound Category = "nao_encontrada"
	// CategoryPostponed: the event is older than the postponement limit and
	// falls outside the reconciliation period.
	CategoryPostponed Category = "desconsiderada"
)

// Categories lists all categories in report order.
var Categories = []Category{
	CategoryIdentical,
	CategoryGroupedDivergent,
	CategoryDivergent,
	CategoryNotFound,
	CategoryPostponed,
}

// Label returns the human-readable Portuguese label used in reports.
func (c Category) Label() string {
	switch c {
	case CategoryIdentical:
		return "Idêntica"
	case CategoryDivergent:
		return "Divergente"
	case CategoryGroupedDivergent:
		return "Divergente Agrupada"
	case CategoryNotFound:
		return "Não Encontrada"
	case CategoryPostponed:
		return "Desconsiderada"
	default:
		return string(c)
	}
}

// Result is the classification of a single transaction. Grouped outcomes
// carry the partner transaction and its invoice so that both results of a
// pair reference each other.
type Result struct {
	Category       Category
	Transaction    Transaction
	Invoice        *Invoice     // nil when the lookup failed
	Partner        *Transaction // set for grouped outcomes
	PartnerInvoice *Invoice     // set for grouped outcomes
	Diff           money.Value  // signed: declared value - invoice total
	Residual       money.Value  // combined difference of a grouped pair
	ElapsedDays    int          // closing date minus event date
	Reason         string
}
