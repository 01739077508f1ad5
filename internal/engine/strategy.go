package engine

import (
	"github.com/confronto-dev/confronto/internal/model"
	"github.com/confronto-dev/confronto/internal/money"
)

// Candidate is a transaction eligible for group resolution: it has a
// direct invoice match, lies within the period, and diverges beyond
// tolerance.
type Candidate struct {
	Index int // position in the input transaction sequence
	Txn   model.Transaction
	Diff  money.Value // signed: declared value - invoice total
}

// GroupStrategy decides whether a diverging transaction pairs with another
// to form a group. Implementations must return ok=false when no partner
// matches or when more than one does: ambiguous candidates are never
// auto-paired, the subject falls back to a plain divergence.
type GroupStrategy interface {
	// PartnerFor picks the unique partner for subject among others.
	PartnerFor(subject Candidate, others []Candidate, tolerance money.Value) (partner Candidate, ok bool)
}

// ValuePairStrategy pairs two transactions whose value differences cancel
// each other out within tolerance: |diffA + diffB| <= tolerance. Both
// transactions must come from the same issuer. This is inference over
// values, not declared grouping, so ties always disqualify.
type ValuePairStrategy struct{}

// PartnerFor implements GroupStrategy.
func (ValuePairStrategy) PartnerFor(subject Candidate, others []Candidate, tolerance money.Value) (Candidate, bool) {
	var found Candidate
	matches := 0
	for _, o := range others {
		if o.Txn.IssuerID != subject.Txn.IssuerID {
			continue
		}
		// The pair cancels out when subject.Diff is, within tolerance,
		// the negation of the candidate's.
		if !subject.Diff.WithinTolerance(o.Diff.Neg(), tolerance) {
			continue
		}
		found = o
		matches++
		if matches > 1 {
			return Candidate{}, false
		}
	}
	return found, matches == 1
}

// ExplicitGroupStrategy pairs transactions that carry the same non-empty
// group identifier in the source spreadsheet. It ignores values entirely
// and exists for data sources that declare their groupings instead of
// leaving them to inference.
type ExplicitGroupStrategy struct{}

// PartnerFor implements GroupStrategy.
func (ExplicitGroupStrategy) PartnerFor(subject Candidate, others []Candidate, _ money.Value) (Candidate, bool) {
	if subject.Txn.GroupID == "" {
		return Candidate{}, false
	}
	var found Candidate
	matches := 0
	for _, o := range others {
		if o.Txn.GroupID != subject.Txn.GroupID {
			continue
		}
		found = o
		matches++
		if matches > 1 {
			return Candidate{}, false
		}
	}
	return found, matches == 1
}
