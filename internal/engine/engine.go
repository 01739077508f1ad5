// Package engine implements the matching core: it classifies every fleet
// spreadsheet transaction against a batch of electronic invoices.
//
// The pass is pure computation over in-memory collections. The engine
// performs no I/O, keeps no state between runs, and does not mutate its
// inputs; the same inputs always produce the same report.
package engine

import (
	"fmt"
	"time"

	"github.com/confronto-dev/confronto/internal/model"
	"github.com/confronto-dev/confronto/internal/money"
	"github.com/confronto-dev/confronto/internal/report"
)

// Engine classifies transactions against invoices under one immutable
// configuration.
type Engine struct {
	cfg Config
}

// New validates cfg and returns an Engine. A nil grouping strategy falls
// back to ValuePairStrategy.
func New(cfg Config) (*Engine, error) {
	if cfg.Grouping == nil {
		cfg.Grouping = ValuePairStrategy{}
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine's run configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// assessment holds the precomputed facts about one transaction.
type assessment struct {
	txn     model.Transaction
	invoice *model.Invoice // nil when the lookup failed
	diff    money.Value    // signed: declared - invoice total; valid when invoice != nil
	elapsed int            // closing date - event date, whole days
}

// Reconcile classifies every transaction into exactly one category and
// returns the aggregated report. Duplicate invoice numbers and records
// violating domain constraints abort the whole run: no partial report is
// returned on DataIntegrityError or ValidationError.
func (e *Engine) Reconcile(invoices []model.Invoice, transactions []model.Transaction) (*report.Report, error) {
	index, err := e.indexInvoices(invoices)
	if err != nil {
		return nil, err
	}

	assessments, err := e.assess(index, transactions)
	if err != nil {
		return nil, err
	}

	results := e.classify(assessments)
	return report.New(results), nil
}

// indexInvoices builds the number -> invoice index, normalizing numbers
// and rejecting duplicates.
func (e *Engine) indexInvoices(invoices []model.Invoice) (map[string]*model.Invoice, error) {
	index := make(map[string]*model.Invoice, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		if !model.ValidCNPJ(inv.IssuerID) {
			return nil, &ValidationError{
				Record: "invoice " + inv.Number,
				Detail: fmt.Sprintf("malformed issuer id %q", inv.IssuerID),
			}
		}
		if !model.ValidCNPJ(inv.RecipientID) {
			return nil, &ValidationError{
				Record: "invoice " + inv.Number,
				Detail: fmt.Sprintf("malformed recipient id %q", inv.RecipientID),
			}
		}
		key := model.NormalizeNumber(inv.Number)
		if key == "" {
			return nil, &ValidationError{Record: "invoice " + inv.Number, Detail: "empty invoice number"}
		}
		if _, dup := index[key]; dup {
			return nil, &DataIntegrityError{
				InvoiceNumber: key,
				Detail:        "duplicate invoice number in batch",
			}
		}
		index[key] = inv
	}
	return index, nil
}

// assess validates every transaction and precomputes elapsed days and the
// signed value difference against its direct invoice match. Any failure
// here aborts before classification starts.
func (e *Engine) assess(index map[string]*model.Invoice, transactions []model.Transaction) ([]assessment, error) {
	assessments := make([]assessment, len(transactions))
	for i, txn := range transactions {
		record := fmt.Sprintf("transaction row %d", txn.Row)
		if !model.ValidCNPJ(txn.IssuerID) {
			return nil, &ValidationError{Record: record, Detail: fmt.Sprintf("malformed issuer id %q", txn.IssuerID)}
		}
		if !model.ValidCNPJ(txn.RecipientID) {
			return nil, &ValidationError{Record: record, Detail: fmt.Sprintf("malformed recipient id %q", txn.RecipientID)}
		}

		elapsed := daysBetween(txn.EventDate, e.cfg.ClosingDate)
		if elapsed < 0 {
			return nil, &ValidationError{
				Record: record,
				Detail: fmt.Sprintf("event date %s is after closing date %s",
					txn.EventDate.Format("2006-01-02"), e.cfg.ClosingDate.Format("2006-01-02")),
			}
		}

		a := assessment{txn: txn, elapsed: elapsed}
		if inv, ok := index[model.NormalizeNumber(txn.InvoiceNumber)]; ok {
			a.invoice = inv
			a.diff = txn.Declared.Sub(inv.Total)
		}
		assessments[i] = a
	}
	return assessments, nil
}

// classify assigns one category per transaction, in input order.
// Grouped pairs are settled when the first member is reached; the partner
// keeps its position in the result sequence.
func (e *Engine) classify(assessments []assessment) []model.Result {
	settled := make([]*model.Result, len(assessments))

	for i := range assessments {
		if settled[i] != nil {
			continue // consumed by an earlier group
		}
		a := assessments[i]

		// Postponement takes precedence over everything: an out-of-period
		// transaction is out of scope even when its invoice matches exactly.
		if a.elapsed > e.cfg.MaxPostponementDays {
			settled[i] = e.postponedResult(a)
			continue
		}

		if a.invoice == nil {
			settled[i] = e.notFoundResult(a)
			continue
		}

		if a.txn.Declared.WithinTolerance(a.invoice.Total, e.cfg.ValueTolerance) {
			settled[i] = e.identicalResult(a)
			continue
		}

		// Beyond tolerance: try group resolution before declaring a plain
		// divergence.
		if j, ok := e.findPartner(i, assessments, settled); ok {
			ra, rb := e.groupedResults(a, assessments[j])
			settled[i] = ra
			settled[j] = rb
			continue
		}
		settled[i] = e.divergentResult(a)
	}

	results := make([]model.Result, len(settled))
	for i, r := range settled {
		results[i] = *r
	}
	return results
}

// findPartner collects the still-unsettled diverging candidates sharing
// the target recipient and delegates the pairing decision to the
// configured strategy.
func (e *Engine) findPartner(subject int, assessments []assessment, settled []*model.Result) (int, bool) {
	if assessments[subject].txn.RecipientID != e.cfg.TargetRecipientID {
		return 0, false
	}

	others := make([]Candidate, 0)
	for j := range assessments {
		if j == subject || settled[j] != nil {
			continue
		}
		a := assessments[j]
		if a.invoice == nil || a.elapsed > e.cfg.MaxPostponementDays {
			continue
		}
		if a.txn.Declared.WithinTolerance(a.invoice.Total, e.cfg.ValueTolerance) {
			continue // within tolerance, will classify as identical on its own
		}
		if a.txn.RecipientID != e.cfg.TargetRecipientID {
			continue
		}
		others = append(others, Candidate{Index: j, Txn: a.txn, Diff: a.diff})
	}

	subj := Candidate{Index: subject, Txn: assessments[subject].txn, Diff: assessments[subject].diff}
	partner, ok := e.cfg.Grouping.PartnerFor(subj, others, e.cfg.ValueTolerance)
	if !ok {
		return 0, false
	}
	return partner.Index, true
}

func (e *Engine) postponedResult(a assessment) *model.Result {
	return &model.Result{
		Category:    model.CategoryPostponed,
		Transaction: a.txn,
		Invoice:     a.invoice,
		Diff:        a.diff,
		ElapsedDays: a.elapsed,
		Reason:      fmt.Sprintf("postergada: %d dias > %d dias", a.elapsed, e.cfg.MaxPostponementDays),
	}
}

func (e *Engine) notFoundResult(a assessment) *model.Result {
	return &model.Result{
		Category:    model.CategoryNotFound,
		Transaction: a.txn,
		ElapsedDays: a.elapsed,
		Reason:      fmt.Sprintf("NFe %s não localizada no lote", a.txn.InvoiceNumber),
	}
}

func (e *Engine) identicalResult(a assessment) *model.Result {
	// The difference is kept for audit even when within tolerance.
	return &model.Result{
		Category:    model.CategoryIdentical,
		Transaction: a.txn,
		Invoice:     a.invoice,
		Diff:        a.diff,
		ElapsedDays: a.elapsed,
		Reason:      fmt.Sprintf("diferença %s dentro da tolerância %s", a.diff.Abs().FormatBR(), e.cfg.ValueTolerance.FormatBR()),
	}
}

func (e *Engine) divergentResult(a assessment) *model.Result {
	return &model.Result{
		Category:    model.CategoryDivergent,
		Transaction: a.txn,
		Invoice:     a.invoice,
		Diff:        a.diff,
		ElapsedDays: a.elapsed,
		Reason:      fmt.Sprintf("divergência de %s sem par correspondente", a.diff.Abs().FormatBR()),
	}
}

// groupedResults builds the mutually referencing pair of results. Both
// carry the same residual combined difference.
func (e *Engine) groupedResults(a, b assessment) (*model.Result, *model.Result) {
	residual := a.diff.Add(b.diff).Abs()

	build := func(self, other assessment) *model.Result {
		return &model.Result{
			Category:       model.CategoryGroupedDivergent,
			Transaction:    self.txn,
			Invoice:        self.invoice,
			Partner:        &other.txn,
			PartnerInvoice: other.invoice,
			Diff:           self.diff,
			Residual:       residual,
			ElapsedDays:    self.elapsed,
			Reason: fmt.Sprintf("agrupada com NFe %s, resíduo combinado %s",
				other.txn.InvoiceNumber, residual.FormatBR()),
		}
	}
	return build(a, b), build(b, a)
}

// daysBetween returns the whole days from a to b, ignoring time-of-day.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}
