package engine

import "fmt"

// DataIntegrityError reports a structurally inconsistent input collection,
// such as two invoices carrying the same number. It is fatal: the run
// aborts and no report is produced.
type DataIntegrityError struct {
	InvoiceNumber string
	Detail        string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity [invoice %s]: %s", e.InvoiceNumber, e.Detail)
}

// ValidationError reports a single record violating a domain constraint
// (malformed identifier, event date after the closing date). It is fatal:
// the data must be fixed upstream, a partial report would hide the problem.
type ValidationError struct {
	Record string // identifies the offending record, e.g. "transaction row 12"
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation [%s]: %s", e.Record, e.Detail)
}
