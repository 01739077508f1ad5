package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/confronto-dev/confronto/internal/model"
	"github.com/confronto-dev/confronto/internal/money"
)

// ColumnMap names the spreadsheet column (by letter) each transaction
// field comes from. The matching core never sees column letters; this is
// the only place they exist.
type ColumnMap struct {
	InvoiceNumber string `yaml:"invoice_number"`
	EventDate     string `yaml:"event_date"`
	IssuerID      string `yaml:"issuer_id"`
	RecipientID   string `yaml:"recipient_id"`
	DeclaredValue string `yaml:"declared_value"`
	PostponedFlag string `yaml:"postponed_flag"`
	DaysLate      string `yaml:"days_late"`
}

// DefaultColumnMap matches the fleet-management report layout.
func DefaultColumnMap() ColumnMap {
	return ColumnMap{
		InvoiceNumber: "AS",
		EventDate:     "D",
		IssuerID:      "H",
		RecipientID:   "J",
		DeclaredValue: "AO",
		PostponedFlag: "AR",
		DaysLate:      "AT",
	}
}

type columnIndexes struct {
	number, date, issuer, recipient, value, postponed, daysLate int
}

// resolve converts column letters into zero-based row indexes.
func (m ColumnMap) resolve() (columnIndexes, error) {
	var idx columnIndexes
	for _, col := range []struct {
		letter string
		target *int
		name   string
	}{
		{m.InvoiceNumber, &idx.number, "invoice_number"},
		{m.EventDate, &idx.date, "event_date"},
		{m.IssuerID, &idx.issuer, "issuer_id"},
		{m.RecipientID, &idx.recipient, "recipient_id"},
		{m.DeclaredValue, &idx.value, "declared_value"},
		{m.PostponedFlag, &idx.postponed, "postponed_flag"},
		{m.DaysLate, &idx.daysLate, "days_late"},
	} {
		n, err := excelize.ColumnNameToNumber(col.letter)
		if err != nil {
			return columnIndexes{}, fmt.Errorf("column %s (%q): %w", col.name, col.letter, err)
		}
		*col.target = n - 1
	}
	return idx, nil
}

// ExcludedRow is a cancellation or reversal row kept out of matching but
// reported on its own sheet.
type ExcludedRow struct {
	Kind      string // "Cancelamento" or "Estorno"
	Text      string // reference cell as written
	EventDate time.Time
	IssuerID  string
	Value     money.Value
	Row       int
}

// SheetData is the outcome of loading the fleet spreadsheet. Cancellation
// and reversal rows never become transactions; their totals and details
// are kept separately for the summary, matching how the billing sheet
// accounts for them.
type SheetData struct {
	Transactions  []model.Transaction
	DeclaredTotal money.Value // grand total of every declared value read
	CanceledTotal money.Value
	ReversalTotal money.Value // reported negative
	Excluded      []ExcludedRow
	SkippedRows   int // rows with no usable reference or date
}

// LoadSheet reads the first worksheet of an xlsx file using the supplied
// column mapping.
func LoadSheet(path string, columns ColumnMap) (SheetData, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return SheetData{}, fmt.Errorf("opening spreadsheet %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return SheetData{}, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	return parseRows(rows, columns)
}

func parseRows(rows [][]string, columns ColumnMap) (SheetData, error) {
	idx, err := columns.resolve()
	if err != nil {
		return SheetData{}, err
	}

	data := SheetData{
		DeclaredTotal: money.Zero(),
		CanceledTotal: money.Zero(),
		ReversalTotal: money.Zero(),
	}

	// Row 1 is the header.
	for i := 1; i < len(rows); i++ {
		rowNum := i + 1
		row := rows[i]

		ref := strings.TrimSpace(cell(row, idx.number))
		dateCell := strings.TrimSpace(cell(row, idx.date))
		if ref == "" || dateCell == "" {
			data.SkippedRows++
			continue
		}

		declared, err := money.Parse(cell(row, idx.value))
		if err != nil {
			return SheetData{}, fmt.Errorf("row %d: %w", rowNum, err)
		}
		data.DeclaredTotal = data.DeclaredTotal.Add(declared)

		lower := strings.ToLower(ref)
		isCanceled := strings.Contains(lower, "cancelado") || strings.Contains(lower, "cancelamento")
		isReversal := strings.Contains(lower, "estorno")
		if isCanceled || isReversal {
			excl := ExcludedRow{
				Kind:     "Estorno",
				Text:     ref,
				IssuerID: model.NormalizeCNPJ(cell(row, idx.issuer)),
				Value:    declared,
				Row:      rowNum,
			}
			if isCanceled {
				excl.Kind = "Cancelamento"
				data.CanceledTotal = data.CanceledTotal.Add(declared)
			} else {
				// Reversals reduce the bill; report them negative.
				data.ReversalTotal = data.ReversalTotal.Sub(declared.Abs())
			}
			// A date is informative here, not required.
			if d, err := parseSheetDate(dateCell); err == nil {
				excl.EventDate = d
			}
			data.Excluded = append(data.Excluded, excl)
			continue
		}

		eventDate, err := parseSheetDate(dateCell)
		if err != nil {
			return SheetData{}, fmt.Errorf("row %d: %w", rowNum, err)
		}

		numbers := extractNumbers(ref)
		if len(numbers) == 0 {
			data.SkippedRows++
			continue
		}

		base := model.Transaction{
			EventDate:    eventDate,
			IssuerID:     model.NormalizeCNPJ(cell(row, idx.issuer)),
			RecipientID:  model.NormalizeCNPJ(cell(row, idx.recipient)),
			FlaggedLate:  isAffirmative(cell(row, idx.postponed)),
			DeclaredDays: parseIntCell(cell(row, idx.daysLate)),
			Row:          rowNum,
		}

		if len(numbers) == 1 {
			txn := base
			txn.InvoiceNumber = numbers[0]
			txn.Declared = declared
			data.Transactions = append(data.Transactions, txn)
			continue
		}

		// A multi-reference cell ("NFe103576, NFe103577") declares one
		// combined value for several invoices. The first reference carries
		// the value, the rest carry zero, and all share an explicit group
		// id so the grouped strategy can reunite them.
		groupID := fmt.Sprintf("row%d", rowNum)
		for n, number := range numbers {
			txn := base
			txn.InvoiceNumber = number
			txn.GroupID = groupID
			if n == 0 {
				txn.Declared = declared
			} else {
				txn.Declared = money.Zero()
			}
			data.Transactions = append(data.Transactions, txn)
		}
	}

	return data, nil
}

// extractNumbers pulls the invoice number(s) out of a reference cell:
// "NFe16184" -> ["16184"], "NFe103576, NFe103577" -> ["103576", "103577"].
func extractNumbers(ref string) []string {
	var numbers []string
	for _, part := range strings.Split(ref, ",") {
		var digits strings.Builder
		for _, r := range part {
			if r >= '0' && r <= '9' {
				digits.WriteRune(r)
			}
		}
		if digits.Len() > 0 {
			numbers = append(numbers, model.NormalizeNumber(digits.String()))
		}
	}
	return numbers
}

var sheetDateFormats = []string{
	"2006-01-02",
	"02/01/2006",
	"2006-01-02 15:04:05",
}

func parseSheetDate(s string) (time.Time, error) {
	for _, layout := range sheetDateFormats {
		if d, err := time.Parse(layout, s); err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func isAffirmative(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "sim")
}

func parseIntCell(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// cell returns the value at i, tolerating short rows: excelize trims
// trailing empty cells.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}
