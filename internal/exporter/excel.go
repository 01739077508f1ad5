// Package exporter renders a reconciliation report as an xlsx workbook:
// one summary sheet plus one sheet per category.
package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/confronto-dev/confronto/internal/importer"
	"github.com/confronto-dev/confronto/internal/model"
	"github.com/confronto-dev/confronto/internal/money"
	"github.com/confronto-dev/confronto/internal/report"
)

const (
	summarySheet  = "Resumo"
	excludedSheet = "Cancelamentos Estornos"
)

// WriteWorkbook writes rep to an xlsx file at path. The sheet data feeds
// the financial validation on the summary and the excluded-rows sheet.
func WriteWorkbook(rep *report.Report, sheet importer.SheetData, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return fmt.Errorf("renaming summary sheet: %w", err)
	}
	if err := writeSummary(f, rep, sheet); err != nil {
		return err
	}

	for _, cat := range model.Categories {
		if err := writeCategorySheet(f, rep, cat); err != nil {
			return err
		}
	}

	if err := writeExcludedSheet(f, sheet.Excluded); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}

// validation holds the financial cross-check of the summary: the payable
// amount derived from the categories must land on the billed total.
type validation struct {
	billed   money.Value // declared grand total of the billing sheet
	total    money.Value
	payable  money.Value // total minus the postponed share
	residual money.Value // |payable - billed|
}

func validate(rep *report.Report, sheet importer.SheetData) validation {
	declared := make(map[model.Category]money.Value)
	for _, s := range rep.Summary() {
		declared[s.Category] = s.Declared
	}

	// Postponed entries count at their invoice value: their declared side
	// has not been billed yet.
	postponed := money.Zero()
	for _, res := range rep.ByCategory(model.CategoryPostponed) {
		if res.Invoice != nil {
			postponed = postponed.Add(res.Invoice.Total)
		}
	}

	// Unmatched references were billed without a covering invoice, so
	// they count against the total.
	total := money.Sum(
		declared[model.CategoryIdentical],
		declared[model.CategoryGroupedDivergent],
		declared[model.CategoryDivergent],
		postponed,
	).Sub(declared[model.CategoryNotFound])
	payable := total.Sub(postponed)

	return validation{
		billed:   sheet.DeclaredTotal,
		total:    total,
		payable:  payable,
		residual: payable.Sub(sheet.DeclaredTotal).Abs(),
	}
}

func writeSummary(f *excelize.File, rep *report.Report, sheet importer.SheetData) error {
	if err := setRow(f, summarySheet, 1, "Categoria", "Quantidade", "Percentual", "Valor Declarado"); err != nil {
		return err
	}
	rowNum := 2
	for _, s := range rep.Summary() {
		err := setRow(f, summarySheet, rowNum,
			s.Category.Label(),
			s.Count,
			fmt.Sprintf("%.1f%%", s.Percentage),
			s.Declared.String(),
		)
		if err != nil {
			return err
		}
		rowNum++
	}
	rowNum++
	if err := setRow(f, summarySheet, rowNum, "Total processado", rep.Total(), "", rep.DeclaredTotal().String()); err != nil {
		return err
	}
	rowNum++

	v := validate(rep, sheet)
	for _, line := range []struct {
		label string
		value money.Value
	}{
		{"Valor do boleto", v.billed},
		{"Cancelamento", sheet.CanceledTotal},
		{"Estornos", sheet.ReversalTotal},
		{"Valor a pagar", v.payable},
		{"Diferença (Validação)", v.residual},
	} {
		rowNum++
		if err := setRow(f, summarySheet, rowNum, line.label, "", "", line.value.String()); err != nil {
			return err
		}
	}
	return nil
}

// writeExcludedSheet lists every cancellation and reversal row kept out
// of matching.
func writeExcludedSheet(f *excelize.File, excluded []importer.ExcludedRow) error {
	if _, err := f.NewSheet(excludedSheet); err != nil {
		return fmt.Errorf("creating sheet %s: %w", excludedSheet, err)
	}
	if err := setRow(f, excludedSheet, 1, "Tipo", "Texto Original", "Data Evento", "CNPJ Posto", "Valor", "Linha"); err != nil {
		return err
	}
	for i, row := range excluded {
		date := ""
		if !row.EventDate.IsZero() {
			date = row.EventDate.Format("02/01/2006")
		}
		err := setRow(f, excludedSheet, i+2,
			row.Kind, row.Text, date, model.FormatCNPJ(row.IssuerID), row.Value.String(), row.Row)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeCategorySheet(f *excelize.File, rep *report.Report, cat model.Category) error {
	sheet := cat.Label()
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %s: %w", sheet, err)
	}

	headers := []any{
		"N° Nota", "Data Evento", "CNPJ Emitente", "CNPJ Destinatário",
		"Valor Planilha", "Valor NFe", "Diferença", "Linha", "Motivo",
	}
	if cat == model.CategoryGroupedDivergent {
		headers = append(headers, "NFe Parceira", "Resíduo")
	}
	if cat == model.CategoryPostponed {
		headers = append(headers, "Dias Postergados")
	}
	if err := setRow(f, sheet, 1, headers...); err != nil {
		return err
	}

	for i, res := range rep.ByCategory(cat) {
		invoiceValue := ""
		if res.Invoice != nil {
			invoiceValue = res.Invoice.Total.String()
		}
		cells := []any{
			res.Transaction.InvoiceNumber,
			res.Transaction.EventDate.Format("02/01/2006"),
			model.FormatCNPJ(res.Transaction.IssuerID),
			model.FormatCNPJ(res.Transaction.RecipientID),
			res.Transaction.Declared.String(),
			invoiceValue,
			res.Diff.String(),
			res.Transaction.Row,
			res.Reason,
		}
		if cat == model.CategoryGroupedDivergent {
			partner := ""
			if res.Partner != nil {
				partner = res.Partner.InvoiceNumber
			}
			cells = append(cells, partner, res.Residual.String())
		}
		if cat == model.CategoryPostponed {
			cells = append(cells, res.ElapsedDays)
		}
		if err := setRow(f, sheet, i+2, cells...); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values ...any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("writing %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
