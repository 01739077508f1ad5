package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/confronto-dev/confronto/internal/model"
	"github.com/confronto-dev/confronto/internal/report"
)

// WriteCSV writes the flat result listing, one row per spreadsheet entry.
// It is the machine-readable companion to the workbook.
func WriteCSV(rep *report.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating CSV: %w", err)
	}
	defer f.Close()

	if err := writeResults(f, rep.Results()); err != nil {
		return err
	}
	return f.Close()
}

func writeResults(w io.Writer, results []model.Result) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"categoria", "nfe", "data_evento", "emitente", "destinatario",
		"valor_planilha", "valor_nfe", "diferenca", "nfe_parceira", "residuo",
		"dias_decorridos", "linha", "motivo",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, res := range results {
		if err := cw.Write(marshalResult(res)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func marshalResult(res model.Result) []string {
	rec := []string{
		string(res.Category),
		res.Transaction.InvoiceNumber,
		res.Transaction.EventDate.Format("2006-01-02"),
		res.Transaction.IssuerID,
		res.Transaction.RecipientID,
		res.Transaction.Declared.String(),
		"", // valor_nfe
		"", // diferenca
		"", // nfe_parceira
		"", // residuo
		strconv.Itoa(res.ElapsedDays),
		strconv.Itoa(res.Transaction.Row),
		res.Reason,
	}
	if res.Invoice != nil {
		rec[6] = res.Invoice.Total.String()
		rec[7] = res.Diff.String()
	}
	if res.Partner != nil {
		rec[8] = res.Partner.InvoiceNumber
		rec[9] = res.Residual.String()
	}
	return rec
}
