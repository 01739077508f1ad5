package commands

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/confronto-dev/confronto/internal/auditlog"
	"github.com/confronto-dev/confronto/internal/config"
	"github.com/confronto-dev/confronto/internal/importer"
)

const runTestNFe = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe">
  <NFe>
    <infNFe>
      <ide><nNF>3095</nNF><dhEmi>2025-09-10T14:03:00-03:00</dhEmi></ide>
      <emit><CNPJ>12345678000190</CNPJ></emit>
      <dest><CNPJ>17122471000175</CNPJ></dest>
      <total><ICMSTot><vNF>85.35</vNF></ICMSTot></total>
    </infNFe>
  </NFe>
</nfeProc>`

func writeRunFixtures(t *testing.T, dir string) runOptions {
	t.Helper()

	// Invoice ZIP.
	zipPath := filepath.Join(dir, "invoices.zip")
	zf, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(zf)
	w, err := zw.Create("3095.xml")
	require.NoError(t, err)
	_, err = io.WriteString(w, runTestNFe)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, zf.Close())

	// Fleet spreadsheet with a compact column layout.
	sheetPath := filepath.Join(dir, "fleet.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]string{
		{"NFe", "Data", "Posto", "Empresa", "Valor", "Postergado", "Dias"},
		{"NFe3095", "2025-09-20", "12345678000190", "17122471000175", "85,35", "Não", "0"},
		{"NFe9999", "2025-09-20", "12345678000190", "17122471000175", "10,00", "Não", "0"},
	}
	for r, cells := range rows {
		for c, v := range cells {
			col, _ := excelize.ColumnNumberToName(c + 1)
			require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, r+1), v))
		}
	}
	require.NoError(t, f.SaveAs(sheetPath))
	require.NoError(t, f.Close())

	// Run config.
	cfg := config.Default()
	cfg.ClosingDate = "2025-09-30"
	cfg.TargetRecipientID = "17122471000175"
	cfg.Columns = importer.ColumnMap{
		InvoiceNumber: "A",
		EventDate:     "B",
		IssuerID:      "C",
		RecipientID:   "D",
		DeclaredValue: "E",
		PostponedFlag: "F",
		DaysLate:      "G",
	}
	configPath := filepath.Join(dir, "confronto.yaml")
	require.NoError(t, config.Save(configPath, cfg))

	return runOptions{
		configPath:   configPath,
		invoicesPath: zipPath,
		sheetPath:    sheetPath,
		outputPath:   filepath.Join(dir, "outputs", "report.xlsx"),
		logRoot:      dir,
	}
}

func TestRunReconcile_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	opts := writeRunFixtures(t, dir)

	logger := log.New(io.Discard)
	require.NoError(t, runReconcile(logger, opts))

	// Workbook exists and carries the summary.
	wb, err := excelize.OpenFile(opts.outputPath)
	require.NoError(t, err)
	defer wb.Close()

	head, err := wb.GetCellValue("Resumo", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Categoria", head)

	// One identical, one not found.
	identical, err := wb.GetCellValue("Idêntica", "A2")
	require.NoError(t, err)
	assert.Equal(t, "3095", identical)

	missing, err := wb.GetCellValue("Não Encontrada", "A2")
	require.NoError(t, err)
	assert.Equal(t, "9999", missing)

	// Financial validation: payable 85.35 - 10.00 against a 95.35 bill.
	payable, err := wb.GetCellValue("Resumo", "D13")
	require.NoError(t, err)
	assert.Equal(t, "75.35", payable)
	residual, err := wb.GetCellValue("Resumo", "D14")
	require.NoError(t, err)
	assert.Equal(t, "20.00", residual)

	// Audit trail recorded the run.
	entries, err := auditlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Invoices)
	assert.Equal(t, 2, entries[0].Transactions)
	assert.Equal(t, opts.outputPath, entries[0].OutputPath)
}

func TestRunReconcile_MissingConfig(t *testing.T) {
	logger := log.New(io.Discard)
	err := runReconcile(logger, runOptions{configPath: filepath.Join(t.TempDir(), "none.yaml")})
	require.Error(t, err)
}
