package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/confronto-dev/confronto/internal/auditlog"
	"github.com/confronto-dev/confronto/internal/config"
	"github.com/confronto-dev/confronto/internal/engine"
	"github.com/confronto-dev/confronto/internal/exporter"
	"github.com/confronto-dev/confronto/internal/importer"
	"github.com/confronto-dev/confronto/internal/report"
)

type runOptions struct {
	configPath   string
	invoicesPath string
	sheetPath    string
	outputPath   string
	csvPath      string
	logRoot      string
}

func newRunCommand() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a reconciliation pass and write the report workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.NewWithOptions(os.Stderr, log.Options{
				ReportTimestamp: true,
				Prefix:          "confronto",
			})
			return runReconcile(logger, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "confronto.yaml", "run configuration file")
	cmd.Flags().StringVar(&opts.invoicesPath, "invoices", "", "NFe source: zip, xml, or directory (required)")
	_ = cmd.MarkFlagRequired("invoices")
	cmd.Flags().StringVar(&opts.sheetPath, "sheet", "", "fleet spreadsheet xlsx (required)")
	_ = cmd.MarkFlagRequired("sheet")
	cmd.Flags().StringVar(&opts.outputPath, "out", "Relatorio_Confronto.xlsx", "output workbook path")
	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "also write a flat CSV of results")
	cmd.Flags().StringVar(&opts.logRoot, "log-dir", ".", "directory holding the logs/ audit trail")

	return cmd
}

func runReconcile(logger *log.Logger, opts runOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return err
	}
	eng, err := engine.New(engineCfg)
	if err != nil {
		return err
	}

	batch, err := importer.LoadInvoices(opts.invoicesPath)
	if err != nil {
		return err
	}
	logger.Info("invoices loaded", "count", len(batch.Invoices), "skipped", batch.Skipped)

	sheet, err := importer.LoadSheet(opts.sheetPath, cfg.Columns)
	if err != nil {
		return err
	}
	logger.Info("spreadsheet loaded",
		"transactions", len(sheet.Transactions),
		"declared_total", sheet.DeclaredTotal.FormatBR(),
		"canceled", sheet.CanceledTotal.FormatBR(),
		"reversals", sheet.ReversalTotal.FormatBR(),
		"skipped_rows", sheet.SkippedRows)

	rep, err := eng.Reconcile(batch.Invoices, sheet.Transactions)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(opts.outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}
	if err := exporter.WriteWorkbook(rep, sheet, opts.outputPath); err != nil {
		return err
	}
	logger.Info("workbook written", "path", opts.outputPath)

	if opts.csvPath != "" {
		if err := exporter.WriteCSV(rep, opts.csvPath); err != nil {
			return err
		}
		logger.Info("csv written", "path", opts.csvPath)
	}

	entry := auditlog.NewEntry(rep, engineCfg.ClosingDate, len(batch.Invoices), opts.outputPath)
	if err := auditlog.Append(opts.logRoot, entry); err != nil {
		logger.Warn("audit log write failed", "error", err)
	}

	printSummary(rep, sheet)
	return nil
}

// printSummary renders the terminal breakdown of one pass.
func printSummary(rep *report.Report, sheet importer.SheetData) {
	fmt.Printf("\nTotal processado: %d\n", rep.Total())
	for _, s := range rep.Summary() {
		fmt.Printf("  %-22s %6d  (%5.1f%%)  %s\n", s.Category.Label(), s.Count, s.Percentage, s.Declared.FormatBR())
	}
	fmt.Printf("\nValor declarado total: %s\n", sheet.DeclaredTotal.FormatBR())
	if !sheet.CanceledTotal.IsZero() {
		fmt.Printf("Cancelamentos:         %s\n", sheet.CanceledTotal.FormatBR())
	}
	if !sheet.ReversalTotal.IsZero() {
		fmt.Printf("Estornos:              %s\n", sheet.ReversalTotal.FormatBR())
	}
}
