package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/confronto-dev/confronto/internal/config"
)

func newInitCommand() *cobra.Command {
	var closingDate string
	var recipientID string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a reconciliation workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, closingDate, recipientID)
		},
	}

	cmd.Flags().StringVar(&closingDate, "closing-date", "", "reconciliation closing date (YYYY-MM-DD, required)")
	_ = cmd.MarkFlagRequired("closing-date")
	cmd.Flags().StringVar(&recipientID, "recipient", "", "target recipient CNPJ (required)")
	_ = cmd.MarkFlagRequired("recipient")

	return cmd
}

func runInit(dir, closingDate, recipientID string) error {
	for _, d := range []string{"invoices", "outputs", "logs"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default()
	cfg.ClosingDate = closingDate
	cfg.TargetRecipientID = recipientID
	if err := config.Save(filepath.Join(dir, "confronto.yaml"), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "invoices", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	fmt.Printf("Initialized reconciliation workspace in %s\n", dir)
	return nil
}
