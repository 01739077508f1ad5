// Package auditlog keeps an append-only JSONL trail of reconciliation
// runs, one line per run, so past executions stay inspectable.
package auditlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/confronto-dev/confronto/internal/report"
)

const (
	logDir  = "logs"
	logFile = "confronto-log.jsonl"
)

// Entry is one logged reconciliation run.
type Entry struct {
	Timestamp     time.Time      `json:"timestamp"`
	ClosingDate   string         `json:"closing_date"`
	Invoices      int            `json:"invoices"`
	Transactions  int            `json:"transactions"`
	Categories    map[string]int `json:"categories"`
	DeclaredTotal string         `json:"declared_total"`
	OutputPath    string         `json:"output_path,omitempty"`
}

// NewEntry builds an Entry from a finished report.
func NewEntry(rep *report.Report, closingDate time.Time, invoices int, outputPath string) Entry {
	categories := make(map[string]int)
	for _, s := range rep.Summary() {
		categories[string(s.Category)] = s.Count
	}
	return Entry{
		Timestamp:     time.Now(),
		ClosingDate:   closingDate.Format("2006-01-02"),
		Invoices:      invoices,
		Transactions:  rep.Total(),
		Categories:    categories,
		DeclaredTotal: rep.DeclaredTotal().String(),
		OutputPath:    outputPath,
	}
}

// Append writes e to <root>/logs/confronto-log.jsonl, creating the
// directory and file as needed.
func Append(root string, e Entry) error {
	dir := filepath.Join(root, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, logFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding audit entry: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("writing audit entry: %w", err)
	}
	return nil
}

// Read returns all entries from <root>/logs/confronto-log.jsonl, oldest
// first. A missing file yields an empty slice.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(root, logDir, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("audit log line %d: %w", lineNum, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	return entries, nil
}
