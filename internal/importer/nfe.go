// Package importer loads the two input collections: NFe invoice XMLs
// (individually or from vendor ZIP batches) and fleet spreadsheet rows.
// It produces normalized records; all matching decisions live in engine.
package importer

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/confronto-dev/confronto/internal/model"
	"github.com/confronto-dev/confronto/internal/money"
)

// nfeEnvelope tolerates both common roots: <nfeProc><NFe><infNFe> and a
// bare <NFe><infNFe>. Field tags carry no namespace so documents with or
// without the NFe namespace both unmarshal.
type nfeEnvelope struct {
	InfNFe *nfeInf `xml:"infNFe"`
	NFe    struct {
		InfNFe *nfeInf `xml:"infNFe"`
	} `xml:"NFe"`
}

type nfeInf struct {
	Ide struct {
		Number string `xml:"nNF"`
		DhEmi  string `xml:"dhEmi"`
		DEmi   string `xml:"dEmi"`
	} `xml:"ide"`
	Emit struct {
		CNPJ string `xml:"CNPJ"`
	} `xml:"emit"`
	Dest struct {
		CNPJ string `xml:"CNPJ"`
	} `xml:"dest"`
	Total struct {
		ICMSTot struct {
			VNF string `xml:"vNF"`
		} `xml:"ICMSTot"`
	} `xml:"total"`
}

// ParseInvoice extracts one Invoice from NFe XML bytes.
func ParseInvoice(data []byte, sourcePath string) (model.Invoice, error) {
	var env nfeEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return model.Invoice{}, fmt.Errorf("parsing %s: %w", sourcePath, err)
	}

	inf := env.InfNFe
	if inf == nil {
		inf = env.NFe.InfNFe
	}
	if inf == nil {
		return model.Invoice{}, fmt.Errorf("parsing %s: no infNFe element", sourcePath)
	}

	if inf.Ide.Number == "" {
		return model.Invoice{}, fmt.Errorf("parsing %s: missing invoice number", sourcePath)
	}

	issued, err := parseEmissionDate(inf.Ide.DhEmi, inf.Ide.DEmi)
	if err != nil {
		return model.Invoice{}, fmt.Errorf("parsing %s: %w", sourcePath, err)
	}

	if inf.Total.ICMSTot.VNF == "" {
		return model.Invoice{}, fmt.Errorf("parsing %s: missing total value", sourcePath)
	}
	total, err := money.Parse(inf.Total.ICMSTot.VNF)
	if err != nil {
		return model.Invoice{}, fmt.Errorf("parsing %s: %w", sourcePath, err)
	}

	issuer := model.NormalizeCNPJ(inf.Emit.CNPJ)
	recipient := model.NormalizeCNPJ(inf.Dest.CNPJ)
	if issuer == "" || recipient == "" {
		return model.Invoice{}, fmt.Errorf("parsing %s: missing issuer or recipient CNPJ", sourcePath)
	}

	return model.Invoice{
		Number:      model.NormalizeNumber(inf.Ide.Number),
		IssueDate:   issued,
		IssuerID:    issuer,
		RecipientID: recipient,
		Total:       total,
		SourcePath:  sourcePath,
	}, nil
}

// parseEmissionDate prefers dhEmi ("2025-09-10T14:03:00-03:00") and falls
// back to the older dEmi ("2025-09-10").
func parseEmissionDate(dhEmi, dEmi string) (time.Time, error) {
	raw := dhEmi
	if raw == "" {
		raw = dEmi
	}
	if raw == "" {
		return time.Time{}, fmt.Errorf("missing emission date")
	}
	datePart, _, _ := strings.Cut(raw, "T")
	issued, err := time.Parse("2006-01-02", datePart)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing emission date %q: %w", raw, err)
	}
	return issued, nil
}

// InvoiceBatch is the outcome of loading a batch of NFe documents.
// Vendor ZIPs routinely contain junk alongside the invoices, so documents
// that fail to parse are skipped and counted instead of failing the load.
type InvoiceBatch struct {
	Invoices []model.Invoice
	Skipped  int
}

// LoadInvoices reads NFe documents from path: a .zip archive, a single
// .xml file, or a directory scanned for both.
func LoadInvoices(path string) (InvoiceBatch, error) {
	info, err := os.Stat(path)
	if err != nil {
		return InvoiceBatch{}, fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".zip":
			return loadZip(path)
		case ".xml":
			return loadXMLFile(path)
		default:
			return InvoiceBatch{}, fmt.Errorf("unsupported invoice source %s", path)
		}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return InvoiceBatch{}, fmt.Errorf("reading invoice dir: %w", err)
	}
	var batch InvoiceBatch
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		sub := filepath.Join(path, e.Name())
		var part InvoiceBatch
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".zip":
			part, err = loadZip(sub)
		case ".xml":
			part, err = loadXMLFile(sub)
		default:
			continue
		}
		if err != nil {
			return InvoiceBatch{}, err
		}
		batch.Invoices = append(batch.Invoices, part.Invoices...)
		batch.Skipped += part.Skipped
	}
	return batch, nil
}

func loadXMLFile(path string) (InvoiceBatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return InvoiceBatch{}, fmt.Errorf("reading %s: %w", path, err)
	}
	inv, err := ParseInvoice(data, path)
	if err != nil {
		return InvoiceBatch{Skipped: 1}, nil
	}
	return InvoiceBatch{Invoices: []model.Invoice{inv}}, nil
}

func loadZip(path string) (InvoiceBatch, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return InvoiceBatch{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer zr.Close()

	var batch InvoiceBatch
	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".xml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			batch.Skipped++
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			batch.Skipped++
			continue
		}
		inv, err := ParseInvoice(data, filepath.Join(path, f.Name))
		if err != nil {
			batch.Skipped++
			continue
		}
		batch.Invoices = append(batch.Invoices, inv)
	}
	return batch, nil
}
