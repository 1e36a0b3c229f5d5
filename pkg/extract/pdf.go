package extract

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extraction failure modes. They all surface to callers as job failure
// reasons, so the messages stay short and user-readable.
var (
	ErrFileNotFound  = errors.New("document file not found")
	ErrNotPDF        = errors.New("document is not a PDF")
	ErrEmptyDocument = errors.New("document has no pages")
	ErrNoText        = errors.New("no extractable text in document")
)

// PageBreak separates page texts in the extracted output.
const PageBreak = "\n\n--- PAGE BREAK ---\n\n"

// TextExtractor pulls plain text out of a local document file.
type TextExtractor interface {
	ExtractText(path string) (string, error)
}

// PDFExtractor implements TextExtractor for PDF files.
type PDFExtractor struct{}

// NewPDFExtractor creates a PDF text extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// ExtractText reads every page of the PDF at path and joins the page texts
// with PageBreak. Scanned or image-only PDFs yield ErrNoText.
func (e *PDFExtractor) ExtractText(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return "", fmt.Errorf("%w: %s", ErrNotPDF, path)
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	if reader.NumPage() == 0 {
		return "", ErrEmptyDocument
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not fail the document.
			continue
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, strings.TrimSpace(text))
		}
	}

	if len(pages) == 0 {
		return "", ErrNoText
	}

	return strings.Join(pages, PageBreak), nil
}
