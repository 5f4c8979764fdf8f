package service

import (
	"errors"
	"fmt"
	"strings"

	"docdrive/internal/domain"

	"github.com/gen2brain/go-fitz"
)

// PDFExtractor extracts plain text from PDF bytes using MuPDF. A page whose
// extraction fails is logged and skipped; the document as a whole only
// fails when it has no pages or no page yields any text.
type PDFExtractor struct {
	logger domain.Logger
}

// NewPDFExtractor creates a new PDF text extractor.
func NewPDFExtractor(logger domain.Logger) *PDFExtractor {
	return &PDFExtractor{logger: logger}
}

// PageCount parses the document and returns its page count. It also serves
// as the validator's structural-parse capability.
func (e *PDFExtractor) PageCount(data []byte) (int, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()
	return doc.NumPage(), nil
}

// Extract returns the document text, pages concatenated in order with a
// page marker before each one.
func (e *PDFExtractor) Extract(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("PDF extraction failed: %w", err)
	}
	defer doc.Close()

	total := doc.NumPage()
	if total == 0 {
		return "", errors.New("PDF has no pages")
	}

	pages := make([]pageText, 0, total)
	for i := 0; i < total; i++ {
		text, err := doc.Text(i)
		if err != nil {
			e.logger.Warn("Failed to extract text from page", "page", i+1, "total", total, "error", err)
		}
		pages = append(pages, pageText{number: i + 1, text: text, err: err})
	}

	result, extracted, err := buildDocumentText(pages, total)
	if err != nil {
		return "", err
	}
	e.logger.Info("Extracted text from PDF", "pages_with_text", extracted, "total_pages", total)
	return result, nil
}

type pageText struct {
	number int
	text   string
	err    error
}

// buildDocumentText concatenates the usable pages in page order, each
// prefixed with a "Page N:" marker and separated by blank lines. Failed and
// empty pages are dropped; an entirely empty result is an error naming the
// scanned page count.
func buildDocumentText(pages []pageText, totalPages int) (string, int, error) {
	var sb strings.Builder
	extracted := 0
	for _, page := range pages {
		if page.err != nil {
			continue
		}
		text := strings.TrimSpace(page.text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "Page %d:\n%s", page.number, text)
		extracted++
	}

	result := strings.TrimSpace(sb.String())
	if result == "" {
		return "", 0, fmt.Errorf("No text content found in PDF (%d pages scanned)", totalPages)
	}
	return result, extracted, nil
}
