package extract

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// PDFExtractor concatenates the text of every page via go-fitz/MuPDF.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

func (e *PDFExtractor) Extract(ctx context.Context, reader io.Reader) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF data: %w", err)
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var textBuilder strings.Builder
	numPages := doc.NumPage()

	for i := 0; i < numPages; i++ {
		text, err := doc.Text(i)
		if err != nil {
			// Skip pages that cannot be extracted.
			continue
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

func (e *PDFExtractor) SupportedExts() []string {
	return []string{"pdf"}
}
