package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/unidoc/unioffice/common/license"
	"github.com/unidoc/unioffice/document"
)

func init() {
	// UniOffice requires a metered license key. Leave it unset to run
	// in evaluation mode.
	if key := os.Getenv("UNIDOC_LICENSE_API_KEY"); key != "" {
		if err := license.SetMeteredKey(key); err != nil {
			panic(fmt.Sprintf("failed to set unioffice license: %v", err))
		}
	}
}

// DOCXExtractor pulls the paragraph text out of Word documents.
type DOCXExtractor struct{}

func NewDOCXExtractor() *DOCXExtractor {
	return &DOCXExtractor{}
}

func (e *DOCXExtractor) Extract(ctx context.Context, reader io.Reader) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read DOCX data: %w", err)
	}

	doc, err := document.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX document: %w", err)
	}
	defer doc.Close()

	var textBuilder strings.Builder
	for _, para := range doc.Paragraphs() {
		for _, run := range para.Runs() {
			textBuilder.WriteString(run.Text())
		}
		textBuilder.WriteString("\n")
	}

	return textBuilder.String(), nil
}

func (e *DOCXExtractor) SupportedExts() []string {
	return []string{"docx"}
}
