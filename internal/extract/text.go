package extract

import (
	"context"
	"fmt"
	"io"
)

// TextExtractor decodes raw bytes as UTF-8 text.
type TextExtractor struct{}

func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

func (e *TextExtractor) Extract(ctx context.Context, reader io.Reader) (string, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read text content: %w", err)
	}
	return string(content), nil
}

func (e *TextExtractor) SupportedExts() []string {
	return []string{"txt"}
}
