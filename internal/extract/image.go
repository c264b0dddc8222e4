package extract

import (
	"context"
	"fmt"
	"io"

	"github.com/otiai10/gosseract/v2"
)

// ImageExtractor runs optical character recognition over raster images.
type ImageExtractor struct{}

func NewImageExtractor() *ImageExtractor {
	return &ImageExtractor{}
}

func (e *ImageExtractor) Extract(ctx context.Context, reader io.Reader) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read image data: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("failed to load image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to run OCR: %w", err)
	}
	return text, nil
}

func (e *ImageExtractor) SupportedExts() []string {
	return []string{"png", "jpg", "jpeg"}
}
