// Package extract converts uploaded binary content into searchable plain
// text. Extraction is best-effort: a file the service cannot read yields
// empty content, never an error, so uploads are never blocked.
package extract

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/lk2023060901/cloud-drive-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// Extractor converts one class of file content to plain text.
type Extractor interface {
	Extract(ctx context.Context, reader io.Reader) (string, error)

	// SupportedExts returns the normalized extensions this extractor
	// handles, without the leading dot.
	SupportedExts() []string
}

// Service dispatches to an Extractor by file extension.
type Service struct {
	extractors map[string]Extractor
	logger     *logger.Logger
}

// NewService registers the built-in extractors.
func NewService(lgr *logger.Logger) *Service {
	if lgr == nil {
		lgr = logger.L()
	}
	s := &Service{
		extractors: make(map[string]Extractor),
		logger:     lgr,
	}

	s.register(NewTextExtractor())
	s.register(NewPDFExtractor())
	s.register(NewDOCXExtractor())
	s.register(NewImageExtractor())

	return s
}

func (s *Service) register(e Extractor) {
	for _, ext := range e.SupportedExts() {
		s.extractors[ext] = e
	}
}

// Extract returns the text content of the named file, or "" when the
// extension is unknown or extraction fails for any reason. Panics from
// underlying parsers on corrupt input are absorbed too.
func (s *Service) Extract(ctx context.Context, filename string, reader io.Reader) (content string) {
	ext := NormalizeExt(filename)

	e, ok := s.extractors[ext]
	if !ok {
		return ""
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("text extraction panicked",
				zap.String("filename", filename),
				zap.Any("panic", r))
			content = ""
		}
	}()

	text, err := e.Extract(ctx, reader)
	if err != nil {
		s.logger.Warn("text extraction failed",
			zap.String("filename", filename),
			zap.String("ext", ext),
			zap.Error(err))
		return ""
	}
	return text
}

// NormalizeExt returns the lower-cased extension of filename without the
// leading dot.
func NormalizeExt(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}
