package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/appointment-parser/internal/domain"
	"github.com/spec-kit/appointment-parser/internal/prompts"
)

// VisionGenerator reads text out of an image via the generation service.
type VisionGenerator interface {
	GenerateVision(ctx context.Context, image []byte, mimeType, instruction string) (string, error)
}

// RecognitionCache memoizes OCR results keyed by image content.
type RecognitionCache interface {
	Get(ctx context.Context, image []byte) (domain.RawTextResult, bool)
	Set(ctx context.Context, image []byte, result domain.RawTextResult)
}

// Confidence reported when the vision call succeeds. The service does not
// return a real confidence, so acquisition pins a fixed one.
const ocrSuccessConfidence = 0.9

// OCRService turns a photographed note into raw text. A failed call
// produces the empty fallback result; it never surfaces an error.
type OCRService struct {
	vision VisionGenerator
	cache  RecognitionCache
	logger *zap.Logger
}

// NewOCRService constructs the service. The cache may be nil.
func NewOCRService(vision VisionGenerator, ocrCache RecognitionCache, logger *zap.Logger) *OCRService {
	return &OCRService{vision: vision, cache: ocrCache, logger: logger}
}

// RecognizeText extracts plain text from the image.
func (s *OCRService) RecognizeText(ctx context.Context, image []byte, mimeType string) domain.RawTextResult {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, image); ok {
			return cached
		}
	}

	text, err := s.vision.GenerateVision(ctx, image, mimeType, prompts.OCR())
	if err != nil {
		s.logger.Warn("ocr call failed", zap.Error(err))
		return domain.RawTextResult{RawText: "", Confidence: 0.0}
	}

	result := domain.RawTextResult{
		RawText:    strings.TrimSpace(text),
		Confidence: ocrSuccessConfidence,
	}
	if s.cache != nil {
		s.cache.Set(ctx, image, result)
	}
	return result
}
