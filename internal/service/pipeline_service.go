package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/appointment-parser/internal/domain"
	"github.com/spec-kit/appointment-parser/pkg/util"
)

// TextRecognizer acquires raw text from an image. Failures are folded into
// the empty result, never returned as errors.
type TextRecognizer interface {
	RecognizeText(ctx context.Context, image []byte, mimeType string) domain.RawTextResult
}

// EntityExtractor derives candidate phrases from raw text.
type EntityExtractor interface {
	ExtractEntities(ctx context.Context, rawText string) domain.EntitySet
}

// EntityNormalizer resolves candidate phrases into canonical values.
type EntityNormalizer interface {
	NormalizeEntities(ctx context.Context, entities domain.EntitySet) domain.NormalizedAppointment
}

// ParseInput is one appointment request. Mode is explicit: the pipeline
// never infers image mode from the presence of image bytes.
type ParseInput struct {
	Mode          domain.ParseMode
	Text          string
	Image         []byte
	ImageMimeType string
}

// Confidence attached to raw text supplied directly by the caller.
const textModeConfidence = 0.9

// PipelineDependencies bundles the stage adapters.
type PipelineDependencies struct {
	OCR        TextRecognizer
	Extractor  EntityExtractor
	Normalizer EntityNormalizer
	Logger     *zap.Logger
}

// PipelineService runs the staged extraction-and-normalization pipeline:
// acquisition, entity extraction, normalization, assembly. Each stage either
// feeds the next or halts the run with a clarification result that still
// carries every artifact computed so far. The service holds no state across
// invocations.
type PipelineService struct {
	ocr        TextRecognizer
	extractor  EntityExtractor
	normalizer EntityNormalizer
	logger     *zap.Logger
}

// NewPipelineService constructs the orchestrator.
func NewPipelineService(deps PipelineDependencies) *PipelineService {
	return &PipelineService{
		ocr:        deps.OCR,
		extractor:  deps.Extractor,
		normalizer: deps.Normalizer,
		logger:     deps.Logger,
	}
}

// Parse runs one request through the pipeline. It returns an error only for
// caller misuse (missing mode, missing image in image mode, empty resolved
// text); every model-side problem surfaces as a NeedsClarification result.
func (s *PipelineService) Parse(ctx context.Context, input ParseInput) (domain.PipelineResult, error) {
	switch input.Mode {
	case domain.ParseModeText, domain.ParseModeImage:
	case "":
		return nil, util.NewInputError("mode is required")
	default:
		return nil, util.NewInputError(`mode must be "text" or "image"`)
	}

	rawText := domain.RawTextResult{RawText: input.Text, Confidence: textModeConfidence}
	if input.Mode == domain.ParseModeImage {
		if len(input.Image) == 0 {
			return nil, util.NewInputError("image file is required for mode=image")
		}
		rawText = s.ocr.RecognizeText(ctx, input.Image, input.ImageMimeType)
	}

	if strings.TrimSpace(rawText.RawText) == "" {
		return nil, util.NewInputError("no text to parse")
	}

	entities := s.extractor.ExtractEntities(ctx, rawText.RawText)
	if entities.Ambiguous {
		s.logger.Debug("pipeline halted at extraction", zap.String("reason", entities.Reason))
		return domain.NeedsClarification{
			Reason:   reasonOrDefault(entities.Reason),
			RawText:  &rawText,
			Entities: &entities,
		}, nil
	}

	// Local guard: a partial phrase set never reaches the normalizer, so no
	// model call is spent on input that cannot succeed.
	if !entities.Entities.Complete() {
		s.logger.Debug("pipeline halted on incomplete entity set")
		return domain.NeedsClarification{
			Reason:   domain.DefaultClarificationReason,
			RawText:  &rawText,
			Entities: &entities,
		}, nil
	}

	normalized := s.normalizer.NormalizeEntities(ctx, entities)
	if normalized.Ambiguous || normalized.Normalized == nil {
		s.logger.Debug("pipeline halted at normalization", zap.String("reason", normalized.Reason))
		return domain.NeedsClarification{
			Reason:     reasonOrDefault(normalized.Reason),
			RawText:    &rawText,
			Entities:   &entities,
			Normalized: &normalized,
		}, nil
	}

	department := normalized.Normalized.DepartmentCanonical
	if department == "" && entities.Entities.Department != nil {
		department = *entities.Entities.Department
	}

	return domain.Resolved{
		RawText:    rawText,
		Entities:   entities,
		Normalized: normalized,
		Appointment: domain.AppointmentRecord{
			Department: department,
			Date:       normalized.Normalized.Date,
			Time:       normalized.Normalized.Time,
			TZ:         normalized.Normalized.TZ,
		},
	}, nil
}

func reasonOrDefault(reason string) string {
	if strings.TrimSpace(reason) == "" {
		return domain.DefaultClarificationReason
	}
	return reason
}
