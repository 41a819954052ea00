package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/appointment-parser/internal/domain"
	"github.com/spec-kit/appointment-parser/internal/prompts"
	"github.com/spec-kit/appointment-parser/pkg/util"
)

// TextGenerator runs an instruction plus context strings through the text
// model and returns its raw answer.
type TextGenerator interface {
	GenerateText(ctx context.Context, parts ...string) (string, error)
}

const (
	reasonNonJSON         = "Model returned non-JSON."
	reasonExtractionError = "Internal error in entity extraction."
)

// ExtractionService derives the date/time/department candidate phrases from
// raw text. The ambiguity policy itself lives in the instruction template;
// this adapter only enforces the shape of the answer.
type ExtractionService struct {
	generator TextGenerator
	logger    *zap.Logger
}

// NewExtractionService constructs the service.
func NewExtractionService(generator TextGenerator, logger *zap.Logger) *ExtractionService {
	return &ExtractionService{generator: generator, logger: logger}
}

// ExtractEntities asks the model for the three candidate phrases. Call
// failures and unparseable answers both collapse into an ambiguous set;
// the orchestrator only ever inspects the ambiguity flag.
func (s *ExtractionService) ExtractEntities(ctx context.Context, rawText string) domain.EntitySet {
	raw, err := s.generator.GenerateText(ctx,
		prompts.Extraction(),
		fmt.Sprintf(`User text: """%s"""`, rawText),
	)
	if err != nil {
		s.logger.Error("entity extraction call failed", zap.Error(err))
		return extractionFallback(reasonExtractionError)
	}

	obj, err := util.ExtractJSONObject(raw)
	if err != nil {
		s.logger.Warn("entity extraction returned non-JSON", zap.String("response", raw))
		return extractionFallback(reasonNonJSON)
	}

	var parsed domain.EntitySet
	if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
		s.logger.Warn("entity extraction JSON malformed", zap.Error(err))
		return extractionFallback(reasonNonJSON)
	}
	return parsed
}

func extractionFallback(reason string) domain.EntitySet {
	return domain.EntitySet{
		Confidence: 0,
		Ambiguous:  true,
		Reason:     reason,
	}
}
