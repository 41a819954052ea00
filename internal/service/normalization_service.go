package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/appointment-parser/internal/domain"
	"github.com/spec-kit/appointment-parser/internal/prompts"
	"github.com/spec-kit/appointment-parser/pkg/util"
)

// NormalizationService resolves the candidate phrases into canonical
// date/time/timezone/department values against a reference "now" in the
// pipeline's single supported timezone.
type NormalizationService struct {
	generator TextGenerator
	timezone  string
	location  *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewNormalizationService constructs the service for the canonical timezone.
func NewNormalizationService(generator TextGenerator, timezone string, logger *zap.Logger) (*NormalizationService, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load pipeline timezone %q: %w", timezone, err)
	}
	return &NormalizationService{
		generator: generator,
		timezone:  timezone,
		location:  loc,
		now:       time.Now,
		logger:    logger,
	}, nil
}

// NormalizeEntities converts a complete phrase set into canonical values.
// The orchestrator guarantees the set is complete before calling; an
// incomplete set here still degrades to the clarification fallback rather
// than spending a model call. Whatever timezone the model reports, the
// result carries the canonical one.
func (s *NormalizationService) NormalizeEntities(ctx context.Context, entities domain.EntitySet) domain.NormalizedAppointment {
	phrases := entities.Entities
	if !phrases.Complete() {
		return normalizationFallback()
	}

	instruction, err := prompts.Normalization(s.timezone)
	if err != nil {
		s.logger.Error("render normalization template", zap.Error(err))
		return normalizationFallback()
	}

	reference := s.now().In(s.location).Format(time.RFC3339)
	details := fmt.Sprintf("Now: %s\nDate phrase: %q\nTime phrase: %q\nDepartment phrase: %q",
		reference, *phrases.DatePhrase, *phrases.TimePhrase, *phrases.Department)

	raw, err := s.generator.GenerateText(ctx, instruction, details)
	if err != nil {
		s.logger.Error("normalization call failed", zap.Error(err))
		return normalizationFallback()
	}

	obj, err := util.ExtractJSONObject(raw)
	if err != nil {
		s.logger.Warn("normalization returned non-JSON", zap.String("response", raw))
		return normalizationFallback()
	}

	var parsed domain.NormalizedAppointment
	if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
		s.logger.Warn("normalization JSON malformed", zap.Error(err))
		return normalizationFallback()
	}
	if parsed.Normalized == nil {
		return normalizationFallback()
	}

	// Hard post-condition: tz is always the canonical zone.
	parsed.Normalized.TZ = s.timezone
	return parsed
}

func normalizationFallback() domain.NormalizedAppointment {
	return domain.NormalizedAppointment{
		Normalized: nil,
		Confidence: 0,
		Ambiguous:  true,
		Reason:     domain.DefaultClarificationReason,
	}
}
