package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/appointment-parser/internal/domain"
	"github.com/spec-kit/appointment-parser/pkg/util"
)

type stubRecognizer struct {
	result domain.RawTextResult
	calls  int
}

func (s *stubRecognizer) RecognizeText(_ context.Context, _ []byte, _ string) domain.RawTextResult {
	s.calls++
	return s.result
}

type stubExtractor struct {
	result   domain.EntitySet
	calls    int
	lastText string
}

func (s *stubExtractor) ExtractEntities(_ context.Context, rawText string) domain.EntitySet {
	s.calls++
	s.lastText = rawText
	return s.result
}

type spyNormalizer struct {
	result domain.NormalizedAppointment
	calls  int
}

func (s *spyNormalizer) NormalizeEntities(_ context.Context, _ domain.EntitySet) domain.NormalizedAppointment {
	s.calls++
	return s.result
}

func strPtr(s string) *string { return &s }

func completeEntities() domain.EntitySet {
	return domain.EntitySet{
		Entities: domain.EntityPhrases{
			DatePhrase: strPtr("next Friday"),
			TimePhrase: strPtr("3pm"),
			Department: strPtr("dentist"),
		},
		Confidence: 0.95,
	}
}

func normalizedDentistry() domain.NormalizedAppointment {
	return domain.NormalizedAppointment{
		Normalized: &domain.NormalizedFields{
			Date:                "2026-09-04",
			Time:                "15:00",
			TZ:                  "Asia/Kolkata",
			DepartmentCanonical: "Dentistry",
		},
		Confidence: 0.92,
	}
}

func newTestPipeline(ocr *stubRecognizer, extractor *stubExtractor, normalizer *spyNormalizer) *PipelineService {
	return NewPipelineService(PipelineDependencies{
		OCR:        ocr,
		Extractor:  extractor,
		Normalizer: normalizer,
		Logger:     zap.NewNop(),
	})
}

func assertInputError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	de := util.ToDomainError(err)
	assert.Equal(t, "INVALID_INPUT", de.Code)
}

func TestParseMissingModeIsInputError(t *testing.T) {
	pipeline := newTestPipeline(&stubRecognizer{}, &stubExtractor{}, &spyNormalizer{})

	result, err := pipeline.Parse(context.Background(), ParseInput{Text: "Book dentist next Friday at 3pm"})
	assertInputError(t, err)
	assert.Nil(t, result)
}

func TestParseUnknownModeIsInputError(t *testing.T) {
	pipeline := newTestPipeline(&stubRecognizer{}, &stubExtractor{}, &spyNormalizer{})

	result, err := pipeline.Parse(context.Background(), ParseInput{Mode: "voice", Text: "hello"})
	assertInputError(t, err)
	assert.Nil(t, result)
}

func TestParseEmptyTextIsInputErrorNotClarification(t *testing.T) {
	extractor := &stubExtractor{}
	pipeline := newTestPipeline(&stubRecognizer{}, extractor, &spyNormalizer{})

	for _, text := range []string{"", "   ", "\n\t "} {
		result, err := pipeline.Parse(context.Background(), ParseInput{Mode: domain.ParseModeText, Text: text})
		assertInputError(t, err)
		assert.Nil(t, result)
	}
	assert.Zero(t, extractor.calls)
}

func TestParseImageModeWithoutImageIsInputError(t *testing.T) {
	ocr := &stubRecognizer{}
	pipeline := newTestPipeline(ocr, &stubExtractor{}, &spyNormalizer{})

	result, err := pipeline.Parse(context.Background(), ParseInput{Mode: domain.ParseModeImage})
	assertInputError(t, err)
	assert.Nil(t, result)
	assert.Zero(t, ocr.calls)
}

func TestParseImageModeEmptyOCRTextIsInputError(t *testing.T) {
	ocr := &stubRecognizer{result: domain.RawTextResult{RawText: "", Confidence: 0.0}}
	pipeline := newTestPipeline(ocr, &stubExtractor{}, &spyNormalizer{})

	_, err := pipeline.Parse(context.Background(), ParseInput{
		Mode:          domain.ParseModeImage,
		Image:         []byte{0xff, 0xd8},
		ImageMimeType: "image/jpeg",
	})
	assertInputError(t, err)
	assert.Equal(t, 1, ocr.calls)
}

func TestParseImageModeFeedsOCRTextToExtraction(t *testing.T) {
	ocr := &stubRecognizer{result: domain.RawTextResult{RawText: "Cardiology on 2026-09-10 at 10:00", Confidence: 0.9}}
	extractor := &stubExtractor{result: domain.EntitySet{Ambiguous: true, Reason: "Ambiguous date"}}
	pipeline := newTestPipeline(ocr, extractor, &spyNormalizer{})

	result, err := pipeline.Parse(context.Background(), ParseInput{
		Mode:          domain.ParseModeImage,
		Image:         []byte{0xff, 0xd8},
		ImageMimeType: "image/jpeg",
	})
	require.NoError(t, err)
	assert.Equal(t, "Cardiology on 2026-09-10 at 10:00", extractor.lastText)

	clarification, ok := result.(domain.NeedsClarification)
	require.True(t, ok)
	require.NotNil(t, clarification.RawText)
	assert.Equal(t, 0.9, clarification.RawText.Confidence)
}

func TestParseTextModeDoesNotInvokeOCR(t *testing.T) {
	ocr := &stubRecognizer{}
	extractor := &stubExtractor{result: completeEntities()}
	normalizer := &spyNormalizer{result: normalizedDentistry()}
	pipeline := newTestPipeline(ocr, extractor, normalizer)

	// Image bytes present without the flag: mode stays explicit.
	_, err := pipeline.Parse(context.Background(), ParseInput{
		Mode:  domain.ParseModeText,
		Text:  "Book dentist next Friday at 3pm",
		Image: []byte{0xff, 0xd8},
	})
	require.NoError(t, err)
	assert.Zero(t, ocr.calls)
}

func TestParseExtractionAmbiguityHalts(t *testing.T) {
	extractor := &stubExtractor{result: domain.EntitySet{
		Entities:  domain.EntityPhrases{Department: strPtr("doctor")},
		Ambiguous: true,
		Reason:    "Department unclear",
	}}
	normalizer := &spyNormalizer{}
	pipeline := newTestPipeline(&stubRecognizer{}, extractor, normalizer)

	result, err := pipeline.Parse(context.Background(), ParseInput{Mode: domain.ParseModeText, Text: "see a doctor tomorrow"})
	require.NoError(t, err)

	clarification, ok := result.(domain.NeedsClarification)
	require.True(t, ok)
	assert.Equal(t, "Department unclear", clarification.Reason)
	assert.NotNil(t, clarification.RawText)
	assert.NotNil(t, clarification.Entities)
	assert.Nil(t, clarification.Normalized)
	assert.Zero(t, normalizer.calls)
}

func TestParseExtractionAmbiguityWithoutReasonUsesDefault(t *testing.T) {
	extractor := &stubExtractor{result: domain.EntitySet{Ambiguous: true}}
	pipeline := newTestPipeline(&stubRecognizer{}, extractor, &spyNormalizer{})

	result, err := pipeline.Parse(context.Background(), ParseInput{Mode: domain.ParseModeText, Text: "something vague"})
	require.NoError(t, err)

	clarification, ok := result.(domain.NeedsClarification)
	require.True(t, ok)
	assert.Equal(t, domain.DefaultClarificationReason, clarification.Reason)
}

func TestParseMissingPhraseNeverReachesNormalizer(t *testing.T) {
	cases := map[string]domain.EntityPhrases{
		"no date":       {TimePhrase: strPtr("3pm"), Department: strPtr("dentist")},
		"no time":       {DatePhrase: strPtr("next Friday"), Department: strPtr("dentist")},
		"no department": {DatePhrase: strPtr("next Friday"), TimePhrase: strPtr("3pm")},
		"all missing":   {},
	}
	for name, phrases := range cases {
		t.Run(name, func(t *testing.T) {
			extractor := &stubExtractor{result: domain.EntitySet{Entities: phrases, Confidence: 0.8}}
			normalizer := &spyNormalizer{}
			pipeline := newTestPipeline(&stubRecognizer{}, extractor, normalizer)

			result, err := pipeline.Parse(context.Background(), ParseInput{Mode: domain.ParseModeText, Text: "Book dentist next Friday at 3pm"})
			require.NoError(t, err)

			clarification, ok := result.(domain.NeedsClarification)
			require.True(t, ok)
			assert.Equal(t, domain.DefaultClarificationReason, clarification.Reason)
			assert.Nil(t, clarification.Normalized)
			assert.Zero(t, normalizer.calls, "normalizer must not be invoked with a partial entity set")
		})
	}
}

func TestParseNormalizationAmbiguityHalts(t *testing.T) {
	extractor := &stubExtractor{result: completeEntities()}
	normalizer := &spyNormalizer{result: domain.NormalizedAppointment{
		Ambiguous: true,
		Reason:    "Date phrase resolves to a past date",
	}}
	pipeline := newTestPipeline(&stubRecognizer{}, extractor, normalizer)

	result, err := pipeline.Parse(context.Background(), ParseInput{Mode: domain.ParseModeText, Text: "Book dentist last Friday at 3pm"})
	require.NoError(t, err)

	clarification, ok := result.(domain.NeedsClarification)
	require.True(t, ok)
	assert.Equal(t, "Date phrase resolves to a past date", clarification.Reason)
	assert.NotNil(t, clarification.RawText)
	assert.NotNil(t, clarification.Entities)
	assert.NotNil(t, clarification.Normalized)
	assert.Equal(t, 1, normalizer.calls)
}

func TestParseNormalizationWithoutReasonUsesDefault(t *testing.T) {
	extractor := &stubExtractor{result: completeEntities()}
	normalizer := &spyNormalizer{result: domain.NormalizedAppointment{Ambiguous: true}}
	pipeline := newTestPipeline(&stubRecognizer{}, extractor, normalizer)

	result, err := pipeline.Parse(context.Background(), ParseInput{Mode: domain.ParseModeText, Text: "Book dentist next Friday at 3pm"})
	require.NoError(t, err)

	clarification, ok := result.(domain.NeedsClarification)
	require.True(t, ok)
	assert.Equal(t, domain.DefaultClarificationReason, clarification.Reason)
}

func TestParseResolvesDentistScenario(t *testing.T) {
	extractor := &stubExtractor{result: completeEntities()}
	normalizer := &spyNormalizer{result: normalizedDentistry()}
	pipeline := newTestPipeline(&stubRecognizer{}, extractor, normalizer)

	result, err := pipeline.Parse(context.Background(), ParseInput{Mode: domain.ParseModeText, Text: "Book dentist next Friday at 3pm"})
	require.NoError(t, err)

	resolved, ok := result.(domain.Resolved)
	require.True(t, ok)
	assert.Equal(t, domain.AppointmentRecord{
		Department: "Dentistry",
		Date:       "2026-09-04",
		Time:       "15:00",
		TZ:         "Asia/Kolkata",
	}, resolved.Appointment)
	assert.Equal(t, "Book dentist next Friday at 3pm", resolved.RawText.RawText)
	assert.Equal(t, 0.9, resolved.RawText.Confidence)
}

func TestParseDepartmentFallsBackToRawPhrase(t *testing.T) {
	extractor := &stubExtractor{result: completeEntities()}
	normalized := normalizedDentistry()
	normalized.Normalized.DepartmentCanonical = ""
	normalizer := &spyNormalizer{result: normalized}
	pipeline := newTestPipeline(&stubRecognizer{}, extractor, normalizer)

	result, err := pipeline.Parse(context.Background(), ParseInput{Mode: domain.ParseModeText, Text: "Book dentist next Friday at 3pm"})
	require.NoError(t, err)

	resolved, ok := result.(domain.Resolved)
	require.True(t, ok)
	assert.Equal(t, "dentist", resolved.Appointment.Department)
}

func TestParseIsIdempotentWithDeterministicAdapters(t *testing.T) {
	extractor := &stubExtractor{result: completeEntities()}
	normalizer := &spyNormalizer{result: normalizedDentistry()}
	pipeline := newTestPipeline(&stubRecognizer{}, extractor, normalizer)

	input := ParseInput{Mode: domain.ParseModeText, Text: "Book dentist next Friday at 3pm"}
	first, err := pipeline.Parse(context.Background(), input)
	require.NoError(t, err)
	second, err := pipeline.Parse(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
