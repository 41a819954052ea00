package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/appointment-parser/internal/api/http"
	"github.com/spec-kit/appointment-parser/internal/api/http/handlers"
	"github.com/spec-kit/appointment-parser/internal/auth"
	"github.com/spec-kit/appointment-parser/internal/config"
	"github.com/spec-kit/appointment-parser/internal/domain"
	"github.com/spec-kit/appointment-parser/internal/events"
	"github.com/spec-kit/appointment-parser/internal/observability"
	"github.com/spec-kit/appointment-parser/internal/service"
)

type fixedRecognizer struct {
	result domain.RawTextResult
}

func (f *fixedRecognizer) RecognizeText(_ context.Context, _ []byte, _ string) domain.RawTextResult {
	return f.result
}

type fixedExtractor struct {
	result domain.EntitySet
}

func (f *fixedExtractor) ExtractEntities(_ context.Context, _ string) domain.EntitySet {
	return f.result
}

type fixedNormalizer struct {
	result domain.NormalizedAppointment
}

func (f *fixedNormalizer) NormalizeEntities(_ context.Context, _ domain.EntitySet) domain.NormalizedAppointment {
	return f.result
}

func strPtr(s string) *string { return &s }

func newTestApp(t *testing.T, extractor service.EntityExtractor, normalizer service.EntityNormalizer) (*fiber.App, string) {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	pipeline := service.NewPipelineService(service.PipelineDependencies{
		OCR:        &fixedRecognizer{},
		Extractor:  extractor,
		Normalizer: normalizer,
		Logger:     logger,
	})
	appointmentService := service.NewAppointmentService(service.AppointmentDependencies{
		Pipeline:   pipeline,
		Dispatcher: events.NewInMemoryDispatcher(),
		Metrics:    metrics,
		Logger:     logger,
	})

	tokenManager := auth.NewTokenManager("test-secret", 15)
	token, _, err := tokenManager.GenerateToken("test-client")
	require.NoError(t, err)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(nil, nil),
		Auth:           handlers.NewAuthHandler(tokenManager, config.AuthConfig{}),
		Parse:          handlers.NewParseHandler(appointmentService),
		Appointments:   handlers.NewAppointmentsHandler(appointmentService),
		AuthMiddleware: auth.NewAuthMiddleware(tokenManager),
	})
	return app, token
}

func resolvedDentistry() (service.EntityExtractor, service.EntityNormalizer) {
	extractor := &fixedExtractor{result: domain.EntitySet{
		Entities: domain.EntityPhrases{
			DatePhrase: strPtr("next Friday"),
			TimePhrase: strPtr("3pm"),
			Department: strPtr("dentist"),
		},
		Confidence: 0.95,
	}}
	normalizer := &fixedNormalizer{result: domain.NormalizedAppointment{
		Normalized: &domain.NormalizedFields{
			Date:                "2026-09-04",
			Time:                "15:00",
			TZ:                  "Asia/Kolkata",
			DepartmentCanonical: "Dentistry",
		},
		Confidence: 0.92,
	}}
	return extractor, normalizer
}

func doJSON(t *testing.T, app *fiber.App, token string, body map[string]any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/appointments/parse", bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

func TestParseTextModeResolved(t *testing.T) {
	extractor, normalizer := resolvedDentistry()
	app, token := newTestApp(t, extractor, normalizer)

	resp := doJSON(t, app, token, map[string]any{
		"mode": "text",
		"text": "Book dentist next Friday at 3pm",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	final, ok := body["final"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ok", final["status"])

	appointment, ok := final["appointment"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Dentistry", appointment["department"])
	assert.Equal(t, "2026-09-04", appointment["date"])
	assert.Equal(t, "15:00", appointment["time"])
	assert.Equal(t, "Asia/Kolkata", appointment["tz"])

	step1, ok := body["step1"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Book dentist next Friday at 3pm", step1["raw_text"])
}

func TestParseClarificationOmitsStep3(t *testing.T) {
	extractor := &fixedExtractor{result: domain.EntitySet{
		Entities:   domain.EntityPhrases{DatePhrase: strPtr("next Friday"), TimePhrase: strPtr("3pm")},
		Confidence: 0.7,
	}}
	app, token := newTestApp(t, extractor, &fixedNormalizer{})

	resp := doJSON(t, app, token, map[string]any{
		"mode": "text",
		"text": "Book something next Friday at 3pm",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "needs_clarification", body["status"])
	assert.Equal(t, "Ambiguous date/time or department", body["message"])
	assert.Contains(t, body, "step1")
	assert.Contains(t, body, "step2")
	assert.NotContains(t, body, "step3")
}

func TestParseEmptyTextRejected(t *testing.T) {
	extractor, normalizer := resolvedDentistry()
	app, token := newTestApp(t, extractor, normalizer)

	resp := doJSON(t, app, token, map[string]any{"mode": "text", "text": "   "})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "INVALID_INPUT", errObj["code"])
}

func TestParseImageModeWithoutImageRejected(t *testing.T) {
	extractor, normalizer := resolvedDentistry()
	app, token := newTestApp(t, extractor, normalizer)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("mode", "image"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/appointments/parse", &buf)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "INVALID_INPUT", errObj["code"])
}

func TestParseMultipartTextMode(t *testing.T) {
	extractor, normalizer := resolvedDentistry()
	app, token := newTestApp(t, extractor, normalizer)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("mode", "text"))
	require.NoError(t, writer.WriteField("text", "Book dentist next Friday at 3pm"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/appointments/parse", &buf)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Contains(t, body, "final")
}

func TestParseRequiresBearerToken(t *testing.T) {
	extractor, normalizer := resolvedDentistry()
	app, _ := newTestApp(t, extractor, normalizer)

	req := httptest.NewRequest(http.MethodPost, "/appointments/parse", strings.NewReader(`{"mode":"text","text":"x"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
