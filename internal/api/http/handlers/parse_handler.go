package handlers

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/appointment-parser/internal/api/dto"
	"github.com/spec-kit/appointment-parser/internal/domain"
	"github.com/spec-kit/appointment-parser/internal/service"
	apperrors "github.com/spec-kit/appointment-parser/pkg/util"
)

// ParseHandler exposes the parsing pipeline.
type ParseHandler struct {
	service *service.AppointmentService
}

// NewParseHandler constructs handler.
func NewParseHandler(appointmentService *service.AppointmentService) *ParseHandler {
	return &ParseHandler{service: appointmentService}
}

// Parse POST /appointments/parse. Accepts a multipart form with mode, text
// and an optional image file, or a JSON body for text mode. The handler only
// collects the input; mode validation belongs to the pipeline, and the mode
// is never inferred from the presence of an image.
func (h *ParseHandler) Parse(c *fiber.Ctx) error {
	input, err := h.collectInput(c)
	if err != nil {
		return err
	}

	result, err := h.service.Parse(c.UserContext(), input)
	if err != nil {
		return err
	}

	switch res := result.(type) {
	case domain.Resolved:
		return c.JSON(dto.NewResolvedResponse(res))
	case domain.NeedsClarification:
		return c.JSON(dto.NewClarificationResponse(res))
	}
	return apperrors.NewInternalError(nil)
}

func (h *ParseHandler) collectInput(c *fiber.Ctx) (service.ParseInput, error) {
	contentType := c.Get(fiber.HeaderContentType)
	if strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
		var req dto.ParseTextRequest
		if err := c.BodyParser(&req); err != nil {
			return service.ParseInput{}, apperrors.NewValidationError("invalid payload", nil)
		}
		return service.ParseInput{
			Mode: domain.ParseMode(strings.TrimSpace(req.Mode)),
			Text: req.Text,
		}, nil
	}

	input := service.ParseInput{
		Mode: domain.ParseMode(strings.TrimSpace(c.FormValue("mode"))),
		Text: c.FormValue("text"),
	}

	if file, err := c.FormFile("image"); err == nil && file != nil {
		f, err := file.Open()
		if err != nil {
			return service.ParseInput{}, apperrors.NewValidationError("unreadable image attachment", nil)
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return service.ParseInput{}, apperrors.NewValidationError("unreadable image attachment", nil)
		}
		input.Image = data
		input.ImageMimeType = file.Header.Get(fiber.HeaderContentType)
	}
	return input, nil
}
