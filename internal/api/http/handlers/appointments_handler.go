package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/appointment-parser/internal/api/dto"
	"github.com/spec-kit/appointment-parser/internal/service"
)

// AppointmentsHandler serves stored appointment records.
type AppointmentsHandler struct {
	service *service.AppointmentService
}

// NewAppointmentsHandler constructs handler.
func NewAppointmentsHandler(appointmentService *service.AppointmentService) *AppointmentsHandler {
	return &AppointmentsHandler{service: appointmentService}
}

// List GET /appointments.
func (h *AppointmentsHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	appointments, err := h.service.ListAppointments(c.UserContext(), limit)
	if err != nil {
		return err
	}
	items := make([]dto.AppointmentResponse, 0, len(appointments))
	for i := range appointments {
		items = append(items, dto.NewAppointmentResponse(&appointments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /appointments/:id.
func (h *AppointmentsHandler) Get(c *fiber.Ctx) error {
	appt, err := h.service.GetAppointment(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAppointmentResponse(appt)})
}
