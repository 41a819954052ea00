package dto

import (
	"time"

	"github.com/spec-kit/appointment-parser/internal/domain"
)

// AppointmentResponse renders a stored appointment.
type AppointmentResponse struct {
	ID         string               `json:"id"`
	Department string               `json:"department"`
	Date       string               `json:"date"`
	Time       string               `json:"time"`
	TZ         string               `json:"tz"`
	RawText    string               `json:"raw_text"`
	Entities   domain.EntityPhrases `json:"entities"`
	CreatedAt  time.Time            `json:"created_at"`
}

// NewAppointmentResponse maps a stored appointment to the wire shape.
func NewAppointmentResponse(appt *domain.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:         appt.ID,
		Department: appt.Department,
		Date:       appt.Date,
		Time:       appt.Time,
		TZ:         appt.TZ,
		RawText:    appt.RawText,
		Entities:   appt.Entities,
		CreatedAt:  appt.CreatedAt,
	}
}
