package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/appointment-parser/internal/domain"
	"github.com/spec-kit/appointment-parser/internal/events"
	"github.com/spec-kit/appointment-parser/internal/observability"
	"github.com/spec-kit/appointment-parser/internal/repository"
	"github.com/spec-kit/appointment-parser/pkg/util"
)

// AppointmentService wraps the pipeline with the outward-facing concerns:
// storing resolved records, publishing outcome events, and serving reads
// over stored appointments. The pipeline itself stays free of side effects.
type AppointmentService struct {
	pipeline     *PipelineService
	appointments repository.AppointmentRepository
	dispatcher   events.Dispatcher
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// AppointmentDependencies bundles collaborators for the service.
type AppointmentDependencies struct {
	Pipeline        *PipelineService
	AppointmentRepo repository.AppointmentRepository
	Dispatcher      events.Dispatcher
	Metrics         *observability.Metrics
	Logger          *zap.Logger
}

// NewAppointmentService constructs the service.
func NewAppointmentService(deps AppointmentDependencies) *AppointmentService {
	return &AppointmentService{
		pipeline:     deps.Pipeline,
		appointments: deps.AppointmentRepo,
		dispatcher:   deps.Dispatcher,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
	}
}

// Parse runs the request through the pipeline. A resolved outcome is stored
// durably; a clarification outcome is published but never persisted. The
// parse result is returned to the caller either way; a storage failure is
// logged without discarding the answer.
func (s *AppointmentService) Parse(ctx context.Context, input ParseInput) (domain.PipelineResult, error) {
	result, err := s.pipeline.Parse(ctx, input)
	if err != nil {
		s.metrics.RecordParseOutcome("input_error")
		return nil, err
	}

	switch res := result.(type) {
	case domain.Resolved:
		s.metrics.RecordParseOutcome("resolved")
		s.storeResolved(ctx, res)
	case domain.NeedsClarification:
		s.metrics.RecordParseOutcome("needs_clarification")
		payload := events.ParseClarificationPayload{Reason: res.Reason}
		if res.RawText != nil {
			payload.RawText = res.RawText.RawText
		}
		s.publish(ctx, events.EventParseNeedsClarification, payload)
	}
	return result, nil
}

func (s *AppointmentService) storeResolved(ctx context.Context, res domain.Resolved) {
	appt := &domain.Appointment{
		Department: res.Appointment.Department,
		Date:       res.Appointment.Date,
		Time:       res.Appointment.Time,
		TZ:         res.Appointment.TZ,
		RawText:    res.RawText.RawText,
		Entities:   res.Entities.Entities,
	}
	if s.appointments != nil {
		if err := s.appointments.Create(ctx, appt); err != nil {
			s.logger.Error("persist appointment", zap.Error(err))
		}
	}
	s.publish(ctx, events.EventParseResolved, events.ParseResolvedPayload{
		AppointmentID: appt.ID,
		Department:    appt.Department,
		Date:          appt.Date,
		Time:          appt.Time,
		TZ:            appt.TZ,
	})
}

// GetAppointment returns one stored appointment. The id must be a UUID;
// anything else is rejected before it reaches the database.
func (s *AppointmentService) GetAppointment(ctx context.Context, id string) (*domain.Appointment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, util.NewValidationError("appointment id must be a valid UUID", nil)
	}
	if s.appointments == nil {
		return nil, util.NewNotFound("appointment", nil)
	}
	return s.appointments.GetByID(ctx, id)
}

// ListAppointments returns the most recently stored appointments.
func (s *AppointmentService) ListAppointments(ctx context.Context, limit int) ([]domain.Appointment, error) {
	if s.appointments == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.appointments.ListRecent(ctx, limit)
}

func (s *AppointmentService) publish(ctx context.Context, eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
	if err != nil {
		s.logger.Warn("publish event failed", zap.String("type", string(eventType)), zap.Error(err))
	}
}
