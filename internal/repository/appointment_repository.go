package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/appointment-parser/internal/domain"
)

// AppointmentRepository persists resolved appointments together with the
// raw text and entity phrases that produced them.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) error
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Appointment, error)
}

type appointmentRepository struct {
	pool *pgxpool.Pool
}

// NewAppointmentRepository builds the repository.
func NewAppointmentRepository(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepository{pool: pool}
}

func (r *appointmentRepository) Create(ctx context.Context, appt *domain.Appointment) error {
	entities, err := json.Marshal(appt.Entities)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO appointments (department, date, time, tz, raw_text, entities)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		appt.Department,
		appt.Date,
		appt.Time,
		appt.TZ,
		appt.RawText,
		entities,
	).Scan(&appt.ID, &appt.CreatedAt)
}

func (r *appointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	const query = `
        SELECT id, department, date, time, tz, raw_text, entities, created_at
        FROM appointments WHERE id=$1`
	return scanAppointment(r.pool.QueryRow(ctx, query, id))
}

func (r *appointmentRepository) ListRecent(ctx context.Context, limit int) ([]domain.Appointment, error) {
	const query = `
        SELECT id, department, date, time, tz, raw_text, entities, created_at
        FROM appointments ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *appt)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var appt domain.Appointment
	var entities []byte
	if err := row.Scan(
		&appt.ID,
		&appt.Department,
		&appt.Date,
		&appt.Time,
		&appt.TZ,
		&appt.RawText,
		&entities,
		&appt.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(entities) > 0 {
		if err := json.Unmarshal(entities, &appt.Entities); err != nil {
			return nil, err
		}
	}
	return &appt, nil
}
