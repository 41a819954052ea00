package domain

import "time"

// DefaultClarificationReason is substituted whenever a stage asks for
// clarification without supplying its own reason.
const DefaultClarificationReason = "Ambiguous date/time or department"

// ParseMode selects how raw text enters the pipeline.
type ParseMode string

const (
	ParseModeText  ParseMode = "text"
	ParseModeImage ParseMode = "image"
)

// RawTextResult is the output of the text-acquisition stage.
type RawTextResult struct {
	RawText    string  `json:"raw_text"`
	Confidence float64 `json:"confidence"`
}

// EntityPhrases holds the three candidate phrases pulled out of raw text.
// A nil field means the phrase was not found.
type EntityPhrases struct {
	DatePhrase *string `json:"date_phrase"`
	TimePhrase *string `json:"time_phrase"`
	Department *string `json:"department"`
}

// Complete reports whether all three phrases are present. Normalization
// must not run against an incomplete set.
func (p EntityPhrases) Complete() bool {
	return p.DatePhrase != nil && p.TimePhrase != nil && p.Department != nil
}

// EntitySet is the output of the entity-extraction stage.
type EntitySet struct {
	Entities   EntityPhrases `json:"entities"`
	Confidence float64       `json:"entities_confidence"`
	Ambiguous  bool          `json:"needs_clarification"`
	Reason     string        `json:"reason,omitempty"`
}

// NormalizedFields are the canonical appointment values.
type NormalizedFields struct {
	Date                string `json:"date"`
	Time                string `json:"time"`
	TZ                  string `json:"tz"`
	DepartmentCanonical string `json:"department_canonical"`
}

// NormalizedAppointment is the output of the normalization stage.
// Normalized is nil whenever the stage asks for clarification.
type NormalizedAppointment struct {
	Normalized *NormalizedFields `json:"normalized"`
	Confidence float64           `json:"normalization_confidence"`
	Ambiguous  bool              `json:"needs_clarification"`
	Reason     string            `json:"reason,omitempty"`
}

// AppointmentRecord is the final structured answer of the pipeline.
type AppointmentRecord struct {
	Department string `json:"department"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	TZ         string `json:"tz"`
}

// Appointment is a stored record: the final answer plus the raw text and
// entity phrases it was derived from.
type Appointment struct {
	ID         string
	Department string
	Date       string
	Time       string
	TZ         string
	RawText    string
	Entities   EntityPhrases
	CreatedAt  time.Time
}

// Record projects the stored row back to the pipeline's answer shape.
func (a *Appointment) Record() AppointmentRecord {
	return AppointmentRecord{
		Department: a.Department,
		Date:       a.Date,
		Time:       a.Time,
		TZ:         a.TZ,
	}
}
