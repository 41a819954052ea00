package domain

// PipelineResult is the outcome of one pipeline run. It has exactly two
// variants, Resolved and NeedsClarification, so callers switch over the
// concrete type rather than probing optional fields.
type PipelineResult interface {
	pipelineResult()
}

// Resolved carries the final appointment together with every stage artifact.
type Resolved struct {
	RawText     RawTextResult
	Entities    EntitySet
	Normalized  NormalizedAppointment
	Appointment AppointmentRecord
}

// NeedsClarification signals that the input was too ambiguous to answer.
// It retains whichever artifacts were computed before the pipeline halted.
type NeedsClarification struct {
	Reason     string
	RawText    *RawTextResult
	Entities   *EntitySet
	Normalized *NormalizedAppointment
}

func (Resolved) pipelineResult()           {}
func (NeedsClarification) pipelineResult() {}
