package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventParseResolved           EventType = "parse_resolved"
	EventParseNeedsClarification EventType = "parse_needs_clarification"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ParseResolvedPayload describes a successfully structured appointment.
type ParseResolvedPayload struct {
	AppointmentID string `json:"appointment_id,omitempty"`
	Department    string `json:"department"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	TZ            string `json:"tz"`
}

// ParseClarificationPayload describes a run that halted for clarification.
type ParseClarificationPayload struct {
	Reason  string `json:"reason"`
	RawText string `json:"raw_text,omitempty"`
}
