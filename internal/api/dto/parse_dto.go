package dto

import (
	"github.com/spec-kit/appointment-parser/internal/domain"
)

// ParseTextRequest is the JSON body accepted for text-mode requests.
// Image-mode requests arrive as multipart forms instead.
type ParseTextRequest struct {
	Mode string `json:"mode"`
	Text string `json:"text"`
}

// StepRawText mirrors the acquisition artifact in responses.
type StepRawText struct {
	RawText    string  `json:"raw_text"`
	Confidence float64 `json:"confidence"`
}

// StepEntities mirrors the extraction artifact in responses.
type StepEntities struct {
	Entities   domain.EntityPhrases `json:"entities"`
	Confidence float64              `json:"entities_confidence"`
}

// StepNormalized mirrors the normalization artifact in responses.
type StepNormalized struct {
	Normalized *domain.NormalizedFields `json:"normalized"`
	Confidence float64                  `json:"normalization_confidence"`
}

// FinalOutput carries the assembled appointment.
type FinalOutput struct {
	Appointment domain.AppointmentRecord `json:"appointment"`
	Status      string                   `json:"status"`
}

// ParseResolvedResponse is the success shape: all stage artifacts plus the
// final record.
type ParseResolvedResponse struct {
	Step1 StepRawText    `json:"step1"`
	Step2 StepEntities   `json:"step2"`
	Step3 StepNormalized `json:"step3"`
	Final FinalOutput    `json:"final"`
}

// ParseClarificationResponse is the clarification shape: whichever
// artifacts were computed before the halt, plus the reason.
type ParseClarificationResponse struct {
	Step1   *StepRawText    `json:"step1,omitempty"`
	Step2   *StepEntities   `json:"step2,omitempty"`
	Step3   *StepNormalized `json:"step3,omitempty"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
}

// NewResolvedResponse maps a resolved pipeline result to the wire shape.
func NewResolvedResponse(res domain.Resolved) ParseResolvedResponse {
	return ParseResolvedResponse{
		Step1: StepRawText{RawText: res.RawText.RawText, Confidence: res.RawText.Confidence},
		Step2: StepEntities{Entities: res.Entities.Entities, Confidence: res.Entities.Confidence},
		Step3: StepNormalized{Normalized: res.Normalized.Normalized, Confidence: res.Normalized.Confidence},
		Final: FinalOutput{Appointment: res.Appointment, Status: "ok"},
	}
}

// NewClarificationResponse maps a clarification result to the wire shape.
func NewClarificationResponse(res domain.NeedsClarification) ParseClarificationResponse {
	out := ParseClarificationResponse{
		Status:  "needs_clarification",
		Message: res.Reason,
	}
	if res.RawText != nil {
		out.Step1 = &StepRawText{RawText: res.RawText.RawText, Confidence: res.RawText.Confidence}
	}
	if res.Entities != nil {
		out.Step2 = &StepEntities{Entities: res.Entities.Entities, Confidence: res.Entities.Confidence}
	}
	if res.Normalized != nil {
		out.Step3 = &StepNormalized{Normalized: res.Normalized.Normalized, Confidence: res.Normalized.Confidence}
	}
	return out
}
