package model

import "github.com/google/uuid"

// ReportStatus tells a reader whether an empty list means "nothing found"
// or "nothing to judge yet".
type ReportStatus string

const (
	ReportStatusReported  ReportStatus = "reported"
	ReportStatusNoneFound ReportStatus = "none_found"
	ReportStatusNoData    ReportStatus = "no_data"
)

// PerformanceBand is the overall percentage bracket.
type PerformanceBand string

const (
	BandExcellent        PerformanceBand = "excellent"
	BandGood             PerformanceBand = "good"
	BandNeedsImprovement PerformanceBand = "needs_improvement"
)

// Priority ranks a study recommendation.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Feedback is the generated study guidance embedded in a TestResult.
type Feedback struct {
	OverallBand     PerformanceBand      `json:"overall_band"`
	OverallMessage  string               `json:"overall_message"`
	Strengths       StrengthReport       `json:"strengths"`
	Weaknesses      WeaknessReport       `json:"weaknesses"`
	Recommendations RecommendationReport `json:"recommendations"`
}

type StrengthReport struct {
	Status   ReportStatus `json:"status"`
	Concepts []string     `json:"concepts"`
	Message  string       `json:"message,omitempty"`
}

type WeaknessReport struct {
	Status  ReportStatus `json:"status"`
	Items   []Weakness   `json:"items"`
	Message string       `json:"message,omitempty"`
}

type Weakness struct {
	ConceptID   uuid.UUID `json:"concept_id"`
	ConceptName string    `json:"concept_name"`
	Accuracy    float64   `json:"accuracy"`
	Attempted   int       `json:"attempted"`
}

type RecommendationReport struct {
	Status  ReportStatus     `json:"status"`
	Items   []Recommendation `json:"items"`
	Message string           `json:"message,omitempty"`
}

type Recommendation struct {
	ConceptID        uuid.UUID `json:"concept_id"`
	ConceptName      string    `json:"concept_name"`
	SuggestedReading []string  `json:"suggested_reading"`
	PracticeTopics   []string  `json:"practice_topics"`
	Priority         Priority  `json:"priority"`
}
