// Package feedback classifies concept performance into strengths and
// weaknesses and turns weaknesses into prioritized study recommendations.
package feedback

import (
	"sort"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/config"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
)

// Thresholds are the accuracy cut-offs used for classification.
type Thresholds struct {
	Strength       float64
	Weakness       float64
	HighPriority   float64
	MediumPriority float64
}

// DefaultThresholds returns the standard cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Strength:       0.75,
		Weakness:       0.65,
		HighPriority:   0.40,
		MediumPriority: 0.65,
	}
}

// ThresholdsFromConfig applies the configured cut-offs. Medium priority
// covers everything under the weakness threshold.
func ThresholdsFromConfig(cfg *config.Config) Thresholds {
	t := DefaultThresholds()
	t.Strength = cfg.StrengthThreshold
	t.Weakness = cfg.WeaknessThreshold
	t.MediumPriority = cfg.WeaknessThreshold
	t.HighPriority = cfg.HighPriorityThreshold
	return t
}

const (
	msgExcellent        = "Excellent performance! You have a strong grasp of most concepts."
	msgGood             = "Good effort! With focused practice on weak areas, you can improve significantly."
	msgNeedsImprovement = "This attempt needs improvement. Revisit the fundamentals and practice regularly."

	msgNoStrengths    = "No concept reached the strength threshold yet. Keep practicing to build your strengths."
	msgNoWeaknesses   = "No weak concepts found in this attempt."
	msgContinue       = "Continue your current approach and keep practicing with full-length mock tests."
	msgNoData         = "No questions were attempted, so there is nothing to assess yet."
	msgNoDataStrength = "No questions were attempted, so no strengths could be identified."
)

// Generator produces Feedback. It is deterministic and does no I/O.
type Generator struct {
	thresholds Thresholds
	content    ContentSource
}

// NewGenerator creates a Generator. A nil content source uses the static map.
func NewGenerator(thresholds Thresholds, content ContentSource) *Generator {
	if content == nil {
		content = NewStaticContent()
	}
	return &Generator{thresholds: thresholds, content: content}
}

// Band maps an overall percentage onto its bracket.
func Band(percentage float64) model.PerformanceBand {
	switch {
	case percentage >= 80:
		return model.BandExcellent
	case percentage >= 60:
		return model.BandGood
	default:
		return model.BandNeedsImprovement
	}
}

// Generate builds feedback for the given concepts and overall percentage.
func (g *Generator) Generate(concepts []model.ConceptPerformance, percentage float64) model.Feedback {
	band := Band(percentage)
	fb := model.Feedback{
		OverallBand:    band,
		OverallMessage: overallMessage(band),
		Strengths:      model.StrengthReport{Concepts: []string{}},
		Weaknesses:     model.WeaknessReport{Items: []model.Weakness{}},
		Recommendations: model.RecommendationReport{
			Items: []model.Recommendation{},
		},
	}

	var attempted []model.ConceptPerformance
	for _, cp := range concepts {
		if cp.Attempted > 0 {
			attempted = append(attempted, cp)
		}
	}

	if len(attempted) == 0 {
		fb.Strengths.Status = model.ReportStatusNoData
		fb.Strengths.Message = msgNoDataStrength
		fb.Weaknesses.Status = model.ReportStatusNoData
		fb.Weaknesses.Message = msgNoData
		fb.Recommendations.Status = model.ReportStatusNoData
		fb.Recommendations.Message = msgNoData
		return fb
	}

	strengths := make([]model.ConceptPerformance, 0, len(attempted))
	weaknesses := make([]model.ConceptPerformance, 0, len(attempted))
	for _, cp := range attempted {
		if cp.Accuracy >= g.thresholds.Strength {
			strengths = append(strengths, cp)
		}
		if cp.Accuracy < g.thresholds.Weakness {
			weaknesses = append(weaknesses, cp)
		}
	}

	sort.SliceStable(strengths, func(i, j int) bool {
		if strengths[i].Accuracy != strengths[j].Accuracy {
			return strengths[i].Accuracy > strengths[j].Accuracy
		}
		return strengths[i].ConceptName < strengths[j].ConceptName
	})
	sort.SliceStable(weaknesses, func(i, j int) bool {
		if weaknesses[i].Accuracy != weaknesses[j].Accuracy {
			return weaknesses[i].Accuracy < weaknesses[j].Accuracy
		}
		return weaknesses[i].ConceptName < weaknesses[j].ConceptName
	})

	if len(strengths) == 0 {
		fb.Strengths.Status = model.ReportStatusNoneFound
		fb.Strengths.Message = msgNoStrengths
	} else {
		fb.Strengths.Status = model.ReportStatusReported
		for _, cp := range strengths {
			fb.Strengths.Concepts = append(fb.Strengths.Concepts, cp.ConceptName)
		}
	}

	if len(weaknesses) == 0 {
		fb.Weaknesses.Status = model.ReportStatusNoneFound
		fb.Weaknesses.Message = msgNoWeaknesses
		fb.Recommendations.Status = model.ReportStatusNoneFound
		fb.Recommendations.Message = msgContinue
		return fb
	}

	fb.Weaknesses.Status = model.ReportStatusReported
	fb.Recommendations.Status = model.ReportStatusReported
	for _, cp := range weaknesses {
		fb.Weaknesses.Items = append(fb.Weaknesses.Items, model.Weakness{
			ConceptID:   cp.ConceptID,
			ConceptName: cp.ConceptName,
			Accuracy:    cp.Accuracy,
			Attempted:   cp.Attempted,
		})
		fb.Recommendations.Items = append(fb.Recommendations.Items, model.Recommendation{
			ConceptID:        cp.ConceptID,
			ConceptName:      cp.ConceptName,
			SuggestedReading: g.content.Reading(cp.ConceptName, cp.Category),
			PracticeTopics:   g.content.PracticeTopics(cp.ConceptName, cp.Category),
			Priority:         g.priority(cp.Accuracy),
		})
	}

	return fb
}

func (g *Generator) priority(accuracy float64) model.Priority {
	switch {
	case accuracy < g.thresholds.HighPriority:
		return model.PriorityHigh
	case accuracy < g.thresholds.MediumPriority:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

func overallMessage(band model.PerformanceBand) string {
	switch band {
	case model.BandExcellent:
		return msgExcellent
	case model.BandGood:
		return msgGood
	default:
		return msgNeedsImprovement
	}
}
