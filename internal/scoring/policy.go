package scoring

import (
	"fmt"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
)

// Policy assigns points to a single question outcome.
type Policy interface {
	Name() string
	Points(outcome model.QuestionOutcome) float64
}

// OnePoint awards one point per correct answer and nothing otherwise.
type OnePoint struct{}

func (OnePoint) Name() string { return "one_point" }

func (OnePoint) Points(outcome model.QuestionOutcome) float64 {
	if outcome == model.OutcomeCorrect {
		return 1
	}
	return 0
}

// MaxPenalty caps the negative mark so the worst percentage stays at -100,
// within the range of the stored percentage column.
const MaxPenalty = 1.0

// NegativeMarking awards one point per correct answer and subtracts
// Penalty for every incorrect one. Unanswered questions score zero.
type NegativeMarking struct {
	Penalty float64
}

func (NegativeMarking) Name() string { return "negative_marking" }

func (p NegativeMarking) Points(outcome model.QuestionOutcome) float64 {
	switch outcome {
	case model.OutcomeCorrect:
		return 1
	case model.OutcomeIncorrect:
		return -p.Penalty
	default:
		return 0
	}
}

// PolicyFromName resolves a configured policy name.
func PolicyFromName(name string, penalty float64) (Policy, error) {
	switch name {
	case "", "one_point":
		return OnePoint{}, nil
	case "negative_marking":
		if penalty < 0 || penalty > MaxPenalty {
			return nil, fmt.Errorf("negative mark must be within [0, %v], got %v", MaxPenalty, penalty)
		}
		return NegativeMarking{Penalty: penalty}, nil
	default:
		return nil, fmt.Errorf("unknown scoring policy %q", name)
	}
}
