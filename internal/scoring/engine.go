// Package scoring turns a finalized attempt into counts, a score and
// per-concept aggregates. It performs no I/O.
package scoring

import (
	"math"
	"sort"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
	"github.com/google/uuid"
)

// Input is everything the engine needs about one finalized session.
type Input struct {
	// AnswerKey is the session's frozen key in test order.
	AnswerKey []model.AnswerKeyEntry
	Answers   []model.SessionAnswer
	Times     []model.QuestionTime
}

// Outcome is the computed part of a TestResult.
type Outcome struct {
	Score              float64
	TotalQuestions     int
	CorrectAnswers     int
	IncorrectAnswers   int
	Unanswered         int
	Percentage         float64
	ConceptPerformance []model.ConceptPerformance
	Breakdown          []model.QuestionBreakdown
}

// Engine computes outcomes under a fixed scoring policy.
type Engine struct {
	policy Policy
}

// NewEngine creates an Engine. A nil policy means OnePoint.
func NewEngine(policy Policy) *Engine {
	if policy == nil {
		policy = OnePoint{}
	}
	return &Engine{policy: policy}
}

// Policy returns the engine's scoring policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

type conceptAcc struct {
	perf      model.ConceptPerformance
	timeSum   int
	timeCount int
	order     int
}

// Compute scores the input. Answers and times for questions outside the
// answer key are ignored.
func (e *Engine) Compute(in Input) Outcome {
	answers := make(map[uuid.UUID]model.SessionAnswer, len(in.Answers))
	for _, a := range in.Answers {
		answers[a.QuestionID] = a
	}
	times := make(map[uuid.UUID]int, len(in.Times))
	for _, t := range in.Times {
		times[t.QuestionID] = t.TimeSpent
	}

	out := Outcome{
		TotalQuestions: len(in.AnswerKey),
		Breakdown:      make([]model.QuestionBreakdown, 0, len(in.AnswerKey)),
	}
	concepts := make(map[uuid.UUID]*conceptAcc)

	for _, key := range in.AnswerKey {
		line := model.QuestionBreakdown{
			QuestionID:    key.QuestionID,
			Position:      key.Position,
			ConceptName:   key.ConceptName,
			CorrectAnswer: key.CorrectAnswer,
			Outcome:       model.OutcomeUnanswered,
		}

		acc, ok := concepts[key.ConceptID]
		if !ok {
			acc = &conceptAcc{
				perf: model.ConceptPerformance{
					ConceptID:   key.ConceptID,
					ConceptName: key.ConceptName,
					Category:    key.ConceptCategory,
				},
				order: len(concepts),
			}
			concepts[key.ConceptID] = acc
		}
		acc.perf.TotalQuestions++

		if a, answered := answers[key.QuestionID]; answered {
			selected := a.SelectedAnswer
			line.SelectedAnswer = &selected
			line.MarkedForReview = a.MarkedForReview
			acc.perf.Attempted++
			if selected == key.CorrectAnswer {
				line.Outcome = model.OutcomeCorrect
				out.CorrectAnswers++
				acc.perf.Correct++
			} else {
				line.Outcome = model.OutcomeIncorrect
				out.IncorrectAnswers++
			}
		} else {
			out.Unanswered++
		}

		if spent, recorded := times[key.QuestionID]; recorded {
			line.TimeSpent = spent
			acc.timeSum += spent
			acc.timeCount++
		}

		out.Score += e.policy.Points(line.Outcome)
		out.Breakdown = append(out.Breakdown, line)
	}

	out.Score = round2(out.Score)
	if out.TotalQuestions > 0 {
		out.Percentage = round2(out.Score / float64(out.TotalQuestions) * 100)
	}

	out.ConceptPerformance = make([]model.ConceptPerformance, 0, len(concepts))
	ordered := make([]*conceptAcc, 0, len(concepts))
	for _, acc := range concepts {
		if acc.perf.Attempted > 0 {
			acc.perf.Accuracy = float64(acc.perf.Correct) / float64(acc.perf.Attempted)
		}
		if acc.timeCount > 0 {
			acc.perf.AverageTime = round2(float64(acc.timeSum) / float64(acc.timeCount))
		}
		ordered = append(ordered, acc)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].perf, ordered[j].perf
		if a.Accuracy != b.Accuracy {
			return a.Accuracy < b.Accuracy
		}
		if a.ConceptName != b.ConceptName {
			return a.ConceptName < b.ConceptName
		}
		return ordered[i].order < ordered[j].order
	})
	for _, acc := range ordered {
		out.ConceptPerformance = append(out.ConceptPerformance, acc.perf)
	}

	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
