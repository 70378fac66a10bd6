package feedback

import "fmt"

// ContentSource supplies study material for a concept.
type ContentSource interface {
	Reading(conceptName, category string) []string
	PracticeTopics(conceptName, category string) []string
}

// StaticContent is an in-memory content map keyed by concept name, falling
// back to the concept's category and then to generic advice.
type StaticContent struct {
	chapters map[string][]string
	fallback []string
}

// NewStaticContent returns the built-in reading list for GATE CS topics.
func NewStaticContent() *StaticContent {
	return &StaticContent{
		chapters: map[string][]string{
			"Data Structures": {
				"Cormen - Introduction to Algorithms: Chapters 10-14",
				"Tanenbaum - Data Structures Using C: Chapters 2-6",
			},
			"Algorithms": {
				"Cormen - Introduction to Algorithms: Chapters 15-17, 22-26",
				"Kleinberg - Algorithm Design: Chapters 4-6",
			},
			"Operating Systems": {
				"Silberschatz - Operating System Concepts: Chapters 3-9",
				"Tanenbaum - Modern Operating Systems: Chapters 2-6",
			},
			"Database Management": {
				"Korth - Database System Concepts: Chapters 1-8, 12-15",
				"Elmasri - Fundamentals of Database Systems: Chapters 3-9",
			},
			"Computer Networks": {
				"Tanenbaum - Computer Networks: Chapters 1-6",
				"Kurose - Computer Networking: Chapters 1-5",
			},
			"Theory of Computation": {
				"Hopcroft - Introduction to Automata Theory: Chapters 2-9",
				"Sipser - Introduction to the Theory of Computation: Chapters 1-5",
			},
			"Compiler Design": {
				"Aho - Compilers: Principles, Techniques, and Tools: Chapters 2-8",
			},
			"Digital Logic": {
				"Morris Mano - Digital Design: Chapters 1-7",
			},
		},
		fallback: []string{
			"Review standard GATE textbooks for this topic",
			"Practice previous years' questions on this concept",
		},
	}
}

// WithChapters adds or replaces the reading list for a concept or category.
func (s *StaticContent) WithChapters(key string, chapters ...string) *StaticContent {
	s.chapters[key] = chapters
	return s
}

func (s *StaticContent) Reading(conceptName, category string) []string {
	if ch, ok := s.chapters[conceptName]; ok {
		return append([]string(nil), ch...)
	}
	if ch, ok := s.chapters[category]; ok {
		return append([]string(nil), ch...)
	}
	return append([]string(nil), s.fallback...)
}

func (s *StaticContent) PracticeTopics(conceptName, _ string) []string {
	return []string{
		fmt.Sprintf("Solve 20+ practice problems on %s", conceptName),
		"Review fundamental theorems and definitions",
		"Work through solved examples step-by-step",
		"Take concept-specific mock tests",
	}
}
