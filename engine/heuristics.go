package engine

import "math"

// Heuristics tunes the fallback scanner. Zero fields take the defaults.
type Heuristics struct {
	// DepthWeight multiplies the DOM depth of a candidate. Default: 2.
	DepthWeight float64 `yaml:"depth_weight"`
	// LengthTarget is the preferred text length. Default: 800.
	LengthTarget float64 `yaml:"length_target"`
	// LengthCap bounds the length used in the penalty. Default: 2000.
	LengthCap int `yaml:"length_cap"`

	QuestionKeywords []string `yaml:"question_keywords"`
	MinQuestionChars int      `yaml:"min_question_chars"`
	MaxQuestionChars int      `yaml:"max_question_chars"`

	AnswerKeywords []string `yaml:"answer_keywords"`
	MinAnswerChars int      `yaml:"min_answer_chars"`
	MaxAnswerChars int      `yaml:"max_answer_chars"`
}

// DefaultHeuristics returns the tuned defaults.
func DefaultHeuristics() Heuristics {
	var h Heuristics
	h.defaults()
	return h
}

// WithDefaults returns h with zero fields filled in.
func (h Heuristics) WithDefaults() Heuristics {
	h.defaults()
	return h
}

func (h *Heuristics) defaults() {
	if h.DepthWeight <= 0 {
		h.DepthWeight = 2
	}
	if h.LengthTarget <= 0 {
		h.LengthTarget = 800
	}
	if h.LengthCap <= 0 {
		h.LengthCap = 2000
	}
	if len(h.QuestionKeywords) == 0 {
		h.QuestionKeywords = []string{"question"}
	}
	if h.MinQuestionChars <= 0 {
		h.MinQuestionChars = 30
	}
	if h.MaxQuestionChars <= 0 {
		h.MaxQuestionChars = 20000
	}
	if len(h.AnswerKeywords) == 0 {
		h.AnswerKeywords = []string{
			"explanation",
			"rationale",
			"correct answer",
			"incorrect",
			"correct",
			"your answer",
			"answer",
		}
	}
	if h.MinAnswerChars <= 0 {
		h.MinAnswerChars = 60
	}
	if h.MaxAnswerChars <= 0 {
		h.MaxAnswerChars = 60000
	}
}

// Score rates a candidate: deeper nodes win, lengths far from the target
// are penalised.
func (h Heuristics) Score(depth, length int) float64 {
	penalty := math.Abs(h.LengthTarget-float64(min(length, h.LengthCap))) / h.LengthTarget
	return h.DepthWeight*float64(depth) - penalty
}
