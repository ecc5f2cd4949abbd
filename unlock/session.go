// Package unlock implements the quiz gate in front of catalog gigs: a quiz
// session that scores answers, and a Gate that moves a gig from Locked to
// Unlocked when a quiz is passed.
package unlock

import (
	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/gig"
)

// PassThreshold is the minimum score, in percent, that unlocks a gig
const PassThreshold = 70.0

// NoAnswer marks a question without a selected option
const NoAnswer = -1

var (
	// ErrNoAnswer is returned when advancing without selecting an option
	ErrNoAnswer = errors.Wrap(errors.ErrInvalidRequest, "no answer selected")
	// ErrInvalidOption is returned when selecting an option the question does not have
	ErrInvalidOption = errors.Wrap(errors.ErrInvalidRequest, "option out of range")
)

// Result is the outcome of a completed quiz
type Result struct {
	QuizID  string  `json:"quizId"`
	Score   float64 `json:"score"`
	Passed  bool    `json:"passed"`
	Correct int     `json:"correct"`
	Total   int     `json:"total"`
	Answers []int   `json:"answers"`
}

// Score returns the percentage of questions answered correctly.
// A missing answer counts as wrong; an empty quiz scores 0.
func Score(questions []gig.Question, answers []int) float64 {
	if len(questions) == 0 {
		return 0
	}
	return float64(countCorrect(questions, answers)*100) / float64(len(questions))
}

// Passed reports whether score clears PassThreshold
func Passed(score float64) bool {
	return score >= PassThreshold
}

func countCorrect(questions []gig.Question, answers []int) int {
	correct := 0
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.CorrectIndex {
			correct++
		}
	}
	return correct
}

// Evaluate scores a full answer sheet in one step
func Evaluate(quiz gig.Quiz, answers []int) Result {
	score := Score(quiz.Questions, answers)
	return Result{
		QuizID:  quiz.ID,
		Score:   score,
		Passed:  Passed(score),
		Correct: countCorrect(quiz.Questions, answers),
		Total:   len(quiz.Questions),
		Answers: append([]int(nil), answers...),
	}
}

// Session walks a user through a quiz one question at a time.
// It is not safe for concurrent use.
type Session struct {
	quiz    gig.Quiz
	index   int
	answers []int
}

// NewSession starts at the first question with nothing selected
func NewSession(quiz gig.Quiz) *Session {
	s := &Session{quiz: quiz}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.index = 0
	s.answers = make([]int, len(s.quiz.Questions))
	for i := range s.answers {
		s.answers[i] = NoAnswer
	}
}

// Quiz returns the quiz being taken
func (s *Session) Quiz() gig.Quiz {
	return s.quiz
}

// Index returns the zero-based position of the current question
func (s *Session) Index() int {
	return s.index
}

// Total returns the number of questions
func (s *Session) Total() int {
	return len(s.quiz.Questions)
}

// Current returns the question being shown. ok is false for an empty quiz.
func (s *Session) Current() (q gig.Question, ok bool) {
	if s.index >= len(s.quiz.Questions) {
		return gig.Question{}, false
	}
	return s.quiz.Questions[s.index], true
}

// Selected returns the option chosen for the current question, or NoAnswer
func (s *Session) Selected() int {
	if s.index >= len(s.answers) {
		return NoAnswer
	}
	return s.answers[s.index]
}

// Select records option for the current question, replacing any earlier choice
func (s *Session) Select(option int) error {
	q, ok := s.Current()
	if !ok || option < 0 || option >= len(q.Options) {
		return errors.Wrapf(ErrInvalidOption, "option %d", option)
	}
	s.answers[s.index] = option
	return nil
}

// Next advances to the following question. Advancing past the last question
// scores the quiz, resets the session for a retake, and returns the result.
func (s *Session) Next() (*Result, error) {
	if s.index < len(s.quiz.Questions) && s.answers[s.index] == NoAnswer {
		return nil, ErrNoAnswer
	}
	s.index++
	if s.index < len(s.quiz.Questions) {
		return nil, nil
	}

	result := Evaluate(s.quiz, s.answers)
	s.reset()
	return &result, nil
}
