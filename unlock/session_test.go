package unlock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/gig"
)

func threeQuestionQuiz() gig.Quiz {
	return gig.Quiz{
		ID:    "q-design",
		Title: "Design basics",
		Questions: []gig.Question{
			{Prompt: "Primary colours?", Options: []string{"RGB", "RYB", "CMY"}, CorrectIndex: 1},
			{Prompt: "Vector format?", Options: []string{"PNG", "SVG"}, CorrectIndex: 1},
			{Prompt: "Kerning adjusts?", Options: []string{"Line height", "Letter spacing"}, CorrectIndex: 1},
		},
	}
}

func take(t *testing.T, s *Session, picks ...int) *Result {
	t.Helper()
	var result *Result
	for _, p := range picks {
		require.NoError(t, s.Select(p))
		r, err := s.Next()
		require.NoError(t, err)
		result = r
	}
	return result
}

func TestScoreBoundary(t *testing.T) {
	quiz := threeQuestionQuiz()

	tests := []struct {
		name    string
		answers []int
		score   float64
		passed  bool
	}{
		{"all correct", []int{1, 1, 1}, 100, true},
		{"two of three", []int{1, 1, 0}, 200.0 / 3, false},
		{"none correct", []int{0, 0, 0}, 0, false},
		{"missing answer counts as wrong", []int{1, 1, NoAnswer}, 200.0 / 3, false},
		{"short answer sheet", []int{1}, 100.0 / 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := Score(quiz.Questions, tt.answers)
			assert.InDelta(t, tt.score, score, 0.001)
			assert.Equal(t, tt.passed, Passed(score))
		})
	}
}

func TestPassThresholdIsInclusive(t *testing.T) {
	questions := make([]gig.Question, 10)
	answers := make([]int, 10)
	for i := range answers {
		answers[i] = NoAnswer
	}
	for i := 0; i < 7; i++ {
		answers[i] = 0
	}
	score := Score(questions, answers)
	assert.Equal(t, 70.0, score)
	assert.True(t, Passed(score))
}

func TestEmptyQuizScoresZero(t *testing.T) {
	assert.Zero(t, Score(nil, nil))

	s := NewSession(gig.Quiz{ID: "empty"})
	_, ok := s.Current()
	assert.False(t, ok)
	result, err := s.Next()
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Passed)
}

func TestSessionRequiresAnswer(t *testing.T) {
	s := NewSession(threeQuestionQuiz())

	_, err := s.Next()
	assert.ErrorIs(t, err, ErrNoAnswer)
	assert.True(t, errors.IsInvalidRequestError(err))
	assert.Equal(t, 0, s.Index())
}

func TestSessionRejectsBadOption(t *testing.T) {
	s := NewSession(threeQuestionQuiz())

	assert.ErrorIs(t, s.Select(3), ErrInvalidOption)
	assert.ErrorIs(t, s.Select(-1), ErrInvalidOption)
	assert.Equal(t, NoAnswer, s.Selected())
}

func TestSessionChangeAnswerBeforeAdvancing(t *testing.T) {
	s := NewSession(threeQuestionQuiz())

	require.NoError(t, s.Select(0))
	require.NoError(t, s.Select(1))
	assert.Equal(t, 1, s.Selected())
}

func TestSessionPassAndFail(t *testing.T) {
	s := NewSession(threeQuestionQuiz())

	result := take(t, s, 1, 1, 0)
	require.NotNil(t, result)
	assert.False(t, result.Passed)
	assert.Equal(t, 2, result.Correct)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, []int{1, 1, 0}, result.Answers)

	// Retake starts from the first question with nothing selected
	assert.Equal(t, 0, s.Index())
	assert.Equal(t, NoAnswer, s.Selected())
	q, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "Primary colours?", q.Prompt)

	result = take(t, s, 1, 1, 1)
	require.NotNil(t, result)
	assert.True(t, result.Passed)
	assert.Equal(t, 100.0, result.Score)
	assert.Equal(t, "q-design", result.QuizID)
	assert.Equal(t, 0, s.Index(), "session resets after a pass too")
}

func TestSessionIntermediateStepsReturnNoResult(t *testing.T) {
	s := NewSession(threeQuestionQuiz())

	require.NoError(t, s.Select(1))
	result, err := s.Next()
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 1, s.Index())
	assert.Equal(t, 3, s.Total())
}
