package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/cashngo/api"
	"github.com/teranos/cashngo/board"
	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/gig"
	cashtest "github.com/teranos/cashngo/internal/testing"
	"github.com/teranos/cashngo/unlock"
)

type mockSource struct {
	skills []string
}

func (m *mockSource) FetchGigs(ctx context.Context) []gig.CatalogGig {
	return api.MockGigs()
}

func (m *mockSource) FetchUserProfile(ctx context.Context) gig.UserProfile {
	return api.MockUserProfile()
}

func (m *mockSource) GenerateQuiz(ctx context.Context, skill string) gig.Quiz {
	m.skills = append(m.skills, skill)
	return api.MockQuiz(skill)
}

func newTestService(t *testing.T) (*Service, *mockSource) {
	t.Helper()
	src := &mockSource{}
	b := board.New(cashtest.CreateTestCollections(t), board.Options{})
	return New(src, unlock.NewGate(nil), b), src
}

func correctAnswers(q gig.Quiz) []int {
	answers := make([]int, len(q.Questions))
	for i, question := range q.Questions {
		answers[i] = question.CorrectIndex
	}
	return answers
}

func TestListOverlaysGate(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	for _, g := range s.List(ctx) {
		assert.True(t, g.IsLocked, g.ID)
	}

	s.Gate().Complete(ctx, "c2", unlock.Result{Passed: true, Score: 100})
	for _, g := range s.List(ctx) {
		assert.Equal(t, g.ID != "c2", g.IsLocked, g.ID)
	}
}

func TestGetUnknown(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.Get(context.Background(), "nope")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestQuizFlowUnlocksAndApplies(t *testing.T) {
	s, src := newTestService(t)
	ctx := context.Background()

	quiz, err := s.StartQuiz(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"design"}, src.skills)

	_, err = s.Apply(ctx, "c1", board.ApplyInput{ApplicantID: "w1", ApplicantName: "Asha"})
	assert.True(t, errors.IsConflictError(err), "locked gigs refuse applications")

	result, state, err := s.SubmitQuiz(ctx, "c1", correctAnswers(quiz))
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, unlock.Unlocked, state)
	assert.Equal(t, unlock.ActionApply, s.Gate().Action("c1"))

	app, err := s.Apply(ctx, "c1", board.ApplyInput{ApplicantID: "w1", ApplicantName: "Asha"})
	require.NoError(t, err)
	assert.Equal(t, "Social Media Poster Design", app.GigTitle)
	assert.Equal(t, "Campus Cafe", app.Company)
	assert.Equal(t, gig.ApplicationPending, app.Status)
}

func TestFailedQuizStaysLockedAndCanRetake(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	quiz, err := s.StartQuiz(ctx, "c3")
	require.NoError(t, err)
	wrong := correctAnswers(quiz)
	wrong[0] = (wrong[0] + 1) % len(quiz.Questions[0].Options)

	result, state, err := s.SubmitQuiz(ctx, "c3", wrong)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.InDelta(t, 66.67, result.Score, 0.01)
	assert.Equal(t, unlock.Locked, state)

	// The attempt is consumed; a retake starts a new quiz
	_, _, err = s.SubmitQuiz(ctx, "c3", correctAnswers(quiz))
	assert.True(t, errors.IsInvalidRequestError(err))

	quiz, err = s.StartQuiz(ctx, "c3")
	require.NoError(t, err)
	_, state, err = s.SubmitQuiz(ctx, "c3", correctAnswers(quiz))
	require.NoError(t, err)
	assert.Equal(t, unlock.Unlocked, state)
}

func TestSubmitQuizWrongAnswerCount(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.StartQuiz(ctx, "c1")
	require.NoError(t, err)
	_, state, err := s.SubmitQuiz(ctx, "c1", []int{1})
	assert.True(t, errors.IsInvalidRequestError(err))
	assert.Equal(t, unlock.Locked, state)
}

func TestCompleteHonorsCancellation(t *testing.T) {
	src := &mockSource{}
	b := board.New(cashtest.CreateTestCollections(t), board.Options{ResultDelay: 1 << 40})
	s := New(src, unlock.NewGate(nil), b)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	state, err := s.Complete(ctx, "c1", unlock.Result{Passed: true})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, unlock.Locked, state)
}

func TestProfile(t *testing.T) {
	s, _ := newTestService(t)
	assert.Equal(t, api.MockUserProfile(), s.Profile(context.Background()))
}
