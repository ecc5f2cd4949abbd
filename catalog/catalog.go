// Package catalog is the worker marketplace: listings from the API with the
// quiz gate overlaid, quiz attempts, and applying to unlocked gigs.
package catalog

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/teranos/cashngo/board"
	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/gig"
	"github.com/teranos/cashngo/logger"
	"github.com/teranos/cashngo/unlock"
)

// Source supplies listings, quizzes and the worker profile; *api.Client satisfies it
type Source interface {
	FetchGigs(ctx context.Context) []gig.CatalogGig
	FetchUserProfile(ctx context.Context) gig.UserProfile
	GenerateQuiz(ctx context.Context, skill string) gig.Quiz
}

// Service is safe for concurrent use
type Service struct {
	source Source
	gate   *unlock.Gate
	board  *board.Board
	log    *zap.SugaredLogger

	mu     sync.Mutex
	active map[string]gig.Quiz // gig id -> quiz being taken
}

// New creates the marketplace service
func New(source Source, gate *unlock.Gate, b *board.Board) *Service {
	return &Service{
		source: source,
		gate:   gate,
		board:  b,
		log:    logger.ComponentLogger("catalog"),
		active: make(map[string]gig.Quiz),
	}
}

// Gate returns the unlock gate the service overlays
func (s *Service) Gate() *unlock.Gate {
	return s.gate
}

// List returns every listing with its current lock state
func (s *Service) List(ctx context.Context) []gig.CatalogGig {
	gigs := s.source.FetchGigs(ctx)
	for i := range gigs {
		gigs[i].IsLocked = s.gate.IsLocked(gigs[i].ID)
	}
	return gigs
}

// Get returns one listing
func (s *Service) Get(ctx context.Context, gigID string) (gig.CatalogGig, error) {
	for _, g := range s.List(ctx) {
		if g.ID == gigID {
			return g, nil
		}
	}
	return gig.CatalogGig{}, errors.NewNotFoundError("catalog gig %s", gigID)
}

// Profile returns the signed-in worker's profile and wallet
func (s *Service) Profile(ctx context.Context) gig.UserProfile {
	return s.source.FetchUserProfile(ctx)
}

// StartQuiz generates the quiz for a listing's skill and remembers it for SubmitQuiz
func (s *Service) StartQuiz(ctx context.Context, gigID string) (gig.Quiz, error) {
	g, err := s.Get(ctx, gigID)
	if err != nil {
		return gig.Quiz{}, err
	}
	quiz := s.source.GenerateQuiz(ctx, g.SkillTag)

	s.mu.Lock()
	s.active[gigID] = quiz
	s.mu.Unlock()

	s.log.Infow("Quiz started",
		logger.FieldGigID, gigID,
		logger.FieldQuizID, quiz.ID,
		logger.FieldCount, len(quiz.Questions),
	)
	return quiz, nil
}

// SubmitQuiz scores answers against the quiz started for gigID and completes it
func (s *Service) SubmitQuiz(ctx context.Context, gigID string, answers []int) (unlock.Result, unlock.State, error) {
	s.mu.Lock()
	quiz, ok := s.active[gigID]
	s.mu.Unlock()
	if !ok {
		return unlock.Result{}, s.gate.State(gigID), errors.NewInvalidRequestError("no quiz started for gig %s", gigID)
	}
	if len(answers) != len(quiz.Questions) {
		return unlock.Result{}, s.gate.State(gigID), errors.NewInvalidRequestError(
			"got %d answers for %d questions", len(answers), len(quiz.Questions))
	}

	result := unlock.Evaluate(quiz, answers)
	state, err := s.Complete(ctx, gigID, result)
	if err != nil {
		return result, state, err
	}

	s.mu.Lock()
	delete(s.active, gigID)
	s.mu.Unlock()
	return result, state, nil
}

// Complete reports a finished quiz to the gate after the result delay
func (s *Service) Complete(ctx context.Context, gigID string, result unlock.Result) (unlock.State, error) {
	if err := s.board.Pause(ctx); err != nil {
		return s.gate.State(gigID), err
	}
	return s.gate.Complete(ctx, gigID, result), nil
}

// Apply submits an application for an unlocked listing
func (s *Service) Apply(ctx context.Context, gigID string, in board.ApplyInput) (gig.Application, error) {
	g, err := s.Get(ctx, gigID)
	if err != nil {
		return gig.Application{}, err
	}
	if g.IsLocked {
		return gig.Application{}, errors.WithHint(
			errors.NewConflictError("gig %s is locked", gigID),
			"pass the skill quiz to unlock it",
		)
	}
	in.GigID = g.ID
	if in.GigTitle == "" {
		in.GigTitle = g.Title
	}
	if in.Company == "" {
		in.Company = g.Company
	}
	return s.board.Apply(ctx, in)
}
