package unlock

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/logger"
)

// State of a catalog gig behind the quiz gate
type State string

const (
	Locked   State = "locked"
	Unlocked State = "unlocked"
)

// Action is what a view offers for a gig in a given state
type Action string

const (
	ActionTakeQuiz Action = "take_quiz"
	ActionApply    Action = "apply"
)

// ErrRejected is returned by a Confirmer that refuses a quiz result
var ErrRejected = errors.New("quiz result rejected")

// Confirmer checks a locally passed quiz with an authority. Returning an error
// wrapping ErrRejected rolls the unlock back; any other error is treated as a
// transport failure and the unlock stands.
type Confirmer interface {
	Confirm(ctx context.Context, quizID string, answers []int) error
}

// ChangeFunc observes gate transitions
type ChangeFunc func(gigID string, state State)

type listener struct {
	id uint64
	fn ChangeFunc
}

// Gate holds the lock state of every catalog gig for the life of the process.
// A gig is Locked until a quiz for it is passed. Unlocking applies at once;
// confirmation, when configured, runs in the background.
type Gate struct {
	confirmer Confirmer
	log       *zap.SugaredLogger

	mu        sync.Mutex
	unlocked  map[string]uint64 // gig id -> unlock generation
	gen       uint64
	listeners []listener
	nextID    uint64

	pending sync.WaitGroup
}

// NewGate creates a gate. confirmer may be nil.
func NewGate(confirmer Confirmer) *Gate {
	return &Gate{
		confirmer: confirmer,
		log:       logger.ComponentLogger("unlock"),
		unlocked:  make(map[string]uint64),
	}
}

// State returns the state of gigID
func (g *Gate) State(gigID string) State {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.unlocked[gigID]; ok {
		return Unlocked
	}
	return Locked
}

// IsLocked reports whether gigID still needs a passed quiz
func (g *Gate) IsLocked(gigID string) bool {
	return g.State(gigID) == Locked
}

// Action returns what a view should offer for gigID
func (g *Gate) Action(gigID string) Action {
	if g.State(gigID) == Unlocked {
		return ActionApply
	}
	return ActionTakeQuiz
}

// Complete records a finished quiz for gigID and returns the resulting state.
// A failed result changes nothing. Retakes are unlimited.
func (g *Gate) Complete(ctx context.Context, gigID string, result Result) State {
	log := g.log.With(logger.FieldGigID, gigID, logger.FieldQuizID, result.QuizID, logger.FieldScore, result.Score)

	if !result.Passed {
		log.Infow("Quiz failed, gig stays locked")
		return g.State(gigID)
	}

	g.mu.Lock()
	if _, ok := g.unlocked[gigID]; ok {
		g.mu.Unlock()
		return Unlocked
	}
	g.gen++
	gen := g.gen
	g.unlocked[gigID] = gen
	g.mu.Unlock()

	log.Infow("Gig unlocked")
	g.notify(gigID, Unlocked)

	if g.confirmer != nil {
		g.pending.Add(1)
		go g.confirm(context.WithoutCancel(ctx), gigID, gen, result, log)
	}
	return Unlocked
}

func (g *Gate) confirm(ctx context.Context, gigID string, gen uint64, result Result, log *zap.SugaredLogger) {
	defer g.pending.Done()

	err := g.confirmer.Confirm(ctx, result.QuizID, result.Answers)
	switch {
	case err == nil:
		log.Debugw("Unlock confirmed")
	case errors.Is(err, ErrRejected):
		g.mu.Lock()
		current, ok := g.unlocked[gigID]
		rollback := ok && current == gen
		if rollback {
			delete(g.unlocked, gigID)
		}
		g.mu.Unlock()
		if rollback {
			log.Warnw("Quiz result rejected, gig locked again", logger.FieldError, err)
			g.notify(gigID, Locked)
		}
	default:
		log.Warnw("Unlock confirmation failed, keeping gig unlocked", logger.FieldError, err)
	}
}

// Wait blocks until every background confirmation has finished
func (g *Gate) Wait() {
	g.pending.Wait()
}

// OnChange registers fn for every transition and returns its release function
func (g *Gate) OnChange(fn ChangeFunc) func() {
	g.mu.Lock()
	g.nextID++
	id := g.nextID
	g.listeners = append(g.listeners, listener{id: id, fn: fn})
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			for i, l := range g.listeners {
				if l.id == id {
					g.listeners = append(g.listeners[:i:i], g.listeners[i+1:]...)
					break
				}
			}
		})
	}
}

func (g *Gate) notify(gigID string, state State) {
	g.mu.Lock()
	listeners := append([]listener(nil), g.listeners...)
	g.mu.Unlock()

	for _, l := range listeners {
		l.fn(gigID, state)
	}
}

// UnlockedGigs returns the ids of every unlocked gig
func (g *Gate) UnlockedGigs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]string, 0, len(g.unlocked))
	for id := range g.unlocked {
		ids = append(ids, id)
	}
	return ids
}
