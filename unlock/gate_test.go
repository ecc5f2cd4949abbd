package unlock

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/cashngo/errors"
)

type stubConfirmer struct {
	mu    sync.Mutex
	err   error
	calls []string
	gate  chan struct{}
}

func (c *stubConfirmer) Confirm(ctx context.Context, quizID string, answers []int) error {
	if c.gate != nil {
		<-c.gate
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, quizID)
	return c.err
}

var (
	pass = Result{QuizID: "q1", Score: 100, Passed: true, Answers: []int{1, 1, 1}}
	fail = Result{QuizID: "q1", Score: 66.67, Passed: false, Answers: []int{1, 1, 0}}
)

func TestGateStartsLocked(t *testing.T) {
	g := NewGate(nil)

	assert.Equal(t, Locked, g.State("c1"))
	assert.True(t, g.IsLocked("c1"))
	assert.Equal(t, ActionTakeQuiz, g.Action("c1"))
}

func TestGateFailKeepsLocked(t *testing.T) {
	g := NewGate(nil)

	for i := 0; i < 5; i++ {
		assert.Equal(t, Locked, g.Complete(context.Background(), "c1", fail))
	}
	assert.Equal(t, ActionTakeQuiz, g.Action("c1"))
}

func TestGatePassUnlocksOneWay(t *testing.T) {
	g := NewGate(nil)
	ctx := context.Background()

	var events []State
	g.OnChange(func(gigID string, s State) { events = append(events, s) })

	assert.Equal(t, Unlocked, g.Complete(ctx, "c1", pass))
	assert.Equal(t, ActionApply, g.Action("c1"))
	assert.Equal(t, Locked, g.State("c2"), "gates are per gig")

	// A later failure does not relock
	assert.Equal(t, Unlocked, g.Complete(ctx, "c1", fail))
	assert.Equal(t, Unlocked, g.Complete(ctx, "c1", pass))
	assert.Equal(t, []State{Unlocked}, events)
	assert.Equal(t, []string{"c1"}, g.UnlockedGigs())
}

func TestGateConfirmed(t *testing.T) {
	confirmer := &stubConfirmer{}
	g := NewGate(confirmer)

	g.Complete(context.Background(), "c1", pass)
	g.Wait()

	assert.Equal(t, Unlocked, g.State("c1"))
	assert.Equal(t, []string{"q1"}, confirmer.calls)
}

func TestGateRejectionRollsBack(t *testing.T) {
	confirmer := &stubConfirmer{err: errors.Wrap(ErrRejected, "server says no"), gate: make(chan struct{})}
	g := NewGate(confirmer)

	var mu sync.Mutex
	var events []State
	g.OnChange(func(gigID string, s State) {
		mu.Lock()
		events = append(events, s)
		mu.Unlock()
	})

	assert.Equal(t, Unlocked, g.Complete(context.Background(), "c1", pass))
	assert.Equal(t, Unlocked, g.State("c1"), "optimistic until confirmation answers")

	close(confirmer.gate)
	g.Wait()

	assert.Equal(t, Locked, g.State("c1"))
	assert.Equal(t, []State{Unlocked, Locked}, events)

	// Retakes remain possible
	confirmer.err = nil
	g.Complete(context.Background(), "c1", pass)
	g.Wait()
	assert.Equal(t, Unlocked, g.State("c1"))
}

func TestGateTransportFailureKeepsUnlock(t *testing.T) {
	confirmer := &stubConfirmer{err: errors.New("connection refused")}
	g := NewGate(confirmer)

	g.Complete(context.Background(), "c1", pass)
	g.Wait()

	assert.Equal(t, Unlocked, g.State("c1"))
}

func TestGateConfirmationOutlivesCallerContext(t *testing.T) {
	confirmer := &stubConfirmer{err: ErrRejected, gate: make(chan struct{})}
	g := NewGate(confirmer)

	ctx, cancel := context.WithCancel(context.Background())
	g.Complete(ctx, "c1", pass)
	cancel()
	close(confirmer.gate)
	g.Wait()

	require.Len(t, confirmer.calls, 1)
	assert.Equal(t, Locked, g.State("c1"))
}

func TestGateOnChangeRelease(t *testing.T) {
	g := NewGate(nil)
	calls := 0
	release := g.OnChange(func(string, State) { calls++ })

	release()
	release()
	g.Complete(context.Background(), "c1", pass)
	assert.Zero(t, calls)
}
