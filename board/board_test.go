package board

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/cashngo/am"
	"github.com/teranos/cashngo/db"
	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/gig"
	cashtest "github.com/teranos/cashngo/internal/testing"
	"github.com/teranos/cashngo/storage"
)

// steppingClock returns increasing timestamps so newest-first order is deterministic
func steppingClock() func() time.Time {
	t := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func newTestBoard(t *testing.T, opts Options) *Board {
	t.Helper()
	if opts.Now == nil {
		opts.Now = steppingClock()
	}
	return New(cashtest.CreateTestCollections(t), opts)
}

func postGig(t *testing.T, b *Board, title string) gig.Gig {
	t.Helper()
	g, err := b.PostGig(context.Background(), GigInput{Title: title, Category: "Design", PayoutAmount: 50, PayoutType: gig.PayoutFixed})
	require.NoError(t, err)
	return g
}

func apply(t *testing.T, b *Board, gigID, applicant string) gig.Application {
	t.Helper()
	app, err := b.Apply(context.Background(), ApplyInput{GigID: gigID, ApplicantID: applicant, ApplicantName: applicant})
	require.NoError(t, err)
	return app
}

func TestPostGig(t *testing.T) {
	b := newTestBoard(t, Options{})
	ctx := context.Background()

	first := postGig(t, b, "Flyer design")
	second := postGig(t, b, "Campus tour guide")

	assert.Equal(t, gig.StatusOpen, first.Status)
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	gigs := b.PostedGigs(ctx)
	require.Len(t, gigs, 2)
	assert.Equal(t, second.ID, gigs[0].ID, "newest first")

	// Stored order is prepend order too
	stored := b.Collections().PostedGigs.Read(ctx)
	assert.Equal(t, second.ID, stored[0].ID)
}

func TestPostGigValidation(t *testing.T) {
	b := newTestBoard(t, Options{})

	tests := []struct {
		name  string
		input GigInput
	}{
		{"missing title", GigInput{Title: "  ", PayoutAmount: 10}},
		{"negative payout", GigInput{Title: "Tutor", PayoutAmount: -1}},
		{"unknown payout type", GigInput{Title: "Tutor", PayoutType: "weekly"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.PostGig(context.Background(), tt.input)
			assert.True(t, errors.IsInvalidRequestError(err), "got %v", err)
		})
	}
	assert.Empty(t, b.PostedGigs(context.Background()))
}

func TestPostGigDefaultsToFixed(t *testing.T) {
	b := newTestBoard(t, Options{})

	g, err := b.PostGig(context.Background(), GigInput{Title: "Logo", PayoutAmount: 0})
	require.NoError(t, err)
	assert.Equal(t, gig.PayoutFixed, g.PayoutType)
}

func TestApplySnapshotsGig(t *testing.T) {
	b := newTestBoard(t, Options{})
	ctx := context.Background()
	g := postGig(t, b, "Flyer design")

	app := apply(t, b, g.ID, "w1")
	assert.Equal(t, gig.ApplicationPending, app.Status)
	assert.Equal(t, "Flyer design", app.GigTitle)

	// Renaming the gig later leaves the snapshot alone
	b.Collections().PostedGigs.Update(ctx, func(prev []gig.Gig) []gig.Gig {
		prev[0].Title = "Poster design"
		return prev
	})
	stored, err := b.Application(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Flyer design", stored.GigTitle)
}

func TestApplyRequiresGigID(t *testing.T) {
	b := newTestBoard(t, Options{})

	_, err := b.Apply(context.Background(), ApplyInput{ApplicantID: "w1", ApplicantName: "W"})
	assert.True(t, errors.IsInvalidRequestError(err))
}

func TestApplyIdentityPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("placeholder backfills", func(t *testing.T) {
		b := newTestBoard(t, Options{IdentityPolicy: am.IdentityPlaceholder})
		app, err := b.Apply(ctx, ApplyInput{GigID: "c1", GigTitle: "Catalog gig"})
		require.NoError(t, err)
		assert.NotEmpty(t, app.ApplicantID)
		assert.NotEmpty(t, app.ApplicantName)
		assert.Contains(t, placeholderNames, app.ApplicantName)
	})

	t.Run("placeholder keeps given identity", func(t *testing.T) {
		b := newTestBoard(t, Options{})
		app, err := b.Apply(ctx, ApplyInput{GigID: "c1", ApplicantID: "w9", ApplicantName: "Nia"})
		require.NoError(t, err)
		assert.Equal(t, "w9", app.ApplicantID)
		assert.Equal(t, "Nia", app.ApplicantName)
	})

	t.Run("strict rejects", func(t *testing.T) {
		b := newTestBoard(t, Options{IdentityPolicy: am.IdentityStrict})
		_, err := b.Apply(ctx, ApplyInput{GigID: "c1", ApplicantName: "Nia"})
		assert.True(t, errors.IsInvalidRequestError(err))
		assert.NotEmpty(t, errors.GetAllHints(err))
		assert.Empty(t, b.Applications(ctx))
	})
}

func TestRelevantApplicationsExcludeOrphans(t *testing.T) {
	b := newTestBoard(t, Options{})
	ctx := context.Background()

	g := postGig(t, b, "Flyer design")
	a1 := apply(t, b, g.ID, "w1")
	apply(t, b, "gig-from-elsewhere", "w2")
	a3 := apply(t, b, g.ID, "w3")

	relevant := b.RelevantApplications(ctx)
	require.Len(t, relevant, 2)
	assert.Equal(t, a3.ID, relevant[0].ID)
	assert.Equal(t, a1.ID, relevant[1].ID)
	assert.Len(t, b.Applications(ctx), 3, "orphans stay stored")
}

func TestApplicationsFor(t *testing.T) {
	b := newTestBoard(t, Options{})
	ctx := context.Background()

	apply(t, b, "g1", "w1")
	apply(t, b, "g2", "w2")
	latest := apply(t, b, "g3", "w1")

	mine := b.ApplicationsFor(ctx, "w1")
	require.Len(t, mine, 2)
	assert.Equal(t, latest.ID, mine[0].ID)
	assert.Empty(t, b.ApplicationsFor(ctx, "nobody"))
}

func TestUpdateApplicationStatusReplacesOnlyTarget(t *testing.T) {
	b := newTestBoard(t, Options{})
	ctx := context.Background()

	a1 := apply(t, b, "g1", "w1")
	a2 := apply(t, b, "g1", "w2")
	before := b.Collections().Applications.Read(ctx)

	updated, err := b.UpdateApplicationStatus(ctx, a1.ID, gig.ApplicationAccepted)
	require.NoError(t, err)
	assert.Equal(t, gig.ApplicationAccepted, updated.Status)

	after := b.Collections().Applications.Read(ctx)
	require.Len(t, after, len(before))
	for i := range after {
		if after[i].ID == a1.ID {
			want := before[i]
			want.Status = gig.ApplicationAccepted
			assert.Equal(t, want, after[i])
		} else {
			assert.Equal(t, before[i], after[i])
		}
	}

	// Re-transition is permitted on this path
	again, err := b.UpdateApplicationStatus(ctx, a1.ID, gig.ApplicationRejected)
	require.NoError(t, err)
	assert.Equal(t, gig.ApplicationRejected, again.Status)

	other, err := b.Application(ctx, a2.ID)
	require.NoError(t, err)
	assert.Equal(t, gig.ApplicationPending, other.Status)
}

func TestUpdateApplicationStatusErrors(t *testing.T) {
	b := newTestBoard(t, Options{})
	ctx := context.Background()
	a := apply(t, b, "g1", "w1")

	_, err := b.UpdateApplicationStatus(ctx, "missing", gig.ApplicationAccepted)
	assert.True(t, errors.IsNotFoundError(err))

	_, err = b.UpdateApplicationStatus(ctx, a.ID, "interview")
	assert.True(t, errors.IsInvalidRequestError(err))
}

func TestAcceptRejectAreTerminal(t *testing.T) {
	b := newTestBoard(t, Options{})
	ctx := context.Background()
	a := apply(t, b, "g1", "w1")
	r := apply(t, b, "g1", "w2")

	accepted, err := b.Accept(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, gig.ApplicationAccepted, accepted.Status)

	_, err = b.Reject(ctx, a.ID)
	assert.True(t, errors.IsConflictError(err))
	_, err = b.Accept(ctx, a.ID)
	assert.True(t, errors.IsConflictError(err))

	rejected, err := b.Reject(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, gig.ApplicationRejected, rejected.Status)

	_, err = b.Accept(ctx, "missing")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestEnrollSingleSlot(t *testing.T) {
	b := newTestBoard(t, Options{})
	ctx := context.Background()

	require.NoError(t, b.Enroll(ctx, "c1"))
	assert.Equal(t, "c1", b.CurrentCourse(ctx))

	assert.NoError(t, b.Enroll(ctx, "c1"), "same course is a no-op")

	err := b.Enroll(ctx, "c2")
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
	assert.True(t, errors.IsConflictError(err))
	assert.Equal(t, "c1", b.CurrentCourse(ctx))

	b.DropCourse(ctx)
	assert.Equal(t, "", b.CurrentCourse(ctx))
	require.NoError(t, b.Enroll(ctx, "c2"))
	assert.Equal(t, "c2", b.CurrentCourse(ctx))

	assert.True(t, errors.IsInvalidRequestError(b.Enroll(ctx, " ")))
}

func TestStorePermitsCourseOverwrite(t *testing.T) {
	b := newTestBoard(t, Options{})
	ctx := context.Background()
	require.NoError(t, b.Enroll(ctx, "c1"))

	// The single-slot rule lives in the board; the store itself overwrites freely
	other := "c2"
	b.Collections().CurrentCourseID.Write(ctx, &other)
	assert.Equal(t, "c2", b.CurrentCourse(ctx))
}

func TestGuide(t *testing.T) {
	b := newTestBoard(t, Options{})
	ctx := context.Background()

	assert.True(t, b.ShouldShowGuide(ctx))
	b.MarkGuideShown(ctx)
	assert.False(t, b.ShouldShowGuide(ctx))
	b.ResetGuide(ctx)
	assert.True(t, b.ShouldShowGuide(ctx))
}

func TestEmployerSummary(t *testing.T) {
	b := newTestBoard(t, Options{})
	ctx := context.Background()

	flyer := postGig(t, b, "Flyer design")
	_, err := b.PostGig(ctx, GigInput{Title: "Tutoring", PayoutAmount: 12, PayoutType: gig.PayoutHourly})
	require.NoError(t, err)

	a := apply(t, b, flyer.ID, "w1")
	apply(t, b, flyer.ID, "w2")
	apply(t, b, "orphan", "w3")
	_, err = b.Accept(ctx, a.ID)
	require.NoError(t, err)

	s := b.EmployerSummary(ctx)
	assert.Equal(t, 2, s.TotalGigs)
	assert.Equal(t, 2, s.GigsByStatus[gig.StatusOpen])
	assert.Equal(t, 2, s.TotalApplications)
	assert.Equal(t, 1, s.ApplicationsByStatus[gig.ApplicationAccepted])
	assert.Equal(t, 1, s.ApplicationsByStatus[gig.ApplicationPending])
	assert.Equal(t, 50.0, s.CommittedPayout)
}

func TestResultDelayIsCancelable(t *testing.T) {
	b := newTestBoard(t, Options{ResultDelay: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Apply(ctx, ApplyInput{GigID: "g1", ApplicantID: "w1", ApplicantName: "W"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, b.Applications(context.Background()), "nothing written when interrupted")
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(am.BoardConfig{IdentityPolicy: am.IdentityStrict, ResultDelayMS: 1500})
	assert.Equal(t, am.IdentityStrict, opts.IdentityPolicy)
	assert.Equal(t, 1500*time.Millisecond, opts.ResultDelay)
}

func TestRefusedActionsDoNotWrite(t *testing.T) {
	b := newTestBoard(t, Options{})
	ctx := context.Background()
	require.NoError(t, b.Enroll(ctx, "c1"))
	apply(t, b, "g1", "w1")

	courseWrites, appWrites := 0, 0
	b.Collections().CurrentCourseID.Subscribe(func(*string) { courseWrites++ })
	b.Collections().Applications.Subscribe(func([]gig.Application) { appWrites++ })

	assert.ErrorIs(t, b.Enroll(ctx, "c2"), ErrAlreadyEnrolled)
	assert.NoError(t, b.Enroll(ctx, "c1"))
	_, err := b.UpdateApplicationStatus(ctx, "missing", gig.ApplicationAccepted)
	assert.True(t, errors.IsNotFoundError(err))
	_, err = b.Accept(ctx, "missing")
	assert.True(t, errors.IsNotFoundError(err))

	assert.Equal(t, 0, courseWrites)
	assert.Equal(t, 0, appWrites)
}

func TestNotFoundStatusUpdateKeepsOtherProcessWrites(t *testing.T) {
	conn, path := cashtest.CreateTestDB(t)
	other, err := db.OpenWithMigrations(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { other.Close() })

	ctx := context.Background()
	mine := New(storage.NewCollections(storage.NewStore(storage.NewSQLiteBackend(conn), cashtest.TestKeyPrefix)), Options{Now: steppingClock()})
	theirs := New(storage.NewCollections(storage.NewStore(storage.NewSQLiteBackend(other), cashtest.TestKeyPrefix)), Options{Now: steppingClock()})

	apply(t, mine, "g1", "w1")
	apply(t, theirs, "g1", "w2")

	// mine has not seen the other write; a refused update must not clobber it
	_, err = mine.UpdateApplicationStatus(ctx, "missing", gig.ApplicationAccepted)
	require.True(t, errors.IsNotFoundError(err))

	fresh := storage.NewCollections(storage.NewStore(storage.NewSQLiteBackend(other), cashtest.TestKeyPrefix))
	stored := fresh.Applications.Read(ctx)
	require.Len(t, stored, 2)
	assert.Equal(t, "w2", stored[0].ApplicantID)
	assert.Equal(t, "w1", stored[1].ApplicantID)
}
