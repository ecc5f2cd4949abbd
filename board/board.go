// Package board is the employer/worker workflow over the persisted
// collections: posting gigs, applying, reviewing applications, course
// enrollment and the first-run guide.
//
// Every operation reads and writes whole collections through the store.
// There are no cross-collection transactions; an application whose gig is
// gone is simply never relevant to an employer.
package board

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/cashngo/am"
	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/gig"
	"github.com/teranos/cashngo/logger"
	"github.com/teranos/cashngo/storage"
)

// ErrAlreadyEnrolled is returned when enrolling while enrolled in another course
var ErrAlreadyEnrolled = errors.Wrap(errors.ErrConflict, "already enrolled in a course")

// Options configures a Board
type Options struct {
	// IdentityPolicy decides what happens to applications without an applicant
	// (am.IdentityPlaceholder or am.IdentityStrict)
	IdentityPolicy string
	// ResultDelay pauses before quiz and application results are reported
	ResultDelay time.Duration
	// Now overrides the clock
	Now func() time.Time
}

// OptionsFromConfig maps the [board] config section
func OptionsFromConfig(cfg am.BoardConfig) Options {
	return Options{
		IdentityPolicy: cfg.IdentityPolicy,
		ResultDelay:    time.Duration(cfg.ResultDelayMS) * time.Millisecond,
	}
}

// Board is safe for concurrent use; ordering comes from the store's write lock.
type Board struct {
	cols *storage.Collections
	opts Options
	log  *zap.SugaredLogger
}

// New creates a board over cols
func New(cols *storage.Collections, opts Options) *Board {
	if opts.IdentityPolicy == "" {
		opts.IdentityPolicy = am.IdentityPlaceholder
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Board{cols: cols, opts: opts, log: logger.ComponentLogger("board")}
}

// Collections returns the handles the board works on
func (b *Board) Collections() *storage.Collections {
	return b.cols
}

// Pause waits out the configured result delay
func (b *Board) Pause(ctx context.Context) error {
	if b.opts.ResultDelay <= 0 {
		return nil
	}
	t := time.NewTimer(b.opts.ResultDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "result delay interrupted")
	}
}

// GigInput is what an employer fills in to post a gig
type GigInput struct {
	Title        string         `json:"title"`
	Category     string         `json:"category"`
	Description  string         `json:"description"`
	Requirements string         `json:"requirements"`
	PayoutAmount float64        `json:"payoutAmount"`
	PayoutType   gig.PayoutType `json:"payoutType"`
	EmployerID   string         `json:"employerId,omitempty"`
}

// Validate checks the input before a gig is created
func (in GigInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return errors.NewInvalidRequestError("title is required")
	}
	if in.PayoutAmount < 0 {
		return errors.NewInvalidRequestError("payout amount %v is negative", in.PayoutAmount)
	}
	if !in.PayoutType.Valid() {
		return errors.NewInvalidRequestError("unknown payout type %q", in.PayoutType)
	}
	return nil
}

// PostGig creates an Open gig and puts it at the front of the posted gigs
func (b *Board) PostGig(ctx context.Context, in GigInput) (gig.Gig, error) {
	if in.PayoutType == "" {
		in.PayoutType = gig.PayoutFixed
	}
	if err := in.Validate(); err != nil {
		return gig.Gig{}, err
	}

	g := gig.Gig{
		ID:           gig.NewID(),
		Title:        strings.TrimSpace(in.Title),
		Category:     strings.TrimSpace(in.Category),
		Description:  in.Description,
		Requirements: in.Requirements,
		PayoutAmount: in.PayoutAmount,
		PayoutType:   in.PayoutType,
		Status:       gig.StatusOpen,
		CreatedAt:    b.opts.Now(),
		EmployerID:   in.EmployerID,
	}
	b.cols.PostedGigs.Update(ctx, func(prev []gig.Gig) []gig.Gig {
		return append([]gig.Gig{g}, prev...)
	})

	b.log.Infow("Gig posted",
		logger.FieldGigID, g.ID,
		"title", g.Title,
		"payout", g.PayoutAmount,
	)
	return g, nil
}

// PostedGigs returns every posted gig, newest first
func (b *Board) PostedGigs(ctx context.Context) []gig.Gig {
	gigs := b.cols.PostedGigs.Read(ctx)
	gig.SortGigsNewestFirst(gigs)
	return gigs
}

// Gig returns one posted gig
func (b *Board) Gig(ctx context.Context, id string) (gig.Gig, error) {
	g, ok := gig.FindGig(b.cols.PostedGigs.Read(ctx), id)
	if !ok {
		return gig.Gig{}, errors.NewNotFoundError("gig %s", id)
	}
	return g, nil
}
