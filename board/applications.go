package board

import (
	"context"
	"strings"

	"github.com/teranos/cashngo/am"
	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/gig"
	"github.com/teranos/cashngo/logger"
)

// ApplyInput is what a worker submits to apply for a gig. GigTitle and Company
// are taken from the posted gig when it exists and they are left empty.
type ApplyInput struct {
	GigID         string `json:"gigId"`
	GigTitle      string `json:"gigTitle,omitempty"`
	Company       string `json:"company,omitempty"`
	ApplicantID   string `json:"applicantId,omitempty"`
	ApplicantName string `json:"applicantName,omitempty"`
	CoverLetter   string `json:"coverLetter,omitempty"`
	PortfolioLink string `json:"portfolioLink,omitempty"`
}

var placeholderNames = []string{"Asha", "Ravi", "Meera", "Kabir", "Zoya", "Arjun", "Ishita", "Dev"}

// Apply records a pending application. The gig is referenced, not verified:
// applications to gigs that disappear later remain stored but irrelevant.
func (b *Board) Apply(ctx context.Context, in ApplyInput) (gig.Application, error) {
	if strings.TrimSpace(in.GigID) == "" {
		return gig.Application{}, errors.NewInvalidRequestError("gig id is required")
	}
	if err := b.resolveApplicant(&in); err != nil {
		return gig.Application{}, err
	}

	now := b.opts.Now()
	snapshot := gig.GigSnapshot{GigTitle: in.GigTitle, Company: in.Company, SnapshotAt: now}
	if posted, ok := gig.FindGig(b.cols.PostedGigs.Read(ctx), in.GigID); ok && snapshot.GigTitle == "" {
		snapshot = gig.SnapshotOf(posted, in.Company, now)
	}

	if err := b.Pause(ctx); err != nil {
		return gig.Application{}, err
	}

	app := gig.Application{
		ID:            gig.NewID(),
		GigRef:        gig.GigRef{GigID: in.GigID},
		GigSnapshot:   snapshot,
		ApplicantID:   in.ApplicantID,
		ApplicantName: in.ApplicantName,
		CoverLetter:   in.CoverLetter,
		PortfolioLink: strings.TrimSpace(in.PortfolioLink),
		Timestamp:     now,
		Status:        gig.ApplicationPending,
	}
	b.cols.Applications.Update(ctx, func(prev []gig.Application) []gig.Application {
		return append([]gig.Application{app}, prev...)
	})

	b.log.Infow("Application submitted",
		logger.FieldAppID, app.ID,
		logger.FieldGigID, app.GigID,
		logger.FieldApplicantID, app.ApplicantID,
	)
	return app, nil
}

func (b *Board) resolveApplicant(in *ApplyInput) error {
	in.ApplicantID = strings.TrimSpace(in.ApplicantID)
	in.ApplicantName = strings.TrimSpace(in.ApplicantName)
	if in.ApplicantID != "" && in.ApplicantName != "" {
		return nil
	}
	if b.opts.IdentityPolicy == am.IdentityStrict {
		return errors.WithHint(
			errors.NewInvalidRequestError("applicant id and name are required"),
			"set board.identity_policy = \"placeholder\" to backfill anonymous applicants",
		)
	}

	id := gig.NewID()
	if in.ApplicantID == "" {
		in.ApplicantID = "guest-" + id[:8]
	}
	if in.ApplicantName == "" {
		in.ApplicantName = placeholderNames[int(id[0])%len(placeholderNames)]
	}
	b.log.Warnw("Application without applicant identity, using placeholder",
		logger.FieldGigID, in.GigID,
		logger.FieldApplicantID, in.ApplicantID,
		"applicant_name", in.ApplicantName,
	)
	return nil
}

// Applications returns every stored application, newest first
func (b *Board) Applications(ctx context.Context) []gig.Application {
	apps := b.cols.Applications.Read(ctx)
	gig.SortApplicationsNewestFirst(apps)
	return apps
}

// Application returns one application
func (b *Board) Application(ctx context.Context, id string) (gig.Application, error) {
	for _, app := range b.cols.Applications.Read(ctx) {
		if app.ID == id {
			return app, nil
		}
	}
	return gig.Application{}, errors.NewNotFoundError("application %s", id)
}

// RelevantApplications returns applications for the employer's posted gigs, newest first
func (b *Board) RelevantApplications(ctx context.Context) []gig.Application {
	apps := gig.RelevantTo(b.cols.Applications.Read(ctx), gig.IDSet(b.cols.PostedGigs.Read(ctx)))
	gig.SortApplicationsNewestFirst(apps)
	return apps
}

// ApplicationsFor returns one worker's applications, newest first
func (b *Board) ApplicationsFor(ctx context.Context, applicantID string) []gig.Application {
	var out []gig.Application
	for _, app := range b.cols.Applications.Read(ctx) {
		if app.ApplicantID == applicantID {
			out = append(out, app)
		}
	}
	gig.SortApplicationsNewestFirst(out)
	return out
}

// UpdateApplicationStatus replaces the applications collection with a copy in
// which only the matching record's status differs. Any transition is allowed.
func (b *Board) UpdateApplicationStatus(ctx context.Context, appID string, status gig.ApplicationStatus) (gig.Application, error) {
	parsed, ok := gig.ParseApplicationStatus(string(status))
	if !ok {
		return gig.Application{}, errors.NewInvalidRequestError("unknown application status %q", status)
	}

	var updated gig.Application
	var found bool
	b.cols.Applications.UpdateIf(ctx, func(prev []gig.Application) ([]gig.Application, bool) {
		var next []gig.Application
		next, found = gig.WithStatus(prev, appID, parsed)
		if !found {
			return prev, false
		}
		for _, app := range next {
			if app.ID == appID {
				updated = app
			}
		}
		return next, true
	})
	if !found {
		return gig.Application{}, errors.NewNotFoundError("application %s", appID)
	}

	b.log.Infow("Application status updated",
		logger.FieldAppID, appID,
		logger.FieldStatus, parsed,
	)
	return updated, nil
}

// Accept is the employer's accept action; it only applies to pending applications
func (b *Board) Accept(ctx context.Context, appID string) (gig.Application, error) {
	return b.decide(ctx, appID, gig.ApplicationAccepted)
}

// Reject is the employer's reject action; it only applies to pending applications
func (b *Board) Reject(ctx context.Context, appID string) (gig.Application, error) {
	return b.decide(ctx, appID, gig.ApplicationRejected)
}

func (b *Board) decide(ctx context.Context, appID string, status gig.ApplicationStatus) (gig.Application, error) {
	app, err := b.Application(ctx, appID)
	if err != nil {
		return gig.Application{}, err
	}
	if app.Status.Terminal() {
		return gig.Application{}, errors.NewConflictError("application %s is already %s", appID, app.Status)
	}
	if err := b.Pause(ctx); err != nil {
		return gig.Application{}, err
	}
	return b.UpdateApplicationStatus(ctx, appID, status)
}
