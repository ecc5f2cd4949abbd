package board

import (
	"context"

	"github.com/teranos/cashngo/gig"
)

// Summary is the employer dashboard header
type Summary struct {
	TotalGigs            int                           `json:"totalGigs"`
	GigsByStatus         map[gig.Status]int            `json:"gigsByStatus"`
	TotalApplications    int                           `json:"totalApplications"`
	ApplicationsByStatus map[gig.ApplicationStatus]int `json:"applicationsByStatus"`
	// CommittedPayout sums fixed payouts of gigs with at least one accepted application
	CommittedPayout float64 `json:"committedPayout"`
}

// EmployerSummary counts posted gigs and their relevant applications
func (b *Board) EmployerSummary(ctx context.Context) Summary {
	gigs := b.cols.PostedGigs.Read(ctx)
	apps := gig.RelevantTo(b.cols.Applications.Read(ctx), gig.IDSet(gigs))

	s := Summary{
		TotalGigs:            len(gigs),
		GigsByStatus:         make(map[gig.Status]int),
		TotalApplications:    len(apps),
		ApplicationsByStatus: gig.CountByStatus(apps),
	}

	accepted := make(map[string]bool)
	for _, app := range apps {
		if app.Status == gig.ApplicationAccepted {
			accepted[app.GigID] = true
		}
	}
	for _, g := range gigs {
		s.GigsByStatus[g.Status]++
		if g.PayoutType == gig.PayoutFixed && accepted[g.ID] {
			s.CommittedPayout += g.PayoutAmount
		}
	}
	return s
}
