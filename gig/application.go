package gig

import (
	"sort"
	"strings"
	"time"
)

// ApplicationStatus is the employer-controlled state of an application
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// ParseApplicationStatus normalizes user input to a known status
func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	status := ApplicationStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case ApplicationPending, ApplicationAccepted, ApplicationRejected:
		return status, true
	}
	return "", false
}

// Terminal reports whether the status ends the employer workflow.
// Terminal statuses are a convention of the actions; the data model allows re-transition.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationAccepted || s == ApplicationRejected
}

// GigRef is the live foreign key from an application to a posted gig.
// It is not enforced: the gig may be missing.
type GigRef struct {
	GigID string `json:"gigId"`
}

// GigSnapshot holds gig display fields copied when the application was made.
// They are historical values and are never re-joined against the live gig.
type GigSnapshot struct {
	GigTitle   string    `json:"gigTitle"`
	Company    string    `json:"company"`
	SnapshotAt time.Time `json:"snapshotAt"`
}

// SnapshotOf captures the display fields of g at time at
func SnapshotOf(g Gig, company string, at time.Time) GigSnapshot {
	return GigSnapshot{GigTitle: g.Title, Company: company, SnapshotAt: at}
}

// Application is a worker's request to perform a posted gig
type Application struct {
	ID string `json:"id"`
	GigRef
	GigSnapshot
	ApplicantID   string            `json:"applicantId"`
	ApplicantName string            `json:"applicantName"`
	CoverLetter   string            `json:"coverLetter,omitempty"`
	PortfolioLink string            `json:"portfolioLink,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
	Status        ApplicationStatus `json:"status"`
}

// SortApplicationsNewestFirst orders applications by Timestamp descending
func SortApplicationsNewestFirst(apps []Application) {
	sort.SliceStable(apps, func(i, j int) bool {
		if apps[i].Timestamp.Equal(apps[j].Timestamp) {
			return apps[i].ID < apps[j].ID
		}
		return apps[i].Timestamp.After(apps[j].Timestamp)
	})
}

// RelevantTo returns the applications whose GigID is in gigIDs, preserving order.
// Applications pointing at unknown gigs are dropped without a diagnostic.
func RelevantTo(apps []Application, gigIDs map[string]struct{}) []Application {
	out := make([]Application, 0, len(apps))
	for _, a := range apps {
		if _, ok := gigIDs[a.GigID]; ok {
			out = append(out, a)
		}
	}
	return out
}

// WithStatus returns a copy of apps where only the record with id has its status replaced.
// found is false when no record matched; the copy is then value-equal to apps.
func WithStatus(apps []Application, id string, status ApplicationStatus) (out []Application, found bool) {
	out = make([]Application, len(apps))
	for i, a := range apps {
		if a.ID == id {
			a.Status = status
			found = true
		}
		out[i] = a
	}
	return out, found
}

// CountByStatus tallies applications per status
func CountByStatus(apps []Application) map[ApplicationStatus]int {
	counts := map[ApplicationStatus]int{
		ApplicationPending:  0,
		ApplicationAccepted: 0,
		ApplicationRejected: 0,
	}
	for _, a := range apps {
		counts[a.Status]++
	}
	return counts
}
