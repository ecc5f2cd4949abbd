// Package gig holds the CashnGo data model: employer-posted gigs, worker
// applications, marketplace catalog listings and skill quizzes.
//
// JSON field names match the collections persisted under the cashngo_* keys,
// so snapshots written by older clients decode unchanged.
package gig

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// PayoutType is how a gig pays out
type PayoutType string

const (
	PayoutFixed  PayoutType = "fixed"
	PayoutHourly PayoutType = "hourly"
)

// Valid reports whether p is a known payout type
func (p PayoutType) Valid() bool {
	return p == PayoutFixed || p == PayoutHourly
}

// Status is the lifecycle state of a posted gig
type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "InProgress"
	StatusClosed     Status = "Closed"
)

// Gig is a unit of paid work posted by an employer
type Gig struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Category     string     `json:"category"`
	Description  string     `json:"description"`
	Requirements string     `json:"requirements"`
	PayoutAmount float64    `json:"payoutAmount"`
	PayoutType   PayoutType `json:"payoutType"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	EmployerID   string     `json:"employerId,omitempty"`
}

// NewID returns a fresh opaque identifier
func NewID() string {
	return uuid.New().String()
}

// SortGigsNewestFirst orders gigs by CreatedAt descending, ties by ID for stability
func SortGigsNewestFirst(gigs []Gig) {
	sort.SliceStable(gigs, func(i, j int) bool {
		if gigs[i].CreatedAt.Equal(gigs[j].CreatedAt) {
			return gigs[i].ID < gigs[j].ID
		}
		return gigs[i].CreatedAt.After(gigs[j].CreatedAt)
	})
}

// IDSet returns the set of gig ids, used for the relevance membership test
func IDSet(gigs []Gig) map[string]struct{} {
	set := make(map[string]struct{}, len(gigs))
	for _, g := range gigs {
		set[g.ID] = struct{}{}
	}
	return set
}

// FindGig returns the gig with the given id
func FindGig(gigs []Gig, id string) (Gig, bool) {
	for _, g := range gigs {
		if g.ID == id {
			return g, true
		}
	}
	return Gig{}, false
}
