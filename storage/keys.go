package storage

import "github.com/teranos/cashngo/gig"

// Collection names, relative to the store prefix
const (
	KeyPostedGigs      = "postedGigs"
	KeyApplications    = "applications"
	KeyCurrentCourseID = "currentCourseId"
	KeyGuideShown      = "guideShown_v2"
)

// Collections groups the typed handles for every persisted collection
type Collections struct {
	PostedGigs      *Key[[]gig.Gig]
	Applications    *Key[[]gig.Application]
	CurrentCourseID *Key[*string]
	GuideShown      *Key[bool]
}

// NewCollections creates the collection handles over store
func NewCollections(store *Store) *Collections {
	return &Collections{
		PostedGigs:      NewKey(store, KeyPostedGigs, []gig.Gig{}),
		Applications:    NewKey(store, KeyApplications, []gig.Application{}),
		CurrentCourseID: NewKey[*string](store, KeyCurrentCourseID, nil),
		GuideShown:      NewKey(store, KeyGuideShown, false),
	}
}

// CollectionNames lists every collection name in a stable order
func CollectionNames() []string {
	return []string{KeyPostedGigs, KeyApplications, KeyCurrentCourseID, KeyGuideShown}
}
