package gig

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationJSONShape(t *testing.T) {
	app := Application{
		ID:            "a1",
		GigRef:        GigRef{GigID: "g1"},
		GigSnapshot:   GigSnapshot{GigTitle: "Flyer design", Company: "Campus Cafe"},
		ApplicantID:   "w1",
		ApplicantName: "Asha",
		Status:        ApplicationPending,
	}

	data, err := json.Marshal(app)
	require.NoError(t, err)

	var flat map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, "g1", flat["gigId"])
	assert.Equal(t, "Flyer design", flat["gigTitle"])
	assert.Equal(t, "Campus Cafe", flat["company"])
	assert.NotContains(t, flat, "GigRef")
	assert.NotContains(t, flat, "coverLetter")
	assert.Contains(t, flat, "snapshotAt", "snapshot time is always written")
}

func TestDecodeLegacyApplication(t *testing.T) {
	raw := `{"id":"a9","gigId":"g2","gigTitle":"Tutor","company":"Acme","applicantId":"u","applicantName":"Ravi","timestamp":"2024-03-01T10:00:00Z","status":"accepted"}`

	var app Application
	require.NoError(t, json.Unmarshal([]byte(raw), &app))
	assert.Equal(t, "g2", app.GigID)
	assert.Equal(t, "Tutor", app.GigTitle)
	assert.Equal(t, ApplicationAccepted, app.Status)
	assert.True(t, app.Status.Terminal())
}

func TestRelevantTo(t *testing.T) {
	gigs := []Gig{{ID: "g1"}}
	apps := []Application{
		{ID: "a1", GigRef: GigRef{GigID: "g1"}},
		{ID: "a2", GigRef: GigRef{GigID: "g2"}},
	}

	relevant := RelevantTo(apps, IDSet(gigs))
	require.Len(t, relevant, 1)
	assert.Equal(t, "a1", relevant[0].ID)
}

func TestWithStatus(t *testing.T) {
	apps := []Application{
		{ID: "a1", Status: ApplicationPending, ApplicantName: "one"},
		{ID: "a2", Status: ApplicationPending, ApplicantName: "two"},
	}

	out, found := WithStatus(apps, "a2", ApplicationAccepted)
	require.True(t, found)
	assert.Equal(t, ApplicationAccepted, out[1].Status)
	assert.Equal(t, apps[0], out[0])
	assert.Equal(t, ApplicationPending, apps[1].Status, "input must not be mutated")

	_, found = WithStatus(apps, "missing", ApplicationRejected)
	assert.False(t, found)
}

func TestSortNewestFirst(t *testing.T) {
	now := time.Now()
	gigs := []Gig{
		{ID: "old", CreatedAt: now.Add(-time.Hour)},
		{ID: "new", CreatedAt: now},
		{ID: "mid", CreatedAt: now.Add(-time.Minute)},
	}
	SortGigsNewestFirst(gigs)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{gigs[0].ID, gigs[1].ID, gigs[2].ID})

	apps := []Application{
		{ID: "a", Timestamp: now.Add(-time.Hour)},
		{ID: "b", Timestamp: now},
	}
	SortApplicationsNewestFirst(apps)
	assert.Equal(t, "b", apps[0].ID)
}

func TestParseApplicationStatus(t *testing.T) {
	s, ok := ParseApplicationStatus(" Accepted ")
	assert.True(t, ok)
	assert.Equal(t, ApplicationAccepted, s)

	_, ok = ParseApplicationStatus("interview")
	assert.False(t, ok)
}

func TestCountByStatus(t *testing.T) {
	counts := CountByStatus([]Application{
		{Status: ApplicationPending},
		{Status: ApplicationAccepted},
		{Status: ApplicationPending},
	})
	assert.Equal(t, 2, counts[ApplicationPending])
	assert.Equal(t, 1, counts[ApplicationAccepted])
	assert.Equal(t, 0, counts[ApplicationRejected])
}
