package repo

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edevents/internal/model"
)

func detailRowWith(sponsorID int, sponsorName string) detailRow {
	return detailRow{
		event: model.Event{
			ID: 7, Name: "Gala", Type: "Fundraiser", VenueID: 3,
			TicketStamp: "GALA01", InvitationStamp: "GALA01-INV",
		},
		venueID:       sql.NullInt64{Int64: 3, Valid: true},
		venueName:     sql.NullString{String: "Hall A", Valid: true},
		venueProvince: sql.NullString{String: "X", Valid: true},
		venueTown:     sql.NullString{String: "Y", Valid: true},
		venueAddress:  sql.NullString{String: "1 Main St", Valid: true},
		venueCapacity: sql.NullInt64{Int64: 100, Valid: true},
		sponsorID:     sql.NullInt64{Int64: int64(sponsorID), Valid: sponsorID != 0},
		sponsorName:   sql.NullString{String: sponsorName, Valid: sponsorName != ""},
		hostID:        sql.NullInt64{Int64: 11, Valid: true},
		hostFirstName: sql.NullString{String: "Jo", Valid: true},
		hostLastName:  sql.NullString{String: "Doe", Valid: true},
		hostDob:       sql.NullString{String: "1990-01-01", Valid: true},
		hostEmail:     sql.NullString{String: "jo@x.com", Valid: true},
		hostPhone:     sql.NullString{String: "+447911123457", Valid: true},
	}
}

func TestCollapseDetailsEmpty(t *testing.T) {
	assert.Nil(t, collapseDetails(nil))
}

func TestCollapseDetailsGroupsSponsorFanOut(t *testing.T) {
	rows := []detailRow{
		detailRowWith(1, "Acme"),
		detailRowWith(2, "Globex"),
		// Duplicate from the host-join fan-out.
		detailRowWith(1, "Acme"),
	}

	details := collapseDetails(rows)
	require.NotNil(t, details)

	assert.Equal(t, 7, details.Event.ID)
	require.NotNil(t, details.Venue)
	assert.Equal(t, "Hall A", details.Venue.Name)
	assert.Equal(t, 100, details.Venue.Capacity)

	require.Len(t, details.Sponsors, 2)
	assert.Equal(t, "Acme", details.Sponsors[0].Name)
	assert.Equal(t, "Globex", details.Sponsors[1].Name)

	require.NotNil(t, details.Host)
	assert.Equal(t, "Jo", details.Host.FirstName)
}

func TestCollapseDetailsNoSponsorsNoHost(t *testing.T) {
	row := detailRowWith(0, "")
	row.hostID = sql.NullInt64{}
	row.venueID = sql.NullInt64{}

	details := collapseDetails([]detailRow{row})
	require.NotNil(t, details)
	assert.Nil(t, details.Venue)
	assert.Nil(t, details.Host)
	assert.Empty(t, details.Sponsors)
	assert.NotNil(t, details.Sponsors, "sponsors must serialize as [], not null")
}

func TestPersonPatchEmpty(t *testing.T) {
	assert.True(t, (*PersonPatch)(nil).Empty())
	assert.True(t, (&PersonPatch{}).Empty())

	name := "Amy"
	assert.False(t, (&PersonPatch{FirstName: &name}).Empty())
}
