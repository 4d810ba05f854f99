package model

import (
	"errors"
	"strings"
)

const maxStampLen = 50

var (
	ErrStampEmpty   = errors.New("stamp must not be empty")
	ErrStampTooLong = errors.New("stamp exceeds maximum length")
	ErrStampsEqual  = errors.New("ticket and invitation stamps must differ")
)

// Stamp is the correlation token tying attendees and invited guests to an
// event. It is matched by value, not by foreign key, so the storage layer
// keeps stamps unique across all events and both stamp columns.
type Stamp string

func (s Stamp) Validate() error {
	trimmed := strings.TrimSpace(string(s))
	if trimmed == "" {
		return ErrStampEmpty
	}
	if len(trimmed) > maxStampLen {
		return ErrStampTooLong
	}
	return nil
}

func (s Stamp) String() string {
	return string(s)
}

type Person struct {
	ID        int    `db:"id" json:"id"`
	FirstName string `db:"first_name" json:"firstName"`
	LastName  string `db:"last_name" json:"lastName"`
	Dob       string `db:"dob" json:"dob"`
	Email     string `db:"email" json:"email"`
	Phone     string `db:"phone" json:"phone"`
}

type Venue struct {
	ID       int    `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Province string `db:"province" json:"province"`
	Town     string `db:"town" json:"town"`
	Address  string `db:"address" json:"address"`
	Capacity int    `db:"capacity" json:"capacity"`
}

type Sponsor struct {
	ID    int    `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
	Phone string `db:"phone" json:"phone"`
}

// EventSponsor is the event/sponsor link carrying the agreement text.
// Sponsors are event-exclusive: the link and its sponsor row live and die
// with the event.
type EventSponsor struct {
	ID                   int    `db:"id" json:"id"`
	SponsorID            int    `db:"sponsor_id" json:"sponsorId"`
	EventID              int    `db:"event_id" json:"eventId"`
	SponsorshipAgreement string `db:"sponsorship_agreement" json:"sponsorshipAgreement"`
}

type Host struct {
	ID       int `db:"id" json:"id"`
	PersonID int `db:"person_id" json:"personId"`
	EventID  int `db:"event_id" json:"eventId"`
}

type Event struct {
	ID              int    `db:"id" json:"id"`
	Name            string `db:"name" json:"name"`
	Type            string `db:"type" json:"type"`
	VenueID         int    `db:"venue_id" json:"venueId"`
	TicketStamp     Stamp  `db:"ticket_stamp" json:"ticketStamp"`
	InvitationStamp Stamp  `db:"invitation_stamp" json:"invitationStamp"`
}

// ValidateStamps checks the stamp pair an event is created or updated with.
func (e *Event) ValidateStamps() error {
	if err := e.TicketStamp.Validate(); err != nil {
		return err
	}
	if err := e.InvitationStamp.Validate(); err != nil {
		return err
	}
	if e.TicketStamp == e.InvitationStamp {
		return ErrStampsEqual
	}
	return nil
}

type Attendee struct {
	ID          int   `db:"id" json:"id"`
	PersonID    int   `db:"person_id" json:"personId"`
	TicketStamp Stamp `db:"ticket_stamp" json:"ticketStamp"`
}

type InvitedGuest struct {
	ID              int   `db:"id" json:"id"`
	PersonID        int   `db:"person_id" json:"personId"`
	InvitationStamp Stamp `db:"invitation_stamp" json:"invitationStamp"`
}

// EventDetails is the collapsed left-join projection returned by the detail
// lookup: venue and host may be nil, sponsors holds the distinct non-null
// sponsor rows across the joined result.
type EventDetails struct {
	Event    Event     `json:"event"`
	Venue    *Venue    `json:"venue"`
	Sponsors []Sponsor `json:"sponsors"`
	Host     *Person   `json:"host"`
}

// TicketEntry and InvitationEntry pair a ledger row with its person for the
// per-event listings.
type TicketEntry struct {
	Attendee Attendee `json:"attendee"`
	Person   Person   `json:"person"`
}

type InvitationEntry struct {
	Guest  InvitedGuest `json:"guest"`
	Person Person       `json:"person"`
}
