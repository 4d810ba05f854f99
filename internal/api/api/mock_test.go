package api_test

import (
	"context"
	"errors"
	"sync"

	"edevents/internal/model"
	"edevents/internal/repo"
)

// mockRepo is an in-memory Repository used by the endpoint tests. Writes
// mimic the transactional behavior of the Postgres implementation: a forced
// failure leaves the state untouched.
type mockRepo struct {
	mu     sync.Mutex
	nextID int

	events    map[int]model.Event
	venues    map[int]model.Venue
	sponsors  map[int]model.Sponsor
	links     []model.EventSponsor
	hosts     []model.Host
	persons   map[int]model.Person
	attendees map[int]model.Attendee
	guests    map[int]model.InvitedGuest

	failDelete bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		events:    map[int]model.Event{},
		venues:    map[int]model.Venue{},
		sponsors:  map[int]model.Sponsor{},
		persons:   map[int]model.Person{},
		attendees: map[int]model.Attendee{},
		guests:    map[int]model.InvitedGuest{},
	}
}

func (m *mockRepo) id() int {
	m.nextID++
	return m.nextID
}

func (m *mockRepo) GetAllEvents(ctx context.Context) ([]model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []model.Event{}
	for _, e := range m.events {
		out = append(out, e)
	}
	return out, nil
}

func (m *mockRepo) GetEventByID(ctx context.Context, id int) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.events[id]
	if !ok {
		return nil, repo.ErrEventNotFound
	}
	return &e, nil
}

func (m *mockRepo) GetEventDetails(ctx context.Context, id int) (*model.EventDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.events[id]
	if !ok {
		return nil, repo.ErrEventNotFound
	}

	details := &model.EventDetails{Event: e, Sponsors: []model.Sponsor{}}
	if v, ok := m.venues[e.VenueID]; ok {
		details.Venue = &v
	}
	for _, link := range m.links {
		if link.EventID != id {
			continue
		}
		if sp, ok := m.sponsors[link.SponsorID]; ok {
			details.Sponsors = append(details.Sponsors, sp)
		}
	}
	for _, h := range m.hosts {
		if h.EventID == id {
			if p, ok := m.persons[h.PersonID]; ok {
				details.Host = &p
			}
			break
		}
	}
	return details, nil
}

func (m *mockRepo) stampTaken(ticket, invitation model.Stamp, excludeID int) bool {
	for id, e := range m.events {
		if id == excludeID {
			continue
		}
		for _, s := range []model.Stamp{ticket, invitation} {
			if e.TicketStamp == s || e.InvitationStamp == s {
				return true
			}
		}
	}
	return false
}

func (m *mockRepo) findOrCreatePerson(p model.Person) int {
	for id, existing := range m.persons {
		if existing.Email == p.Email {
			return id
		}
	}
	p.ID = m.id()
	m.persons[p.ID] = p
	return p.ID
}

func (m *mockRepo) CreateEventTx(ctx context.Context, in *repo.EventCreate) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stampTaken(in.Event.TicketStamp, in.Event.InvitationStamp, 0) {
		return 0, repo.ErrStampInUse
	}

	venue := in.Venue
	venue.ID = m.id()
	m.venues[venue.ID] = venue

	event := in.Event
	event.ID = m.id()
	event.VenueID = venue.ID
	m.events[event.ID] = event

	hostID := m.findOrCreatePerson(in.Host)
	m.hosts = append(m.hosts, model.Host{ID: m.id(), PersonID: hostID, EventID: event.ID})

	for _, sp := range in.Sponsors {
		sponsor := sp.Sponsor
		sponsor.ID = m.id()
		m.sponsors[sponsor.ID] = sponsor
		m.links = append(m.links, model.EventSponsor{
			ID:                   m.id(),
			SponsorID:            sponsor.ID,
			EventID:              event.ID,
			SponsorshipAgreement: sp.Agreement,
		})
	}

	return event.ID, nil
}

func (m *mockRepo) UpdateEvent(ctx context.Context, e *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.events[e.ID]
	if !ok {
		return repo.ErrEventNotFound
	}
	if m.stampTaken(e.TicketStamp, e.InvitationStamp, e.ID) {
		return repo.ErrStampInUse
	}
	existing.Name = e.Name
	existing.Type = e.Type
	existing.VenueID = e.VenueID
	existing.TicketStamp = e.TicketStamp
	existing.InvitationStamp = e.InvitationStamp
	m.events[e.ID] = existing
	return nil
}

func (m *mockRepo) personReferenced(personID int) bool {
	for _, h := range m.hosts {
		if h.PersonID == personID {
			return true
		}
	}
	for _, a := range m.attendees {
		if a.PersonID == personID {
			return true
		}
	}
	for _, g := range m.guests {
		if g.PersonID == personID {
			return true
		}
	}
	return false
}

func (m *mockRepo) deletePersonIfOrphaned(personID int) {
	if !m.personReferenced(personID) {
		delete(m.persons, personID)
	}
}

func (m *mockRepo) DeleteEventTx(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[id]
	if !ok {
		return repo.ErrEventNotFound
	}
	if m.failDelete {
		// Simulated mid-cascade fault: rollback leaves everything intact.
		return errors.New("simulated cascade failure")
	}

	var keptLinks []model.EventSponsor
	for _, link := range m.links {
		if link.EventID == id {
			delete(m.sponsors, link.SponsorID)
			continue
		}
		keptLinks = append(keptLinks, link)
	}
	m.links = keptLinks

	var hostPersons []int
	var keptHosts []model.Host
	for _, h := range m.hosts {
		if h.EventID == id {
			hostPersons = append(hostPersons, h.PersonID)
			continue
		}
		keptHosts = append(keptHosts, h)
	}
	m.hosts = keptHosts

	var ledgerPersons []int
	for aid, a := range m.attendees {
		if a.TicketStamp == event.TicketStamp {
			ledgerPersons = append(ledgerPersons, a.PersonID)
			delete(m.attendees, aid)
		}
	}
	for gid, g := range m.guests {
		if g.InvitationStamp == event.InvitationStamp {
			ledgerPersons = append(ledgerPersons, g.PersonID)
			delete(m.guests, gid)
		}
	}

	delete(m.venues, event.VenueID)
	delete(m.events, id)

	for _, pid := range append(hostPersons, ledgerPersons...) {
		m.deletePersonIfOrphaned(pid)
	}
	return nil
}

func (m *mockRepo) ListTickets(ctx context.Context, stamp model.Stamp) ([]model.TicketEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := []model.TicketEntry{}
	for _, a := range m.attendees {
		if a.TicketStamp != stamp {
			continue
		}
		entries = append(entries, model.TicketEntry{Attendee: a, Person: m.persons[a.PersonID]})
	}
	return entries, nil
}

func (m *mockRepo) IssueTicketTx(ctx context.Context, stamp model.Stamp, person *model.Person) (*model.Attendee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	personID := m.findOrCreatePerson(*person)
	a := model.Attendee{ID: m.id(), PersonID: personID, TicketStamp: stamp}
	m.attendees[a.ID] = a
	return &a, nil
}

func (m *mockRepo) RevokeTicketTx(ctx context.Context, ticketID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.attendees[ticketID]
	if !ok {
		return repo.ErrTicketNotFound
	}
	delete(m.attendees, ticketID)
	m.deletePersonIfOrphaned(a.PersonID)
	return nil
}

func (m *mockRepo) applyPatch(personID int, patch *repo.PersonPatch) {
	if patch.Empty() {
		return
	}
	p := m.persons[personID]
	if patch.FirstName != nil {
		p.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		p.LastName = *patch.LastName
	}
	if patch.Dob != nil {
		p.Dob = *patch.Dob
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	m.persons[personID] = p
}

func (m *mockRepo) ticketStampKnown(stamp model.Stamp) bool {
	for _, e := range m.events {
		if e.TicketStamp == stamp {
			return true
		}
	}
	return false
}

func (m *mockRepo) invitationStampKnown(stamp model.Stamp) bool {
	for _, e := range m.events {
		if e.InvitationStamp == stamp {
			return true
		}
	}
	return false
}

func (m *mockRepo) AmendTicketTx(ctx context.Context, ticketID int, stamp *model.Stamp, patch *repo.PersonPatch) (*model.Attendee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if stamp != nil && !m.ticketStampKnown(*stamp) {
		return nil, repo.ErrUnknownStamp
	}
	a, ok := m.attendees[ticketID]
	if !ok {
		return nil, repo.ErrTicketNotFound
	}
	if stamp != nil {
		a.TicketStamp = *stamp
	}
	m.attendees[ticketID] = a
	if patch != nil {
		m.applyPatch(a.PersonID, patch)
	}
	return &a, nil
}

func (m *mockRepo) ListInvitations(ctx context.Context, stamp model.Stamp) ([]model.InvitationEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := []model.InvitationEntry{}
	for _, g := range m.guests {
		if g.InvitationStamp != stamp {
			continue
		}
		entries = append(entries, model.InvitationEntry{Guest: g, Person: m.persons[g.PersonID]})
	}
	return entries, nil
}

func (m *mockRepo) IssueInvitationTx(ctx context.Context, stamp model.Stamp, person *model.Person) (*model.InvitedGuest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	personID := m.findOrCreatePerson(*person)
	g := model.InvitedGuest{ID: m.id(), PersonID: personID, InvitationStamp: stamp}
	m.guests[g.ID] = g
	return &g, nil
}

func (m *mockRepo) RevokeInvitationTx(ctx context.Context, invitationID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.guests[invitationID]
	if !ok {
		return repo.ErrInvitationNotFound
	}
	delete(m.guests, invitationID)
	m.deletePersonIfOrphaned(g.PersonID)
	return nil
}

func (m *mockRepo) AmendInvitationTx(ctx context.Context, invitationID int, stamp *model.Stamp, patch *repo.PersonPatch) (*model.InvitedGuest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if stamp != nil && !m.invitationStampKnown(*stamp) {
		return nil, repo.ErrUnknownStamp
	}
	g, ok := m.guests[invitationID]
	if !ok {
		return nil, repo.ErrInvitationNotFound
	}
	if stamp != nil {
		g.InvitationStamp = *stamp
	}
	m.guests[invitationID] = g
	if patch != nil {
		m.applyPatch(g.PersonID, patch)
	}
	return &g, nil
}

func (m *mockRepo) MigrateUp(migrationsDir string) error   { return nil }
func (m *mockRepo) MigrateDown(migrationsDir string) error { return nil }

func (m *mockRepo) personByEmail(email string) (model.Person, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.persons {
		if p.Email == email {
			return p, true
		}
	}
	return model.Person{}, false
}
