package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"edevents/internal/model"
)

func (r *repository) GetAllEvents(ctx context.Context) ([]model.Event, error) {
	query := `
		SELECT id, name, type, venue_id, ticket_stamp, invitation_stamp
		FROM events
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(
			&e.ID,
			&e.Name,
			&e.Type,
			&e.VenueID,
			&e.TicketStamp,
			&e.InvitationStamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

func (r *repository) GetEventByID(ctx context.Context, id int) (*model.Event, error) {
	query := `
		SELECT id, name, type, venue_id, ticket_stamp, invitation_stamp
		FROM events WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)

	var e model.Event
	if err := row.Scan(
		&e.ID, &e.Name, &e.Type, &e.VenueID, &e.TicketStamp, &e.InvitationStamp,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &e, nil
}

// detailRow is one row of the fanned-out detail join. Venue, sponsor and
// host columns are nullable because of the left joins.
type detailRow struct {
	event model.Event

	venueID       sql.NullInt64
	venueName     sql.NullString
	venueProvince sql.NullString
	venueTown     sql.NullString
	venueAddress  sql.NullString
	venueCapacity sql.NullInt64

	sponsorID    sql.NullInt64
	sponsorName  sql.NullString
	sponsorEmail sql.NullString
	sponsorPhone sql.NullString

	hostID        sql.NullInt64
	hostFirstName sql.NullString
	hostLastName  sql.NullString
	hostDob       sql.NullString
	hostEmail     sql.NullString
	hostPhone     sql.NullString
}

// collapseDetails regroups the join fan-out into a single detail object:
// event, venue and host come from the first row, sponsors are the distinct
// non-null sponsor projections across all rows.
func collapseDetails(rows []detailRow) *model.EventDetails {
	if len(rows) == 0 {
		return nil
	}

	first := rows[0]
	details := &model.EventDetails{
		Event:    first.event,
		Sponsors: []model.Sponsor{},
	}

	if first.venueID.Valid {
		details.Venue = &model.Venue{
			ID:       int(first.venueID.Int64),
			Name:     first.venueName.String,
			Province: first.venueProvince.String,
			Town:     first.venueTown.String,
			Address:  first.venueAddress.String,
			Capacity: int(first.venueCapacity.Int64),
		}
	}
	if first.hostID.Valid {
		details.Host = &model.Person{
			ID:        int(first.hostID.Int64),
			FirstName: first.hostFirstName.String,
			LastName:  first.hostLastName.String,
			Dob:       first.hostDob.String,
			Email:     first.hostEmail.String,
			Phone:     first.hostPhone.String,
		}
	}

	seen := make(map[int]bool)
	for _, row := range rows {
		if !row.sponsorID.Valid || seen[int(row.sponsorID.Int64)] {
			continue
		}
		seen[int(row.sponsorID.Int64)] = true
		details.Sponsors = append(details.Sponsors, model.Sponsor{
			ID:    int(row.sponsorID.Int64),
			Name:  row.sponsorName.String,
			Email: row.sponsorEmail.String,
			Phone: row.sponsorPhone.String,
		})
	}

	return details
}

func (r *repository) GetEventDetails(ctx context.Context, id int) (*model.EventDetails, error) {
	query := `
		SELECT e.id, e.name, e.type, e.venue_id, e.ticket_stamp, e.invitation_stamp,
		       v.id, v.name, v.province, v.town, v.address, v.capacity,
		       s.id, s.name, s.email, s.phone,
		       p.id, p.first_name, p.last_name, p.dob::text, p.email, p.phone
		FROM events e
		LEFT JOIN venues v ON v.id = e.venue_id
		LEFT JOIN event_sponsors es ON es.event_id = e.id
		LEFT JOIN sponsors s ON s.id = es.sponsor_id
		LEFT JOIN hosts h ON h.event_id = e.id
		LEFT JOIN persons p ON p.id = h.person_id
		WHERE e.id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event details: %w", err)
	}
	defer rows.Close()

	var result []detailRow
	for rows.Next() {
		var d detailRow
		if err := rows.Scan(
			&d.event.ID, &d.event.Name, &d.event.Type, &d.event.VenueID,
			&d.event.TicketStamp, &d.event.InvitationStamp,
			&d.venueID, &d.venueName, &d.venueProvince, &d.venueTown,
			&d.venueAddress, &d.venueCapacity,
			&d.sponsorID, &d.sponsorName, &d.sponsorEmail, &d.sponsorPhone,
			&d.hostID, &d.hostFirstName, &d.hostLastName, &d.hostDob,
			&d.hostEmail, &d.hostPhone,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event details: %w", err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event details: %w", err)
	}

	details := collapseDetails(result)
	if details == nil {
		return nil, ErrEventNotFound
	}
	return details, nil
}

// stampTakenTx reports whether either stamp is already used by an event
// other than excludeID, in either stamp column.
func stampTakenTx(ctx context.Context, tx *sql.Tx, ticket, invitation model.Stamp, excludeID int) (bool, error) {
	var count int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM events
		WHERE (ticket_stamp IN ($1, $2) OR invitation_stamp IN ($1, $2))
		  AND id <> $3
	`, ticket.String(), invitation.String(), excludeID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check stamp uniqueness: %w", err)
	}
	return count > 0, nil
}

func (r *repository) CreateEventTx(ctx context.Context, in *EventCreate) (int, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	taken, err := stampTakenTx(ctx, tx, in.Event.TicketStamp, in.Event.InvitationStamp, 0)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if taken {
		_ = tx.Rollback()
		return 0, ErrStampInUse
	}

	var venueID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO venues (name, province, town, address, capacity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, in.Venue.Name, in.Venue.Province, in.Venue.Town, in.Venue.Address, in.Venue.Capacity).Scan(&venueID)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to insert venue: %w", err)
	}

	// Sponsors are event-exclusive, so every creation inserts fresh rows.
	sponsorIDs := make([]int, 0, len(in.Sponsors))
	for _, sp := range in.Sponsors {
		var sponsorID int
		err = tx.QueryRowContext(ctx, `
			INSERT INTO sponsors (name, email, phone)
			VALUES ($1, $2, $3)
			RETURNING id
		`, sp.Sponsor.Name, sp.Sponsor.Email, sp.Sponsor.Phone).Scan(&sponsorID)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("failed to insert sponsor: %w", err)
		}
		sponsorIDs = append(sponsorIDs, sponsorID)
	}

	hostPersonID, err := findOrCreatePersonTx(ctx, tx, &in.Host)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to insert host person: %w", err)
	}

	var eventID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO events (name, type, venue_id, ticket_stamp, invitation_stamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, in.Event.Name, in.Event.Type, venueID,
		in.Event.TicketStamp.String(), in.Event.InvitationStamp.String()).Scan(&eventID)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO hosts (person_id, event_id) VALUES ($1, $2)
	`, hostPersonID, eventID); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to insert host link: %w", err)
	}

	// Positional correspondence: agreement text i goes with sponsor row i.
	for i, sponsorID := range sponsorIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO event_sponsors (sponsor_id, event_id, sponsorship_agreement)
			VALUES ($1, $2, $3)
		`, sponsorID, eventID, in.Sponsors[i].Agreement); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("failed to insert event sponsor link: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return eventID, nil
}

func (r *repository) UpdateEvent(ctx context.Context, e *model.Event) error {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	// Resolve existence before the stamp check, so a missing event is
	// reported as not-found rather than a stamp conflict.
	var id int
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM events WHERE id = $1 FOR UPDATE`, e.ID).Scan(&id)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to lock event for update: %w", err)
	}

	taken, err := stampTakenTx(ctx, tx, e.TicketStamp, e.InvitationStamp, e.ID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if taken {
		_ = tx.Rollback()
		return ErrStampInUse
	}

	query := `
		UPDATE events
		SET name = $1, type = $2, venue_id = $3, ticket_stamp = $4, invitation_stamp = $5
		WHERE id = $6
	`

	if _, err := tx.ExecContext(ctx, query,
		e.Name, e.Type, e.VenueID, e.TicketStamp.String(), e.InvitationStamp.String(), e.ID,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to update event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// deletePersonIfOrphanedTx removes a person once nothing references them:
// no host link, no ticket, no invitation anywhere in the ledger.
func deletePersonIfOrphanedTx(ctx context.Context, tx *sql.Tx, personID int) error {
	var refs int
	err := tx.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM hosts WHERE person_id = $1)
		     + (SELECT COUNT(*) FROM attendees WHERE person_id = $1)
		     + (SELECT COUNT(*) FROM invited_guests WHERE person_id = $1)
	`, personID).Scan(&refs)
	if err != nil {
		return fmt.Errorf("failed to count person references: %w", err)
	}
	if refs > 0 {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM persons WHERE id = $1`, personID); err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	return nil
}

func collectIDsTx(ctx context.Context, tx *sql.Tx, query string, arg any) ([]int, error) {
	rows, err := tx.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repository) DeleteEventTx(ctx context.Context, id int) error {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	// Lock the event row so the stamps the cascade matches on cannot
	// change under a concurrent update.
	var event model.Event
	err = tx.QueryRowContext(ctx, `
		SELECT id, name, type, venue_id, ticket_stamp, invitation_stamp
		FROM events WHERE id = $1
		FOR UPDATE
	`, id).Scan(
		&event.ID, &event.Name, &event.Type, &event.VenueID,
		&event.TicketStamp, &event.InvitationStamp,
	)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to lock event for delete: %w", err)
	}

	// Sponsor links first, then the event-exclusive sponsor rows.
	sponsorIDs, err := collectIDsTx(ctx, tx,
		`SELECT sponsor_id FROM event_sponsors WHERE event_id = $1`, id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to collect event sponsors: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM event_sponsors WHERE event_id = $1`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete event sponsor links: %w", err)
	}
	for _, sponsorID := range sponsorIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sponsors WHERE id = $1`, sponsorID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to delete sponsor: %w", err)
		}
	}

	// Host links, then their persons if nothing else references them.
	hostPersonIDs, err := collectIDsTx(ctx, tx,
		`SELECT person_id FROM hosts WHERE event_id = $1`, id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to collect hosts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM hosts WHERE event_id = $1`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete host links: %w", err)
	}
	for _, personID := range hostPersonIDs {
		if err := deletePersonIfOrphanedTx(ctx, tx, personID); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	// Attendees matched by ticket stamp.
	attendeePersonIDs, err := collectIDsTx(ctx, tx,
		`SELECT person_id FROM attendees WHERE ticket_stamp = $1`, event.TicketStamp.String())
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to collect attendees: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM attendees WHERE ticket_stamp = $1`,
		event.TicketStamp.String()); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete attendees: %w", err)
	}
	for _, personID := range attendeePersonIDs {
		if err := deletePersonIfOrphanedTx(ctx, tx, personID); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	// Invited guests matched by invitation stamp.
	guestPersonIDs, err := collectIDsTx(ctx, tx,
		`SELECT person_id FROM invited_guests WHERE invitation_stamp = $1`, event.InvitationStamp.String())
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to collect invited guests: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM invited_guests WHERE invitation_stamp = $1`,
		event.InvitationStamp.String()); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete invited guests: %w", err)
	}
	for _, personID := range guestPersonIDs {
		if err := deletePersonIfOrphanedTx(ctx, tx, personID); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete event: %w", err)
	}

	// Venues are event-exclusive, so the venue goes with its event.
	// The event row must go first because of the venue_id reference.
	if _, err := tx.ExecContext(ctx, `DELETE FROM venues WHERE id = $1`, event.VenueID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete venue: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
