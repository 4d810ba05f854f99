package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"edevents/internal/model"
)

// findOrCreatePersonTx resolves a person by email, inserting a new row if
// none exists. A concurrent insert losing the race falls back to the
// existing row instead of failing.
func findOrCreatePersonTx(ctx context.Context, tx *sql.Tx, p *model.Person) (int, error) {
	var id int
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM persons WHERE email = $1`, p.Email).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up person by email: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO persons (first_name, last_name, dob, email, phone)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO NOTHING
		RETURNING id
	`, p.FirstName, p.LastName, p.Dob, p.Email, p.Phone).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to insert person: %w", err)
	}

	// Lost the race: the row exists now.
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM persons WHERE email = $1`, p.Email).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to resolve person after conflict: %w", err)
	}
	return id, nil
}

func (r *repository) ListTickets(ctx context.Context, stamp model.Stamp) ([]model.TicketEntry, error) {
	query := `
		SELECT a.id, a.person_id, a.ticket_stamp,
		       p.id, p.first_name, p.last_name, p.dob::text, p.email, p.phone
		FROM attendees a
		INNER JOIN persons p ON p.id = a.person_id
		WHERE a.ticket_stamp = $1
		ORDER BY a.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, stamp.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	entries := []model.TicketEntry{}
	for rows.Next() {
		var e model.TicketEntry
		if err := rows.Scan(
			&e.Attendee.ID, &e.Attendee.PersonID, &e.Attendee.TicketStamp,
			&e.Person.ID, &e.Person.FirstName, &e.Person.LastName,
			&e.Person.Dob, &e.Person.Email, &e.Person.Phone,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (r *repository) IssueTicketTx(ctx context.Context, stamp model.Stamp, person *model.Person) (*model.Attendee, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	personID, err := findOrCreatePersonTx(ctx, tx, person)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	attendee := &model.Attendee{PersonID: personID, TicketStamp: stamp}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO attendees (person_id, ticket_stamp)
		VALUES ($1, $2)
		RETURNING id
	`, personID, stamp.String()).Scan(&attendee.ID)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to insert attendee: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return attendee, nil
}

// personOrphanedInLedgerTx reports whether the person has no ticket and no
// invitation left anywhere. Both ledger tables are scanned in full; the
// check is not scoped to a single event.
func personOrphanedInLedgerTx(ctx context.Context, tx *sql.Tx, personID int) (bool, error) {
	var refs int
	err := tx.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM attendees WHERE person_id = $1)
		     + (SELECT COUNT(*) FROM invited_guests WHERE person_id = $1)
		     + (SELECT COUNT(*) FROM hosts WHERE person_id = $1)
	`, personID).Scan(&refs)
	if err != nil {
		return false, fmt.Errorf("failed to count ledger references: %w", err)
	}
	return refs == 0, nil
}

func (r *repository) RevokeTicketTx(ctx context.Context, ticketID int) error {
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

	var personID int
	err = tx.QueryRowContext(ctx, `
		DELETE FROM attendees WHERE id = $1 RETURNING person_id
	`, ticketID).Scan(&personID)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTicketNotFound
		}
		return fmt.Errorf("failed to delete attendee: %w", err)
	}

	orphaned, err := personOrphanedInLedgerTx(ctx, tx, personID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if orphaned {
		if _, err := tx.ExecContext(ctx, `DELETE FROM persons WHERE id = $1`, personID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to delete person: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// applyPersonPatchTx applies a partial person update. Untouched fields keep
// their current value via COALESCE.
func applyPersonPatchTx(ctx context.Context, tx *sql.Tx, personID int, patch *PersonPatch) error {
	if patch.Empty() {
		return nil
	}

	_, err := tx.ExecContext(ctx, `
		UPDATE persons
		SET first_name = COALESCE($1, first_name),
		    last_name  = COALESCE($2, last_name),
		    dob        = COALESCE($3::date, dob),
		    email      = COALESCE($4, email),
		    phone      = COALESCE($5, phone)
		WHERE id = $6
	`, patch.FirstName, patch.LastName, patch.Dob, patch.Email, patch.Phone, personID)
	if err != nil {
		return fmt.Errorf("failed to update person: %w", err)
	}
	return nil
}

// ticketStampKnownTx checks the new stamp belongs to a real event, so an
// amend cannot strand the ticket on a stamp no event owns.
func ticketStampKnownTx(ctx context.Context, tx *sql.Tx, stamp model.Stamp) (bool, error) {
	var count int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE ticket_stamp = $1`, stamp.String()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check ticket stamp: %w", err)
	}
	return count > 0, nil
}

func invitationStampKnownTx(ctx context.Context, tx *sql.Tx, stamp model.Stamp) (bool, error) {
	var count int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE invitation_stamp = $1`, stamp.String()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check invitation stamp: %w", err)
	}
	return count > 0, nil
}

func (r *repository) AmendTicketTx(ctx context.Context, ticketID int, stamp *model.Stamp, patch *PersonPatch) (*model.Attendee, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if stamp != nil {
		known, err := ticketStampKnownTx(ctx, tx, *stamp)
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		if !known {
			_ = tx.Rollback()
			return nil, ErrUnknownStamp
		}
	}

	var attendee model.Attendee
	err = tx.QueryRowContext(ctx, `
		UPDATE attendees
		SET ticket_stamp = COALESCE($1, ticket_stamp)
		WHERE id = $2
		RETURNING id, person_id, ticket_stamp
	`, stampArg(stamp), ticketID).Scan(&attendee.ID, &attendee.PersonID, &attendee.TicketStamp)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to update attendee: %w", err)
	}

	if err := applyPersonPatchTx(ctx, tx, attendee.PersonID, patch); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &attendee, nil
}

func stampArg(s *model.Stamp) any {
	if s == nil {
		return nil
	}
	return s.String()
}

func (r *repository) ListInvitations(ctx context.Context, stamp model.Stamp) ([]model.InvitationEntry, error) {
	query := `
		SELECT g.id, g.person_id, g.invitation_stamp,
		       p.id, p.first_name, p.last_name, p.dob::text, p.email, p.phone
		FROM invited_guests g
		INNER JOIN persons p ON p.id = g.person_id
		WHERE g.invitation_stamp = $1
		ORDER BY g.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, stamp.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	entries := []model.InvitationEntry{}
	for rows.Next() {
		var e model.InvitationEntry
		if err := rows.Scan(
			&e.Guest.ID, &e.Guest.PersonID, &e.Guest.InvitationStamp,
			&e.Person.ID, &e.Person.FirstName, &e.Person.LastName,
			&e.Person.Dob, &e.Person.Email, &e.Person.Phone,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (r *repository) IssueInvitationTx(ctx context.Context, stamp model.Stamp, person *model.Person) (*model.InvitedGuest, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	personID, err := findOrCreatePersonTx(ctx, tx, person)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	guest := &model.InvitedGuest{PersonID: personID, InvitationStamp: stamp}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO invited_guests (person_id, invitation_stamp)
		VALUES ($1, $2)
		RETURNING id
	`, personID, stamp.String()).Scan(&guest.ID)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to insert invited guest: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return guest, nil
}

func (r *repository) RevokeInvitationTx(ctx context.Context, invitationID int) error {
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

	var personID int
	err = tx.QueryRowContext(ctx, `
		DELETE FROM invited_guests WHERE id = $1 RETURNING person_id
	`, invitationID).Scan(&personID)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvitationNotFound
		}
		return fmt.Errorf("failed to delete invited guest: %w", err)
	}

	orphaned, err := personOrphanedInLedgerTx(ctx, tx, personID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if orphaned {
		if _, err := tx.ExecContext(ctx, `DELETE FROM persons WHERE id = $1`, personID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to delete person: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *repository) AmendInvitationTx(ctx context.Context, invitationID int, stamp *model.Stamp, patch *PersonPatch) (*model.InvitedGuest, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if stamp != nil {
		known, err := invitationStampKnownTx(ctx, tx, *stamp)
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		if !known {
			_ = tx.Rollback()
			return nil, ErrUnknownStamp
		}
	}

	var guest model.InvitedGuest
	err = tx.QueryRowContext(ctx, `
		UPDATE invited_guests
		SET invitation_stamp = COALESCE($1, invitation_stamp)
		WHERE id = $2
		RETURNING id, person_id, invitation_stamp
	`, stampArg(stamp), invitationID).Scan(&guest.ID, &guest.PersonID, &guest.InvitationStamp)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to update invited guest: %w", err)
	}

	if err := applyPersonPatchTx(ctx, tx, guest.PersonID, patch); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &guest, nil
}
