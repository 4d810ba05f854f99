package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"

	"edevents/internal/model"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrStampInUse         = errors.New("stamp already in use by another event")
	ErrUnknownStamp       = errors.New("stamp does not belong to any event")
)

// EventCreate bundles everything a single event creation writes: the event
// row, its venue, the host person and the sponsor list with per-sponsor
// agreement text. The whole bundle is applied in one transaction.
type EventCreate struct {
	Event    model.Event
	Venue    model.Venue
	Host     model.Person
	Sponsors []SponsorAgreement
}

type SponsorAgreement struct {
	Sponsor   model.Sponsor
	Agreement string
}

// PersonPatch is a partial person update; nil fields are left untouched.
type PersonPatch struct {
	FirstName *string
	LastName  *string
	Dob       *string
	Email     *string
	Phone     *string
}

func (p *PersonPatch) Empty() bool {
	return p == nil || (p.FirstName == nil && p.LastName == nil &&
		p.Dob == nil && p.Email == nil && p.Phone == nil)
}

type Repository interface {
	GetAllEvents(ctx context.Context) ([]model.Event, error)
	GetEventByID(ctx context.Context, id int) (*model.Event, error)
	GetEventDetails(ctx context.Context, id int) (*model.EventDetails, error)
	CreateEventTx(ctx context.Context, in *EventCreate) (int, error)
	UpdateEvent(ctx context.Context, e *model.Event) error
	DeleteEventTx(ctx context.Context, id int) error

	ListTickets(ctx context.Context, stamp model.Stamp) ([]model.TicketEntry, error)
	IssueTicketTx(ctx context.Context, stamp model.Stamp, person *model.Person) (*model.Attendee, error)
	RevokeTicketTx(ctx context.Context, ticketID int) error
	AmendTicketTx(ctx context.Context, ticketID int, stamp *model.Stamp, patch *PersonPatch) (*model.Attendee, error)

	ListInvitations(ctx context.Context, stamp model.Stamp) ([]model.InvitationEntry, error)
	IssueInvitationTx(ctx context.Context, stamp model.Stamp, person *model.Person) (*model.InvitedGuest, error)
	RevokeInvitationTx(ctx context.Context, invitationID int) error
	AmendInvitationTx(ctx context.Context, invitationID int, stamp *model.Stamp, patch *PersonPatch) (*model.InvitedGuest, error)

	MigrateUp(migrationsDir string) error
	MigrateDown(migrationsDir string) error
}

type repository struct {
	db  *dbpg.DB
	log *zerolog.Logger
}

func NewRepository(db *dbpg.DB, log *zerolog.Logger) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Master.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &repository{db: db, log: log}, nil
}

func (r *repository) MigrateUp(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations applied successfully from %s", migrationsDir)
	return nil
}

func (r *repository) MigrateDown(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.down.sql"))
	if err != nil {
		return fmt.Errorf("failed to read rollback files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read rollback file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations rolled back successfully from %s", migrationsDir)
	return nil
}
