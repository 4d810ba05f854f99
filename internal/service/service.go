package service

import (
	"strconv"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"edevents/internal/repo"
)

type Service interface {
	GetAllEvents(ctx *ginext.Context)
	GetEventDetails(ctx *ginext.Context)
	CreateEvent(ctx *ginext.Context)
	UpdateEvent(ctx *ginext.Context)
	DeleteEvent(ctx *ginext.Context)

	ListTickets(ctx *ginext.Context)
	BuyTicket(ctx *ginext.Context)
	RevokeTicket(ctx *ginext.Context)
	AmendTicket(ctx *ginext.Context)

	ListInvitations(ctx *ginext.Context)
	SendInvitation(ctx *ginext.Context)
	RevokeInvitation(ctx *ginext.Context)
	AmendInvitation(ctx *ginext.Context)
}

type service struct {
	repo        repo.Repository
	log         *zerolog.Logger
	phoneRegion string
}

func NewService(repo repo.Repository, logger *zerolog.Logger, phoneRegion string) Service {
	return &service{
		repo:        repo,
		log:         logger,
		phoneRegion: phoneRegion,
	}
}

// parseID parses a path parameter as a positive integer id.
func parseID(raw string) (int, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
