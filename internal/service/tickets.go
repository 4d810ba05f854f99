package service

import (
	"errors"
	"fmt"

	"github.com/wb-go/wbf/ginext"

	"edevents/internal/dto"
	"edevents/internal/model"
	"edevents/internal/repo"
	"edevents/pkg/phone"
	"edevents/pkg/validator"
)

func (s *service) ListTickets(ctx *ginext.Context) {
	eventID, ok := parseID(ctx.Param("id"))
	if !ok {
		dto.EventNotFoundError(ctx)
		return
	}

	event, err := s.repo.GetEventByID(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Int("event_id", eventID).Msg("failed to resolve event for ticket list")
		dto.InternalServerError(ctx)
		return
	}

	tickets, err := s.repo.ListTickets(ctx.Request.Context(), event.TicketStamp)
	if err != nil {
		s.log.Error().Err(err).Int("event_id", eventID).Msg("failed to list tickets")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, dto.TicketListResponse{Tickets: tickets})
}

func (s *service) BuyTicket(ctx *ginext.Context) {
	eventID, ok := parseID(ctx.Param("id"))
	if !ok {
		dto.EventNotFoundError(ctx)
		return
	}

	// Resolve the event before touching any row, so a purchase against an
	// unknown event leaves no person behind.
	event, err := s.repo.GetEventByID(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Int("event_id", eventID).Msg("failed to resolve event for ticket purchase")
		dto.InternalServerError(ctx)
		return
	}

	var req dto.PersonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	normalized, err := phone.Normalize(req.Phone, s.phoneRegion)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid phone number")
		return
	}

	person := model.Person{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Dob:       req.Dob,
		Email:     req.Email,
		Phone:     normalized,
	}

	attendee, err := s.repo.IssueTicketTx(ctx.Request.Context(), event.TicketStamp, &person)
	if err != nil {
		s.log.Error().Err(err).Int("event_id", eventID).Msg("failed to issue ticket")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().
		Int("event_id", eventID).
		Int("ticket_id", attendee.ID).
		Msg("ticket issued successfully")

	dto.SuccessCreatedResponse(ctx, attendee)
}

func (s *service) RevokeTicket(ctx *ginext.Context) {
	ticketID, ok := parseID(ctx.Param("id"))
	if !ok {
		dto.TicketNotFoundError(ctx)
		return
	}

	if err := s.repo.RevokeTicketTx(ctx.Request.Context(), ticketID); err != nil {
		if errors.Is(err, repo.ErrTicketNotFound) {
			dto.TicketNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Int("ticket_id", ticketID).Msg("failed to revoke ticket")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int("ticket_id", ticketID).Msg("ticket revoked")
	dto.SuccessResponse(ctx, map[string]string{"message": "Ticket revoked successfully!"})
}

func (s *service) AmendTicket(ctx *ginext.Context) {
	ticketID, ok := parseID(ctx.Param("id"))
	if !ok {
		dto.TicketNotFoundError(ctx)
		return
	}

	var req dto.AmendTicketRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	patch, err := s.buildPersonPatch(req.Person)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid phone number")
		return
	}

	var stamp *model.Stamp
	if req.TicketStamp != nil {
		st := model.Stamp(*req.TicketStamp)
		stamp = &st
	}

	attendee, err := s.repo.AmendTicketTx(ctx.Request.Context(), ticketID, stamp, patch)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrTicketNotFound):
			dto.TicketNotFoundError(ctx)
		case errors.Is(err, repo.ErrUnknownStamp):
			dto.BadResponseError(ctx, dto.FieldIncorrect, "Stamp does not belong to any event")
		default:
			s.log.Error().Err(err).Int("ticket_id", ticketID).Msg("failed to amend ticket")
			dto.InternalServerError(ctx)
		}
		return
	}

	s.log.Info().Int("ticket_id", ticketID).Msg("ticket amended")
	dto.SuccessResponse(ctx, attendee)
}

// buildPersonPatch converts the partial person payload into a repo patch,
// normalizing the phone when one is supplied.
func (s *service) buildPersonPatch(req *dto.PersonPatchRequest) (*repo.PersonPatch, error) {
	if req == nil {
		return nil, nil
	}

	patch := &repo.PersonPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Dob:       req.Dob,
		Email:     req.Email,
	}
	if req.Phone != nil {
		normalized, err := phone.Normalize(*req.Phone, s.phoneRegion)
		if err != nil {
			return nil, err
		}
		patch.Phone = &normalized
	}
	return patch, nil
}
