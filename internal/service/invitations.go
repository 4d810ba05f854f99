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

func (s *service) ListInvitations(ctx *ginext.Context) {
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
		s.log.Error().Err(err).Int("event_id", eventID).Msg("failed to resolve event for invitation list")
		dto.InternalServerError(ctx)
		return
	}

	invitations, err := s.repo.ListInvitations(ctx.Request.Context(), event.InvitationStamp)
	if err != nil {
		s.log.Error().Err(err).Int("event_id", eventID).Msg("failed to list invitations")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, dto.InvitationListResponse{Invitations: invitations})
}

func (s *service) SendInvitation(ctx *ginext.Context) {
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
		s.log.Error().Err(err).Int("event_id", eventID).Msg("failed to resolve event for invitation")
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

	guest, err := s.repo.IssueInvitationTx(ctx.Request.Context(), event.InvitationStamp, &person)
	if err != nil {
		s.log.Error().Err(err).Int("event_id", eventID).Msg("failed to send invitation")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().
		Int("event_id", eventID).
		Int("invitation_id", guest.ID).
		Msg("invitation sent successfully")

	dto.SuccessCreatedResponse(ctx, guest)
}

func (s *service) RevokeInvitation(ctx *ginext.Context) {
	invitationID, ok := parseID(ctx.Param("id"))
	if !ok {
		dto.InvitationNotFoundError(ctx)
		return
	}

	if err := s.repo.RevokeInvitationTx(ctx.Request.Context(), invitationID); err != nil {
		if errors.Is(err, repo.ErrInvitationNotFound) {
			dto.InvitationNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Int("invitation_id", invitationID).Msg("failed to revoke invitation")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int("invitation_id", invitationID).Msg("invitation revoked")
	dto.SuccessResponse(ctx, map[string]string{"message": "Invitation revoked successfully!"})
}

func (s *service) AmendInvitation(ctx *ginext.Context) {
	invitationID, ok := parseID(ctx.Param("id"))
	if !ok {
		dto.InvitationNotFoundError(ctx)
		return
	}

	var req dto.AmendInvitationRequest
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
	if req.InvitationStamp != nil {
		st := model.Stamp(*req.InvitationStamp)
		stamp = &st
	}

	guest, err := s.repo.AmendInvitationTx(ctx.Request.Context(), invitationID, stamp, patch)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrInvitationNotFound):
			dto.InvitationNotFoundError(ctx)
		case errors.Is(err, repo.ErrUnknownStamp):
			dto.BadResponseError(ctx, dto.FieldIncorrect, "Stamp does not belong to any event")
		default:
			s.log.Error().Err(err).Int("invitation_id", invitationID).Msg("failed to amend invitation")
			dto.InternalServerError(ctx)
		}
		return
	}

	s.log.Info().Int("invitation_id", invitationID).Msg("invitation amended")
	dto.SuccessResponse(ctx, guest)
}
