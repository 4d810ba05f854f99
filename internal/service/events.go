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

func (s *service) GetAllEvents(ctx *ginext.Context) {
	events, err := s.repo.GetAllEvents(ctx.Request.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list events")
		dto.InternalServerError(ctx)
		return
	}
	if events == nil {
		events = []model.Event{}
	}

	dto.SuccessResponse(ctx, events)
}

func (s *service) GetEventDetails(ctx *ginext.Context) {
	eventID, ok := parseID(ctx.Param("id"))
	if !ok {
		dto.EventNotFoundError(ctx)
		return
	}

	details, err := s.repo.GetEventDetails(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Int("event_id", eventID).Msg("failed to get event details")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, details)
}

func (s *service) CreateEvent(ctx *ginext.Context) {
	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		s.log.Error().Err(err).Msg("failed to parse create event request")
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		s.log.Error().Msgf("validation failed: %v", verr)
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	event := model.Event{
		Name:            req.Name,
		Type:            req.Type,
		TicketStamp:     model.Stamp(req.TicketStamp),
		InvitationStamp: model.Stamp(req.InvitationStamp),
	}
	if err := event.ValidateStamps(); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, err.Error())
		return
	}

	hostPhone, err := phone.Normalize(req.Host.Phone, s.phoneRegion)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid host phone number")
		return
	}

	in := repo.EventCreate{
		Event: event,
		Venue: model.Venue{
			Name:     req.Venue.Name,
			Province: req.Venue.Province,
			Town:     req.Venue.Town,
			Address:  req.Venue.Address,
			Capacity: req.Venue.Capacity,
		},
		Host: model.Person{
			FirstName: req.Host.FirstName,
			LastName:  req.Host.LastName,
			Dob:       req.Host.Dob,
			Email:     req.Host.Email,
			Phone:     hostPhone,
		},
	}

	for _, sp := range req.Sponsors {
		sponsorPhone, err := phone.Normalize(sp.Phone, s.phoneRegion)
		if err != nil {
			dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid sponsor phone number")
			return
		}
		in.Sponsors = append(in.Sponsors, repo.SponsorAgreement{
			Sponsor: model.Sponsor{
				Name:  sp.Name,
				Email: sp.Email,
				Phone: sponsorPhone,
			},
			Agreement: sp.SponsorshipAgreement,
		})
	}

	eventID, err := s.repo.CreateEventTx(ctx.Request.Context(), &in)
	if err != nil {
		if errors.Is(err, repo.ErrStampInUse) {
			dto.StampConflictError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to create event")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int("event_id", eventID).Msg("event created successfully")

	dto.SuccessCreatedResponse(ctx, dto.CreateEventResponse{
		Message: "Event created successfully!",
		EventID: eventID,
	})
}

func (s *service) UpdateEvent(ctx *ginext.Context) {
	eventID, ok := parseID(ctx.Param("id"))
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	var req dto.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	event := model.Event{
		ID:              eventID,
		Name:            req.Name,
		Type:            req.Type,
		VenueID:         req.VenueID,
		TicketStamp:     model.Stamp(req.TicketStamp),
		InvitationStamp: model.Stamp(req.InvitationStamp),
	}
	if err := event.ValidateStamps(); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, err.Error())
		return
	}

	if err := s.repo.UpdateEvent(ctx.Request.Context(), &event); err != nil {
		switch {
		case errors.Is(err, repo.ErrEventNotFound):
			dto.EventNotFoundError(ctx)
		case errors.Is(err, repo.ErrStampInUse):
			dto.StampConflictError(ctx)
		default:
			s.log.Error().Err(err).Int("event_id", eventID).Msg("failed to update event")
			dto.InternalServerError(ctx)
		}
		return
	}

	s.log.Info().Int("event_id", eventID).Msg("event updated successfully")
	dto.SuccessResponse(ctx, map[string]string{"message": "Event updated successfully!"})
}

func (s *service) DeleteEvent(ctx *ginext.Context) {
	eventID, ok := parseID(ctx.Param("id"))
	if !ok {
		dto.EventNotFoundError(ctx)
		return
	}

	if err := s.repo.DeleteEventTx(ctx.Request.Context(), eventID); err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Int("event_id", eventID).Msg("failed to delete event")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int("event_id", eventID).Msg("event and related records deleted")
	dto.SuccessResponse(ctx, map[string]string{"message": "Event and all related records deleted successfully!"})
}
