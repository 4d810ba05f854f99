package dto

import (
	"github.com/wb-go/wbf/ginext"

	"edevents/internal/model"
)

const (
	FieldBadFormat     = "FIELD_BADFORMAT"
	FieldIncorrect     = "FIELD_INCORRECT"
	ServiceUnavailable = "SERVICE_UNAVAILABLE"
	InternalError      = "Service is currently unavailable. Please try again later."

	EventNotFound      = "EVENT_NOT_FOUND"
	TicketNotFound     = "TICKET_NOT_FOUND"
	InvitationNotFound = "INVITATION_NOT_FOUND"
	StampConflict      = "STAMP_CONFLICT"
	Unauthorized       = "UNAUTHORIZED"
)

type VenueRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	Province string `json:"province" validate:"required,max=50"`
	Town     string `json:"town" validate:"required,max=50"`
	Address  string `json:"address" validate:"required,max=255"`
	Capacity int    `json:"capacity" validate:"required,gte=1"`
}

type SponsorRequest struct {
	Name                 string `json:"name" validate:"required,max=100"`
	Email                string `json:"email" validate:"required,email"`
	Phone                string `json:"phone" validate:"required"`
	SponsorshipAgreement string `json:"sponsorshipAgreement" validate:"required"`
}

type PersonRequest struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Dob       string `json:"dob" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required"`
}

type CreateEventRequest struct {
	Name            string           `json:"name" validate:"required,max=100"`
	Type            string           `json:"type" validate:"required,max=50"`
	TicketStamp     string           `json:"ticketStamp" validate:"required,stamp"`
	InvitationStamp string           `json:"invitationStamp" validate:"required,stamp"`
	Venue           VenueRequest     `json:"venue" validate:"required"`
	Sponsors        []SponsorRequest `json:"sponsors" validate:"required,min=1,dive"`
	Host            PersonRequest    `json:"host" validate:"required"`
}

// UpdateEventRequest mutates event scalar fields only; nested venue,
// sponsors and host are not part of update.
type UpdateEventRequest struct {
	Name            string `json:"name" validate:"required,max=100"`
	Type            string `json:"type" validate:"required,max=50"`
	VenueID         int    `json:"venueId" validate:"required,gt=0"`
	TicketStamp     string `json:"ticketStamp" validate:"required,stamp"`
	InvitationStamp string `json:"invitationStamp" validate:"required,stamp"`
}

// PersonPatchRequest is the partial person object accepted by the amend
// operations.
type PersonPatchRequest struct {
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,max=50"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,max=50"`
	Dob       *string `json:"dob,omitempty"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string `json:"phone,omitempty"`
}

type AmendTicketRequest struct {
	TicketStamp *string             `json:"ticketStamp,omitempty" validate:"omitempty,stamp"`
	Person      *PersonPatchRequest `json:"person,omitempty"`
}

type AmendInvitationRequest struct {
	InvitationStamp *string             `json:"invitationStamp,omitempty" validate:"omitempty,stamp"`
	Person          *PersonPatchRequest `json:"person,omitempty"`
}

type CreateEventResponse struct {
	Message string `json:"message"`
	EventID int    `json:"eventId"`
}

type TicketListResponse struct {
	Tickets []model.TicketEntry `json:"tickets"`
}

type InvitationListResponse struct {
	Invitations []model.InvitationEntry `json:"invitations"`
}

type Response struct {
	Status string `json:"status"`
	Error  *Error `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type Error struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
}

func BadResponseError(c *ginext.Context, code, desc string) {
	c.JSON(400, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func NotFoundError(c *ginext.Context, code, desc string) {
	c.JSON(404, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func ConflictError(c *ginext.Context, code, desc string) {
	c.JSON(409, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func UnauthorizedError(c *ginext.Context) {
	c.JSON(401, Response{
		Status: "error",
		Error: &Error{
			Code: Unauthorized,
			Desc: "Authentication required",
		},
	})
}

func InternalServerError(c *ginext.Context) {
	c.JSON(500, Response{
		Status: "error",
		Error: &Error{
			Code: ServiceUnavailable,
			Desc: InternalError,
		},
	})
}

func EventNotFoundError(c *ginext.Context) {
	NotFoundError(c, EventNotFound, "Event not found")
}

func TicketNotFoundError(c *ginext.Context) {
	NotFoundError(c, TicketNotFound, "Ticket not found")
}

func InvitationNotFoundError(c *ginext.Context) {
	NotFoundError(c, InvitationNotFound, "Invitation not found")
}

func StampConflictError(c *ginext.Context) {
	ConflictError(c, StampConflict, "Stamp is already in use by another event")
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(200, Response{
		Status: "ok",
		Data:   data,
	})
}

func SuccessCreatedResponse(c *ginext.Context, data any) {
	c.JSON(201, Response{
		Status: "ok",
		Data:   data,
	})
}
