package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStampValidate(t *testing.T) {
	assert.NoError(t, Stamp("GALA01").Validate())
	assert.ErrorIs(t, Stamp("").Validate(), ErrStampEmpty)
	assert.ErrorIs(t, Stamp("   ").Validate(), ErrStampEmpty)
	assert.ErrorIs(t, Stamp(strings.Repeat("x", 51)).Validate(), ErrStampTooLong)
}

func TestEventValidateStamps(t *testing.T) {
	e := Event{TicketStamp: "GALA01", InvitationStamp: "GALA01-INV"}
	assert.NoError(t, e.ValidateStamps())

	e = Event{TicketStamp: "SAME", InvitationStamp: "SAME"}
	assert.ErrorIs(t, e.ValidateStamps(), ErrStampsEqual)

	e = Event{TicketStamp: "", InvitationStamp: "INV"}
	assert.ErrorIs(t, e.ValidateStamps(), ErrStampEmpty)
}
