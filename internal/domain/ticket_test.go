package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnumsValid(t *testing.T) {
	for _, s := range TicketStatuses {
		assert.True(t, s.Valid(), s)
	}
	for _, p := range TicketPriorities {
		assert.True(t, p.Valid(), p)
	}
	for _, c := range TicketCategories {
		assert.True(t, c.Valid(), c)
	}
	for _, r := range Roles {
		assert.True(t, r.Valid(), r)
	}

	assert.False(t, TicketStatus("archived").Valid())
	assert.False(t, TicketStatus("Open").Valid())
	assert.False(t, TicketPriority("critical").Valid())
	assert.False(t, TicketCategory("").Valid())
	assert.False(t, Role("teacher").Valid())
}
