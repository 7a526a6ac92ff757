package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTicketNumber(t *testing.T) {
	assert.Equal(t, "TKT-001", FormatTicketNumber(1))
	assert.Equal(t, "TKT-002", FormatTicketNumber(2))
	assert.Equal(t, "TKT-042", FormatTicketNumber(42))
	assert.Equal(t, "TKT-999", FormatTicketNumber(999))
	assert.Equal(t, "TKT-1000", FormatTicketNumber(1000))
}

func TestKnownStatus(t *testing.T) {
	assert.True(t, KnownStatus(TicketStatusPending))
	assert.True(t, KnownStatus(TicketStatusClosed))
	assert.False(t, KnownStatus(TicketStatus("Archived")))
	assert.False(t, KnownStatus(TicketStatus("")))
}

func TestKnownRole(t *testing.T) {
	assert.True(t, KnownRole(RoleCustomer))
	assert.True(t, KnownRole(RoleAgent))
	assert.True(t, KnownRole(RoleAdmin))
	assert.False(t, KnownRole(Role("superuser")))
}
