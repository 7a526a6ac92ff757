package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/support-desk/internal/domain"
)

func TestScopeForCustomer(t *testing.T) {
	scope := ScopeFor(domain.RoleCustomer, "u1")
	assert.False(t, scope.Empty())
	assert.False(t, scope.Unrestricted)
	if assert.NotNil(t, scope.CustomerID) {
		assert.Equal(t, "u1", *scope.CustomerID)
	}
	assert.Nil(t, scope.AgentID)
}

func TestScopeForAgent(t *testing.T) {
	scope := ScopeFor(domain.RoleAgent, "a1")
	assert.False(t, scope.Empty())
	if assert.NotNil(t, scope.AgentID) {
		assert.Equal(t, "a1", *scope.AgentID)
	}
	assert.Nil(t, scope.CustomerID)
}

func TestScopeForAdminUnrestricted(t *testing.T) {
	scope := ScopeFor(domain.RoleAdmin, "adm")
	assert.True(t, scope.Unrestricted)
	assert.False(t, scope.Empty())
}

func TestScopeForUnknownRoleMatchesNothing(t *testing.T) {
	// Visibility is an allow-list: a role the service does not know
	// sees no tickets rather than all of them.
	scope := ScopeFor(domain.Role("auditor"), "x1")
	assert.True(t, scope.Empty())
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to domain.TicketStatus
		want     bool
	}{
		{domain.TicketStatusPending, domain.TicketStatusActive, true},
		{domain.TicketStatusPending, domain.TicketStatusResolved, true},
		{domain.TicketStatusActive, domain.TicketStatusResolved, true},
		{domain.TicketStatusPending, domain.TicketStatusClosed, true},
		{domain.TicketStatusActive, domain.TicketStatusClosed, true},
		{domain.TicketStatusResolved, domain.TicketStatusClosed, true},

		{domain.TicketStatusActive, domain.TicketStatusPending, false},
		{domain.TicketStatusResolved, domain.TicketStatusActive, false},
		{domain.TicketStatusResolved, domain.TicketStatusPending, false},
		{domain.TicketStatusPending, domain.TicketStatusPending, false},
		{domain.TicketStatusClosed, domain.TicketStatusPending, false},
		{domain.TicketStatusClosed, domain.TicketStatusActive, false},
		{domain.TicketStatusClosed, domain.TicketStatusClosed, false},
		{domain.TicketStatusPending, domain.TicketStatus("Archived"), false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCanViewTicket(t *testing.T) {
	agentID := "a1"
	ticket := &domain.Ticket{CustomerID: "c1", AssignedAgentID: &agentID}

	assert.True(t, CanViewTicket(domain.RoleCustomer, "c1", ticket))
	assert.False(t, CanViewTicket(domain.RoleCustomer, "c2", ticket))
	assert.True(t, CanViewTicket(domain.RoleAgent, "a1", ticket))
	assert.False(t, CanViewTicket(domain.RoleAgent, "a2", ticket))
	assert.True(t, CanViewTicket(domain.RoleAdmin, "anyone", ticket))
	assert.False(t, CanViewTicket(domain.Role("auditor"), "c1", ticket))

	unassigned := &domain.Ticket{CustomerID: "c1"}
	assert.False(t, CanViewTicket(domain.RoleAgent, "a1", unassigned))
}

func TestCanUpdateStatus(t *testing.T) {
	agentID := "a1"
	ticket := &domain.Ticket{CustomerID: "c1", AssignedAgentID: &agentID}

	assert.True(t, CanUpdateStatus(domain.RoleAgent, "a1", ticket))
	assert.False(t, CanUpdateStatus(domain.RoleAgent, "a2", ticket))
	assert.True(t, CanUpdateStatus(domain.RoleAdmin, "adm", ticket))
	assert.False(t, CanUpdateStatus(domain.RoleCustomer, "c1", ticket))
}
