// Package policy holds the pure access-control and lifecycle rules for
// tickets: which tickets a caller may list or view, who may change a
// ticket's status, and which status transitions are legal. It has no
// dependencies beyond the domain types so the rules stay testable in
// isolation.
package policy

import "github.com/spec-kit/support-desk/internal/domain"

// ListScope restricts a ticket listing to the caller's slice of the
// system. Exactly one of the pointer fields is set for scoped roles;
// Unrestricted is set for administrators. A zero ListScope matches
// nothing, which is what unrecognized roles get: visibility is an
// explicit allow-list, never a fall-through.
type ListScope struct {
	CustomerID   *string
	AgentID      *string
	Unrestricted bool
}

// Empty reports whether the scope matches no tickets at all.
func (s ListScope) Empty() bool {
	return !s.Unrestricted && s.CustomerID == nil && s.AgentID == nil
}

// ScopeFor maps a caller to the tickets they may list.
func ScopeFor(role domain.Role, callerID string) ListScope {
	switch role {
	case domain.RoleCustomer:
		return ListScope{CustomerID: &callerID}
	case domain.RoleAgent:
		return ListScope{AgentID: &callerID}
	case domain.RoleAdmin:
		return ListScope{Unrestricted: true}
	}
	return ListScope{}
}

// CanViewTicket allows the owning customer, the assigned agent, and
// administrators to read a single ticket.
func CanViewTicket(role domain.Role, callerID string, ticket *domain.Ticket) bool {
	switch role {
	case domain.RoleCustomer:
		return ticket.CustomerID == callerID
	case domain.RoleAgent:
		return ticket.AssignedAgentID != nil && *ticket.AssignedAgentID == callerID
	case domain.RoleAdmin:
		return true
	}
	return false
}

// CanUpdateStatus allows status changes through the general transition
// endpoint only for the assigned agent or an administrator. The
// force-close operation is intentionally wider (any authenticated
// caller) and does not consult this rule.
func CanUpdateStatus(role domain.Role, callerID string, ticket *domain.Ticket) bool {
	switch role {
	case domain.RoleAgent:
		return ticket.AssignedAgentID != nil && *ticket.AssignedAgentID == callerID
	case domain.RoleAdmin:
		return true
	}
	return false
}

// CanAddNote allows the conversation participants to append notes.
func CanAddNote(role domain.Role, callerID string, ticket *domain.Ticket) bool {
	return CanViewTicket(role, callerID, ticket)
}

// forwardOrder positions the non-terminal states so that only forward
// movement among them is legal.
var forwardOrder = map[domain.TicketStatus]int{
	domain.TicketStatusPending:  0,
	domain.TicketStatusActive:   1,
	domain.TicketStatusResolved: 2,
}

// CanTransition validates a status change. Forward transitions among
// Pending, Active and Resolved are allowed; Closed is reachable from
// any non-Closed state and is terminal.
func CanTransition(from, to domain.TicketStatus) bool {
	if from == domain.TicketStatusClosed {
		return false
	}
	if to == domain.TicketStatusClosed {
		return true
	}
	fromPos, okFrom := forwardOrder[from]
	toPos, okTo := forwardOrder[to]
	if !okFrom || !okTo {
		return false
	}
	return toPos > fromPos
}
