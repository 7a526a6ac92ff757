package domain

import (
	"fmt"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending  TicketStatus = "Pending"
	TicketStatusActive   TicketStatus = "Active"
	TicketStatusResolved TicketStatus = "Resolved"
	TicketStatusClosed   TicketStatus = "Closed"
)

// KnownStatus reports whether the status is a member of the lifecycle.
func KnownStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusPending, TicketStatusActive, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// KnownPriority reports whether the priority is a member of the enum.
func KnownPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// Ticket is the aggregate for customer support requests. Number is the
// human-readable identifier (TKT-001); ID is the storage key.
type Ticket struct {
	ID              string
	Number          string
	Title           string
	Description     string
	Priority        TicketPriority
	Status          TicketStatus
	CustomerID      string
	AssignedAgentID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Note is a single entry in a ticket's conversation thread. A ticket
// always starts with one note equal to its description, authored by
// the creator.
type Note struct {
	ID        string
	TicketID  string
	AuthorID  string
	Content   string
	CreatedAt time.Time
}

// FormatTicketNumber renders a sequence value as the human-readable
// ticket identifier, zero-padded to three digits (TKT-001). Sequences
// past 999 widen naturally.
func FormatTicketNumber(seq int64) string {
	return fmt.Sprintf("TKT-%03d", seq)
}
