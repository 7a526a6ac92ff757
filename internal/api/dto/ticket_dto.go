package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CreateTicketRequest payload. Any customer value a client might send
// is ignored; ownership always comes from the bearer token.
type CreateTicketRequest struct {
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Priority      domain.TicketPriority `json:"priority"`
	AssignedAgent *string               `json:"assignedAgent"`
}

// UpdateStatusRequest payload for validated lifecycle transitions.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// AddNoteRequest payload.
type AddNoteRequest struct {
	Content string `json:"content"`
}

// CustomerRef is the resolved customer on a ticket.
type CustomerRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AgentRef is the resolved assigned agent on a ticket.
type AgentRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NoteResponse is one entry of a ticket's thread.
type NoteResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// TicketResponse is the full ticket representation.
type TicketResponse struct {
	ID            string                `json:"id"`
	TicketID      string                `json:"ticketId"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Priority      domain.TicketPriority `json:"priority"`
	Status        domain.TicketStatus   `json:"status"`
	Customer      CustomerRef           `json:"customer"`
	AssignedAgent *AgentRef             `json:"assignedAgent,omitempty"`
	Notes         []NoteResponse        `json:"notes,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	LastUpdated   time.Time             `json:"lastUpdated"`
}

// StatusUpdateResult is the body of the force-close endpoint.
type StatusUpdateResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
