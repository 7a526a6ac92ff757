package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/policy"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	notes      repository.NoteRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	NoteRepo   repository.NoteRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// TicketCreateInput describes ticket creation payload. The owning
// customer is never part of the input; it is always the caller.
type TicketCreateInput struct {
	Title           string
	Description     string
	Priority        domain.TicketPriority
	AssignedAgentID *string
}

// TicketDetail is a ticket together with its conversation thread and
// the resolved display fields of its customer and assigned agent.
type TicketDetail struct {
	Ticket        domain.Ticket
	Customer      domain.UserRef
	AssignedAgent *domain.UserRef
	Notes         []domain.Note
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		notes:      deps.NoteRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket creates a ticket owned by the caller and seeds its
// thread with one note equal to the description.
func (s *TicketService) CreateTicket(ctx context.Context, caller *domain.User, input TicketCreateInput) (*TicketDetail, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.KnownPriority(priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}

	var agentRef *domain.UserRef
	if input.AssignedAgentID != nil {
		agent, err := s.users.GetByID(ctx, *input.AssignedAgentID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("assigned agent not found", nil)
			}
			return nil, err
		}
		if agent.Role != domain.RoleAgent {
			return nil, apperrors.NewValidationError("assigned user is not an agent", nil)
		}
		agentRef = &domain.UserRef{ID: agent.ID, Name: agent.Name}
	}

	seq, err := s.tickets.NextSequence(ctx)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		Number:          domain.FormatTicketNumber(seq),
		Title:           title,
		Description:     description,
		Priority:        priority,
		Status:          domain.TicketStatusPending,
		CustomerID:      caller.ID,
		AssignedAgentID: input.AssignedAgentID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	note := &domain.Note{
		TicketID: ticket.ID,
		AuthorID: caller.ID,
		Content:  description,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: caller.ID, Role: caller.Role},
		Payload: events.TicketCreatedPayload{
			Number:   ticket.Number,
			Title:    ticket.Title,
			Priority: ticket.Priority,
			AgentID:  ticket.AssignedAgentID,
		},
	})
	return &TicketDetail{
		Ticket:        *ticket,
		Customer:      domain.UserRef{ID: caller.ID, Name: caller.Name, Email: caller.Email},
		AssignedAgent: agentRef,
		Notes:         []domain.Note{*note},
	}, nil
}

// ListTickets returns the tickets visible to the caller, newest update
// first. Roles outside the allow-list see an empty list, not an error.
func (s *TicketService) ListTickets(ctx context.Context, caller *domain.User) ([]repository.TicketListItem, error) {
	scope := policy.ScopeFor(caller.Role, caller.ID)
	if scope.Empty() {
		return []repository.TicketListItem{}, nil
	}

	items, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		CustomerID: scope.CustomerID,
		AgentID:    scope.AgentID,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []repository.TicketListItem{}
	}
	return items, nil
}

// GetTicket fetches a single ticket with its notes, enforcing access.
func (s *TicketService) GetTicket(ctx context.Context, caller *domain.User, ticketID string) (*TicketDetail, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewTicket(caller.Role, caller.ID, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	notes, err := s.notes.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}

	detail := &TicketDetail{Ticket: *ticket, Notes: notes}
	if customer, err := s.users.GetByID(ctx, ticket.CustomerID); err == nil {
		detail.Customer = domain.UserRef{ID: customer.ID, Name: customer.Name, Email: customer.Email}
	} else {
		detail.Customer = domain.UserRef{ID: ticket.CustomerID}
	}
	if ticket.AssignedAgentID != nil {
		if agent, err := s.users.GetByID(ctx, *ticket.AssignedAgentID); err == nil {
			detail.AssignedAgent = &domain.UserRef{ID: agent.ID, Name: agent.Name}
		} else {
			detail.AssignedAgent = &domain.UserRef{ID: *ticket.AssignedAgentID}
		}
	}
	return detail, nil
}

// ForceClose sets a ticket's status to Closed regardless of its current
// state. Any authenticated caller may do this; closing an already
// closed ticket is a no-op.
func (s *TicketService) ForceClose(ctx context.Context, caller *domain.User, ticketID string) error {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil
	}
	if err := s.tickets.UpdateStatus(ctx, ticket.ID, domain.TicketStatusClosed); err != nil {
		return err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: caller.ID, Role: caller.Role},
		Payload: events.TicketStatusChangedPayload{
			OldStatus: ticket.Status,
			NewStatus: domain.TicketStatusClosed,
		},
	})
	return nil
}

// UpdateStatus applies a validated lifecycle transition. Only the
// assigned agent or an administrator may use it.
func (s *TicketService) UpdateStatus(ctx context.Context, caller *domain.User, ticketID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if !domain.KnownStatus(newStatus) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": newStatus})
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanUpdateStatus(caller.Role, caller.ID, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if !policy.CanTransition(ticket.Status, newStatus) {
		return nil, apperrors.NewValidationError("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   newStatus,
		})
	}

	oldStatus := ticket.Status
	if err := s.tickets.UpdateStatus(ctx, ticket.ID, newStatus); err != nil {
		return nil, err
	}
	ticket.Status = newStatus
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: caller.ID, Role: caller.Role},
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return ticket, nil
}

// AddNote appends a note to a ticket's thread.
func (s *TicketService) AddNote(ctx context.Context, caller *domain.User, ticketID, content string) (*domain.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanAddNote(caller.Role, caller.ID, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}

	note := &domain.Note{
		TicketID: ticket.ID,
		AuthorID: caller.ID,
		Content:  content,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketNoteAdded,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: caller.ID, Role: caller.Role},
		Payload: events.TicketNoteAddedPayload{
			NoteID:      note.ID,
			AuthorID:    note.AuthorID,
			BodyPreview: stringPreview(note.Content, 120),
		},
	})
	return note, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
