package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/domain"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// MemoryStore is an in-memory implementation of the repository
// interfaces. It backs tests and local development without a database
// and mirrors the Postgres behavior: unique emails, atomic ticket
// sequence, pgx.ErrNoRows for missing rows.
type MemoryStore struct {
	mu      sync.RWMutex
	seq     int64
	users   map[string]*domain.User
	tickets map[string]*domain.Ticket
	notes   map[string][]domain.Note
}

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]*domain.User),
		tickets: make(map[string]*domain.Ticket),
		notes:   make(map[string][]domain.Note),
	}
}

// Users returns the UserRepository view of the store.
func (m *MemoryStore) Users() UserRepository { return &memoryUsers{store: m} }

// Tickets returns the TicketRepository view of the store.
func (m *MemoryStore) Tickets() TicketRepository { return &memoryTickets{store: m} }

// Notes returns the NoteRepository view of the store.
func (m *MemoryStore) Notes() NoteRepository { return &memoryNotes{store: m} }

type memoryUsers struct {
	store *MemoryStore
}

func (r *memoryUsers) Create(_ context.Context, user *domain.User) error {
	store := r.store
	store.mu.Lock()
	defer store.mu.Unlock()

	email := strings.ToLower(user.Email)
	for _, existing := range store.users {
		if strings.ToLower(existing.Email) == email {
			return apperrors.NewValidationError("email already registered", nil)
		}
	}
	now := time.Now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	clone := *user
	store.users[user.ID] = &clone
	return nil
}

func (r *memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	store := r.store
	store.mu.RLock()
	defer store.mu.RUnlock()

	user, ok := store.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	store := r.store
	store.mu.RLock()
	defer store.mu.RUnlock()

	email = strings.ToLower(email)
	for _, user := range store.users {
		if strings.ToLower(user.Email) == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memoryTickets struct {
	store *MemoryStore
}

func (r *memoryTickets) NextSequence(_ context.Context) (int64, error) {
	store := r.store
	return atomic.AddInt64(&store.seq, 1), nil
}

func (r *memoryTickets) Create(_ context.Context, ticket *domain.Ticket) error {
	store := r.store
	store.mu.Lock()
	defer store.mu.Unlock()

	now := time.Now()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	clone := *ticket
	store.tickets[ticket.ID] = &clone
	return nil
}

func (r *memoryTickets) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	store := r.store
	store.mu.RLock()
	defer store.mu.RUnlock()

	ticket, ok := store.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *memoryTickets) UpdateStatus(_ context.Context, id string, status domain.TicketStatus) error {
	store := r.store
	store.mu.Lock()
	defer store.mu.Unlock()

	ticket, ok := store.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Status = status
	ticket.UpdatedAt = time.Now()
	return nil
}

func (r *memoryTickets) ListWithFilter(_ context.Context, filter TicketFilter) ([]TicketListItem, error) {
	store := r.store
	store.mu.RLock()
	defer store.mu.RUnlock()

	var items []TicketListItem
	for _, ticket := range store.tickets {
		if filter.CustomerID != nil && ticket.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.AgentID != nil && (ticket.AssignedAgentID == nil || *ticket.AssignedAgentID != *filter.AgentID) {
			continue
		}
		item := TicketListItem{Ticket: *ticket}
		if customer, ok := store.users[ticket.CustomerID]; ok {
			item.Customer = domain.UserRef{ID: customer.ID, Name: customer.Name, Email: customer.Email}
		} else {
			item.Customer = domain.UserRef{ID: ticket.CustomerID}
		}
		if ticket.AssignedAgentID != nil {
			if agent, ok := store.users[*ticket.AssignedAgentID]; ok {
				item.AssignedAgent = &domain.UserRef{ID: agent.ID, Name: agent.Name}
			} else {
				item.AssignedAgent = &domain.UserRef{ID: *ticket.AssignedAgentID}
			}
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Ticket.UpdatedAt.After(items[j].Ticket.UpdatedAt)
	})
	return items, nil
}

type memoryNotes struct {
	store *MemoryStore
}

func (r *memoryNotes) Create(_ context.Context, note *domain.Note) error {
	store := r.store
	store.mu.Lock()
	defer store.mu.Unlock()

	note.ID = uuid.NewString()
	note.CreatedAt = time.Now()
	store.notes[note.TicketID] = append(store.notes[note.TicketID], *note)
	return nil
}

func (r *memoryNotes) ListByTicket(_ context.Context, ticketID string) ([]domain.Note, error) {
	store := r.store
	store.mu.RLock()
	defer store.mu.RUnlock()

	notes := append([]domain.Note(nil), store.notes[ticketID]...)
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].CreatedAt.Before(notes[j].CreatedAt)
	})
	return notes, nil
}
