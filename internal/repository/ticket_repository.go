package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// TicketFilter narrows a listing to one party's tickets. Nil fields
// apply no restriction.
type TicketFilter struct {
	CustomerID *string
	AgentID    *string
}

// TicketListItem is a ticket joined with the display fields of its
// customer and assigned agent, mirroring what clients render in the
// ticket list.
type TicketListItem struct {
	Ticket        domain.Ticket
	Customer      domain.UserRef
	AssignedAgent *domain.UserRef
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	// NextSequence reserves the next ticket number atomically; two
	// concurrent creations can never observe the same value.
	NextSequence(ctx context.Context) (int64, error)
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]TicketListItem, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) NextSequence(ctx context.Context) (int64, error) {
	var seq int64
	if err := r.pool.QueryRow(ctx, `SELECT nextval('ticket_number_seq')`).Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (number, title, description, priority, status, customer_id, assigned_agent_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Number,
		ticket.Title,
		ticket.Description,
		ticket.Priority,
		ticket.Status,
		ticket.CustomerID,
		ticket.AssignedAgentID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, number, title, description, priority, status, customer_id, assigned_agent_id,
               created_at, updated_at
        FROM tickets WHERE id=$1`

	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Number,
		&ticket.Title,
		&ticket.Description,
		&ticket.Priority,
		&ticket.Status,
		&ticket.CustomerID,
		&ticket.AssignedAgentID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	const query = `UPDATE tickets SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]TicketListItem, error) {
	base := `SELECT t.id, t.number, t.title, t.description, t.priority, t.status,
                    t.customer_id, t.assigned_agent_id, t.created_at, t.updated_at,
                    c.name, c.email, a.id, a.name
             FROM tickets t
             JOIN users c ON c.id = t.customer_id
             LEFT JOIN users a ON a.id = t.assigned_agent_id`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("t.customer_id=$%d", len(args)))
	}
	if filter.AgentID != nil {
		args = append(args, *filter.AgentID)
		clauses = append(clauses, fmt.Sprintf("t.assigned_agent_id=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.updated_at DESC`, base, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TicketListItem
	for rows.Next() {
		var item TicketListItem
		var agentID, agentName *string
		if err := rows.Scan(
			&item.Ticket.ID,
			&item.Ticket.Number,
			&item.Ticket.Title,
			&item.Ticket.Description,
			&item.Ticket.Priority,
			&item.Ticket.Status,
			&item.Ticket.CustomerID,
			&item.Ticket.AssignedAgentID,
			&item.Ticket.CreatedAt,
			&item.Ticket.UpdatedAt,
			&item.Customer.Name,
			&item.Customer.Email,
			&agentID,
			&agentName,
		); err != nil {
			return nil, err
		}
		item.Customer.ID = item.Ticket.CustomerID
		if agentID != nil {
			item.AssignedAgent = &domain.UserRef{ID: *agentID, Name: *agentName}
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
