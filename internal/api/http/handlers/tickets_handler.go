package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	detail, err := h.service.CreateTicket(c.Context(), principal.User, service.TicketCreateInput{
		Title:           req.Title,
		Description:     req.Description,
		Priority:        req.Priority,
		AssignedAgentID: req.AssignedAgent,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(ticketResponse(detail))
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Authentication required")
	}
	items, err := h.service.ListTickets(c.Context(), principal.User)
	if err != nil {
		return err
	}

	resp := make([]dto.TicketResponse, 0, len(items))
	for i := range items {
		resp = append(resp, ticketListResponse(&items[i]))
	}
	return c.JSON(resp)
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Authentication required")
	}
	detail, err := h.service.GetTicket(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(ticketResponse(detail))
}

// ForceClose PUT /tickets/:id. The request body is ignored; the ticket
// ends up Closed no matter what state it was in.
func (h *TicketsHandler) ForceClose(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Authentication required")
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(http.StatusBadRequest).JSON(dto.StatusUpdateResult{
			Success: false,
			Message: "Ticket ID is required.",
		})
	}

	if err := h.service.ForceClose(c.Context(), principal.User, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(http.StatusNotFound).JSON(dto.StatusUpdateResult{
				Success: false,
				Message: "Ticket not found.",
			})
		}
		// Unexpected store failure: let the error middleware log it and
		// answer with the generic 500 body.
		return apperrors.NewInternalError(err)
	}

	return c.JSON(dto.StatusUpdateResult{
		Success: true,
		Message: "Issue is solved.",
	})
}

// UpdateStatus PUT /tickets/:id/status. Validated lifecycle transition
// for the assigned agent or an administrator.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Authentication required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	ticket, err := h.service.UpdateStatus(c.Context(), principal.User, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	detail := service.TicketDetail{Ticket: *ticket}
	return c.JSON(ticketResponse(&detail))
}

// AddNote POST /tickets/:id/notes.
func (h *TicketsHandler) AddNote(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Authentication required")
	}
	var req dto.AddNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	note, err := h.service.AddNote(c.Context(), principal.User, c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(noteResponse(note))
}

func ticketResponse(detail *service.TicketDetail) dto.TicketResponse {
	ticket := &detail.Ticket
	resp := dto.TicketResponse{
		ID:          ticket.ID,
		TicketID:    ticket.Number,
		Title:       ticket.Title,
		Description: ticket.Description,
		Priority:    ticket.Priority,
		Status:      ticket.Status,
		Customer: dto.CustomerRef{
			ID:    detail.Customer.ID,
			Name:  detail.Customer.Name,
			Email: detail.Customer.Email,
		},
		CreatedAt:   ticket.CreatedAt,
		LastUpdated: ticket.UpdatedAt,
	}
	if detail.AssignedAgent != nil {
		resp.AssignedAgent = &dto.AgentRef{ID: detail.AssignedAgent.ID, Name: detail.AssignedAgent.Name}
	}
	for i := range detail.Notes {
		resp.Notes = append(resp.Notes, noteResponse(&detail.Notes[i]))
	}
	return resp
}

func ticketListResponse(item *repository.TicketListItem) dto.TicketResponse {
	detail := service.TicketDetail{
		Ticket:        item.Ticket,
		Customer:      item.Customer,
		AssignedAgent: item.AssignedAgent,
	}
	return ticketResponse(&detail)
}

func noteResponse(note *domain.Note) dto.NoteResponse {
	return dto.NoteResponse{
		ID:        note.ID,
		Content:   note.Content,
		CreatedBy: note.AuthorID,
		CreatedAt: note.CreatedAt,
	}
}
