package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/validation"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	previewLength = 120
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	validator  *validation.Validator
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Validator  *validation.Validator
	Logger     *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject     string `json:"subject" validate:"required"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"required,ticket_category"`
	Priority    string `json:"priority" validate:"required,ticket_priority"`
}

type statusInput struct {
	Status string `json:"status" validate:"required,ticket_status"`
}

type responseInput struct {
	Message string `json:"message" validate:"required"`
}

type assignInput struct {
	AssignedTo string `json:"assignedTo" validate:"required"`
}

// TicketQuery holds the optional exact-match filters of a listing.
type TicketQuery struct {
	Status   *domain.TicketStatus
	Priority *domain.TicketPriority
	Category *domain.TicketCategory
}

// PageRequest is a 1-indexed page request. Zero or negative values fall
// back to defaults.
type PageRequest struct {
	Page  int
	Limit int
}

func (p PageRequest) normalize() PageRequest {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// TicketView is a ticket with owner, assignee, resolver and response
// authors resolved to public identities.
type TicketView struct {
	domain.Ticket
	Owner    domain.UserSummary
	Assignee *domain.UserSummary
	Resolver *domain.UserSummary
	Thread   []ResponseView
}

// ResponseView is a response with its author resolved.
type ResponseView struct {
	domain.Response
	Author domain.UserSummary
}

// TicketPage is one page of a listing.
type TicketPage struct {
	Tickets     []TicketView
	Total       int
	TotalPages  int
	CurrentPage int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	v := deps.Validator
	if v == nil {
		v = validation.New()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		validator:  v,
		logger:     logger,
	}
}

// ListAll returns every ticket matching query. Admin only.
func (s *TicketService) ListAll(ctx context.Context, caller domain.Caller, query TicketQuery, page PageRequest) (*TicketPage, error) {
	if err := auth.Authorize(caller, auth.ActionListAllTickets, nil); err != nil {
		return nil, err
	}
	return s.list(ctx, repository.TicketFilter{
		Status:   query.Status,
		Priority: query.Priority,
		Category: query.Category,
	}, page)
}

// ListOwn returns the caller's own tickets, optionally filtered by status.
func (s *TicketService) ListOwn(ctx context.Context, caller domain.Caller, status *domain.TicketStatus, page PageRequest) (*TicketPage, error) {
	if err := auth.Authorize(caller, auth.ActionListOwnTickets, nil); err != nil {
		return nil, err
	}
	owner := caller.ID
	return s.list(ctx, repository.TicketFilter{UserID: &owner, Status: status}, page)
}

// Get returns a single ticket visible to caller.
func (s *TicketService) Get(ctx context.Context, caller domain.Caller, ticketID string) (*TicketView, error) {
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(caller, auth.ActionViewTicket, ticket); err != nil {
		return nil, err
	}
	return s.view(ctx, ticket)
}

// Create opens a new ticket owned by caller.
func (s *TicketService) Create(ctx context.Context, caller domain.Caller, input TicketCreateInput) (*TicketView, error) {
	if err := auth.Authorize(caller, auth.ActionCreateTicket, nil); err != nil {
		return nil, err
	}
	input.Subject = strings.TrimSpace(input.Subject)
	input.Description = strings.TrimSpace(input.Description)
	input.Category = strings.TrimSpace(input.Category)
	input.Priority = strings.TrimSpace(input.Priority)
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		UserID:      caller.ID,
		UserName:    caller.FullName(),
		UserEmail:   caller.Email,
		Subject:     input.Subject,
		Description: input.Description,
		Category:    domain.TicketCategory(input.Category),
		Priority:    domain.TicketPriority(input.Priority),
		Status:      domain.TicketStatusOpen,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    actorOf(caller),
		Payload: events.TicketCreatedPayload{
			Subject:  ticket.Subject,
			Category: ticket.Category,
			Priority: ticket.Priority,
			OwnerID:  ticket.UserID,
		},
	})
	return s.view(ctx, ticket)
}

// UpdateStatus sets the ticket status. Any status may follow any other.
// Moving to resolved records caller as resolver; leaving resolved keeps it.
func (s *TicketService) UpdateStatus(ctx context.Context, caller domain.Caller, ticketID, status string) (*TicketView, error) {
	if err := auth.Authorize(caller, auth.ActionUpdateStatus, nil); err != nil {
		return nil, err
	}
	input := statusInput{Status: strings.TrimSpace(status)}
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	current, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	next := domain.TicketStatus(input.Status)
	var resolvedBy *string
	if next == domain.TicketStatusResolved {
		resolvedBy = &caller.ID
	}
	updated, err := s.tickets.UpdateStatus(ctx, current.ID, next, resolvedBy)
	if err != nil {
		return nil, s.storeError("update ticket status", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: updated.ID,
		Actor:    actorOf(caller),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: current.Status,
			NewStatus: updated.Status,
			OwnerID:   updated.UserID,
		},
	})
	return s.view(ctx, updated)
}

// AddResponse appends a message to the ticket thread. Admins and the owner
// may respond; admin responses are flagged as staff responses.
func (s *TicketService) AddResponse(ctx context.Context, caller domain.Caller, ticketID, message string) (*ResponseView, error) {
	if caller.ID == "" {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	input := responseInput{Message: strings.TrimSpace(message)}
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(caller, auth.ActionRespondToTicket, ticket); err != nil {
		return nil, err
	}

	response := &domain.Response{
		TicketID:        ticket.ID,
		UserID:          caller.ID,
		UserName:        caller.FullName(),
		Message:         input.Message,
		IsStaffResponse: caller.IsAdmin(),
	}
	if err := s.tickets.AppendResponse(ctx, response); err != nil {
		return nil, s.storeError("append response", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketResponseAdded,
		TicketID: ticket.ID,
		Actor:    actorOf(caller),
		Payload: events.TicketResponseAddedPayload{
			ResponseID:      response.ID,
			AuthorID:        response.UserID,
			IsStaffResponse: response.IsStaffResponse,
			OwnerID:         ticket.UserID,
			MessagePreview:  stringPreview(response.Message, previewLength),
		},
	})

	return &ResponseView{
		Response: *response,
		Author: domain.UserSummary{
			ID:        caller.ID,
			FirstName: caller.FirstName,
			LastName:  caller.LastName,
			Email:     caller.Email,
		},
	}, nil
}

// Assign records assigneeID on the ticket. The id is stored as given; it is
// not checked against the user directory.
func (s *TicketService) Assign(ctx context.Context, caller domain.Caller, ticketID, assigneeID string) (*TicketView, error) {
	if err := auth.Authorize(caller, auth.ActionAssignTicket, nil); err != nil {
		return nil, err
	}
	input := assignInput{AssignedTo: strings.TrimSpace(assigneeID)}
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	updated, err := s.tickets.Assign(ctx, strings.TrimSpace(ticketID), input.AssignedTo)
	if err != nil {
		return nil, s.storeError("assign ticket", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: updated.ID,
		Actor:    actorOf(caller),
		Payload:  events.TicketAssignedPayload{AssigneeID: input.AssignedTo},
	})
	return s.view(ctx, updated)
}

// SummaryStats aggregates counts over all tickets. Admin only.
func (s *TicketService) SummaryStats(ctx context.Context, caller domain.Caller) (*domain.TicketStats, error) {
	if err := auth.Authorize(caller, auth.ActionViewStats, nil); err != nil {
		return nil, err
	}
	stats, err := s.tickets.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("ticket stats: %w", err)
	}
	return stats, nil
}

func (s *TicketService) list(ctx context.Context, filter repository.TicketFilter, page PageRequest) (*TicketPage, error) {
	page = page.normalize()
	filter.Limit = page.Limit
	filter.Offset = (page.Page - 1) * page.Limit

	tickets, total, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	views, err := s.views(ctx, tickets)
	if err != nil {
		return nil, err
	}
	return &TicketPage{
		Tickets:     views,
		Total:       total,
		TotalPages:  (total + page.Limit - 1) / page.Limit,
		CurrentPage: page.Page,
	}, nil
}

func (s *TicketService) load(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, strings.TrimSpace(ticketID))
	if err != nil {
		return nil, s.storeError("load ticket", err)
	}
	return ticket, nil
}

func (s *TicketService) storeError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("ticket", nil)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *TicketService) view(ctx context.Context, ticket *domain.Ticket) (*TicketView, error) {
	views, err := s.views(ctx, []domain.Ticket{*ticket})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// views resolves every referenced user with a single directory lookup.
func (s *TicketService) views(ctx context.Context, tickets []domain.Ticket) ([]TicketView, error) {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, t := range tickets {
		add(t.UserID)
		if t.AssignedTo != nil {
			add(*t.AssignedTo)
		}
		if t.ResolvedBy != nil {
			add(*t.ResolvedBy)
		}
		for _, r := range t.Responses {
			add(r.UserID)
		}
	}

	directory := map[string]domain.UserSummary{}
	if s.users != nil && len(ids) > 0 {
		found, err := s.users.Summaries(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve users: %w", err)
		}
		directory = found
	}
	lookup := func(id string) domain.UserSummary {
		if summary, ok := directory[id]; ok {
			return summary
		}
		return domain.UserSummary{ID: id}
	}
	optional := func(id *string) *domain.UserSummary {
		if id == nil {
			return nil
		}
		summary := lookup(*id)
		return &summary
	}

	views := make([]TicketView, 0, len(tickets))
	for _, t := range tickets {
		thread := make([]ResponseView, 0, len(t.Responses))
		for _, r := range t.Responses {
			thread = append(thread, ResponseView{Response: r, Author: lookup(r.UserID)})
		}
		views = append(views, TicketView{
			Ticket:   t,
			Owner:    lookup(t.UserID),
			Assignee: optional(t.AssignedTo),
			Resolver: optional(t.ResolvedBy),
			Thread:   thread,
		})
	}
	return views, nil
}

// publishEvent notifies subscribers. Handler failures are logged and never
// change the outcome of the operation that triggered them.
func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}

func actorOf(caller domain.Caller) events.Actor {
	return events.Actor{UserID: caller.ID, Role: caller.Role}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
