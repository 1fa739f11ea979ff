package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
)

type ticketRow struct {
	ticket domain.Ticket
}

type ticketRepository struct {
	db *DB
}

// NewTicketRepository returns a memory-backed ticket repository.
func NewTicketRepository(db *DB) repository.TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	ticket.ID = uuid.NewString()
	ticket.CreatedAt = r.db.stamp()
	ticket.UpdatedAt = ticket.CreatedAt
	ticket.Responses = []domain.Response{}
	r.db.tickets[ticket.ID] = &ticketRow{ticket: cloneTicket(*ticket)}
	return nil
}

func (r *ticketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	row, ok := r.db.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	ticket := cloneTicket(row.ticket)
	return &ticket, nil
}

func (r *ticketRepository) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	matched := make([]*domain.Ticket, 0, len(r.db.tickets))
	for _, row := range r.db.tickets {
		if matches(&row.ticket, filter) {
			matched = append(matched, &row.ticket)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	page := []domain.Ticket{}
	for i := offset; i < len(matched) && i < offset+limit; i++ {
		page = append(page, cloneTicket(*matched[i]))
	}
	return page, len(matched), nil
}

func (r *ticketRepository) UpdateStatus(_ context.Context, id string, status domain.TicketStatus, resolvedBy *string) (*domain.Ticket, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	row, ok := r.db.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	row.ticket.Status = status
	if resolvedBy != nil {
		by := *resolvedBy
		row.ticket.ResolvedBy = &by
	}
	row.ticket.UpdatedAt = r.db.stamp()
	ticket := cloneTicket(row.ticket)
	return &ticket, nil
}

func (r *ticketRepository) Assign(_ context.Context, id, assigneeID string) (*domain.Ticket, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	row, ok := r.db.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	row.ticket.AssignedTo = &assigneeID
	row.ticket.UpdatedAt = r.db.stamp()
	ticket := cloneTicket(row.ticket)
	return &ticket, nil
}

func (r *ticketRepository) AppendResponse(_ context.Context, resp *domain.Response) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	row, ok := r.db.tickets[resp.TicketID]
	if !ok {
		return repository.ErrNotFound
	}
	resp.ID = uuid.NewString()
	resp.CreatedAt = r.db.stamp()
	row.ticket.Responses = append(row.ticket.Responses, *resp)
	row.ticket.UpdatedAt = resp.CreatedAt
	return nil
}

func (r *ticketRepository) Stats(_ context.Context) (*domain.TicketStats, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	stats := &domain.TicketStats{}
	byPriority := map[string]int{}
	byCategory := map[string]int{}
	for _, row := range r.db.tickets {
		stats.Total++
		switch row.ticket.Status {
		case domain.TicketStatusOpen:
			stats.Open++
		case domain.TicketStatusInProgress:
			stats.InProgress++
		case domain.TicketStatusResolved:
			stats.Resolved++
		}
		byPriority[string(row.ticket.Priority)]++
		byCategory[string(row.ticket.Category)]++
	}
	stats.ByPriority = sortedGroups(byPriority)
	stats.ByCategory = sortedGroups(byCategory)
	return stats, nil
}

func matches(ticket *domain.Ticket, filter repository.TicketFilter) bool {
	if filter.UserID != nil && ticket.UserID != *filter.UserID {
		return false
	}
	if filter.Status != nil && ticket.Status != *filter.Status {
		return false
	}
	if filter.Priority != nil && ticket.Priority != *filter.Priority {
		return false
	}
	if filter.Category != nil && ticket.Category != *filter.Category {
		return false
	}
	return true
}

func sortedGroups(counts map[string]int) []domain.GroupCount {
	groups := make([]domain.GroupCount, 0, len(counts))
	for value, count := range counts {
		groups = append(groups, domain.GroupCount{Value: value, Count: count})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Value < groups[j].Value })
	return groups
}

// cloneTicket copies the pointer and slice fields so callers never alias
// stored state.
func cloneTicket(t domain.Ticket) domain.Ticket {
	if t.AssignedTo != nil {
		v := *t.AssignedTo
		t.AssignedTo = &v
	}
	if t.ResolvedBy != nil {
		v := *t.ResolvedBy
		t.ResolvedBy = &v
	}
	responses := make([]domain.Response, len(t.Responses))
	copy(responses, t.Responses)
	t.Responses = responses
	return t
}
