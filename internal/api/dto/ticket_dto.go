package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// AddResponseRequest payload.
type AddResponseRequest struct {
	Message string `json:"message"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AssignedTo string `json:"assignedTo"`
}

// TicketResponse is the full ticket representation.
type TicketResponse struct {
	ID          string                `json:"id"`
	User        UserSummary           `json:"user"`
	UserName    string                `json:"userName"`
	UserEmail   string                `json:"userEmail"`
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	Category    domain.TicketCategory `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
	AssignedTo  *UserSummary          `json:"assignedTo"`
	ResolvedBy  *UserSummary          `json:"resolvedBy"`
	Responses   []ResponseResponse    `json:"responses"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// ResponseResponse represents one thread entry.
type ResponseResponse struct {
	ID              string      `json:"id"`
	User            UserSummary `json:"user"`
	UserName        string      `json:"userName"`
	Message         string      `json:"message"`
	IsStaffResponse bool        `json:"isStaffResponse"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// TicketPageResponse wraps a listing.
type TicketPageResponse struct {
	Tickets     []TicketResponse `json:"tickets"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
	Total       int              `json:"total"`
}

// GroupCount is one bucket of a breakdown.
type GroupCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// StatsResponse summarizes ticket counts.
type StatsResponse struct {
	Total             int          `json:"total"`
	Open              int          `json:"open"`
	InProgress        int          `json:"inProgress"`
	Resolved          int          `json:"resolved"`
	PriorityBreakdown []GroupCount `json:"priorityBreakdown"`
	CategoryBreakdown []GroupCount `json:"categoryBreakdown"`
}

// NewTicketResponse maps a resolved ticket view.
func NewTicketResponse(view *service.TicketView) TicketResponse {
	responses := make([]ResponseResponse, 0, len(view.Thread))
	for i := range view.Thread {
		responses = append(responses, NewResponseResponse(&view.Thread[i]))
	}
	return TicketResponse{
		ID:          view.ID,
		User:        NewUserSummary(view.Owner),
		UserName:    view.UserName,
		UserEmail:   view.UserEmail,
		Subject:     view.Subject,
		Description: view.Description,
		Category:    view.Category,
		Priority:    view.Priority,
		Status:      view.Status,
		AssignedTo:  optionalUser(view.Assignee),
		ResolvedBy:  optionalUser(view.Resolver),
		Responses:   responses,
		CreatedAt:   view.CreatedAt,
		UpdatedAt:   view.UpdatedAt,
	}
}

// NewResponseResponse maps a resolved response.
func NewResponseResponse(view *service.ResponseView) ResponseResponse {
	return ResponseResponse{
		ID:              view.ID,
		User:            NewUserSummary(view.Author),
		UserName:        view.UserName,
		Message:         view.Message,
		IsStaffResponse: view.IsStaffResponse,
		CreatedAt:       view.CreatedAt,
	}
}

// NewTicketPageResponse maps a listing page.
func NewTicketPageResponse(page *service.TicketPage) TicketPageResponse {
	tickets := make([]TicketResponse, 0, len(page.Tickets))
	for i := range page.Tickets {
		tickets = append(tickets, NewTicketResponse(&page.Tickets[i]))
	}
	return TicketPageResponse{
		Tickets:     tickets,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
		Total:       page.Total,
	}
}

// NewStatsResponse maps aggregate counts.
func NewStatsResponse(stats *domain.TicketStats) StatsResponse {
	return StatsResponse{
		Total:             stats.Total,
		Open:              stats.Open,
		InProgress:        stats.InProgress,
		Resolved:          stats.Resolved,
		PriorityBreakdown: groups(stats.ByPriority),
		CategoryBreakdown: groups(stats.ByCategory),
	}
}

func groups(in []domain.GroupCount) []GroupCount {
	out := make([]GroupCount, 0, len(in))
	for _, g := range in {
		out = append(out, GroupCount{Value: g.Value, Count: g.Count})
	}
	return out
}
