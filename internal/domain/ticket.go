package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketPriority enumerates request urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// TicketCategory classifies what a ticket is about.
type TicketCategory string

const (
	TicketCategoryTechnical TicketCategory = "technical"
	TicketCategoryAcademic  TicketCategory = "academic"
	TicketCategoryAdmission TicketCategory = "admission"
	TicketCategoryPayment   TicketCategory = "payment"
	TicketCategoryGeneral   TicketCategory = "general"
	TicketCategoryOther     TicketCategory = "other"
)

var (
	TicketStatuses   = []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed}
	TicketPriorities = []TicketPriority{TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent}
	TicketCategories = []TicketCategory{
		TicketCategoryTechnical,
		TicketCategoryAcademic,
		TicketCategoryAdmission,
		TicketCategoryPayment,
		TicketCategoryGeneral,
		TicketCategoryOther,
	}
)

// Valid reports whether s is one of the known statuses.
func (s TicketStatus) Valid() bool {
	for _, candidate := range TicketStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Valid reports whether p is one of the known priorities.
func (p TicketPriority) Valid() bool {
	for _, candidate := range TicketPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// Valid reports whether c is one of the known categories.
func (c TicketCategory) Valid() bool {
	for _, candidate := range TicketCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// Ticket is the aggregate for support requests.
//
// UserName and UserEmail are a snapshot of the owner taken at creation and
// are never refreshed from the user record.
type Ticket struct {
	ID          string
	UserID      string
	UserName    string
	UserEmail   string
	Subject     string
	Description string
	Category    TicketCategory
	Priority    TicketPriority
	Status      TicketStatus
	AssignedTo  *string
	ResolvedBy  *string
	Responses   []Response
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnedBy reports whether userID submitted the ticket.
func (t *Ticket) OwnedBy(userID string) bool {
	return t != nil && t.UserID == userID
}

// TicketStats aggregates counts over all tickets.
type TicketStats struct {
	Total      int
	Open       int
	InProgress int
	Resolved   int
	ByPriority []GroupCount
	ByCategory []GroupCount
}

// GroupCount is a single bucket of a grouped count.
type GroupCount struct {
	Value string
	Count int
}
