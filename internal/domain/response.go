package domain

import "time"

// Response is a single message in a ticket's thread. Entries are never
// edited once appended.
type Response struct {
	ID              string
	TicketID        string
	UserID          string
	UserName        string
	Message         string
	IsStaffResponse bool
	CreatedAt       time.Time
}
