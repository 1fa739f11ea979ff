package auth

import (
	"github.com/spec-kit/support-desk/internal/domain"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// Action names an operation subject to authorization.
type Action string

const (
	ActionListAllTickets  Action = "tickets:list_all"
	ActionListOwnTickets  Action = "tickets:list_own"
	ActionViewTicket      Action = "tickets:view"
	ActionCreateTicket    Action = "tickets:create"
	ActionUpdateStatus    Action = "tickets:update_status"
	ActionRespondToTicket Action = "tickets:respond"
	ActionAssignTicket    Action = "tickets:assign"
	ActionViewStats       Action = "tickets:stats"
)

// Authorize decides whether caller may perform action on ticket. ticket is
// nil for collection-level actions. A nil return means allow; denial is a
// Forbidden DomainError.
func Authorize(caller domain.Caller, action Action, ticket *domain.Ticket) error {
	if caller.ID == "" {
		return apperrors.NewUnauthorized("authentication required")
	}

	switch action {
	case ActionListOwnTickets, ActionCreateTicket:
		return nil
	case ActionListAllTickets, ActionUpdateStatus, ActionAssignTicket, ActionViewStats:
		if caller.IsAdmin() {
			return nil
		}
		return apperrors.NewForbidden("admin access required")
	case ActionViewTicket, ActionRespondToTicket:
		if caller.IsAdmin() || ticket.OwnedBy(caller.ID) {
			return nil
		}
		return apperrors.NewForbidden("access denied")
	default:
		return apperrors.NewForbidden("unknown action")
	}
}
