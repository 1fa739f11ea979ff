package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/support-desk/internal/domain"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

func TestAuthorize(t *testing.T) {
	admin := domain.Caller{ID: "admin-1", Role: domain.RoleAdmin}
	owner := domain.Caller{ID: "student-1", Role: domain.RoleStudent}
	other := domain.Caller{ID: "student-2", Role: domain.RoleStudent}
	ticket := &domain.Ticket{ID: "t1", UserID: owner.ID}

	tests := []struct {
		name    string
		caller  domain.Caller
		action  Action
		ticket  *domain.Ticket
		allowed bool
	}{
		{"admin lists all", admin, ActionListAllTickets, nil, true},
		{"student lists all", owner, ActionListAllTickets, nil, false},
		{"student lists own", owner, ActionListOwnTickets, nil, true},
		{"student creates", owner, ActionCreateTicket, nil, true},
		{"owner views", owner, ActionViewTicket, ticket, true},
		{"other views", other, ActionViewTicket, ticket, false},
		{"admin views", admin, ActionViewTicket, ticket, true},
		{"owner responds", owner, ActionRespondToTicket, ticket, true},
		{"other responds", other, ActionRespondToTicket, ticket, false},
		{"admin responds", admin, ActionRespondToTicket, ticket, true},
		{"owner updates status", owner, ActionUpdateStatus, ticket, false},
		{"admin updates status", admin, ActionUpdateStatus, ticket, true},
		{"owner assigns", owner, ActionAssignTicket, ticket, false},
		{"admin assigns", admin, ActionAssignTicket, ticket, true},
		{"student stats", owner, ActionViewStats, nil, false},
		{"admin stats", admin, ActionViewStats, nil, true},
		{"unknown action", admin, Action("tickets:delete"), ticket, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.caller, tt.action, tt.ticket)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden), "got %v", err)
		})
	}
}

func TestAuthorize_AnonymousCaller(t *testing.T) {
	err := Authorize(domain.Caller{}, ActionCreateTicket, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}

func TestAuthorize_NilTicketDeniesNonAdmin(t *testing.T) {
	err := Authorize(domain.Caller{ID: "s", Role: domain.RoleStudent}, ActionViewTicket, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}
