package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color" validate:"required,oneof=red green"`
	Note  string `json:"-"`
}

func TestValidator_Struct(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(sample{Name: "a", Color: "red"}))

	err := v.Struct(sample{Color: "blue"})
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, apperrors.CodeValidation, domainErr.Code)
	assert.Equal(t, 400, domainErr.HTTPStatus)
	assert.Equal(t, "this field is required", domainErr.Details["name"])
	assert.Contains(t, domainErr.Details["color"], "red green")
	assert.Len(t, domainErr.Details, 2)
}

type ticketFields struct {
	Status   string `json:"status" validate:"required,ticket_status"`
	Priority string `json:"priority" validate:"required,ticket_priority"`
	Category string `json:"category" validate:"required,ticket_category"`
	Role     string `json:"role" validate:"required,user_role"`
}

func TestValidator_DomainEnums(t *testing.T) {
	v := New()

	for _, status := range domain.TicketStatuses {
		assert.NoError(t, v.Struct(ticketFields{Status: string(status), Priority: "low", Category: "other", Role: "admin"}))
	}
	for _, role := range domain.Roles {
		assert.NoError(t, v.Struct(ticketFields{Status: "open", Priority: "urgent", Category: "payment", Role: string(role)}))
	}

	err := v.Struct(ticketFields{Status: "archived", Priority: "critical", Category: "billing", Role: "teacher"})
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "must be one of: open, in_progress, resolved, closed", domainErr.Details["status"])
	assert.Equal(t, "must be one of: low, medium, high, urgent", domainErr.Details["priority"])
	assert.Contains(t, domainErr.Details["category"], "technical, academic")
	assert.Equal(t, "must be one of: student, admin", domainErr.Details["role"])

	err = v.Struct(ticketFields{})
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "this field is required", domainErr.Details["status"])
	assert.Equal(t, "this field is required", domainErr.Details["role"])
}
