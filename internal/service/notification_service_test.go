package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository/memory"
)

func TestNotificationService_EmailsOwnerOnStaffActivity(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	db := memory.New()
	users := memory.NewUserRepository(db)
	ctx := context.Background()

	student := &domain.User{FirstName: "Sam", LastName: "Student", Email: "sam@example.com", Role: domain.RoleStudent}
	require.NoError(t, users.Create(ctx, student))
	admin := &domain.User{FirstName: "Ada", LastName: "Admin", Email: "ada@example.com", Role: domain.RoleAdmin}
	require.NoError(t, users.Create(ctx, admin))

	dispatcher := events.NewInMemoryDispatcher()
	notifications := NewNotificationService(dispatcher, users, zap.New(core), config.NotificationConfig{
		EmailFrom:  "desk@example.com",
		WebhookURL: "https://hooks.example.com/desk",
	})
	notifications.RegisterHandlers()

	svc := NewTicketService(TicketDependencies{
		TicketRepo: memory.NewTicketRepository(db),
		UserRepo:   users,
		Dispatcher: dispatcher,
	})

	ticket, err := svc.Create(ctx, domain.CallerFromUser(student), validInput())
	require.NoError(t, err)
	_, err = svc.AddResponse(ctx, domain.CallerFromUser(student), ticket.ID, "any news?")
	require.NoError(t, err)
	_, err = svc.AddResponse(ctx, domain.CallerFromUser(admin), ticket.ID, "looking into it")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, domain.CallerFromUser(admin), ticket.ID, "resolved")
	require.NoError(t, err)

	emails := logs.FilterMessage("sendEmailNotificationStub").AllUntimed()
	require.Len(t, emails, 2)
	for _, entry := range emails {
		assert.Equal(t, "sam@example.com", entry.ContextMap()["to"])
	}
	assert.Equal(t, 3, logs.FilterMessage("sendWebhookNotificationStub").Len())
	assert.Equal(t, 1, logs.FilterMessage("TicketStatusChanged").Len())
}

func TestNotificationService_MissingOwnerIsIgnored(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	notifications := NewNotificationService(nil, memory.NewUserRepository(memory.New()), zap.New(core), config.NotificationConfig{EmailFrom: "desk@example.com"})

	err := notifications.handleTicketStatusChanged(context.Background(), events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: "t-1",
		Payload:  events.TicketStatusChangedPayload{OwnerID: "ghost"},
	})
	require.NoError(t, err)
	assert.Zero(t, logs.FilterMessage("sendEmailNotificationStub").Len())

	err = notifications.handleTicketStatusChanged(context.Background(), events.Event{Payload: "bogus"})
	assert.Error(t, err)
}
