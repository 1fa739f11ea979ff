package worker

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/observability"
)

func TestStartEventMetrics_CountsEachType(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics("supportdesk")
	StartEventMetrics(dispatcher, metrics)

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventTicketCreated}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventTicketCreated}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventTicketAssigned}))

	expected := `
# HELP supportdesk_ticket_events_total Ticket domain events published.
# TYPE supportdesk_ticket_events_total counter
supportdesk_ticket_events_total{type="ticket_assigned"} 1
supportdesk_ticket_events_total{type="ticket_created"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected), "supportdesk_ticket_events_total"))
}

func TestStartWorkers_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		StartNotificationWorker(nil)
		StartEventMetrics(nil, nil)
	})
}
