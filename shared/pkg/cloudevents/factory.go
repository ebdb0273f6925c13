package cloudevents

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/b2b-portal/opscenter/shared/pkg/logging"
	"github.com/b2b-portal/opscenter/shared/pkg/tracing"
)

// EventFactory creates CloudEvents for command center events
type EventFactory struct {
	source string
	now    func() time.Time
}

// NewEventFactory creates a new EventFactory for a specific source
func NewEventFactory(source string) *EventFactory {
	return &EventFactory{source: source, now: time.Now}
}

// CreateEvent creates a new PortalCloudEvent. Correlation and trace context
// are lifted from ctx when present.
func (f *EventFactory) CreateEvent(
	ctx context.Context,
	eventType string,
	subject string,
	data interface{},
) *PortalCloudEvent {
	event := &PortalCloudEvent{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.New().String(),
		Time:            f.now().UTC(),
		DataContentType: "application/json",
		Data:            data,
		Extensions:      make(map[string]interface{}),
	}

	if correlationID, ok := ctx.Value(logging.CorrelationIDKey).(string); ok {
		event.CorrelationID = correlationID
	}

	carrier := tracing.MapCarrier{}
	tracing.InjectTraceContext(ctx, carrier)
	event.TraceParent = carrier.Get("traceparent")
	event.TraceState = carrier.Get("tracestate")

	return event
}

// CreateSnapshotGeneratedEvent creates a SnapshotGenerated event
func (f *EventFactory) CreateSnapshotGeneratedEvent(ctx context.Context, data SnapshotGeneratedData) *PortalCloudEvent {
	return f.CreateEvent(ctx, SnapshotGenerated, "snapshot/"+data.GeneratedAt.UTC().Format(time.RFC3339), data)
}

// CreateDataQualityGateBlockedEvent creates a DataQualityGateBlocked event
func (f *EventFactory) CreateDataQualityGateBlockedEvent(ctx context.Context, data DataQualityGateBlockedData) *PortalCloudEvent {
	return f.CreateEvent(ctx, DataQualityGateBlocked, "data-quality", data)
}
