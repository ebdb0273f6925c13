package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/b2b-portal/opscenter/shared/pkg/cloudevents"
	"github.com/b2b-portal/opscenter/shared/pkg/logging"
	"github.com/b2b-portal/opscenter/shared/pkg/metrics"

	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

// EventProducer writes CloudEvents to a topic
type EventProducer interface {
	PublishEvent(ctx context.Context, topic string, event *cloudevents.PortalCloudEvent) error
}

// EventPublisher announces snapshots on Kafka. It implements domain.SnapshotPublisher.
type EventPublisher struct {
	producer     EventProducer
	eventFactory *cloudevents.EventFactory
	topic        string
	metrics      *metrics.Metrics
	logger       *logging.Logger
}

// NewEventPublisher creates a new Kafka-based event publisher
func NewEventPublisher(
	producer EventProducer,
	eventFactory *cloudevents.EventFactory,
	topic string,
	m *metrics.Metrics,
	logger *logging.Logger,
) *EventPublisher {
	return &EventPublisher{
		producer:     producer,
		eventFactory: eventFactory,
		topic:        topic,
		metrics:      m,
		logger:       logger,
	}
}

// PublishSnapshotGenerated publishes the snapshot summary and, when the data
// quality gate has blocking checks, a gate-blocked event
func (p *EventPublisher) PublishSnapshotGenerated(ctx context.Context, snapshot *domain.CommandCenterSnapshot) error {
	summary := snapshot.Summary
	degraded := snapshot.DegradedSections
	if degraded == nil {
		degraded = []string{}
	}

	event := p.eventFactory.CreateSnapshotGeneratedEvent(ctx, cloudevents.SnapshotGeneratedData{
		GeneratedAt:           snapshot.GeneratedAt,
		DegradedSections:      degraded,
		LowCoverageOrderCount: summary.LowCoverageOrderCount,
		OpenOrderCount:        summary.OpenOrderCount,
		HighRiskOrderCount:    summary.HighRiskOrderCount,
		ShortageQty:           summary.ShortageQty.InexactFloat64(),
		HotCustomerCount:      summary.HotCustomerCount,
		ActivePickerCount:     summary.ActivePickerCount,
		SubstitutionNeedCount: summary.SubstitutionNeedCount,
		BlockedDataChecks:     summary.BlockedDataChecks,
		HealthScore:           summary.HealthScore,
	})
	if err := p.publish(ctx, event); err != nil {
		return err
	}

	// A degraded section only carries partial checks
	report, ok := snapshot.DataQuality.Value()
	if !ok || report.BlockingCount() == 0 {
		return nil
	}

	blocked := make(map[string]int)
	for _, c := range report.Checks {
		if c.Blocking() {
			blocked[string(c.Code)] = c.Count
		}
	}

	return p.publish(ctx, p.eventFactory.CreateDataQualityGateBlockedEvent(ctx, cloudevents.DataQualityGateBlockedData{
		GeneratedAt:   snapshot.GeneratedAt,
		HealthScore:   report.HealthScore,
		BlockedChecks: blocked,
	}))
}

func (p *EventPublisher) publish(ctx context.Context, event *cloudevents.PortalCloudEvent) error {
	start := time.Now()
	err := p.producer.PublishEvent(ctx, p.topic, event)
	duration := time.Since(start)

	if p.metrics != nil {
		p.metrics.RecordKafkaPublish(p.topic, event.Type, err == nil, duration)
	}
	if p.logger != nil {
		p.logger.KafkaPublish(ctx, p.topic, event.Type, err == nil, duration)
	}

	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}

// Topic returns the topic this publisher publishes to
func (p *EventPublisher) Topic() string {
	return p.topic
}
