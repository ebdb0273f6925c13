package application

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/b2b-portal/opscenter/shared/pkg/errors"
	"github.com/b2b-portal/opscenter/shared/pkg/logging"
	"github.com/b2b-portal/opscenter/shared/pkg/metrics"

	"github.com/b2b-portal/opscenter/services/command-center/internal/config"
	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

// Sources bundles the read ports the command center fans out to
type Sources struct {
	Orders       domain.OrderSource
	Inventory    domain.InventorySource
	Customers    domain.CustomerSource
	Carts        domain.CartSource
	Catalog      domain.CatalogSource
	CoOccurrence domain.CoOccurrenceSource
	Picking      domain.PickingSource
	DataQuality  domain.DataQualitySource
}

// CommandCenter builds operations snapshots by running the six engines in
// parallel and reconciling their partial failures
type CommandCenter struct {
	orders    domain.OrderSource
	customers domain.CustomerSource

	atp          *ATPEngine
	orchestrator *WaveOrchestrator
	intent       *IntentEngine
	risk         *RiskEngine
	substitution *SubstitutionEngine
	dataQuality  *DataQualityFirewall

	cache     domain.SnapshotCache
	publisher domain.SnapshotPublisher

	policy  *config.Policy
	logger  *logging.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	now     func() time.Time

	// background tracks fire-and-forget publishes
	background sync.WaitGroup
}

// Option configures a CommandCenter
type Option func(*CommandCenter)

// WithCache enables the snapshot cache when the policy TTL is positive
func WithCache(cache domain.SnapshotCache) Option {
	return func(c *CommandCenter) { c.cache = cache }
}

// WithPublisher announces every built snapshot
func WithPublisher(publisher domain.SnapshotPublisher) Option {
	return func(c *CommandCenter) { c.publisher = publisher }
}

// WithClock overrides the snapshot clock
func WithClock(now func() time.Time) Option {
	return func(c *CommandCenter) { c.now = now }
}

// NewCommandCenter creates a new CommandCenter
func NewCommandCenter(sources Sources, policy *config.Policy, logger *logging.Logger, m *metrics.Metrics, opts ...Option) *CommandCenter {
	c := &CommandCenter{
		orders:       sources.Orders,
		customers:    sources.Customers,
		atp:          NewATPEngine(sources.Inventory),
		orchestrator: NewWaveOrchestrator(sources.Picking, policy.Orchestration),
		intent:       NewIntentEngine(sources.Carts, policy.Intent),
		risk:         NewRiskEngine(policy.Risk),
		substitution: NewSubstitutionEngine(sources.Catalog, sources.Inventory, sources.CoOccurrence, policy.Substitution),
		dataQuality:  NewDataQualityFirewall(sources.DataQuality, policy.DataQuality.Rules),
		policy:       policy,
		logger:       logger.WithComponent("command-center"),
		metrics:      m,
		tracer:       otel.Tracer("command-center"),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Wait blocks until background publishes have finished
func (c *CommandCenter) Wait() {
	c.background.Wait()
}

// Snapshot validates the query and builds one snapshot. It fails only on an
// invalid query or when every section is degraded.
func (c *CommandCenter) Snapshot(ctx context.Context, query SnapshotQuery) (*domain.CommandCenterSnapshot, error) {
	q, err := query.Normalize(c.policy)
	if err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "commandCenter.snapshot",
		trace.WithAttributes(
			attribute.StringSlice("query.series", q.Series),
			attribute.StringSlice("query.warehouses", q.Warehouses),
			attribute.Int("query.orderLimit", q.OrderLimit),
			attribute.Int("query.customerLimit", q.CustomerLimit),
		),
	)
	defer span.End()

	cacheKey := q.CacheKey()
	if cached, ok := c.lookupCache(ctx, cacheKey); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	}

	start := time.Now()
	snapshot := c.build(ctx, q)
	duration := time.Since(start)

	for name, reason := range snapshot.SectionStatuses() {
		if reason != "" {
			c.metrics.RecordSectionDegraded(name, string(reason))
		}
	}

	if len(snapshot.DegradedSections) == len(domain.SectionNames) {
		c.metrics.RecordSnapshot("failed", duration)
		span.SetStatus(codes.Error, "all sections degraded")
		c.logger.WithContext(ctx).Error("Every command center section degraded",
			"durationMs", duration.Milliseconds(),
		)
		return nil, errors.ErrSourceUnavailable("all command center sources are unavailable").Wrap(domain.ErrAllSectionsDegraded)
	}

	outcome := "complete"
	if !snapshot.FullyPopulated() {
		outcome = "partial"
	}
	c.metrics.RecordSnapshot(outcome, duration)
	if !snapshot.DataQuality.IsDegraded() {
		c.metrics.SetDataQualityHealthScore(snapshot.Summary.HealthScore)
	}

	c.logger.SnapshotBuilt(ctx, duration, snapshot.DegradedSections, map[string]any{
		"openOrderCount":        snapshot.Summary.OpenOrderCount,
		"lowCoverageOrderCount": snapshot.Summary.LowCoverageOrderCount,
		"highRiskOrderCount":    snapshot.Summary.HighRiskOrderCount,
		"healthScore":           snapshot.Summary.HealthScore,
	})

	if snapshot.FullyPopulated() {
		c.storeCache(ctx, cacheKey, snapshot)
	}
	c.publish(ctx, snapshot)

	return snapshot, nil
}

func (c *CommandCenter) build(ctx context.Context, q SnapshotQuery) *domain.CommandCenterSnapshot {
	ctx, cancel := context.WithTimeout(ctx, c.policy.Aggregator.SnapshotTimeout)
	defer cancel()

	generatedAt := c.now().UTC()

	// Shared inputs are read at most once and handed to engines by reference
	loadOrders := sync.OnceValues(func() ([]domain.OpenOrder, error) {
		orders, err := c.orders.ListOpenOrders(ctx, domain.OrderFilter{Series: q.Series, Limit: q.OrderLimit})
		if err != nil {
			return nil, fmt.Errorf("open order read: %w", err)
		}
		return orders, nil
	})
	loadProfiles := sync.OnceValues(func() ([]domain.CustomerProfile, error) {
		filter := domain.CustomerFilter{ActiveSince: c.intent.ActivitySince(generatedAt)}
		if orders, err := loadOrders(); err == nil {
			filter.CustomerIDs = customerIDs(orders)
		}
		profiles, err := c.customers.ListCustomerProfiles(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("customer profile read: %w", err)
		}
		return profiles, nil
	})

	emptyATP := ATPResult{Orders: []domain.AllocationResult{}}
	emptyIntent := domain.IntentReport{Customers: []domain.CustomerIntentScore{}}
	emptyRisk := domain.RiskReport{Orders: []domain.RiskAssessment{}}
	emptyDQ := domain.DataQualityReport{Checks: []domain.DataQualityCheck{}, HealthScore: domain.HealthScore(nil)}
	emptyPlan := domain.OrchestrationPlan{Waves: []domain.Wave{}, PickerWorkload: []domain.PickerWorkload{}}
	emptySubs := domain.SubstitutionReport{Suggestions: []domain.SubstitutionSuggestion{}}

	atpCh := runSection(ctx, c, domain.SectionNameATP, emptyATP, func(ctx context.Context) (ATPResult, []string, error) {
		orders, err := loadOrders()
		if err != nil {
			return emptyATP, nil, err
		}
		result, err := c.atp.Run(ctx, orders, q.Warehouses)
		if err != nil && stderrors.Is(err, domain.ErrConfigurationMissing) {
			return result, []string{"no included warehouses configured; allocation skipped"}, err
		}
		return result, nil, err
	})

	dqCh := runSection(ctx, c, domain.SectionNameDataQuality, emptyDQ, func(ctx context.Context) (domain.DataQualityReport, []string, error) {
		report, err := c.dataQuality.Run(ctx, domain.DataQualityScope{Warehouses: q.Warehouses})
		return report, nil, err
	})

	riskCh := runSection(ctx, c, domain.SectionNameRisk, emptyRisk, func(ctx context.Context) (domain.RiskReport, []string, error) {
		orders, err := loadOrders()
		if err != nil {
			return emptyRisk, nil, err
		}
		profiles, err := loadProfiles()
		if err != nil {
			return emptyRisk, nil, err
		}
		report, err := c.risk.Run(ctx, orders, profiles)
		return report, nil, err
	})

	intentCh := runSection(ctx, c, domain.SectionNameCustomerIntent, emptyIntent, func(ctx context.Context) (domain.IntentReport, []string, error) {
		profiles, err := loadProfiles()
		if err != nil {
			return emptyIntent, nil, err
		}
		report, err := c.intent.Run(ctx, profiles, generatedAt, q.CustomerLimit)
		return report, nil, err
	})

	atpSection := await(ctx, atpCh, domain.SectionNameATP, emptyATP)

	var planSection domain.Section[domain.OrchestrationPlan]
	var subsSection domain.Section[domain.SubstitutionReport]
	if atp, ok := atpSection.Value(); ok {
		planCh := runSection(ctx, c, domain.SectionNameOrchestration, emptyPlan, func(ctx context.Context) (domain.OrchestrationPlan, []string, error) {
			plan, err := c.orchestrator.Run(ctx, atp.Orders)
			return plan, nil, err
		})
		subsCh := runSection(ctx, c, domain.SectionNameSubstitution, emptySubs, func(ctx context.Context) (domain.SubstitutionReport, []string, error) {
			return c.substitution.Run(ctx, atp)
		})
		planSection = await(ctx, planCh, domain.SectionNameOrchestration, emptyPlan)
		subsSection = await(ctx, subsCh, domain.SectionNameSubstitution, emptySubs)
	} else {
		issue := domain.Issue{
			Code:    domain.IssueDependencyUnavailable,
			Message: fmt.Sprintf("atp section degraded (%s)", atpSection.Reason()),
		}
		planSection = domain.Degraded(emptyPlan, issue)
		subsSection = domain.Degraded(emptySubs, issue)
		c.logger.SectionDegraded(ctx, domain.SectionNameOrchestration, string(issue.Code), nil)
		c.logger.SectionDegraded(ctx, domain.SectionNameSubstitution, string(issue.Code), nil)
	}

	dqSection := await(ctx, dqCh, domain.SectionNameDataQuality, emptyDQ)
	riskSection := await(ctx, riskCh, domain.SectionNameRisk, emptyRisk)
	intentSection := await(ctx, intentCh, domain.SectionNameCustomerIntent, emptyIntent)

	snapshot := &domain.CommandCenterSnapshot{
		GeneratedAt:    generatedAt,
		ATP:            mapSection(atpSection, ATPResult.Report),
		Orchestration:  planSection,
		CustomerIntent: intentSection,
		Risk:           riskSection,
		Substitution:   subsSection,
		DataQuality:    dqSection,
	}
	snapshot.DegradedSections = degradedSections(snapshot)
	snapshot.Summary = c.summarize(snapshot)

	return snapshot
}

// summarize computes the roll-up counters from whatever each section holds
func (c *CommandCenter) summarize(s *domain.CommandCenterSnapshot) domain.Summary {
	summary := domain.Summary{ShortageQty: decimal.Zero}

	for _, o := range s.ATP.Partial().Orders {
		summary.OpenOrderCount++
		summary.ShortageQty = summary.ShortageQty.Add(o.ShortageQty)
		if o.CoveredPercent < c.policy.Aggregator.LowCoveragePercent {
			summary.LowCoverageOrderCount++
		}
	}

	for _, r := range s.Risk.Partial().Orders {
		if r.Decision == domain.DecisionReject {
			summary.HighRiskOrderCount++
		}
	}

	summary.HotCustomerCount = s.CustomerIntent.Partial().HotCustomerCount

	for _, p := range s.Orchestration.Partial().PickerWorkload {
		if p.ActiveOrders > 0 {
			summary.ActivePickerCount++
		}
	}

	summary.SubstitutionNeedCount = len(s.Substitution.Partial().Suggestions)

	dq := s.DataQuality.Partial()
	summary.BlockedDataChecks = dq.BlockingCount()
	summary.HealthScore = dq.HealthScore

	return summary
}

func (c *CommandCenter) lookupCache(ctx context.Context, key string) (*domain.CommandCenterSnapshot, bool) {
	if c.cache == nil || c.policy.Aggregator.CacheTTL <= 0 {
		return nil, false
	}

	snapshot, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("Snapshot cache lookup failed")
		return nil, false
	}
	c.metrics.RecordCacheLookup(ok)
	return snapshot, ok
}

func (c *CommandCenter) storeCache(ctx context.Context, key string, snapshot *domain.CommandCenterSnapshot) {
	if c.cache == nil || c.policy.Aggregator.CacheTTL <= 0 {
		return
	}

	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := c.cache.Set(storeCtx, key, snapshot, c.policy.Aggregator.CacheTTL); err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("Snapshot cache store failed")
	}
}

// publish announces the snapshot without holding up the response
func (c *CommandCenter) publish(ctx context.Context, snapshot *domain.CommandCenterSnapshot) {
	if c.publisher == nil {
		return
	}

	pubCtx := context.WithoutCancel(ctx)
	c.background.Add(1)
	go func() {
		defer c.background.Done()
		pubCtx, cancel := context.WithTimeout(pubCtx, 5*time.Second)
		defer cancel()
		if err := c.publisher.PublishSnapshotGenerated(pubCtx, snapshot); err != nil {
			c.logger.WithContext(pubCtx).WithError(err).Warn("Failed to publish snapshot event")
		}
	}()
}

// runSection runs one engine in its own goroutine under the engine timeout.
// Errors and panics become a degraded section; the channel always receives
// exactly one value.
func runSection[T any](
	ctx context.Context,
	c *CommandCenter,
	name string,
	empty T,
	fn func(ctx context.Context) (T, []string, error),
) <-chan domain.Section[T] {
	out := make(chan domain.Section[T], 1)

	go func() {
		ctx, cancel := context.WithTimeout(ctx, c.policy.Aggregator.EngineTimeout)
		defer cancel()

		ctx, span := c.tracer.Start(ctx, "engine."+name)
		defer span.End()

		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				c.logger.Panic(ctx, r)
				span.SetStatus(codes.Error, "panic")
				issue := domain.Issue{Code: domain.IssueInternal, Message: fmt.Sprintf("%s engine failed unexpectedly", name)}
				c.metrics.RecordEngine(name, time.Since(start))
				out <- domain.Degraded(empty, issue)
			}
		}()

		data, warnings, err := fn(ctx)
		c.metrics.RecordEngine(name, time.Since(start))

		if err != nil {
			issue := domain.IssueFromError(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, string(issue.Code))
			c.logger.SectionDegraded(ctx, name, string(issue.Code), err)
			out <- domain.Degraded(data, issue, warnings...)
			return
		}

		out <- domain.Populated(data, warnings...)
	}()

	return out
}

// await collects a section, degrading it with TIMEOUT if the snapshot
// deadline fires first
func await[T any](ctx context.Context, ch <-chan domain.Section[T], name string, empty T) domain.Section[T] {
	select {
	case s := <-ch:
		return s
	case <-ctx.Done():
		select {
		case s := <-ch:
			return s
		default:
		}
		return domain.Degraded(empty, domain.Issue{
			Code:    domain.IssueTimeout,
			Message: fmt.Sprintf("%s did not settle before the snapshot deadline", name),
		})
	}
}

func mapSection[T, U any](s domain.Section[T], f func(T) U) domain.Section[U] {
	return domain.Section[U]{
		Status:   s.Status,
		Data:     f(s.Data),
		Issue:    s.Issue,
		Warnings: s.Warnings,
	}
}

func degradedSections(s *domain.CommandCenterSnapshot) []string {
	statuses := s.SectionStatuses()
	degraded := []string{}
	for _, name := range domain.SectionNames {
		if statuses[name] != "" {
			degraded = append(degraded, name)
		}
	}
	return degraded
}

func customerIDs(orders []domain.OpenOrder) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, o := range orders {
		if !seen[o.CustomerID] {
			seen[o.CustomerID] = true
			ids = append(ids, o.CustomerID)
		}
	}
	return ids
}
