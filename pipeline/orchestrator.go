// pipeline/orchestrator.go
package pipeline

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/access"
	cmips_errors "github.com/clarita-9850/CMIPS-APPLICATION-sub003/errors"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/fetch"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/identity"
	logger "github.com/clarita-9850/CMIPS-APPLICATION-sub003/logging"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/masking"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/model"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/query"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/rules"
)

// Pipeline stages, in execution order. A failure carries the stage that did
// not complete; there is no backtracking and no partial result merging.
const (
	StageIdentity = "IDENTITY_RESOLVED"
	StageScope    = "SCOPE_BUILT"
	StageFetch    = "FETCHED"
	StageMask     = "MASKED"
	StageAssemble = "ASSEMBLED"
)

// CompletedEvent is the event type emitted after a successful run.
const CompletedEvent = "report.access.completed"

// EventSink receives fire-and-forget completion notifications. Failures in
// the sink never fail the pipeline.
type EventSink interface {
	Publish(ctx context.Context, eventType string, attributes map[string]interface{})
}

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// Orchestrator sequences one request through identity resolution, scope
// building, fetching and masking, and assembles the response. Per-request
// state lives entirely on the stack; the only shared component is the rule
// store, which serves immutable snapshots.
type Orchestrator struct {
	resolver *identity.Resolver
	builder  *query.Builder
	fetcher  *fetch.Fetcher
	rules    *rules.Store
	engine   *masking.Engine
	events   EventSink
}

func NewOrchestrator(
	resolver *identity.Resolver,
	builder *query.Builder,
	fetcher *fetch.Fetcher,
	ruleStore *rules.Store,
	engine *masking.Engine,
	events EventSink,
) *Orchestrator {
	return &Orchestrator{
		resolver: resolver,
		builder:  builder,
		fetcher:  fetcher,
		rules:    ruleStore,
		engine:   engine,
		events:   events,
	}
}

// Execute runs the full pipeline for one request. On failure at any stage
// the pipeline aborts immediately and results from completed stages are
// discarded.
func (o *Orchestrator) Execute(ctx context.Context, req model.ReportRequest) (*model.ReportResult, error) {
	id, err := o.resolver.Resolve(req.Claims)
	if err != nil {
		return nil, fail(StageIdentity, err)
	}

	pattern := access.Resolve(id.Role)

	descriptor, err := o.builder.Build(ctx, pattern, query.Input{
		TokenScope:     id.Scope,
		PrincipalID:    id.PrincipalID,
		ReportType:     req.ReportType,
		RequestedScope: req.RequestedScope,
		FromDate:       req.FromDate,
		ToDate:         req.ToDate,
		Filters:        req.Filters,
	})
	if err != nil {
		return nil, fail(StageScope, err)
	}

	page, pageSize := normalizePagination(req.Page, req.PageSize)

	records, total, err := o.fetcher.Fetch(ctx, descriptor, page, pageSize)
	if err != nil {
		return nil, fail(StageFetch, err)
	}

	ruleSet := o.rules.GetRules(id.Role, descriptor.ReportType)
	masked, visibleFields := o.engine.Apply(records, ruleSet)

	result := &model.ReportResult{
		Records:       masked,
		VisibleFields: visibleFields,
		TotalCount:    total,
		Page:          page,
		PageSize:      pageSize,
	}

	o.publishCompletion(ctx, id, descriptor, len(records), len(masked))

	logger.Info("Report pipeline completed",
		zap.String("role", id.Role.String()),
		zap.String("reportType", string(descriptor.ReportType)),
		zap.String("scope", descriptor.EffectiveScope),
		zap.Int("rawCount", len(records)),
		zap.Int("maskedCount", len(masked)),
		zap.Int64("totalCount", total))

	return result, nil
}

// publishCompletion emits counts and identifiers only, never field values.
func (o *Orchestrator) publishCompletion(ctx context.Context, id identity.Identity, q model.QueryDescriptor, rawCount, maskedCount int) {
	if o.events == nil {
		return
	}
	o.events.Publish(ctx, CompletedEvent, map[string]interface{}{
		"role":        id.Role.String(),
		"reportType":  string(q.ReportType),
		"county":      q.EffectiveScope,
		"principalId": id.PrincipalID,
		"rawCount":    rawCount,
		"maskedCount": maskedCount,
	})
}

func fail(stage string, err error) error {
	var pe *cmips_errors.PipelineError
	if errors.As(err, &pe) {
		return err
	}
	return cmips_errors.NewPipelineError(stage, cmips_errors.KindOf(err), err.Error(), err)
}

func normalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
