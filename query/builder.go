// query/builder.go
package query

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/audit"
	cmips_errors "github.com/clarita-9850/CMIPS-APPLICATION-sub003/errors"
	logger "github.com/clarita-9850/CMIPS-APPLICATION-sub003/logging"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/model"
)

// DateLayout is the accepted wire format for report date filters.
const DateLayout = "2006-01-02"

// Input carries the client-supplied query parameters alongside the
// token-derived values. Client values never override token values for
// scope-bound roles.
type Input struct {
	TokenScope     string
	PrincipalID    string
	ReportType     string
	RequestedScope string
	FromDate       string
	ToDate         string
	Filters        map[string]string
}

// Builder combines the resolved identity scope, the access pattern and
// client filters into one immutable QueryDescriptor. It performs no I/O
// beyond logging and recording policy events through the audit service.
type Builder struct {
	auditSvc audit.Service
}

func NewBuilder(auditSvc audit.Service) *Builder {
	return &Builder{auditSvc: auditSvc}
}

// Build enforces the anti-escalation invariant:
//
//  1. Scope-bound roles always query with the token scope. A differing
//     requested scope is recorded as a possible escalation attempt but does
//     not change behavior.
//  2. A scope-bound role without a token scope fails with SCOPE_REQUIRED.
//     There is no fallback to unscoped data.
//  3. Scope-exempt roles may narrow results with a requested scope.
func (b *Builder) Build(ctx context.Context, pattern model.AccessPattern, in Input) (model.QueryDescriptor, error) {
	var effectiveScope string

	if pattern.ScopeRequired {
		if in.TokenScope == "" {
			logger.Warn("Scope-bound role has no token scope",
				zap.String("role", pattern.Role.String()),
				zap.String("principalID", in.PrincipalID))
			return model.QueryDescriptor{}, cmips_errors.ErrScopeRequired
		}
		effectiveScope = in.TokenScope

		if in.RequestedScope != "" && in.RequestedScope != in.TokenScope {
			b.recordEscalationAttempt(ctx, pattern.Role, in)
		}
	} else if in.RequestedScope != "" {
		effectiveScope = in.RequestedScope
	}

	reportType, err := b.resolveReportType(pattern, in.ReportType)
	if err != nil {
		return model.QueryDescriptor{}, err
	}

	dateRange, err := parseDateRange(in.FromDate, in.ToDate)
	if err != nil {
		return model.QueryDescriptor{}, err
	}

	filters := make(map[string]string, len(in.Filters))
	for k, v := range in.Filters {
		if k == "" || v == "" {
			return model.QueryDescriptor{}, fmt.Errorf("%w: empty filter key or value", cmips_errors.ErrInvalidFilter)
		}
		filters[k] = v
	}

	return model.QueryDescriptor{
		Role:           pattern.Role,
		EffectiveScope: effectiveScope,
		ReportType:     reportType,
		DateRange:      dateRange,
		Filters:        filters,
	}, nil
}

func (b *Builder) resolveReportType(pattern model.AccessPattern, raw string) (model.ReportType, error) {
	if raw == "" {
		if len(pattern.DefaultReportTypes) == 0 {
			return "", fmt.Errorf("%w: no report type available for role %s", cmips_errors.ErrInvalidFilter, pattern.Role)
		}
		return pattern.DefaultReportTypes[0], nil
	}

	reportType, ok := model.ParseReportType(raw)
	if !ok {
		return "", fmt.Errorf("%w: unknown report type %q", cmips_errors.ErrInvalidFilter, raw)
	}

	allowed := false
	for _, t := range pattern.DefaultReportTypes {
		if t == reportType {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", fmt.Errorf("%w: report type %s not available for role %s", cmips_errors.ErrInvalidFilter, reportType, pattern.Role)
	}

	return reportType, nil
}

// recordEscalationAttempt logs a mismatching requested scope as a non-fatal
// policy event. The token scope still wins.
func (b *Builder) recordEscalationAttempt(ctx context.Context, role model.Role, in Input) {
	logger.Warn("Requested scope differs from token scope, token scope wins",
		zap.String("role", role.String()),
		zap.String("principalID", in.PrincipalID),
		zap.String("tokenScope", in.TokenScope),
		zap.String("requestedScope", in.RequestedScope))

	if b.auditSvc == nil {
		return
	}
	event := audit.PolicyEvent{
		Timestamp:   time.Now(),
		EventType:   audit.EventScopeEscalationAttempt,
		PrincipalID: in.PrincipalID,
		Role:        role.String(),
		County:      in.TokenScope,
		Granted:     false,
	}
	if err := b.auditSvc.LogEvent(ctx, event); err != nil {
		logger.Error("Failed to record scope escalation event", zap.Error(err),
			zap.String("principalID", in.PrincipalID))
	}
}

func parseDateRange(from, to string) (model.DateRange, error) {
	var dr model.DateRange

	if from != "" {
		t, err := time.Parse(DateLayout, from)
		if err != nil {
			return dr, fmt.Errorf("%w: bad from_date %q", cmips_errors.ErrInvalidFilter, from)
		}
		dr.From = t
	}
	if to != "" {
		t, err := time.Parse(DateLayout, to)
		if err != nil {
			return dr, fmt.Errorf("%w: bad to_date %q", cmips_errors.ErrInvalidFilter, to)
		}
		dr.To = t
	}
	if !dr.From.IsZero() && !dr.To.IsZero() && dr.To.Before(dr.From) {
		return dr, fmt.Errorf("%w: to_date before from_date", cmips_errors.ErrInvalidFilter)
	}

	return dr, nil
}
