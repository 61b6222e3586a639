// service/report_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/access"
	cmips_errors "github.com/clarita-9850/CMIPS-APPLICATION-sub003/errors"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/identity"
	logger "github.com/clarita-9850/CMIPS-APPLICATION-sub003/logging"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/model"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/pipeline"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/util"
)

// IReportService is the transport-facing surface for report queries.
type IReportService interface {
	ExecuteReport(ctx context.Context, req model.ReportRequest) (*model.ReportResult, error)
}

// CountyDirectory is the county registry lookup the service consults when a
// scope-exempt caller narrows a query to a specific county. Implemented by
// dao.CountyDAO.
type CountyDirectory interface {
	GetCounty(ctx context.Context, code string) (*model.County, error)
}

// ReportService validates transport input, vets cross-county narrowing
// against the county directory and hands the request to the pipeline
// orchestrator.
type ReportService struct {
	orchestrator   *pipeline.Orchestrator
	resolver       *identity.Resolver
	counties       CountyDirectory
	validationUtil *util.ValidationUtil
}

func NewReportService(
	orchestrator *pipeline.Orchestrator,
	resolver *identity.Resolver,
	counties CountyDirectory,
	validationUtil *util.ValidationUtil,
) *ReportService {
	return &ReportService{
		orchestrator:   orchestrator,
		resolver:       resolver,
		counties:       counties,
		validationUtil: validationUtil,
	}
}

func (s *ReportService) ExecuteReport(ctx context.Context, req model.ReportRequest) (*model.ReportResult, error) {
	if err := s.validationUtil.ValidateReportRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", cmips_errors.ErrInvalidFilter, err)
	}

	if err := s.vetRequestedScope(ctx, req); err != nil {
		return nil, err
	}

	return s.orchestrator.Execute(ctx, req)
}

// vetRequestedScope rejects unknown or inactive counties when the requested
// scope would actually narrow the query, which is only the case for
// scope-exempt roles. Scope-bound roles always query with their token scope,
// so their requested scope is never looked up here.
func (s *ReportService) vetRequestedScope(ctx context.Context, req model.ReportRequest) error {
	if req.RequestedScope == "" || s.counties == nil {
		return nil
	}

	id, err := s.resolver.Resolve(req.Claims)
	if err != nil {
		// The orchestrator surfaces identity failures with the right stage.
		return nil
	}
	if access.Resolve(id.Role).ScopeRequired {
		return nil
	}

	county, err := s.counties.GetCounty(ctx, req.RequestedScope)
	if err != nil {
		if errors.Is(err, cmips_errors.ErrCountyNotFound) {
			return fmt.Errorf("%w: unknown county %q", cmips_errors.ErrInvalidFilter, req.RequestedScope)
		}
		logger.Error("County directory lookup failed", zap.Error(err),
			zap.String("county", req.RequestedScope))
		return fmt.Errorf("%w: county directory unavailable", cmips_errors.ErrFetchFailed)
	}
	if !county.Active {
		return fmt.Errorf("%w: county %q is inactive", cmips_errors.ErrInvalidFilter, req.RequestedScope)
	}

	return nil
}
