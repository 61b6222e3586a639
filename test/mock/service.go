// test/mock/service.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/model"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/service"
)

// MockReportService is a mock implementation of service.IReportService
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) ExecuteReport(ctx context.Context, req model.ReportRequest) (*model.ReportResult, error) {
	args := m.Called(ctx, req)
	var result *model.ReportResult
	if args.Get(0) != nil {
		result = args.Get(0).(*model.ReportResult)
	}
	return result, args.Error(1)
}

// MockRuleService is a mock implementation of service.IRuleService
type MockRuleService struct {
	mock.Mock
}

func (m *MockRuleService) UpdateRules(ctx context.Context, role model.Role, reportType model.ReportType, update service.RuleUpdate, actorID string) error {
	args := m.Called(ctx, role, reportType, update, actorID)
	return args.Error(0)
}

func (m *MockRuleService) BulkUpdateRules(ctx context.Context, role model.Role, updates map[model.ReportType]service.RuleUpdate, actorID string) error {
	args := m.Called(ctx, role, updates, actorID)
	return args.Error(0)
}

func (m *MockRuleService) GetRules(role model.Role, reportType model.ReportType) *model.MaskingRuleSet {
	args := m.Called(role, reportType)
	return args.Get(0).(*model.MaskingRuleSet)
}

func (m *MockRuleService) GetSelectedFields(role model.Role) []string {
	args := m.Called(role)
	return args.Get(0).([]string)
}
