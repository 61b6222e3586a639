// test/mock/audit.go
package mock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/audit"
)

// MockAuditService is a mock implementation of audit.Service
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) LogEvent(ctx context.Context, event audit.PolicyEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockAuditService) QueryEvents(ctx context.Context, from, to time.Time, principalID, eventType string) ([]audit.PolicyEvent, error) {
	args := m.Called(ctx, from, to, principalID, eventType)
	return args.Get(0).([]audit.PolicyEvent), args.Error(1)
}
