// test/mock/pipeline.go
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/model"
)

// MockRecordStore is a mock implementation of fetch.RecordStore
type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) Query(ctx context.Context, q model.QueryDescriptor, page, pageSize int) ([]model.RawRecord, int64, error) {
	args := m.Called(ctx, q, page, pageSize)
	var records []model.RawRecord
	if args.Get(0) != nil {
		records = args.Get(0).([]model.RawRecord)
	}
	return records, args.Get(1).(int64), args.Error(2)
}

// MockRulePersistence is a mock implementation of rules.Persistence
type MockRulePersistence struct {
	mock.Mock
}

func (m *MockRulePersistence) SaveRuleSet(ctx context.Context, set *model.MaskingRuleSet) error {
	args := m.Called(ctx, set)
	return args.Error(0)
}

func (m *MockRulePersistence) LoadRuleSets(ctx context.Context) ([]*model.MaskingRuleSet, error) {
	args := m.Called(ctx)
	var sets []*model.MaskingRuleSet
	if args.Get(0) != nil {
		sets = args.Get(0).([]*model.MaskingRuleSet)
	}
	return sets, args.Error(1)
}

// MockResourceLocker is a mock implementation of service.ResourceLocker
type MockResourceLocker struct {
	mock.Mock
}

func (m *MockResourceLocker) Lock(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, name, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockResourceLocker) Unlock(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// MockCountyDirectory is a mock implementation of service.CountyDirectory
type MockCountyDirectory struct {
	mock.Mock
}

func (m *MockCountyDirectory) GetCounty(ctx context.Context, code string) (*model.County, error) {
	args := m.Called(ctx, code)
	var county *model.County
	if args.Get(0) != nil {
		county = args.Get(0).(*model.County)
	}
	return county, args.Error(1)
}

// RecordingEventSink captures published pipeline events for assertions.
// Publishes are synchronous in tests, unlike the production event bus.
type RecordingEventSink struct {
	mu     sync.Mutex
	events []RecordedEvent
}

type RecordedEvent struct {
	EventType  string
	Attributes map[string]interface{}
}

func (s *RecordingEventSink) Publish(ctx context.Context, eventType string, attributes map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, RecordedEvent{EventType: eventType, Attributes: attributes})
}

func (s *RecordingEventSink) Events() []RecordedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedEvent, len(s.events))
	copy(out, s.events)
	return out
}
