// fetch/fetcher_test.go
package fetch_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	testify_mock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cmips_errors "github.com/clarita-9850/CMIPS-APPLICATION-sub003/errors"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/fetch"
	logger "github.com/clarita-9850/CMIPS-APPLICATION-sub003/logging"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/model"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/test/mock"
)

func TestMain(m *testing.M) {
	dir, _ := os.MkdirTemp("", "logs")
	logger.InitLogger(dir)
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func TestFetch(t *testing.T) {
	descriptor := model.QueryDescriptor{
		Role:           model.RoleCaseWorker,
		EffectiveScope: "19",
		ReportType:     model.ReportCaseSummary,
	}

	t.Run("Success_PassesThroughRecordsAndTotal", func(t *testing.T) {
		store := new(mock.MockRecordStore)
		store.On("Query", testify_mock.Anything, descriptor, 1, 50).
			Return([]model.RawRecord{{"caseNumber": "C-1"}}, int64(120), nil)

		fetcher := fetch.NewFetcher(store, time.Second)
		records, total, err := fetcher.Fetch(context.Background(), descriptor, 1, 50)
		require.NoError(t, err)
		assert.Len(t, records, 1)
		assert.Equal(t, int64(120), total)
	})

	t.Run("StoreError_WrappedAsFetchFailed", func(t *testing.T) {
		store := new(mock.MockRecordStore)
		store.On("Query", testify_mock.Anything, descriptor, 1, 50).
			Return(nil, int64(0), fmt.Errorf("connection refused"))

		fetcher := fetch.NewFetcher(store, time.Second)
		_, _, err := fetcher.Fetch(context.Background(), descriptor, 1, 50)
		assert.ErrorIs(t, err, cmips_errors.ErrFetchFailed)
	})

	t.Run("Timeout_WrappedAsFetchFailed", func(t *testing.T) {
		store := new(mock.MockRecordStore)
		store.On("Query", testify_mock.Anything, descriptor, 1, 50).
			Return(nil, int64(0), context.DeadlineExceeded)

		fetcher := fetch.NewFetcher(store, time.Millisecond)
		_, _, err := fetcher.Fetch(context.Background(), descriptor, 1, 50)
		assert.ErrorIs(t, err, cmips_errors.ErrFetchFailed)
		assert.NotErrorIs(t, err, cmips_errors.ErrScopeRequired)
	})

	t.Run("DeadlineAppliedToStoreContext", func(t *testing.T) {
		store := new(mock.MockRecordStore)
		store.On("Query", testify_mock.Anything, descriptor, 1, 50).
			Run(func(args testify_mock.Arguments) {
				ctx := args.Get(0).(context.Context)
				_, ok := ctx.Deadline()
				assert.True(t, ok, "store must see a bounded context")
			}).
			Return([]model.RawRecord{}, int64(0), nil)

		fetcher := fetch.NewFetcher(store, 5*time.Second)
		_, _, err := fetcher.Fetch(context.Background(), descriptor, 1, 50)
		require.NoError(t, err)
	})
}
