// fetch/fetcher.go
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	cmips_errors "github.com/clarita-9850/CMIPS-APPLICATION-sub003/errors"
	logger "github.com/clarita-9850/CMIPS-APPLICATION-sub003/logging"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/model"
)

// RecordStore is the external storage collaborator. Retries are its
// responsibility, not this component's. Implemented in production by
// dao.ReportStore over Elasticsearch.
type RecordStore interface {
	Query(ctx context.Context, q model.QueryDescriptor, page, pageSize int) ([]model.RawRecord, int64, error)
}

// Fetcher is thin orchestration over the record store: it bounds the call
// with a timeout and normalizes failures to FETCH_FAILED. A timeout is a
// fetch failure, never a silent retry.
type Fetcher struct {
	store   RecordStore
	timeout time.Duration
}

func NewFetcher(store RecordStore, timeout time.Duration) *Fetcher {
	return &Fetcher{store: store, timeout: timeout}
}

// Fetch executes the query descriptor with page/limit semantics and returns
// the raw result set plus the total count for pagination.
func (f *Fetcher) Fetch(ctx context.Context, q model.QueryDescriptor, page, pageSize int) ([]model.RawRecord, int64, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	records, total, err := f.store.Query(ctx, q, page, pageSize)
	if err != nil {
		logger.Error("Record store query failed",
			zap.Error(err),
			zap.String("reportType", string(q.ReportType)),
			zap.String("scope", q.EffectiveScope),
			zap.Bool("timeout", errors.Is(err, context.DeadlineExceeded)))
		return nil, 0, fmt.Errorf("%w: %v", cmips_errors.ErrFetchFailed, err)
	}

	return records, total, nil
}
