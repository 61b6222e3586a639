// dao/report_store_dao.go
package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	logger "github.com/clarita-9850/CMIPS-APPLICATION-sub003/logging"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/model"
)

// scopeField is the document field carrying the county partition. Every
// report index is partitioned on it.
const scopeField = "countyCode"

// dateField is the document field the date-range filter applies to.
const dateField = "serviceDate"

// ReportStore is the Elasticsearch-backed record store behind the data
// fetcher. One index per report type, named <prefix>-<report type>.
type ReportStore struct {
	esClient    *elasticsearch.Client
	indexPrefix string
}

func NewReportStore(esURL, indexPrefix string) (*ReportStore, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{esURL},
	}
	esClient, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &ReportStore{esClient: esClient, indexPrefix: indexPrefix}, nil
}

func (s *ReportStore) indexFor(reportType model.ReportType) string {
	return fmt.Sprintf("%s-%s", s.indexPrefix, strings.ToLower(string(reportType)))
}

// Query executes a query descriptor with page/limit semantics and returns
// the raw records plus the total hit count.
func (s *ReportStore) Query(ctx context.Context, q model.QueryDescriptor, page, pageSize int) ([]model.RawRecord, int64, error) {
	filters := make([]interface{}, 0, len(q.Filters)+2)

	if q.Scoped() {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{
				scopeField: q.EffectiveScope,
			},
		})
	}

	if !q.DateRange.IsZero() {
		dateBounds := map[string]interface{}{}
		if !q.DateRange.From.IsZero() {
			dateBounds["gte"] = q.DateRange.From.Format("2006-01-02")
		}
		if !q.DateRange.To.IsZero() {
			dateBounds["lte"] = q.DateRange.To.Format("2006-01-02")
		}
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{
				dateField: dateBounds,
			},
		})
	}

	for field, value := range q.Filters {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{
				field: value,
			},
		})
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": filters,
			},
		},
		"from":             (page - 1) * pageSize,
		"size":             pageSize,
		"track_total_hits": true,
	}

	var buf strings.Builder
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, 0, fmt.Errorf("failed to encode query: %w", err)
	}

	res, err := s.esClient.Search(
		s.esClient.Search.WithContext(ctx),
		s.esClient.Search.WithIndex(s.indexFor(q.ReportType)),
		s.esClient.Search.WithBody(strings.NewReader(buf.String())),
	)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, fmt.Errorf("error searching documents: %s", res.String())
	}

	var rmap map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&rmap); err != nil {
		return nil, 0, err
	}

	hitsWrapper, ok := rmap["hits"].(map[string]interface{})
	if !ok {
		return nil, 0, fmt.Errorf("malformed search response")
	}

	var total int64
	if t, ok := hitsWrapper["total"].(map[string]interface{}); ok {
		if v, ok := t["value"].(float64); ok {
			total = int64(v)
		}
	}

	hits, _ := hitsWrapper["hits"].([]interface{})
	records := make([]model.RawRecord, 0, len(hits))
	for _, hit := range hits {
		h, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		source, ok := h["_source"].(map[string]interface{})
		if !ok {
			continue
		}
		records = append(records, model.RawRecord(source))
	}

	logger.Debug("Report store query executed",
		zap.String("index", s.indexFor(q.ReportType)),
		zap.String("scope", q.EffectiveScope),
		zap.Int("hits", len(records)),
		zap.Int64("total", total))

	return records, total, nil
}
