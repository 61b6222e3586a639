// model/query.go
package model

import "time"

// DateRange bounds a report query. Zero values mean unbounded on that side.
type DateRange struct {
	From time.Time `json:"from,omitempty"`
	To   time.Time `json:"to,omitempty"`
}

func (d DateRange) IsZero() bool {
	return d.From.IsZero() && d.To.IsZero()
}

// QueryDescriptor is the single query the data fetcher executes. It is
// created once per request by the scoped query builder and consumed once.
// EffectiveScope is computed from the token, never copied verbatim from
// client input when the role is scope-bound.
type QueryDescriptor struct {
	Role           Role              `json:"role"`
	EffectiveScope string            `json:"effective_scope,omitempty"`
	ReportType     ReportType        `json:"report_type"`
	DateRange      DateRange         `json:"date_range"`
	Filters        map[string]string `json:"filters,omitempty"`
}

// Scoped reports whether the descriptor restricts results to one county.
func (q QueryDescriptor) Scoped() bool {
	return q.EffectiveScope != ""
}
