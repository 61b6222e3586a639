// model/report.go
package model

import "strings"

// ReportType is the closed set of report categories the pipeline serves.
type ReportType string

const (
	ReportCaseSummary       ReportType = "CASE_SUMMARY"
	ReportTimesheetDetail   ReportType = "TIMESHEET_DETAIL"
	ReportProviderRoster    ReportType = "PROVIDER_ROSTER"
	ReportRecipientServices ReportType = "RECIPIENT_SERVICES"
)

func (t ReportType) Valid() bool {
	switch t {
	case ReportCaseSummary, ReportTimesheetDetail, ReportProviderRoster, ReportRecipientServices:
		return true
	}
	return false
}

// ParseReportType normalizes a client-supplied report type value.
func ParseReportType(raw string) (ReportType, bool) {
	t := ReportType(strings.ToUpper(strings.TrimSpace(raw)))
	return t, t.Valid()
}

// AccessPattern describes, per role, whether a county scope is mandatory and
// which report types the role may request by default. Created fresh per
// resolution call; never persisted.
type AccessPattern struct {
	Role               Role         `json:"role"`
	ScopeRequired      bool         `json:"scope_required"`
	DefaultReportTypes []ReportType `json:"default_report_types"`
}

// ReportRequest is the transport-level input to the pipeline: the verified
// claims bag plus client-supplied query parameters. Client-supplied values
// are advisory only; the token always wins for scope-bound roles.
type ReportRequest struct {
	Claims         map[string]interface{} `json:"-"`
	ReportType     string                 `json:"report_type"`
	RequestedScope string                 `json:"requested_scope,omitempty"`
	FromDate       string                 `json:"from_date,omitempty"`
	ToDate         string                 `json:"to_date,omitempty"`
	Filters        map[string]string      `json:"filters,omitempty"`
	Page           int                    `json:"page"`
	PageSize       int                    `json:"page_size"`
}

// ReportResult is the assembled success outcome of one pipeline run.
type ReportResult struct {
	Records       []MaskedRecord `json:"records"`
	VisibleFields []string       `json:"visible_fields"`
	TotalCount    int64          `json:"total_count"`
	Page          int            `json:"page"`
	PageSize      int            `json:"page_size"`
}
