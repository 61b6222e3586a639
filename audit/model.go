// audit/model.go
package audit

import (
	"encoding/json"
	"time"
)

// EventType values recorded by the pipeline.
const (
	EventScopeEscalationAttempt = "SCOPE_ESCALATION_ATTEMPT"
	EventReportAccessCompleted  = "REPORT_ACCESS_COMPLETED"
	EventRuleSetUpdated         = "RULE_SET_UPDATED"
)

// PolicyEvent is one policy-relevant occurrence. It carries counts and
// identifiers only, never field values.
type PolicyEvent struct {
	Timestamp   time.Time       `json:"timestamp"`
	EventType   string          `json:"event_type"`
	PrincipalID string          `json:"principal_id"`
	Role        string          `json:"role"`
	ReportType  string          `json:"report_type,omitempty"`
	County      string          `json:"county,omitempty"`
	Granted     bool            `json:"granted"`
	Details     json.RawMessage `json:"details,omitempty"`
}
