// util/notification_service.go

package util

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/audit"
	logger "github.com/clarita-9850/CMIPS-APPLICATION-sub003/logging"
)

// NotificationService fans pipeline events out to the audit trail and, in a
// fuller deployment, downstream county systems. Handler failures surface on
// the event bus error channel only; they never reach the pipeline.
type NotificationService struct {
	auditSvc audit.Service
}

func NewNotificationService(auditSvc audit.Service) *NotificationService {
	return &NotificationService{auditSvc: auditSvc}
}

// HandleReportCompleted is subscribed to the pipeline completion event and
// indexes a policy event carrying counts and identifiers only.
func (n *NotificationService) HandleReportCompleted(ctx context.Context, event Event) error {
	details, err := json.Marshal(map[string]interface{}{
		"rawCount":    event.Attributes["rawCount"],
		"maskedCount": event.Attributes["maskedCount"],
	})
	if err != nil {
		return fmt.Errorf("failed to encode event details: %w", err)
	}

	policyEvent := audit.PolicyEvent{
		EventType:   audit.EventReportAccessCompleted,
		PrincipalID: stringAttr(event.Attributes, "principalId"),
		Role:        stringAttr(event.Attributes, "role"),
		ReportType:  stringAttr(event.Attributes, "reportType"),
		County:      stringAttr(event.Attributes, "county"),
		Granted:     true,
		Details:     details,
	}

	if err := n.auditSvc.LogEvent(ctx, policyEvent); err != nil {
		return fmt.Errorf("failed to index completion event: %w", err)
	}

	logger.Debug("Report completion event recorded",
		zap.String("role", policyEvent.Role),
		zap.String("reportType", policyEvent.ReportType))
	return nil
}

// HandleRulesUpdated logs administrative rule changes for operators.
func (n *NotificationService) HandleRulesUpdated(ctx context.Context, event Event) error {
	logger.Info("NOTIFICATION: Masking rules updated",
		zap.String("role", stringAttr(event.Attributes, "role")),
		zap.String("reportType", stringAttr(event.Attributes, "reportType")),
		zap.Any("ruleCount", event.Attributes["ruleCount"]),
		zap.String("actorId", stringAttr(event.Attributes, "actorId")))
	return nil
}

func stringAttr(attrs map[string]interface{}, key string) string {
	if v, ok := attrs[key].(string); ok {
		return v
	}
	return ""
}
