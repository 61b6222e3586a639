// service/rule_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/audit"
	cmips_errors "github.com/clarita-9850/CMIPS-APPLICATION-sub003/errors"
	logger "github.com/clarita-9850/CMIPS-APPLICATION-sub003/logging"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/model"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/rules"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/util"
)

const ruleUpdateLockTTL = 30 * time.Second

// RuleUpdate is one report type's replacement rule set.
type RuleUpdate struct {
	Rules          []model.MaskingRule `json:"rules"`
	SelectedFields []string            `json:"selected_fields"`
}

// IRuleService is the administrative rule-management surface. It is a
// privileged path, authorized separately from the report pipeline.
type IRuleService interface {
	UpdateRules(ctx context.Context, role model.Role, reportType model.ReportType, update RuleUpdate, actorID string) error
	BulkUpdateRules(ctx context.Context, role model.Role, updates map[model.ReportType]RuleUpdate, actorID string) error
	GetRules(role model.Role, reportType model.ReportType) *model.MaskingRuleSet
	GetSelectedFields(role model.Role) []string
}

// ResourceLocker serializes administrative updates across instances.
// Implemented by db.RedisLocker; nil disables cross-instance locking.
type ResourceLocker interface {
	Lock(ctx context.Context, name string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, name string) error
}

// RuleService handles business logic for masking rule administration.
type RuleService struct {
	store          *rules.Store
	validationUtil *util.ValidationUtil
	locker         ResourceLocker
	auditSvc       audit.Service
	eventBus       *util.EventBus
}

func NewRuleService(
	store *rules.Store,
	validationUtil *util.ValidationUtil,
	locker ResourceLocker,
	auditSvc audit.Service,
	eventBus *util.EventBus,
) *RuleService {
	return &RuleService{
		store:          store,
		validationUtil: validationUtil,
		locker:         locker,
		auditSvc:       auditSvc,
		eventBus:       eventBus,
	}
}

// UpdateRules atomically replaces the active rule set for one
// (role, reportType) pair. In-flight readers keep their snapshot.
func (s *RuleService) UpdateRules(ctx context.Context, role model.Role, reportType model.ReportType, update RuleUpdate, actorID string) error {
	if err := s.validationUtil.ValidateRuleUpdate(role, reportType, update.Rules); err != nil {
		return fmt.Errorf("%w: %v", cmips_errors.ErrInvalidRules, err)
	}

	lockName := fmt.Sprintf("maskrules:%s:%s", role, reportType)
	if s.locker != nil {
		locked, err := s.locker.Lock(ctx, lockName, ruleUpdateLockTTL)
		if err != nil {
			logger.Error("Rule update lock acquisition failed", zap.Error(err), zap.String("lock", lockName))
			return fmt.Errorf("failed to acquire rule update lock: %w", err)
		}
		if !locked {
			return cmips_errors.ErrRuleStoreConflict
		}
		defer func() {
			if err := s.locker.Unlock(ctx, lockName); err != nil {
				logger.Warn("Failed to release rule update lock", zap.Error(err), zap.String("lock", lockName))
			}
		}()
	}

	if err := s.store.UpdateRules(ctx, role, reportType, update.Rules, update.SelectedFields); err != nil {
		return err
	}

	if s.auditSvc != nil {
		event := audit.PolicyEvent{
			EventType:   audit.EventRuleSetUpdated,
			PrincipalID: actorID,
			Role:        role.String(),
			ReportType:  string(reportType),
			Granted:     true,
		}
		if err := s.auditSvc.LogEvent(ctx, event); err != nil {
			logger.Warn("Failed to record rule update event", zap.Error(err),
				zap.String("role", role.String()))
		}
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, "rules.updated", map[string]interface{}{
			"role":       role.String(),
			"reportType": string(reportType),
			"ruleCount":  len(update.Rules),
			"actorId":    actorID,
		})
	}

	logger.Info("Rule set updated", zap.String("role", role.String()),
		zap.String("reportType", string(reportType)), zap.String("actorID", actorID))
	return nil
}

// BulkUpdateRules replaces rule sets for multiple report types in parallel.
func (s *RuleService) BulkUpdateRules(ctx context.Context, role model.Role, updates map[model.ReportType]RuleUpdate, actorID string) error {
	if len(updates) == 0 {
		return fmt.Errorf("%w: no updates supplied", cmips_errors.ErrInvalidRules)
	}

	g, ctx := errgroup.WithContext(ctx)

	// Limit concurrency to avoid overwhelming the system
	semaphore := make(chan struct{}, 4)

	for reportType, update := range updates {
		reportType, update := reportType, update
		g.Go(func() error {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			return s.UpdateRules(ctx, role, reportType, update, actorID)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Error in bulk rule update", zap.Error(err), zap.String("role", role.String()))
		return fmt.Errorf("failed to bulk update rules: %w", err)
	}

	logger.Info("Bulk rule update completed",
		zap.String("role", role.String()),
		zap.Int("reportTypes", len(updates)),
		zap.String("actorID", actorID))
	return nil
}

func (s *RuleService) GetRules(role model.Role, reportType model.ReportType) *model.MaskingRuleSet {
	return s.store.GetRules(role, reportType)
}

func (s *RuleService) GetSelectedFields(role model.Role) []string {
	return s.store.GetSelectedFields(role)
}
