// rules/store.go
package rules

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	cmips_errors "github.com/clarita-9850/CMIPS-APPLICATION-sub003/errors"
	logger "github.com/clarita-9850/CMIPS-APPLICATION-sub003/logging"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/model"
)

// Persistence is the optional durable backing for rule snapshots. The
// in-memory snapshot stays authoritative on the read path; persistence only
// survives restarts. Implemented by db.RuleSnapshotStore over Redis.
type Persistence interface {
	SaveRuleSet(ctx context.Context, set *model.MaskingRuleSet) error
	LoadRuleSets(ctx context.Context) ([]*model.MaskingRuleSet, error)
}

// snapshot is one immutable view of every installed rule set. Readers load
// the current snapshot atomically; updates install a fresh snapshot, so a
// reader observes either the old or the new rule set in its entirety.
type snapshot struct {
	ruleSets map[string]*model.MaskingRuleSet
	selected map[model.Role][]string
}

func emptySnapshot() *snapshot {
	return &snapshot{
		ruleSets: make(map[string]*model.MaskingRuleSet),
		selected: make(map[model.Role][]string),
	}
}

// Store holds masking rules per (role, reportType). Reads are lock-free;
// updates are serialized and atomic from the caller's point of view.
type Store struct {
	snap    atomic.Pointer[snapshot]
	writeMu sync.Mutex
	persist Persistence
}

// NewStore creates an empty rule store. persist may be nil for tests.
func NewStore(persist Persistence) *Store {
	s := &Store{persist: persist}
	s.snap.Store(emptySnapshot())
	return s
}

func ruleSetKey(role model.Role, reportType model.ReportType) string {
	return string(role) + "|" + string(reportType)
}

// Load seeds the in-memory snapshot from the persistence layer. Called once
// at startup, before the store serves reads.
func (s *Store) Load(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	sets, err := s.persist.LoadRuleSets(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rule snapshots: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := emptySnapshot()
	for _, set := range sets {
		next.ruleSets[ruleSetKey(set.Role, set.ReportType)] = set
		next.selected[set.Role] = set.SelectedFields
	}
	s.snap.Store(next)

	logger.Info("Masking rule snapshots loaded", zap.Int("ruleSets", len(sets)))
	return nil
}

// GetRules returns the active rule set for a (role, reportType) pair. An
// unconfigured pair yields an empty set, which the masking engine interprets
// fail-closed.
func (s *Store) GetRules(role model.Role, reportType model.ReportType) *model.MaskingRuleSet {
	snap := s.snap.Load()
	if set, ok := snap.ruleSets[ruleSetKey(role, reportType)]; ok {
		return set
	}
	return &model.MaskingRuleSet{
		Role:       role,
		ReportType: reportType,
	}
}

// GetSelectedFields returns the administrator-selected default-visible
// fields for a role across report types.
func (s *Store) GetSelectedFields(role model.Role) []string {
	snap := s.snap.Load()
	fields := snap.selected[role]
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

// UpdateRules replaces the active rule set for (role, reportType)
// atomically. Concurrent readers keep whichever snapshot they already hold.
func (s *Store) UpdateRules(ctx context.Context, role model.Role, reportType model.ReportType, newRules []model.MaskingRule, selectedFields []string) error {
	if err := validateRules(role, reportType, newRules); err != nil {
		return err
	}

	byField := make(map[string]model.MaskingRule, len(newRules))
	for _, rule := range newRules {
		if rule.ID == "" {
			rule.ID = uuid.New().String()
		}
		rule.Role = role
		rule.ReportType = reportType
		// Last write wins per field.
		byField[rule.FieldName] = rule
	}

	set := &model.MaskingRuleSet{
		Role:           role,
		ReportType:     reportType,
		Rules:          byField,
		SelectedFields: append([]string(nil), selectedFields...),
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.snap.Load()
	next := &snapshot{
		ruleSets: make(map[string]*model.MaskingRuleSet, len(current.ruleSets)+1),
		selected: make(map[model.Role][]string, len(current.selected)+1),
	}
	for k, v := range current.ruleSets {
		next.ruleSets[k] = v
	}
	for k, v := range current.selected {
		next.selected[k] = v
	}
	next.ruleSets[ruleSetKey(role, reportType)] = set
	next.selected[role] = set.SelectedFields
	s.snap.Store(next)

	if s.persist != nil {
		if err := s.persist.SaveRuleSet(ctx, set); err != nil {
			// The installed snapshot stays live; persistence catches up on
			// the next successful update.
			logger.Error("Failed to persist rule snapshot", zap.Error(err),
				zap.String("role", role.String()),
				zap.String("reportType", string(reportType)))
		}
	}

	logger.Info("Masking rule set updated",
		zap.String("role", role.String()),
		zap.String("reportType", string(reportType)),
		zap.Int("rules", len(byField)),
		zap.Int("selectedFields", len(selectedFields)))
	return nil
}

func validateRules(role model.Role, reportType model.ReportType, newRules []model.MaskingRule) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", cmips_errors.ErrInvalidRules, role)
	}
	if !reportType.Valid() {
		return fmt.Errorf("%w: unknown report type %q", cmips_errors.ErrInvalidRules, reportType)
	}
	if len(newRules) == 0 {
		return fmt.Errorf("%w: empty rule list", cmips_errors.ErrInvalidRules)
	}
	for _, rule := range newRules {
		if rule.FieldName == "" {
			return fmt.Errorf("%w: rule with empty field name", cmips_errors.ErrInvalidRules)
		}
		if !rule.MaskingType.Valid() {
			return fmt.Errorf("%w: unknown masking type %q for field %s", cmips_errors.ErrInvalidRules, rule.MaskingType, rule.FieldName)
		}
	}
	return nil
}
