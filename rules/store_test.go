// rules/store_test.go
package rules_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	testify_mock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cmips_errors "github.com/clarita-9850/CMIPS-APPLICATION-sub003/errors"
	logger "github.com/clarita-9850/CMIPS-APPLICATION-sub003/logging"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/model"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/rules"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/test/mock"
)

func TestMain(m *testing.M) {
	dir, _ := os.MkdirTemp("", "logs")
	logger.InitLogger(dir)
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func TestStore_ReadsAndUpdates(t *testing.T) {
	ctx := context.Background()

	t.Run("UnconfiguredPair_EmptySet", func(t *testing.T) {
		store := rules.NewStore(nil)
		set := store.GetRules(model.RoleProvider, model.ReportTimesheetDetail)
		require.NotNil(t, set)
		assert.True(t, set.Empty())
		assert.Equal(t, model.RoleProvider, set.Role)
	})

	t.Run("UpdateThenRead", func(t *testing.T) {
		store := rules.NewStore(nil)
		err := store.UpdateRules(ctx, model.RoleCaseWorker, model.ReportCaseSummary,
			[]model.MaskingRule{
				{FieldName: "ssn", MaskingType: model.MaskPartial, Pattern: "last4", Enabled: true},
			},
			[]string{"caseNumber"})
		require.NoError(t, err)

		set := store.GetRules(model.RoleCaseWorker, model.ReportCaseSummary)
		rule, ok := set.Rule("ssn")
		require.True(t, ok)
		assert.NotEmpty(t, rule.ID, "rules get IDs assigned on install")
		assert.Equal(t, model.RoleCaseWorker, rule.Role)
		assert.Equal(t, model.ReportCaseSummary, rule.ReportType)
		assert.True(t, set.FieldSelected("caseNumber"))
	})

	t.Run("LastWriteWinsPerField", func(t *testing.T) {
		store := rules.NewStore(nil)
		err := store.UpdateRules(ctx, model.RoleCaseWorker, model.ReportCaseSummary,
			[]model.MaskingRule{
				{FieldName: "ssn", MaskingType: model.MaskHidden, Enabled: true},
				{FieldName: "ssn", MaskingType: model.MaskHash, Enabled: true},
			}, nil)
		require.NoError(t, err)

		set := store.GetRules(model.RoleCaseWorker, model.ReportCaseSummary)
		rule, ok := set.Rule("ssn")
		require.True(t, ok)
		assert.Equal(t, model.MaskHash, rule.MaskingType)
		assert.Len(t, set.Rules, 1)
	})

	t.Run("UpdateReplacesWholeSet", func(t *testing.T) {
		store := rules.NewStore(nil)
		require.NoError(t, store.UpdateRules(ctx, model.RoleSupervisor, model.ReportCaseSummary,
			[]model.MaskingRule{{FieldName: "a", MaskingType: model.MaskNone, Enabled: true}}, nil))
		require.NoError(t, store.UpdateRules(ctx, model.RoleSupervisor, model.ReportCaseSummary,
			[]model.MaskingRule{{FieldName: "b", MaskingType: model.MaskNone, Enabled: true}}, nil))

		set := store.GetRules(model.RoleSupervisor, model.ReportCaseSummary)
		_, hasOld := set.Rule("a")
		assert.False(t, hasOld, "updates replace, never merge")
		_, hasNew := set.Rule("b")
		assert.True(t, hasNew)
	})

	t.Run("SelectedFieldsCopiedOut", func(t *testing.T) {
		store := rules.NewStore(nil)
		require.NoError(t, store.UpdateRules(ctx, model.RoleAdmin, model.ReportProviderRoster,
			[]model.MaskingRule{{FieldName: "rate", MaskingType: model.MaskNone, Enabled: true}},
			[]string{"name", "rate"}))

		fields := store.GetSelectedFields(model.RoleAdmin)
		fields[0] = "mutated"
		assert.Equal(t, []string{"name", "rate"}, store.GetSelectedFields(model.RoleAdmin))
	})
}

func TestStore_Validation(t *testing.T) {
	ctx := context.Background()
	store := rules.NewStore(nil)

	t.Run("EmptyRuleList", func(t *testing.T) {
		err := store.UpdateRules(ctx, model.RoleAdmin, model.ReportCaseSummary, nil, nil)
		assert.ErrorIs(t, err, cmips_errors.ErrInvalidRules)
	})

	t.Run("UnknownRole", func(t *testing.T) {
		err := store.UpdateRules(ctx, model.Role("MYSTERY"), model.ReportCaseSummary,
			[]model.MaskingRule{{FieldName: "a", MaskingType: model.MaskNone, Enabled: true}}, nil)
		assert.ErrorIs(t, err, cmips_errors.ErrInvalidRules)
	})

	t.Run("UnknownReportType", func(t *testing.T) {
		err := store.UpdateRules(ctx, model.RoleAdmin, model.ReportType("LEDGER"),
			[]model.MaskingRule{{FieldName: "a", MaskingType: model.MaskNone, Enabled: true}}, nil)
		assert.ErrorIs(t, err, cmips_errors.ErrInvalidRules)
	})

	t.Run("EmptyFieldName", func(t *testing.T) {
		err := store.UpdateRules(ctx, model.RoleAdmin, model.ReportCaseSummary,
			[]model.MaskingRule{{MaskingType: model.MaskNone, Enabled: true}}, nil)
		assert.ErrorIs(t, err, cmips_errors.ErrInvalidRules)
	})

	t.Run("UnknownMaskingType", func(t *testing.T) {
		err := store.UpdateRules(ctx, model.RoleAdmin, model.ReportCaseSummary,
			[]model.MaskingRule{{FieldName: "a", MaskingType: model.MaskingType("REDACT"), Enabled: true}}, nil)
		assert.ErrorIs(t, err, cmips_errors.ErrInvalidRules)
	})

	t.Run("RejectedUpdateLeavesStoreUntouched", func(t *testing.T) {
		require.NoError(t, store.UpdateRules(ctx, model.RoleAdmin, model.ReportCaseSummary,
			[]model.MaskingRule{{FieldName: "a", MaskingType: model.MaskNone, Enabled: true}}, nil))
		err := store.UpdateRules(ctx, model.RoleAdmin, model.ReportCaseSummary,
			[]model.MaskingRule{{FieldName: "", MaskingType: model.MaskNone, Enabled: true}}, nil)
		require.Error(t, err)

		set := store.GetRules(model.RoleAdmin, model.ReportCaseSummary)
		_, ok := set.Rule("a")
		assert.True(t, ok, "prior rule set stays active after a rejected update")
	})
}

func TestStore_Persistence(t *testing.T) {
	ctx := context.Background()

	t.Run("UpdatePersistsSnapshot", func(t *testing.T) {
		persist := new(mock.MockRulePersistence)
		persist.On("SaveRuleSet", testify_mock.Anything, testify_mock.Anything).Return(nil)

		store := rules.NewStore(persist)
		require.NoError(t, store.UpdateRules(ctx, model.RoleCaseWorker, model.ReportCaseSummary,
			[]model.MaskingRule{{FieldName: "ssn", MaskingType: model.MaskHash, Enabled: true}}, nil))

		persist.AssertCalled(t, "SaveRuleSet", testify_mock.Anything, testify_mock.Anything)
	})

	t.Run("PersistenceFailure_SnapshotStaysLive", func(t *testing.T) {
		persist := new(mock.MockRulePersistence)
		persist.On("SaveRuleSet", testify_mock.Anything, testify_mock.Anything).Return(fmt.Errorf("redis down"))

		store := rules.NewStore(persist)
		require.NoError(t, store.UpdateRules(ctx, model.RoleCaseWorker, model.ReportCaseSummary,
			[]model.MaskingRule{{FieldName: "ssn", MaskingType: model.MaskHash, Enabled: true}}, nil))

		set := store.GetRules(model.RoleCaseWorker, model.ReportCaseSummary)
		_, ok := set.Rule("ssn")
		assert.True(t, ok)
	})

	t.Run("LoadSeedsSnapshot", func(t *testing.T) {
		persist := new(mock.MockRulePersistence)
		persist.On("LoadRuleSets", testify_mock.Anything).Return([]*model.MaskingRuleSet{{
			Role:       model.RoleProvider,
			ReportType: model.ReportTimesheetDetail,
			Rules: map[string]model.MaskingRule{
				"rate": {FieldName: "rate", MaskingType: model.MaskHidden, Enabled: true},
			},
			SelectedFields: []string{"serviceDate"},
		}}, nil)

		store := rules.NewStore(persist)
		require.NoError(t, store.Load(ctx))

		set := store.GetRules(model.RoleProvider, model.ReportTimesheetDetail)
		_, ok := set.Rule("rate")
		assert.True(t, ok)
		assert.Equal(t, []string{"serviceDate"}, store.GetSelectedFields(model.RoleProvider))
	})
}

// Readers racing an updater must observe complete rule sets, never a mix of
// two versions.
func TestStore_ConcurrentReadersSeeConsistentSnapshots(t *testing.T) {
	ctx := context.Background()
	store := rules.NewStore(nil)

	version := func(n int) []model.MaskingRule {
		tag := fmt.Sprintf("last%d", n%9+1)
		return []model.MaskingRule{
			{FieldName: "ssn", MaskingType: model.MaskPartial, Pattern: tag, Enabled: true},
			{FieldName: "phone", MaskingType: model.MaskPartial, Pattern: tag, Enabled: true},
		}
	}
	require.NoError(t, store.UpdateRules(ctx, model.RoleCaseWorker, model.ReportCaseSummary, version(0), nil))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				set := store.GetRules(model.RoleCaseWorker, model.ReportCaseSummary)
				ssn, ok1 := set.Rule("ssn")
				phone, ok2 := set.Rule("phone")
				if !ok1 || !ok2 {
					t.Error("read observed a partial rule set")
					return
				}
				if ssn.Pattern != phone.Pattern {
					t.Errorf("read mixed versions: %s vs %s", ssn.Pattern, phone.Pattern)
					return
				}
			}
		}()
	}

	for n := 1; n <= 200; n++ {
		require.NoError(t, store.UpdateRules(ctx, model.RoleCaseWorker, model.ReportCaseSummary, version(n), nil))
	}
	close(stop)
	wg.Wait()
}
