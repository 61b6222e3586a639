// masking/engine_test.go
package masking_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logger "github.com/clarita-9850/CMIPS-APPLICATION-sub003/logging"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/masking"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/model"
)

func TestMain(m *testing.M) {
	dir, _ := os.MkdirTemp("", "logs")
	logger.InitLogger(dir)
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func ruleSet(role model.Role, reportType model.ReportType, selected []string, ruleList ...model.MaskingRule) *model.MaskingRuleSet {
	rules := make(map[string]model.MaskingRule, len(ruleList))
	for _, r := range ruleList {
		r.Role = role
		r.ReportType = reportType
		rules[r.FieldName] = r
	}
	return &model.MaskingRuleSet{
		Role:           role,
		ReportType:     reportType,
		Rules:          rules,
		SelectedFields: selected,
	}
}

func TestApply_MaskingTypes(t *testing.T) {
	engine := masking.NewEngine()

	records := []model.RawRecord{{
		"caseNumber": "C-1001",
		"ssn":        "123456789",
		"providerId": "P-42",
		"diagnosis":  "confidential",
		"salaryBand": "B3",
		"notes":      "internal only",
	}}

	set := ruleSet(model.RoleSupervisor, model.ReportCaseSummary, nil,
		model.MaskingRule{FieldName: "caseNumber", MaskingType: model.MaskNone, Enabled: true},
		model.MaskingRule{FieldName: "ssn", MaskingType: model.MaskPartial, Pattern: "last4", Enabled: true},
		model.MaskingRule{FieldName: "providerId", MaskingType: model.MaskHash, Enabled: true},
		model.MaskingRule{FieldName: "diagnosis", MaskingType: model.MaskAnonymize, Enabled: true},
		model.MaskingRule{FieldName: "salaryBand", MaskingType: model.MaskAggregate, Enabled: true},
		model.MaskingRule{FieldName: "notes", MaskingType: model.MaskHidden, Enabled: true},
	)

	masked, visible := engine.Apply(records, set)
	require.Len(t, masked, 1)
	out := masked[0]

	assert.Equal(t, "C-1001", out["caseNumber"])
	assert.Equal(t, "*****6789", out["ssn"])
	assert.Equal(t, "RESTRICTED", out["diagnosis"])

	hashed, ok := out["providerId"].(string)
	require.True(t, ok)
	assert.Len(t, hashed, 16)
	assert.NotEqual(t, "P-42", hashed)

	_, hasNotes := out["notes"]
	assert.False(t, hasNotes, "hidden field must be absent, not nulled")
	_, hasSalary := out["salaryBand"]
	assert.False(t, hasSalary, "aggregate field must be suppressed per record")

	assert.Equal(t, []string{"caseNumber", "diagnosis", "providerId", "salaryBand", "ssn"}, visible,
		"manifest is the sorted union of emitted fields and aggregate columns")
}

func TestApply_FailClosedDefaults(t *testing.T) {
	engine := masking.NewEngine()
	records := []model.RawRecord{{
		"caseNumber": "C-1001",
		"ssn":        "123456789",
	}}

	t.Run("UnruledUnselected_Hidden", func(t *testing.T) {
		set := ruleSet(model.RoleRecipient, model.ReportRecipientServices, []string{"caseNumber"})
		masked, visible := engine.Apply(records, set)
		require.Len(t, masked, 1)
		assert.Equal(t, "C-1001", masked[0]["caseNumber"])
		_, hasSSN := masked[0]["ssn"]
		assert.False(t, hasSSN)
		assert.Equal(t, []string{"caseNumber"}, visible)
	})

	t.Run("EmptyRuleSet_EverythingHidden", func(t *testing.T) {
		set := &model.MaskingRuleSet{Role: model.RoleRecipient, ReportType: model.ReportRecipientServices}
		masked, visible := engine.Apply(records, set)
		require.Len(t, masked, 1)
		assert.Empty(t, masked[0])
		assert.Empty(t, visible)
	})

	t.Run("DisabledRule_TreatedAsAbsent", func(t *testing.T) {
		set := ruleSet(model.RoleRecipient, model.ReportRecipientServices, nil,
			model.MaskingRule{FieldName: "ssn", MaskingType: model.MaskNone, Enabled: false})
		masked, _ := engine.Apply(records, set)
		_, hasSSN := masked[0]["ssn"]
		assert.False(t, hasSSN)
	})

	t.Run("UnmaskableValue_FieldDropped", func(t *testing.T) {
		set := ruleSet(model.RoleRecipient, model.ReportRecipientServices, nil,
			model.MaskingRule{FieldName: "hours", MaskingType: model.MaskPartial, Enabled: true})
		masked, visible := engine.Apply([]model.RawRecord{{"hours": 37.5}}, set)
		require.Len(t, masked, 1)
		assert.Empty(t, masked[0], "a rule that cannot apply fails the field closed")
		assert.Empty(t, visible)
	})
}

func TestApply_PartialMaskPatterns(t *testing.T) {
	engine := masking.NewEngine()

	t.Run("DefaultKeepsLastFour", func(t *testing.T) {
		set := ruleSet(model.RoleCaseWorker, model.ReportCaseSummary, nil,
			model.MaskingRule{FieldName: "ssn", MaskingType: model.MaskPartial, Enabled: true})
		masked, _ := engine.Apply([]model.RawRecord{{"ssn": "123456789"}}, set)
		assert.Equal(t, "*****6789", masked[0]["ssn"])
	})

	t.Run("ExplicitKeepCount", func(t *testing.T) {
		set := ruleSet(model.RoleCaseWorker, model.ReportCaseSummary, nil,
			model.MaskingRule{FieldName: "phone", MaskingType: model.MaskPartial, Pattern: "last2", Enabled: true})
		masked, _ := engine.Apply([]model.RawRecord{{"phone": "5551234"}}, set)
		assert.Equal(t, "*****34", masked[0]["phone"])
	})

	t.Run("ShortValue_FullyMasked", func(t *testing.T) {
		set := ruleSet(model.RoleCaseWorker, model.ReportCaseSummary, nil,
			model.MaskingRule{FieldName: "pin", MaskingType: model.MaskPartial, Pattern: "last4", Enabled: true})
		masked, _ := engine.Apply([]model.RawRecord{{"pin": "123"}}, set)
		assert.Equal(t, "***", masked[0]["pin"])
	})
}

func TestApply_HashMaskDeterminism(t *testing.T) {
	engine := masking.NewEngine()
	set := ruleSet(model.RoleSupervisor, model.ReportTimesheetDetail, nil,
		model.MaskingRule{FieldName: "providerId", MaskingType: model.MaskHash, Enabled: true})

	records := []model.RawRecord{
		{"providerId": "P-42"},
		{"providerId": "P-42"},
		{"providerId": "P-43"},
	}
	masked, _ := engine.Apply(records, set)
	require.Len(t, masked, 3)

	assert.Equal(t, masked[0]["providerId"], masked[1]["providerId"],
		"equal inputs must mask identically for correlation")
	assert.NotEqual(t, masked[0]["providerId"], masked[2]["providerId"])

	again, _ := engine.Apply(records, set)
	assert.Equal(t, masked, again, "engine output must be deterministic")
}

func TestApply_ManifestReflectsOutputOnly(t *testing.T) {
	engine := masking.NewEngine()
	set := ruleSet(model.RoleAdmin, model.ReportProviderRoster, []string{"name"},
		model.MaskingRule{FieldName: "rate", MaskingType: model.MaskAggregate, Enabled: true})

	// Second record lacks the selected field entirely.
	records := []model.RawRecord{
		{"name": "A", "rate": 18.5, "secret": "x"},
		{"rate": 19.0},
	}
	masked, visible := engine.Apply(records, set)
	require.Len(t, masked, 2)
	assert.Equal(t, []string{"name", "rate"}, visible)
	assert.Empty(t, masked[1])
}
