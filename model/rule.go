// model/rule.go
package model

// MaskingType enumerates the supported per-field transformations.
type MaskingType string

const (
	MaskNone      MaskingType = "NONE"
	MaskHidden    MaskingType = "HIDDEN"
	MaskPartial   MaskingType = "PARTIAL_MASK"
	MaskHash      MaskingType = "HASH_MASK"
	MaskAnonymize MaskingType = "ANONYMIZE"
	MaskAggregate MaskingType = "AGGREGATE"
)

func (t MaskingType) Valid() bool {
	switch t {
	case MaskNone, MaskHidden, MaskPartial, MaskHash, MaskAnonymize, MaskAggregate:
		return true
	}
	return false
}

// MaskingRule is one per-field directive. At most one active rule exists per
// (role, reportType, fieldName) key; last write wins on update.
type MaskingRule struct {
	ID          string      `json:"id,omitempty"`
	FieldName   string      `json:"field_name"`
	ReportType  ReportType  `json:"report_type"`
	Role        Role        `json:"role"`
	MaskingType MaskingType `json:"masking_type"`
	Pattern     string      `json:"pattern,omitempty"`
	Enabled     bool        `json:"enabled"`
}

// MaskingRuleSet is the full rule collection for one (role, reportType) pair
// together with the administrator-selected default-visible fields for the
// role. Instances are immutable once installed in the rule store; in-flight
// requests keep whichever snapshot they observed.
type MaskingRuleSet struct {
	Role           Role                   `json:"role"`
	ReportType     ReportType             `json:"report_type"`
	Rules          map[string]MaskingRule `json:"rules"`
	SelectedFields []string               `json:"selected_fields"`
}

// Rule returns the active rule for a field, if any. Disabled rules are
// treated as absent so the selected-fields default applies.
func (rs *MaskingRuleSet) Rule(field string) (MaskingRule, bool) {
	if rs == nil || rs.Rules == nil {
		return MaskingRule{}, false
	}
	rule, ok := rs.Rules[field]
	if !ok || !rule.Enabled {
		return MaskingRule{}, false
	}
	return rule, true
}

// FieldSelected reports whether a field is in the administrator-selected
// default-visible set. Fields outside it fail closed to HIDDEN when no
// explicit rule exists.
func (rs *MaskingRuleSet) FieldSelected(field string) bool {
	if rs == nil {
		return false
	}
	for _, f := range rs.SelectedFields {
		if f == field {
			return true
		}
	}
	return false
}

// Empty reports whether the set carries neither rules nor selected fields,
// which is what an unconfigured (role, reportType) read returns.
func (rs *MaskingRuleSet) Empty() bool {
	return rs == nil || (len(rs.Rules) == 0 && len(rs.SelectedFields) == 0)
}
