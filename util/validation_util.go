// util/validation_util.go

package util

import (
	"fmt"

	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/model"
)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

func (v *ValidationUtil) ValidateMaskingRule(rule model.MaskingRule) error {
	if rule.FieldName == "" {
		return fmt.Errorf("rule field name cannot be empty")
	}
	if !rule.MaskingType.Valid() {
		return fmt.Errorf("unknown masking type %q", rule.MaskingType)
	}
	if rule.MaskingType == model.MaskPartial && rule.Pattern == "" {
		return fmt.Errorf("partial mask rule for %s requires a pattern", rule.FieldName)
	}
	return nil
}

func (v *ValidationUtil) ValidateRuleUpdate(role model.Role, reportType model.ReportType, rules []model.MaskingRule) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	if !reportType.Valid() {
		return fmt.Errorf("unknown report type %q", reportType)
	}
	if len(rules) == 0 {
		return fmt.Errorf("rule list cannot be empty")
	}
	for _, rule := range rules {
		if err := v.ValidateMaskingRule(rule); err != nil {
			return err
		}
	}
	return nil
}

func (v *ValidationUtil) ValidateReportRequest(req model.ReportRequest) error {
	if req.Page < 0 {
		return fmt.Errorf("page cannot be negative")
	}
	if req.PageSize < 0 {
		return fmt.Errorf("page size cannot be negative")
	}
	// Report type, scope and dates are validated by the query builder.
	return nil
}

func (v *ValidationUtil) ValidateCounty(county model.County) error {
	if county.Code == "" {
		return fmt.Errorf("county code cannot be empty")
	}
	if county.Name == "" {
		return fmt.Errorf("county name cannot be empty")
	}
	return nil
}
