// access/pattern.go
package access

import "github.com/clarita-9850/CMIPS-APPLICATION-sub003/model"

// Resolve maps a canonical role to its access pattern. Pure function of the
// role; no I/O. Scope-bound roles must always carry a county scope; the
// scope-exempt roles may optionally supply one to narrow results.
func Resolve(role model.Role) model.AccessPattern {
	switch role {
	case model.RoleAdmin:
		return model.AccessPattern{
			Role:          role,
			ScopeRequired: false,
			DefaultReportTypes: []model.ReportType{
				model.ReportCaseSummary,
				model.ReportTimesheetDetail,
				model.ReportProviderRoster,
				model.ReportRecipientServices,
			},
		}
	case model.RoleSystemScheduler:
		return model.AccessPattern{
			Role:          role,
			ScopeRequired: false,
			DefaultReportTypes: []model.ReportType{
				model.ReportCaseSummary,
				model.ReportTimesheetDetail,
			},
		}
	case model.RoleSupervisor:
		return model.AccessPattern{
			Role:          role,
			ScopeRequired: true,
			DefaultReportTypes: []model.ReportType{
				model.ReportCaseSummary,
				model.ReportTimesheetDetail,
				model.ReportProviderRoster,
			},
		}
	case model.RoleCaseWorker:
		return model.AccessPattern{
			Role:          role,
			ScopeRequired: true,
			DefaultReportTypes: []model.ReportType{
				model.ReportCaseSummary,
				model.ReportRecipientServices,
			},
		}
	case model.RoleProvider:
		return model.AccessPattern{
			Role:          role,
			ScopeRequired: true,
			DefaultReportTypes: []model.ReportType{
				model.ReportTimesheetDetail,
			},
		}
	default:
		// Recipient and anything unknown: scope-bound, narrowest defaults.
		return model.AccessPattern{
			Role:          model.RoleRecipient,
			ScopeRequired: true,
			DefaultReportTypes: []model.ReportType{
				model.ReportRecipientServices,
			},
		}
	}
}

// Allows reports whether the pattern's default report types include the
// given report type.
func Allows(pattern model.AccessPattern, reportType model.ReportType) bool {
	for _, t := range pattern.DefaultReportTypes {
		if t == reportType {
			return true
		}
	}
	return false
}
