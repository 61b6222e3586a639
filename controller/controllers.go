// controller/controllers.go
package controller

import "github.com/clarita-9850/CMIPS-APPLICATION-sub003/service"

type Controllers struct {
	Report *ReportController
	Rule   *RuleController
	County *CountyController
}

func InitializeControllers(services *service.Services) *Controllers {
	return &Controllers{
		Report: NewReportController(services.Report),
		Rule:   NewRuleController(services.Rule),
		County: NewCountyController(services.County),
	}
}
