// service/services.go
package service

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/audit"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/dao"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/identity"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/pipeline"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/rules"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/util"
)

type Services struct {
	Report IReportService
	Rule   IRuleService
	County ICountyService
}

func InitializeServices(
	driver neo4j.Driver,
	orchestrator *pipeline.Orchestrator,
	resolver *identity.Resolver,
	ruleStore *rules.Store,
	auditService audit.Service,
	validationUtil *util.ValidationUtil,
	locker ResourceLocker,
	eventBus *util.EventBus,
) *Services {
	countyDAO := dao.NewCountyDAO(driver)

	return &Services{
		Report: NewReportService(orchestrator, resolver, countyDAO, validationUtil),
		Rule:   NewRuleService(ruleStore, validationUtil, locker, auditService, eventBus),
		County: NewCountyService(countyDAO, validationUtil),
	}
}
