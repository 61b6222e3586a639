// controller/rule_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	cmips_errors "github.com/clarita-9850/CMIPS-APPLICATION-sub003/errors"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/model"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/service"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/util"
)

// RuleController exposes the privileged rule-administration surface. It is
// expected to sit behind separately-authorized routes.
type RuleController struct {
	ruleService service.IRuleService
}

func NewRuleController(ruleService service.IRuleService) *RuleController {
	return &RuleController{
		ruleService: ruleService,
	}
}

// RegisterRoutes registers the API routes
func (rc *RuleController) RegisterRoutes(r *gin.RouterGroup) {
	roles := r.Group("/roles/:role")
	{
		roles.PUT("/report-types/:reportType/rules", rc.UpdateRules)
		roles.GET("/report-types/:reportType/rules", rc.GetRules)
		roles.PUT("/rules", rc.BulkUpdateRules)
		roles.GET("/selected-fields", rc.GetSelectedFields)
	}
}

func (rc *RuleController) roleParam(c *gin.Context) (model.Role, bool) {
	role, ok := model.CanonicalRole(c.Param("role"))
	if !ok {
		util.RespondWithError(c, http.StatusBadRequest, "Unknown role", cmips_errors.ErrInvalidRules)
		return role, false
	}
	return role, true
}

// UpdateRules endpoint: atomically replaces the rule set for one
// (role, reportType) pair.
func (rc *RuleController) UpdateRules(c *gin.Context) {
	role, ok := rc.roleParam(c)
	if !ok {
		return
	}
	reportType, ok := model.ParseReportType(c.Param("reportType"))
	if !ok {
		util.RespondWithError(c, http.StatusBadRequest, "Unknown report type", cmips_errors.ErrInvalidRules)
		return
	}

	var update service.RuleUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid rule update", cmips_errors.ErrInvalidRules)
		return
	}

	actorID := c.GetString("requestingUserID")
	if err := rc.ruleService.UpdateRules(c, role, reportType, update, actorID); err != nil {
		rc.respondRuleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// BulkUpdateRules endpoint: replaces rule sets for several report types at
// once.
func (rc *RuleController) BulkUpdateRules(c *gin.Context) {
	role, ok := rc.roleParam(c)
	if !ok {
		return
	}

	var updates map[model.ReportType]service.RuleUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid rule updates", cmips_errors.ErrInvalidRules)
		return
	}

	actorID := c.GetString("requestingUserID")
	if err := rc.ruleService.BulkUpdateRules(c, role, updates, actorID); err != nil {
		rc.respondRuleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetRules endpoint
func (rc *RuleController) GetRules(c *gin.Context) {
	role, ok := rc.roleParam(c)
	if !ok {
		return
	}
	reportType, ok := model.ParseReportType(c.Param("reportType"))
	if !ok {
		util.RespondWithError(c, http.StatusBadRequest, "Unknown report type", cmips_errors.ErrInvalidRules)
		return
	}

	c.JSON(http.StatusOK, rc.ruleService.GetRules(role, reportType))
}

// GetSelectedFields endpoint
func (rc *RuleController) GetSelectedFields(c *gin.Context) {
	role, ok := rc.roleParam(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"role":            role,
		"selected_fields": rc.ruleService.GetSelectedFields(role),
	})
}

func (rc *RuleController) respondRuleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cmips_errors.ErrInvalidRules):
		util.RespondWithError(c, http.StatusBadRequest, "Invalid rule set", err)
	case errors.Is(err, cmips_errors.ErrRuleStoreConflict):
		util.RespondWithError(c, http.StatusConflict, "Concurrent rule update in progress", err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to update rules", err)
	}
}
