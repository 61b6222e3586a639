// controller/report_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	cmips_errors "github.com/clarita-9850/CMIPS-APPLICATION-sub003/errors"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/model"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/service"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/util"
	helper_util "github.com/clarita-9850/CMIPS-APPLICATION-sub003/util/helper"
)

type ReportController struct {
	reportService service.IReportService
}

func NewReportController(reportService service.IReportService) *ReportController {
	return &ReportController{
		reportService: reportService,
	}
}

// RegisterRoutes registers the API routes
func (rc *ReportController) RegisterRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.POST("/query", rc.QueryReport)
	}
}

// QueryReport endpoint: runs the role-scoped masking pipeline for the
// caller's verified claims and the posted query parameters.
func (rc *ReportController) QueryReport(c *gin.Context) {
	var req model.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid report request", err)
		return
	}

	claims, err := util.GetClaimsFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", cmips_errors.ErrAuthRequired)
		return
	}
	req.Claims = claims

	if req.Page == 0 || req.PageSize == 0 {
		if page, pageSize, err := helper_util.GetPaginationParams(c); err == nil {
			if req.Page == 0 {
				req.Page = page
			}
			if req.PageSize == 0 {
				req.PageSize = pageSize
			}
		}
	}

	result, err := rc.reportService.ExecuteReport(c, req)
	if err != nil {
		rc.respondPipelineError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// respondPipelineError maps the pipeline error taxonomy onto transport
// status codes: authorization failures for missing identity or scope, client
// errors for bad filters, retryable server errors for fetch failures.
func (rc *ReportController) respondPipelineError(c *gin.Context, err error) {
	var pe *cmips_errors.PipelineError
	if errors.As(err, &pe) {
		c.Header("X-Pipeline-Stage", pe.Stage)
	}

	switch cmips_errors.KindOf(err) {
	case cmips_errors.KindAuthRequired:
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
	case cmips_errors.KindScopeRequired:
		util.RespondWithError(c, http.StatusForbidden, "County scope required", err)
	case cmips_errors.KindInvalidFilter:
		util.RespondWithError(c, http.StatusBadRequest, "Invalid filter input", err)
	case cmips_errors.KindFetchFailed:
		util.RespondWithError(c, http.StatusBadGateway, "Report data unavailable", err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to execute report", cmips_errors.ErrInternalServer)
	}
}
