// controller/county_controller.go
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

type CountyController struct {
	countyService service.ICountyService
}

func NewCountyController(countyService service.ICountyService) *CountyController {
	return &CountyController{
		countyService: countyService,
	}
}

// RegisterRoutes registers the API routes
func (cc *CountyController) RegisterRoutes(r *gin.RouterGroup) {
	counties := r.Group("/counties")
	{
		counties.PUT("", cc.UpsertCounty)
		counties.GET("/:code", cc.GetCounty)
	}
}

// UpsertCounty endpoint
func (cc *CountyController) UpsertCounty(c *gin.Context) {
	var county model.County
	if err := c.ShouldBindJSON(&county); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid county data", err)
		return
	}

	if err := cc.countyService.UpsertCounty(c, county); err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to upsert county", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetCounty endpoint
func (cc *CountyController) GetCounty(c *gin.Context) {
	county, err := cc.countyService.GetCounty(c, c.Param("code"))
	if err != nil {
		if errors.Is(err, cmips_errors.ErrCountyNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "County not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve county", err)
		}
		return
	}

	c.JSON(http.StatusOK, county)
}
