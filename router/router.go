// router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/controller"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/middleware"
)

func SetupRouter(
	controllers *controller.Controllers,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))
	router.Use(middleware.ClaimsMiddleware())

	api := router.Group("/api/v1")

	controllers.Report.RegisterRoutes(api)

	// Rule and county administration is a privileged path; the gateway
	// authorizes it separately before requests reach this service.
	admin := api.Group("/admin")
	controllers.Rule.RegisterRoutes(admin)
	controllers.County.RegisterRoutes(admin)

	return router
}
