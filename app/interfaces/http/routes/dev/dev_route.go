package dev

import (
	"net/http"

	"buildplate.dev/plate-api-gateway/app/interfaces/http/middleware"
	"buildplate.dev/plate-api-gateway/app/interfaces/http/responses"
	"buildplate.dev/plate-api-gateway/app/interfaces/http/routes/dev/catalog"
	"buildplate.dev/plate-api-gateway/config/environment_variables"
	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go/godeltaprof"
)

// DevRoute groups the developer pages. In production they all redirect to "/".
type DevRoute struct {
	catalogRoute *catalog.CatalogRoute
	heap         *godeltaprof.HeapProfiler
}

func NewDevRoute(catalogRoute *catalog.CatalogRoute) *DevRoute {
	return &DevRoute{
		catalogRoute: catalogRoute,
		heap:         godeltaprof.NewHeapProfiler(),
	}
}

func (devRoute *DevRoute) RegisterRouter(router gin.IRouter) {
	devRouter := router.Group("/dev", middleware.DevOnly(environment_variables.EnvironmentVariables.IsProduction()))
	devRoute.catalogRoute.RegisterRouter(devRouter)
	devRouter.GET("/debug/heap", devRoute.HeapProfile)
}

// HeapProfile writes the allocations since the previous call as a gzipped pprof profile.
func (devRoute *DevRoute) HeapProfile(reqCtx *gin.Context) {
	reqCtx.Header("Content-Type", "application/octet-stream")
	reqCtx.Header("Content-Disposition", `attachment; filename="heap.pb.gz"`)
	if err := devRoute.heap.Profile(reqCtx.Writer); err != nil {
		reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, responses.ErrorResponse{
			Code:  "61c7a3e9-4b2f-4d08-a5e1-c9f3b7d2a840",
			Error: err.Error(),
		})
	}
}
