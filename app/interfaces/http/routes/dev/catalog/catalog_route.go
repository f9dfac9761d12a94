package catalog

import (
	"errors"
	"net/http"

	"buildplate.dev/plate-api-gateway/app/domain/catalog"
	"buildplate.dev/plate-api-gateway/app/interfaces/http/responses"
	"buildplate.dev/plate-api-gateway/app/utils/logger"
	"github.com/gin-gonic/gin"
)

type CatalogRoute struct {
	catalogCache *catalog.CatalogCache
}

func NewCatalogRoute(catalogCache *catalog.CatalogCache) *CatalogRoute {
	return &CatalogRoute{
		catalogCache: catalogCache,
	}
}

func (route *CatalogRoute) RegisterRouter(router gin.IRouter) {
	catalogRouter := router.Group("/catalog")
	catalogRouter.GET("/schemas", route.ListSchemas)
	catalogRouter.GET("/schemas/:schema/tables", route.ListTables)
}

type SchemasResponse struct {
	Schemas  []string `json:"schemas"`
	Selected string   `json:"selected"`
}

type TablesResponse struct {
	Schema string   `json:"schema"`
	Tables []string `json:"tables"`
	Cached bool     `json:"cached"`
}

// @Summary List schemas
// @Description Lists the database schemas and the one a browser should open first.
// @Tags Developer
// @Produce json
// @Success 200 {object} SchemasResponse
// @Failure 502 {object} responses.ErrorResponse "The catalog source failed"
// @Router /dev/catalog/schemas [get]
func (route *CatalogRoute) ListSchemas(reqCtx *gin.Context) {
	schemas, err := route.catalogCache.ListSchemas(reqCtx.Request.Context())
	if err != nil {
		route.fail(reqCtx, err)
		return
	}
	selected, _ := catalog.SelectDefaultSchema(schemas)
	if schemas == nil {
		schemas = []string{}
	}
	reqCtx.JSON(http.StatusOK, SchemasResponse{
		Schemas:  schemas,
		Selected: selected,
	})
}

// @Summary List tables of a schema
// @Description Lists the base tables of a schema. Successful lookups are cached for the life of the server.
// @Tags Developer
// @Produce json
// @Param schema path string true "Schema name"
// @Success 200 {object} TablesResponse
// @Failure 502 {object} responses.ErrorResponse "The catalog source failed"
// @Router /dev/catalog/schemas/{schema}/tables [get]
func (route *CatalogRoute) ListTables(reqCtx *gin.Context) {
	schema := reqCtx.Param("schema")
	cached := route.catalogCache.Cached(schema)
	tables, err := route.catalogCache.FetchTables(reqCtx.Request.Context(), schema)
	if err != nil {
		route.fail(reqCtx, err)
		return
	}
	reqCtx.JSON(http.StatusOK, TablesResponse{
		Schema: schema,
		Tables: tables,
		Cached: cached,
	})
}

func (route *CatalogRoute) fail(reqCtx *gin.Context, err error) {
	var fetchErr *catalog.FetchError
	switch {
	case errors.As(err, &fetchErr):
		logger.GetLogger().Warnf("catalog %s lookup failed: %v", fetchErr.Op, err)
		reqCtx.AbortWithStatusJSON(http.StatusBadGateway, responses.ErrorResponse{
			Code:  "3c8e1f5a-7d2b-4a96-b0e4-9f6c2a8d1b53",
			Error: fetchErr.Message,
		})
	case errors.Is(err, catalog.ErrEmptySchema):
		reqCtx.AbortWithStatusJSON(http.StatusBadRequest, responses.ErrorResponse{
			Code:  "b5d2a8e4-1f6c-4d37-9a0b-e7c3f9b1d682",
			Error: err.Error(),
		})
	default:
		// the caller went away while waiting on the source
		reqCtx.AbortWithStatusJSON(http.StatusServiceUnavailable, responses.ErrorResponse{
			Code:  "e9f4b1c7-3a5d-4e82-8c6f-1d0a7b3e5f94",
			Error: err.Error(),
		})
	}
}
