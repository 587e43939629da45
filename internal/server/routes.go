package server

import "github.com/gin-gonic/gin"

// SetupRoutes configures the API routes. Result lookup endpoints are
// only registered when a store is configured.
func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.Use(RequestID())

	router.GET("/healthz", handler.Healthz)

	v1 := router.Group("/api/v1")
	{
		extract := v1.Group("/extract")
		{
			extract.POST("", handler.Extract)            // POST /api/v1/extract
			extract.POST("/batch", handler.ExtractBatch) // POST /api/v1/extract/batch
		}

		if handler.store != nil {
			results := v1.Group("/results")
			{
				results.GET("", handler.ListResults)   // GET /api/v1/results
				results.GET("/:id", handler.GetResult) // GET /api/v1/results/:id
			}
		}
	}
}
