package in

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(authToken string, h *RecordHandler, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-User-ID"},
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	v1.Use(Auth(authToken))
	{
		v1.GET("/records", h.ListRecords)
		v1.GET("/records/:id", h.GetRecord)
		v1.POST("/records", h.CreateRecord)
		v1.PUT("/records/:id", h.UpdateRecord)
		v1.DELETE("/records/:id", h.DeleteRecord)
	}
	return r
}
