package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vallois/aquawatt/internal/anomaly"
	"github.com/vallois/aquawatt/internal/catalog"
	"github.com/vallois/aquawatt/internal/influxdb"
	"github.com/vallois/aquawatt/internal/processing"
	"github.com/vallois/aquawatt/internal/simulation"
	"github.com/vallois/aquawatt/internal/store"
)

// Dependencies groups objects the HTTP layer needs. Influx, Catalog, and
// Insight are optional collaborators; their endpoints answer 503 when the
// collaborator is not configured.
type Dependencies struct {
	Manager     *simulation.Manager
	Store       *store.Store
	Detector    *anomaly.Detector
	Coordinator *simulation.Coordinator
	Influx      *influxdb.Client
	Catalog     *catalog.Repository
	Insight     *processing.InsightService
}

// NewRouter configures all HTTP routes.
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/api/sensors", func(c *gin.Context) { handleListSensors(c, deps) })
	r.POST("/api/sensors", func(c *gin.Context) { handleRegisterSensor(c, deps) })
	r.DELETE("/api/sensors/:id", func(c *gin.Context) { handleRemoveSensor(c, deps) })
	r.PATCH("/api/sensors/:id/active", func(c *gin.Context) { handleSetSensorActive(c, deps) })
	r.POST("/api/sensors/:id/read", func(c *gin.Context) { handleReadOne(c, deps) })

	r.POST("/api/collect", func(c *gin.Context) { handleCollect(c, deps) })
	r.GET("/api/readings", func(c *gin.Context) { handleListReadings(c, deps) })
	r.GET("/api/readings/stats", func(c *gin.Context) { handleReadingStats(c, deps) })
	r.POST("/api/readings/reset", func(c *gin.Context) { handleResetReadings(c, deps) })
	r.DELETE("/api/readings/sensor/:id", func(c *gin.Context) { handleDeleteBySensor(c, deps) })
	r.GET("/api/readings/info", func(c *gin.Context) { handleStoreInfo(c, deps) })
	r.POST("/api/export", func(c *gin.Context) { handleExport(c, deps) })

	r.GET("/api/anomalies", func(c *gin.Context) { handleDetect(c, deps) })
	r.GET("/api/anomalies/report", func(c *gin.Context) { handleReport(c, deps) })
	r.POST("/api/insight", func(c *gin.Context) { handleInsight(c, deps) })

	r.GET("/api/simulation/status", func(c *gin.Context) {
		if deps.Coordinator == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"enabled": false})
			return
		}
		c.JSON(http.StatusOK, deps.Coordinator.Status())
	})
	r.POST("/api/simulation/enable", func(c *gin.Context) {
		if deps.Coordinator == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "coordinator not configured"})
			return
		}
		deps.Coordinator.Enable()
		c.JSON(http.StatusOK, gin.H{"enabled": true})
	})
	r.POST("/api/simulation/disable", func(c *gin.Context) {
		if deps.Coordinator == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "coordinator not configured"})
			return
		}
		deps.Coordinator.Disable()
		c.JSON(http.StatusOK, gin.H{"enabled": false})
	})

	r.GET("/api/influx/ping", func(c *gin.Context) {
		if deps.Influx == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "missing client"})
			return
		}
		if err := deps.Influx.Ping(c.Request.Context()); err != nil {
			log.Printf("influx ping failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

// statusForError maps domain errors onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, simulation.ErrSensorNotFound):
		return http.StatusNotFound
	case errors.Is(err, simulation.ErrDuplicateSensor):
		return http.StatusConflict
	case errors.Is(err, simulation.ErrSensorInactive):
		return http.StatusConflict
	case errors.Is(err, simulation.ErrUnknownEquipment):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}
