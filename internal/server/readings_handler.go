package server

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vallois/aquawatt/internal/store"
)

type readingsQuery struct {
	SensorID  string `form:"sensor_id"`
	Equipment string `form:"type"`
	From      string `form:"from"`
	Until     string `form:"until"`
	Last      int    `form:"last"`
}

func (q readingsQuery) filter() store.Filter {
	return store.Filter{
		SensorID:  q.SensorID,
		Equipment: q.Equipment,
		From:      q.From,
		Until:     q.Until,
	}
}

func (q readingsQuery) filtered() bool {
	return q.SensorID != "" || q.Equipment != "" || q.From != "" || q.Until != ""
}

// handleCollect runs one collection pass: every active sensor is read and
// the batch is appended to the store (and mirrored when configured).
func handleCollect(c *gin.Context, deps Dependencies) {
	batch := deps.Manager.ReadAll()

	records := make([]store.Record, 0, len(batch.Readings))
	for _, r := range batch.Readings {
		records = append(records, store.NewRecord(r.SensorID, r.Value, r.Timestamp, r.Unit, string(r.Equipment)))
	}
	if err := deps.Store.InsertBatch(records); err != nil {
		abortWithError(c, err)
		return
	}

	if deps.Influx != nil && len(records) > 0 {
		if err := deps.Influx.WriteRecords(c.Request.Context(), records); err != nil {
			log.Printf("record mirror write failed: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"collected": len(records),
		"skipped":   batch.Skipped,
		"readings":  records,
	})
}

func handleListReadings(c *gin.Context, deps Dependencies) {
	var q readingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}

	var (
		records []store.Record
		err     error
	)
	switch {
	case q.Last > 0 && !q.filtered():
		records, err = deps.Store.Last(q.Last)
	default:
		records, err = deps.Store.Filter(q.filter())
		if err == nil && q.Last > 0 && q.Last < len(records) {
			records = records[len(records)-q.Last:]
		}
	}
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(records), "readings": records})
}

func handleReadingStats(c *gin.Context, deps Dependencies) {
	var q readingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}

	stats, err := deps.Store.Stats(q.filter())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func handleResetReadings(c *gin.Context, deps Dependencies) {
	if err := deps.Store.Reset(); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reset": true})
}

func handleDeleteBySensor(c *gin.Context, deps Dependencies) {
	removed, err := deps.Store.DeleteBySensor(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func handleStoreInfo(c *gin.Context, deps Dependencies) {
	info, err := deps.Store.Info()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

type exportRequest struct {
	Format string `json:"format" binding:"required"`
	Path   string `json:"path" binding:"required"`
}

func handleExport(c *gin.Context, deps Dependencies) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	var err error
	switch strings.ToLower(req.Format) {
	case "csv":
		err = deps.Store.ExportCSV(req.Path)
	case "json":
		err = deps.Store.ExportJSON(req.Path)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or json"})
		return
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exported": req.Path, "format": strings.ToLower(req.Format)})
}
