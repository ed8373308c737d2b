package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// handleDetect runs both anomaly rules over the stored readings (or a
// filtered subset) and returns the per-record verdicts.
func handleDetect(c *gin.Context, deps Dependencies) {
	var q readingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}

	records, err := deps.Store.Filter(q.filter())
	if err != nil {
		abortWithError(c, err)
		return
	}

	verdicts := deps.Detector.Detect(records)
	flagged := 0
	for _, v := range verdicts {
		if v.Flagged {
			flagged++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(verdicts),
		"flagged":  flagged,
		"verdicts": verdicts,
	})
}

func handleReport(c *gin.Context, deps Dependencies) {
	var q readingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}

	records, err := deps.Store.Filter(q.filter())
	if err != nil {
		abortWithError(c, err)
		return
	}

	report := deps.Detector.Report(deps.Detector.Detect(records))
	c.JSON(http.StatusOK, report)
}

// handleInsight asks the LLM collaborator for an operator-facing summary
// of the current anomaly report.
func handleInsight(c *gin.Context, deps Dependencies) {
	if deps.Insight == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "insight service not configured"})
		return
	}

	records, err := deps.Store.All()
	if err != nil {
		abortWithError(c, err)
		return
	}
	report := deps.Detector.Report(deps.Detector.Detect(records))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 45*time.Second)
	defer cancel()

	summary, err := deps.Insight.Summarize(ctx, report)
	if err != nil {
		log.Printf("insight generation failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to generate insight"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary": summary,
		"report":  report,
	})
}
