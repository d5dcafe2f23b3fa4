package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type ReportingHandler struct {
	reports ReportingService
}

func NewReportingHandler(reports ReportingService) *ReportingHandler {
	return &ReportingHandler{reports: reports}
}

func (h *ReportingHandler) Summary(c *gin.Context) {
	collectorID := strings.TrimSpace(c.Query("collector_id"))
	summary, err := h.reports.Summary(c.Request.Context(), collectorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "summary_failed"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ReportingHandler) MonthlyTrend(c *gin.Context) {
	collectorID := strings.TrimSpace(c.Query("collector_id"))
	points, err := h.reports.MonthlyTrend(c.Request.Context(), collectorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "trend_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": points})
}
