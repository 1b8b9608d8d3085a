package handlers

import (
	"net/http"
	"time"

	"restaurant_pos/internal/services"
	"restaurant_pos/pkg/logger"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reports services.ReportService
	log     *logger.Logger
}

func NewReportHandler(reports services.ReportService, log *logger.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, log: log}
}

// parseRange reads from/to as RFC 3339 timestamps or YYYY-MM-DD dates. A
// date-only "to" covers the whole day. Both default to today.
func parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	parse := func(name string, def time.Time, endOfDay bool) (time.Time, bool) {
		v := c.Query(name)
		if v == "" {
			return def, true
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t, true
		}
		if t, err := time.ParseInLocation("2006-01-02", v, now.Location()); err == nil {
			if endOfDay {
				t = t.AddDate(0, 0, 1)
			}
			return t, true
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " (use RFC 3339 or YYYY-MM-DD)"})
		return time.Time{}, false
	}

	from, ok := parse("from", today, false)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	to, ok := parse("to", today.AddDate(0, 0, 1), true)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func (h *ReportHandler) SalesSummary(c *gin.Context) {
	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	summary, err := h.reports.SalesSummary(c.Request.Context(), callerFrom(c), from, to)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ReportHandler) TopProducts(c *gin.Context) {
	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	rows, err := h.reports.TopProducts(c.Request.Context(), callerFrom(c), from, to, queryInt(c, "limit", 10), c.Query("by") == "revenue")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": rows})
}

func (h *ReportHandler) PaymentMethods(c *gin.Context) {
	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	rows, err := h.reports.PaymentMethods(c.Request.Context(), callerFrom(c), from, to)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_methods": rows})
}
