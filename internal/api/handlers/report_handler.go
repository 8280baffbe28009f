package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleet-dispatch-api-server/internal/reports"
	"fleet-dispatch-api-server/internal/s3"
	"fleet-dispatch-api-server/internal/store"
)

type ReportHandler struct {
	Store    *store.Store
	Uploader *s3.Uploader // nil when S3 is not configured
}

func (h *ReportHandler) buildCSV(c *gin.Context) ([]byte, bool) {
	orders, err := h.Store.ListOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query orders"})
		return nil, false
	}

	drivers, err := h.Store.ListDrivers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query drivers"})
		return nil, false
	}

	names := make(map[string]string, len(drivers))
	for _, d := range drivers {
		names[d.ID.Hex()] = d.Name
	}

	data, err := reports.BuildKPICSV(orders, names)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return nil, false
	}
	return data, true
}

// DownloadKPIs streams the KPI CSV as an attachment.
func (h *ReportHandler) DownloadKPIs(c *gin.Context) {
	data, ok := h.buildCSV(c)
	if !ok {
		return
	}

	c.Header("Content-Disposition", `attachment; filename="kpis.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// ArchiveKPIs uploads the KPI CSV to S3 and returns the object URL.
func (h *ReportHandler) ArchiveKPIs(c *gin.Context) {
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "S3 no está configurado."})
		return
	}

	data, ok := h.buildCSV(c)
	if !ok {
		return
	}

	key := reports.ObjectKey(time.Now())
	url, err := h.Uploader.UploadFile(c.Request.Context(), bytes.NewReader(data), key, "text/csv")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to archive report", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url, "key": key})
}
