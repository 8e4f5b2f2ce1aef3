package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"weighstation/internal/export"
)

const defaultArchiveLimit = 50

// @Summary      Last fetched weighing history
// @Tags         history
// @Produce      json
// @Success      200  {array}  models.WeighingHistoryRecord
// @Router       /api/v1/history [get]
func (h *Handler) getHistory(c *gin.Context) {
	c.JSON(http.StatusOK, h.station.History())
}

// @Summary      Locally archived weighing history
// @Tags         history
// @Produce      json
// @Param        limit  query  int  false  "Max records"
// @Success      200    {array}  models.WeighingHistoryRecord
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/history/archive [get]
func (h *Handler) getArchivedHistory(c *gin.Context) {
	limit := defaultArchiveLimit
	if s := c.Query("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	records, err := h.history.Archived(c.Request.Context(), limit)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to read history archive", "history_archive_failed", err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// @Summary      Export archived history as a workbook
// @Tags         history
// @Produce      application/octet-stream
// @Success      200  {file}  binary
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/history/export [get]
func (h *Handler) exportHistory(c *gin.Context) {
	records, err := h.history.Archived(c.Request.Context(), defaultArchiveLimit)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to read history archive", "history_export_failed", err)
		return
	}
	payload, err := export.BuildHistoryXLSX(records)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to build export", "history_export_failed", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="weighing-history.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", payload)
}

// @Summary      Weighing slip PDF for one record
// @Tags         history
// @Produce      application/pdf
// @Param        id  path  int  true  "Weighing id"
// @Success      200  {file}  binary
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/history/{id}/slip [get]
func (h *Handler) getSlip(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid weighing id"})
		return
	}
	rec, err := h.history.Record(c.Request.Context(), id)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to read history archive", "slip_lookup_failed", err)
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("weighing %d not archived", id)})
		return
	}
	payload, err := export.BuildSlipPDF(*rec, h.stationName)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to build slip", "slip_build_failed", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="slip-%d.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", payload)
}

// logAndJSONError centralizes error logging and the JSON error response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error) {
	if h.log != nil && err != nil {
		h.log.Errorw(logKey, "err", err)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}
