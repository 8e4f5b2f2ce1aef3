package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"weighstation/internal/models"
)

const (
	statusAccepted = "accepted"
	statusOK       = "ok"

	errInvalidBodyPref = "invalid body: "
)

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// @Summary      Current control-screen state
// @Tags         station
// @Produce      json
// @Success      200  {object}  station.Snapshot
// @Router       /api/v1/station/state [get]
func (h *Handler) getState(c *gin.Context) {
	c.JSON(http.StatusOK, h.station.State())
}

// @Summary      Operational log, newest first
// @Tags         station
// @Produce      json
// @Success      200  {array}  models.StatusLogEntry
// @Router       /api/v1/station/log [get]
func (h *Handler) getLog(c *gin.Context) {
	c.JSON(http.StatusOK, h.station.Log())
}

type modeRequest struct {
	Mode models.WeighingMode `json:"mode" binding:"required"` // AUTO | MANUAL
}

// @Summary      Switch weighing mode
// @Tags         station
// @Accept       json
// @Produce      json
// @Param        body  body  modeRequest  true  "Mode payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/station/mode [post]
func (h *Handler) setMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if req.Mode != models.ModeAuto && req.Mode != models.ModeManual {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be AUTO or MANUAL"})
		return
	}
	h.station.ChangeMode(req.Mode)
	c.JSON(http.StatusOK, gin.H{"status": statusOK, "mode": req.Mode})
}

type searchRequest struct {
	PlateNumber string `json:"plateNumber"`
}

// @Summary      Search dispatches ready for weighing
// @Tags         station
// @Accept       json
// @Produce      json
// @Param        body  body  searchRequest  true  "Plate filter"
// @Success      202   {object}  map[string]string
// @Router       /api/v1/station/search [post]
func (h *Handler) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	h.station.Search(c.Request.Context(), req.PlateNumber)
	c.JSON(http.StatusAccepted, gin.H{"status": statusAccepted})
}

type selectRequest struct {
	DispatchID int64 `json:"dispatchId" binding:"required"`
}

// @Summary      Select a dispatch for manual weighing
// @Tags         station
// @Accept       json
// @Produce      json
// @Param        body  body  selectRequest  true  "Dispatch id"
// @Success      200   {object}  map[string]string
// @Router       /api/v1/station/select [post]
func (h *Handler) selectDispatch(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	h.station.SelectDispatch(req.DispatchID)
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// @Summary      Confirm manual weighing for the selected dispatch
// @Tags         station
// @Produce      json
// @Success      202  {object}  map[string]string
// @Router       /api/v1/station/confirm [post]
func (h *Handler) confirmManualWeight(c *gin.Context) {
	h.station.ConfirmManualWeight(c.Request.Context())
	c.JSON(http.StatusAccepted, gin.H{"status": statusAccepted})
}

// @Summary      Reset the weighing process
// @Tags         station
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/v1/station/reset [post]
func (h *Handler) reset(c *gin.Context) {
	h.station.Reset(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// @Summary      Open the barrier gate
// @Tags         station
// @Produce      json
// @Success      202  {object}  map[string]string
// @Router       /api/v1/barrier/open [post]
func (h *Handler) openBarrier(c *gin.Context) {
	h.station.OpenBarrier(c.Request.Context())
	c.JSON(http.StatusAccepted, gin.H{"status": statusAccepted})
}

type simulatorRequest struct {
	Command string   `json:"command" binding:"required"`
	Weight  *float64 `json:"weight,omitempty"` // SET_WEIGHT only
}

// @Summary      Send a simulator stimulus
// @Tags         simulator
// @Accept       json
// @Produce      json
// @Param        body  body  simulatorRequest  true  "Stimulus"
// @Success      202   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/simulator/cmd [post]
func (h *Handler) simulatorCommand(c *gin.Context) {
	var req simulatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	ctx := c.Request.Context()
	switch req.Command {
	case models.SimTriggerSensor:
		h.station.TriggerSensor(ctx)
	case models.SimCaptureLPR:
		h.station.CaptureLPR(ctx)
	case models.SimTogglePosition:
		h.station.TogglePosition(ctx)
	case models.SimSetWeight:
		if req.Weight == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "SET_WEIGHT requires weight"})
			return
		}
		h.station.SetWeight(ctx, *req.Weight)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown simulator command: " + req.Command})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": statusAccepted})
}
