package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"weighstation/internal/logger"
	"weighstation/internal/models"
	"weighstation/internal/station"
)

// Station is the command-and-state surface the console exposes. The
// controller satisfies it; tests substitute a mock.
type Station interface {
	State() station.Snapshot
	Log() []models.StatusLogEntry
	History() []models.WeighingHistoryRecord

	ChangeMode(next models.WeighingMode)
	SelectDispatch(id int64)
	Search(ctx context.Context, plateNumber string)
	ConfirmManualWeight(ctx context.Context)
	Reset(ctx context.Context)
	OpenBarrier(ctx context.Context)
	TriggerSensor(ctx context.Context)
	CaptureLPR(ctx context.Context)
	TogglePosition(ctx context.Context)
	SetWeight(ctx context.Context, weight float64)
}

// HistoryReader serves archived records for exports and slip issuance.
type HistoryReader interface {
	Archived(ctx context.Context, limit int) ([]models.WeighingHistoryRecord, error)
	Record(ctx context.Context, weighingID int64) (*models.WeighingHistoryRecord, error)
}

// Handler wires the console HTTP layer to the station controller.
type Handler struct {
	station     Station
	history     HistoryReader
	log         *logger.Logger
	stationName string
}

func NewHandler(st Station, history HistoryReader, log *logger.Logger, stationName string) *Handler {
	return &Handler{station: st, history: history, log: log, stationName: stationName}
}

// InitRoutes builds the Gin router with all console routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws", h.wsConnect)

	api := router.Group("/api/v1")
	{
		h.registerStationRoutes(api)
		h.registerHistoryRoutes(api)
	}
	return router
}

func (h *Handler) registerStationRoutes(api *gin.RouterGroup) {
	st := api.Group("/station")
	{
		st.GET("/state", h.getState)
		st.GET("/log", h.getLog)
		st.POST("/mode", h.setMode)
		st.POST("/search", h.search)
		st.POST("/select", h.selectDispatch)
		st.POST("/confirm", h.confirmManualWeight)
		st.POST("/reset", h.reset)
	}
	api.POST("/barrier/open", h.openBarrier)
	api.POST("/simulator/cmd", h.simulatorCommand)
}

func (h *Handler) registerHistoryRoutes(api *gin.RouterGroup) {
	hist := api.Group("/history")
	{
		hist.GET("", h.getHistory)
		hist.GET("/archive", h.getArchivedHistory)
		hist.GET("/export", h.exportHistory)
		hist.GET("/:id/slip", h.getSlip)
	}
}
