package station

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"weighstation/internal/logger"
	"weighstation/internal/metrics"
	"weighstation/internal/models"
)

// Commands is the backend command surface the controller depends on.
// Implemented by the REST client in internal/api.
type Commands interface {
	SearchDispatches(ctx context.Context, plateNumber string) ([]models.DispatchSearchResult, error)
	CreateWeighing(ctx context.Context, req models.CreateWeighingRequest) error
	ResetScale(ctx context.Context, scaleID string) error
	OpenBarrier(ctx context.Context) error
	SimulatorCommand(ctx context.Context, cmd models.SimulatorCommand) error
}

// HistoryLoader refreshes the recent weighing list after a COMPLETE update.
type HistoryLoader interface {
	Reload(ctx context.Context) ([]models.WeighingHistoryRecord, error)
}

// Notifier surfaces transient operator feedback (toasts in the original UI).
type Notifier interface {
	Notify(level models.LogLevel, message string)
}

// nopNotifier is used when no notifier is wired.
type nopNotifier struct{}

func (nopNotifier) Notify(models.LogLevel, string) {}

// Snapshot is a copy of the live control-screen state handed to the
// presentation layer. Mutating it has no effect on the controller.
type Snapshot struct {
	Mode               models.WeighingMode           `json:"mode"`
	Process            models.ProcessState           `json:"processState"`
	Weight             models.WeightData             `json:"weight"`
	Vehicle            models.VehicleInfo            `json:"vehicle"`
	Devices            models.DeviceConnectionState  `json:"devices"`
	SearchResults      []models.DispatchSearchResult `json:"searchResults"`
	SelectedDispatchID *int64                        `json:"selectedDispatchId"`
}

// Controller owns all live state for the weighing-station control screen.
// It is the only component allowed to mutate that state; inbound messages,
// command results and the transport watchdog all funnel through its mutex.
//
// Public command methods never return errors: every failure path degrades
// to a transient notification plus a log entry so the presentation layer
// needs no try/catch discipline around them.
type Controller struct {
	cmds    Commands
	history HistoryLoader
	notify  Notifier
	log     *logger.Logger
	scaleID string

	mu       sync.Mutex
	mode     models.WeighingMode
	process  models.ProcessState
	weight   models.WeightData
	vehicle  models.VehicleInfo
	devices  models.DeviceConnectionState
	results  []models.DispatchSearchResult
	selected *int64
	recent   []models.WeighingHistoryRecord
	trace    *statusLog

	now func() time.Time
}

// NewController builds a controller in its initial state: AUTO mode, IDLE
// process, disconnected scale reading, sentinel vehicle, all devices OFFLINE.
func NewController(cmds Commands, history HistoryLoader, notify Notifier, log *logger.Logger, scaleID string) *Controller {
	if notify == nil {
		notify = nopNotifier{}
	}
	c := &Controller{
		cmds:    cmds,
		history: history,
		notify:  notify,
		log:     log,
		scaleID: scaleID,
		mode:    models.ModeAuto,
		process: models.ProcessIdle,
		weight:  models.WeightData{Stability: models.StabilityDisconnected},
		vehicle: models.EmptyVehicle(),
		devices: models.DeviceConnectionState{
			Scale:   models.StatusOffline,
			Display: models.StatusOffline,
			Barrier: models.StatusOffline,
			Network: models.StatusOffline,
		},
		now: time.Now,
	}
	c.trace = newStatusLog(func() time.Time { return c.now() })
	return c
}

// State returns a snapshot of the current control-screen state.
func (c *Controller) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	results := make([]models.DispatchSearchResult, len(c.results))
	copy(results, c.results)

	var selected *int64
	if c.selected != nil {
		id := *c.selected
		selected = &id
	}

	return Snapshot{
		Mode:               c.mode,
		Process:            c.process,
		Weight:             c.weight,
		Vehicle:            c.vehicle,
		Devices:            c.devices,
		SearchResults:      results,
		SelectedDispatchID: selected,
	}
}

// Log returns the operational trace, newest first.
func (c *Controller) Log() []models.StatusLogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trace.Snapshot()
}

// History returns the last successfully fetched weighing history.
func (c *Controller) History() []models.WeighingHistoryRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.WeighingHistoryRecord, len(c.recent))
	copy(out, c.recent)
	return out
}

// ChangeMode switches between AUTO and MANUAL. Switching always clears the
// manual search results and selection, whatever the prior mode was.
func (c *Controller) ChangeMode(next models.WeighingMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = next
	c.results = nil
	c.selected = nil
	c.trace.Append(models.LevelInfo, fmt.Sprintf("weighing mode switched to %s", next))
}

// SelectDispatch marks one of the cached search results as the manual
// weighing target. Only valid in MANUAL mode for an id present in the
// current result list.
func (c *Controller) SelectDispatch(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != models.ModeManual {
		c.notify.Notify(models.LevelWarning, "dispatch selection is only available in manual mode")
		return
	}
	if c.findResult(id) == nil {
		c.notify.Notify(models.LevelWarning, "selected dispatch is not in the current search results")
		return
	}
	c.selected = &id
}

// Search looks up dispatches ready for weighing by plate number and replaces
// the cached result list. Overlapping searches are not fenced: the last
// response to land wins.
func (c *Controller) Search(ctx context.Context, plateNumber string) {
	plate := strings.TrimSpace(plateNumber)
	if plate == "" {
		c.notify.Notify(models.LevelWarning, "enter a plate number to search")
		return
	}

	results, err := c.cmds.SearchDispatches(ctx, plate)
	metrics.ObserveCommand("search", err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.trace.Append(models.LevelError, fmt.Sprintf("dispatch search failed: %v", err))
		c.notify.Notify(models.LevelError, "dispatch search failed")
		return
	}
	c.results = results
	c.selected = nil
	if len(results) == 0 {
		c.trace.Append(models.LevelWarning, fmt.Sprintf("no dispatches ready for weighing: %s", plate))
		return
	}
	c.trace.Append(models.LevelInfo, fmt.Sprintf("found %d dispatch(es) for %s", len(results), plate))
}

// ConfirmManualWeight submits a manual weighing for the selected dispatch,
// snapshotting the last known gross weight at call time. The resulting
// process transition arrives asynchronously over the subscription channel;
// this method never touches ProcessState itself.
func (c *Controller) ConfirmManualWeight(ctx context.Context) {
	c.mu.Lock()
	if c.selected == nil {
		c.mu.Unlock()
		c.notify.Notify(models.LevelWarning, "select a dispatch before confirming")
		return
	}
	target := c.findResult(*c.selected)
	if target == nil {
		c.mu.Unlock()
		c.notify.Notify(models.LevelWarning, "selected dispatch is no longer in the search results")
		return
	}
	req := models.CreateWeighingRequest{
		DispatchID:   target.DispatchID,
		WeighingMode: models.ModeManual,
		PlateNumber:  target.PlateNumber,
		GrossWeight:  c.weight.CurrentWeight,
	}
	c.mu.Unlock()

	err := c.cmds.CreateWeighing(ctx, req)
	metrics.ObserveCommand("confirm_manual_weight", err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.trace.Append(models.LevelError, fmt.Sprintf("manual weighing for %s failed: %v", req.PlateNumber, err))
		c.notify.Notify(models.LevelError, "manual weighing failed")
		return
	}
	c.trace.Append(models.LevelSuccess, fmt.Sprintf("manual weighing submitted: %s (%.0f kg)", req.PlateNumber, req.GrossWeight))
	c.notify.Notify(models.LevelSuccess, "manual weighing submitted")
}

// Reset asks the backend to reset the scale's process and then resets the
// local view unconditionally. The local reset is optimistic: it happens
// even when the backend call fails, and a late inbound update may still
// override it afterwards.
func (c *Controller) Reset(ctx context.Context) {
	err := c.cmds.ResetScale(ctx, c.scaleID)
	metrics.ObserveCommand("reset", err)
	if err != nil {
		c.notify.Notify(models.LevelError, "backend reset request failed")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.process = models.ProcessIdle
	c.vehicle = models.EmptyVehicle()
	c.results = nil
	c.selected = nil
	c.trace.Append(models.LevelInfo, "weighing process reset")
}

// OpenBarrier sends the barrier-open command. Success or failure only
// affects the trace; no local state changes.
func (c *Controller) OpenBarrier(ctx context.Context) {
	err := c.cmds.OpenBarrier(ctx)
	metrics.ObserveCommand("open_barrier", err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.trace.Append(models.LevelError, fmt.Sprintf("barrier open failed: %v", err))
		c.notify.Notify(models.LevelError, "barrier open failed")
		return
	}
	c.trace.Append(models.LevelInfo, "barrier open command sent")
}

// Simulator stimuli. Each is a thin passthrough whose only local effect is
// a trace entry; any state change arrives back over the subscription.

func (c *Controller) TriggerSensor(ctx context.Context) {
	c.simCommand(ctx, models.SimulatorCommand{Command: models.SimTriggerSensor}, "sensor trigger")
}

func (c *Controller) CaptureLPR(ctx context.Context) {
	c.simCommand(ctx, models.SimulatorCommand{Command: models.SimCaptureLPR}, "LPR capture")
}

func (c *Controller) TogglePosition(ctx context.Context) {
	c.simCommand(ctx, models.SimulatorCommand{Command: models.SimTogglePosition}, "vehicle position toggle")
}

func (c *Controller) SetWeight(ctx context.Context, weight float64) {
	c.simCommand(ctx, models.SimulatorCommand{
		Command: models.SimSetWeight,
		Params:  map[string]any{"weight": weight},
	}, fmt.Sprintf("simulated weight %.0f", weight))
}

func (c *Controller) simCommand(ctx context.Context, cmd models.SimulatorCommand, label string) {
	err := c.cmds.SimulatorCommand(ctx, cmd)
	metrics.ObserveCommand("simulator", err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.trace.Append(models.LevelError, fmt.Sprintf("simulator %s failed: %v", label, err))
		c.notify.Notify(models.LevelError, "simulator command failed")
		return
	}
	c.trace.Append(models.LevelInfo, fmt.Sprintf("simulator %s sent", label))
}

// findResult resolves an id in the cached result list. Callers hold c.mu.
func (c *Controller) findResult(id int64) *models.DispatchSearchResult {
	for i := range c.results {
		if c.results[i].DispatchID == id {
			return &c.results[i]
		}
	}
	return nil
}
