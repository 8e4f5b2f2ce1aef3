package station

import (
	"context"

	"weighstation/internal/models"
)

// Inbound message handlers. These are invoked by the subscription layer
// only; the presentation layer never calls them.

// OnScaleStatus overwrites the live reading. Receiving any scale telemetry
// is taken as evidence the scale is reachable, so the scale device key is
// marked ONLINE here rather than by a dedicated heartbeat.
func (c *Controller) OnScaleStatus(msg models.ScaleStatusMessage) {
	stability := msg.StabilityStatus
	if stability == "" {
		stability = models.StabilityUnstable
		if msg.IsStable {
			stability = models.StabilityStable
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.weight = models.WeightData{
		CurrentWeight: msg.CurrentWeight,
		Stability:     stability,
		Unit:          msg.Unit,
	}
	c.devices.Scale = models.StatusOnline
}

// OnWeighingUpdate applies a workflow update. The backend owns the state
// machine; whatever state the message carries is applied without a local
// transition table. Vehicle identity, when present, replaces the whole
// vehicle context. A COMPLETE state kicks off an asynchronous history
// reload whose failure is swallowed.
func (c *Controller) OnWeighingUpdate(msg models.WeighingUpdateMessage) {
	c.mu.Lock()
	c.process = msg.ProcessState

	if msg.PlateNumber != "" || msg.CompanyName != "" {
		c.vehicle = models.VehicleInfo{
			PlateNumber: orUnknown(msg.PlateNumber),
			CompanyName: orUnknown(msg.CompanyName),
			ItemName:    orUnknown(msg.ItemName),
			DriverName:  orUnknown(msg.DriverName),
			DispatchID:  msg.DispatchID,
		}
	}

	if msg.Message != "" {
		c.trace.Append(levelForProcess(msg.ProcessState), msg.Message)
	}
	complete := msg.ProcessState == models.ProcessComplete
	c.mu.Unlock()

	if complete && c.history != nil {
		go c.reloadHistory()
	}
}

// OnDeviceStatus overwrites the addressed device key. Unknown device tags
// are dropped. An ERROR status with a message also lands in the trace,
// annotated with the device's display name.
func (c *Controller) OnDeviceStatus(msg models.DeviceStatusMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch msg.DeviceType {
	case models.DeviceScale:
		c.devices.Scale = msg.Status
	case models.DeviceDisplay:
		c.devices.Display = msg.Status
	case models.DeviceBarrier:
		c.devices.Barrier = msg.Status
	case models.DeviceNetwork:
		c.devices.Network = msg.Status
	default:
		return
	}

	if msg.Status == models.StatusError && msg.Message != "" {
		c.trace.Append(models.LevelError, deviceDisplayName(msg.DeviceType)+": "+msg.Message)
	}
}

// OnTransportUp is called by the subscription layer after a successful
// (re)connect. The transport is the only writer of connectivity-driven
// ONLINE/OFFLINE transitions.
func (c *Controller) OnTransportUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.devices.Network = models.StatusOnline
	c.trace.Append(models.LevelInfo, "station telemetry connected")
}

// OnTransportDown marks the network and scale unreachable until telemetry
// resumes. The rest of the state is left as-is for the operator to read.
func (c *Controller) OnTransportDown(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.devices.Network = models.StatusOffline
	c.devices.Scale = models.StatusOffline
	c.weight.Stability = models.StabilityDisconnected
	c.trace.Append(models.LevelWarning, "station telemetry connection lost")
	if err != nil && c.log != nil {
		c.log.Warnw("telemetry disconnected", "err", err)
	}
}

func (c *Controller) reloadHistory() {
	records, err := c.history.Reload(context.Background())
	if err != nil {
		// Stale history is acceptable; the next COMPLETE will retry.
		if c.log != nil {
			c.log.Debugw("history reload failed", "err", err)
		}
		return
	}
	c.mu.Lock()
	c.recent = records
	c.mu.Unlock()
}

// levelForProcess derives the trace level from the workflow state.
func levelForProcess(state models.ProcessState) models.LogLevel {
	switch state {
	case models.ProcessError:
		return models.LevelError
	case models.ProcessComplete:
		return models.LevelSuccess
	default:
		return models.LevelInfo
	}
}

func deviceDisplayName(t models.DeviceType) string {
	switch t {
	case models.DeviceScale:
		return "Scale"
	case models.DeviceDisplay:
		return "Display board"
	case models.DeviceBarrier:
		return "Barrier"
	case models.DeviceNetwork:
		return "Network"
	default:
		return string(t)
	}
}

func orUnknown(s string) string {
	if s == "" {
		return models.UnknownField
	}
	return s
}
