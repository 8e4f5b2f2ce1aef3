package models

// CreateWeighingRequest submits a manual weighing. GrossWeight is the last
// known scale reading at confirmation time, not a fresh measurement.
type CreateWeighingRequest struct {
	DispatchID   int64        `json:"dispatchId"`
	WeighingMode WeighingMode `json:"weighingMode"`
	PlateNumber  string       `json:"plateNumber"`
	GrossWeight  float64      `json:"grossWeight"`
}

// Simulator stimulus commands understood by the backend LPR simulator.
const (
	SimTriggerSensor  = "TRIGGER_SENSOR"
	SimCaptureLPR     = "CAPTURE_LPR"
	SimTogglePosition = "TOGGLE_POSITION"
	SimSetWeight      = "SET_WEIGHT"
)

// SimulatorCommand is a stimulus for the backend simulator. Params carries
// command-specific arguments, e.g. {"weight": 12500} for SET_WEIGHT.
type SimulatorCommand struct {
	Command string         `json:"command"`
	Params  map[string]any `json:"params,omitempty"`
}
