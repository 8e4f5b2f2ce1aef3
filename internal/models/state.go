package models

// ProcessState is the weighing workflow phase for the scale in view.
// The backend owns the workflow state machine; the client applies whatever
// state the last weighing update carried.
type ProcessState string

const (
	ProcessIdle        ProcessState = "IDLE"
	ProcessWeighing    ProcessState = "WEIGHING"
	ProcessStabilizing ProcessState = "STABILIZING"
	ProcessComplete    ProcessState = "COMPLETE"
	ProcessError       ProcessState = "ERROR"
)

// WeighingMode is operator-selected and never set by inbound messages.
type WeighingMode string

const (
	ModeAuto   WeighingMode = "AUTO"
	ModeManual WeighingMode = "MANUAL"
)

// StabilityStatus describes the scale reading quality.
type StabilityStatus string

const (
	StabilityUnstable     StabilityStatus = "UNSTABLE"
	StabilityStable       StabilityStatus = "STABLE"
	StabilityError        StabilityStatus = "ERROR"
	StabilityDisconnected StabilityStatus = "DISCONNECTED"
)

// ConnectionStatus is the per-device connectivity state.
type ConnectionStatus string

const (
	StatusOnline  ConnectionStatus = "ONLINE"
	StatusOffline ConnectionStatus = "OFFLINE"
	StatusError   ConnectionStatus = "ERROR"
)

// UnknownField is the sentinel for vehicle fields not currently in view.
const UnknownField = "-"

// WeightData is the live scale reading. Defaults to DISCONNECTED/0 until
// the first scale-status message arrives.
type WeightData struct {
	CurrentWeight float64         `json:"currentWeight"`
	Stability     StabilityStatus `json:"stability"`
	Unit          string          `json:"unit"`
}

// VehicleInfo identifies the vehicle/dispatch currently being weighed.
// It is replaced wholesale, never merged field by field.
type VehicleInfo struct {
	PlateNumber string `json:"plateNumber"`
	CompanyName string `json:"companyName"`
	ItemName    string `json:"itemName"`
	DriverName  string `json:"driverName"`
	DispatchID  *int64 `json:"dispatchId"`
}

// EmptyVehicle returns the sentinel-filled VehicleInfo.
func EmptyVehicle() VehicleInfo {
	return VehicleInfo{
		PlateNumber: UnknownField,
		CompanyName: UnknownField,
		ItemName:    UnknownField,
		DriverName:  UnknownField,
	}
}

// DeviceConnectionState tracks the four fixed station devices. Keys are
// updated independently; scale ONLINE implies nothing about network.
type DeviceConnectionState struct {
	Scale   ConnectionStatus `json:"scale"`
	Display ConnectionStatus `json:"display"`
	Barrier ConnectionStatus `json:"barrier"`
	Network ConnectionStatus `json:"network"`
}

// LogLevel classifies a status log entry.
type LogLevel string

const (
	LevelInfo    LogLevel = "info"
	LevelSuccess LogLevel = "success"
	LevelWarning LogLevel = "warning"
	LevelError   LogLevel = "error"
)

// StatusLogEntry is one line of the local operational trace. Never persisted
// server-side; ids are client-scoped and reset on restart.
type StatusLogEntry struct {
	ID        int64    `json:"id"`
	Timestamp string   `json:"timestamp"`
	Message   string   `json:"message"`
	Level     LogLevel `json:"level"`
}
