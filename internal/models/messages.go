package models

// Inbound broker message payloads. Each topic carries exactly one of these
// shapes; the subscriber decodes and dispatches them as a tagged union
// (one handler per variant) rather than loosely typed callbacks.

// DeviceType is the wire-level tag for device-status messages.
type DeviceType string

const (
	DeviceScale   DeviceType = "SCALE"
	DeviceDisplay DeviceType = "DISPLAY"
	DeviceBarrier DeviceType = "BARRIER"
	DeviceNetwork DeviceType = "NETWORK"
)

// ScaleStatusMessage is the live reading pushed by the weighbridge scale.
type ScaleStatusMessage struct {
	ScaleID         string          `json:"scaleId"`
	CurrentWeight   float64         `json:"currentWeight"`
	Unit            string          `json:"unit"`
	IsStable        bool            `json:"isStable"`
	StabilityStatus StabilityStatus `json:"stabilityStatus"`
	Timestamp       string          `json:"timestamp"`
}

// WeighingUpdateMessage advances the weighing workflow. Identity fields are
// optional; when plate or company is present the whole vehicle context is
// replaced.
type WeighingUpdateMessage struct {
	WeighingID   int64        `json:"weighingId"`
	DispatchID   *int64       `json:"dispatchId,omitempty"`
	ProcessState ProcessState `json:"processState"`
	WeighingMode WeighingMode `json:"weighingMode"`
	PlateNumber  string       `json:"plateNumber,omitempty"`
	GrossWeight  *float64     `json:"grossWeight,omitempty"`
	TareWeight   *float64     `json:"tareWeight,omitempty"`
	NetWeight    *float64     `json:"netWeight,omitempty"`
	CompanyName  string       `json:"companyName,omitempty"`
	ItemName     string       `json:"itemName,omitempty"`
	DriverName   string       `json:"driverName,omitempty"`
	Message      string       `json:"message,omitempty"`
	Timestamp    string       `json:"timestamp"`
}

// DeviceStatusMessage reports connectivity or faults for one station device.
type DeviceStatusMessage struct {
	DeviceType DeviceType       `json:"deviceType"`
	DeviceName string           `json:"deviceName"`
	Status     ConnectionStatus `json:"status"`
	Message    string           `json:"message,omitempty"`
	Timestamp  string           `json:"timestamp"`
}
