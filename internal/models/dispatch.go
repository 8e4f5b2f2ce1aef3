package models

import "time"

// DispatchSearchResult is a read-only projection of a dispatch that is
// ready for weighing (status REGISTERED).
type DispatchSearchResult struct {
	DispatchID  int64  `json:"dispatchId"`
	PlateNumber string `json:"plateNumber"`
	CompanyName string `json:"companyName"`
	ItemName    string `json:"itemName"`
	DriverName  string `json:"driverName"`
	Status      string `json:"status"`
}

// WeighingHistoryRecord is one completed (or in-progress) weighing fetched
// from the backend. The client treats the fetched list as fully replaceable.
type WeighingHistoryRecord struct {
	WeighingID  int64        `json:"weighingId"`
	DispatchID  *int64       `json:"dispatchId"`
	PlateNumber string       `json:"plateNumber"`
	CompanyName string       `json:"companyName"`
	ItemName    string       `json:"itemName"`
	Mode        WeighingMode `json:"weighingMode"`
	GrossWeight float64      `json:"grossWeight"`
	TareWeight  float64      `json:"tareWeight"`
	NetWeight   float64      `json:"netWeight"`
	CreatedAt   time.Time    `json:"createdAt"`
}
