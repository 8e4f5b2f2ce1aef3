package station

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"weighstation/internal/models"
)

// fakeHistoryLoader counts reloads and signals each call.
type fakeHistoryLoader struct {
	mu     sync.Mutex
	calls  int
	resp   []models.WeighingHistoryRecord
	err    error
	called chan struct{}
}

func newFakeHistoryLoader(resp []models.WeighingHistoryRecord, err error) *fakeHistoryLoader {
	return &fakeHistoryLoader{resp: resp, err: err, called: make(chan struct{}, 8)}
}

func (f *fakeHistoryLoader) Reload(ctx context.Context) ([]models.WeighingHistoryRecord, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	f.called <- struct{}{}
	return f.resp, f.err
}

func (f *fakeHistoryLoader) waitForCall(t *testing.T) {
	t.Helper()
	select {
	case <-f.called:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a history reload call")
	}
}

func (f *fakeHistoryLoader) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestOnScaleStatus_OverwritesReadingAndMarksScaleOnline(t *testing.T) {
	c, _ := newTestController(&fakeCommands{})

	c.OnScaleStatus(models.ScaleStatusMessage{
		ScaleID:         "SCALE-01",
		CurrentWeight:   15230,
		Unit:            "kg",
		StabilityStatus: models.StabilityStable,
	})

	st := c.State()
	if st.Weight.CurrentWeight != 15230 || st.Weight.Unit != "kg" || st.Weight.Stability != models.StabilityStable {
		t.Fatalf("unexpected reading: %+v", st.Weight)
	}
	if st.Devices.Scale != models.StatusOnline {
		t.Fatalf("expected scale ONLINE after telemetry, got %s", st.Devices.Scale)
	}
}

func TestOnScaleStatus_DerivesStabilityFromFlag(t *testing.T) {
	c, _ := newTestController(&fakeCommands{})

	c.OnScaleStatus(models.ScaleStatusMessage{CurrentWeight: 10, IsStable: true})
	if got := c.State().Weight.Stability; got != models.StabilityStable {
		t.Fatalf("expected STABLE derived from flag, got %s", got)
	}

	c.OnScaleStatus(models.ScaleStatusMessage{CurrentWeight: 10})
	if got := c.State().Weight.Stability; got != models.StabilityUnstable {
		t.Fatalf("expected UNSTABLE derived from flag, got %s", got)
	}
}

func TestOnWeighingUpdate_CompleteLogsSuccessAndReloadsHistoryOnce(t *testing.T) {
	loader := newFakeHistoryLoader([]models.WeighingHistoryRecord{{WeighingID: 7, PlateNumber: "12가3456"}}, nil)
	n := &recordingNotifier{}
	c := NewController(&fakeCommands{}, loader, n, nil, "SCALE-01")

	c.OnWeighingUpdate(models.WeighingUpdateMessage{
		ProcessState: models.ProcessComplete,
		Message:      "계량 완료",
	})

	if got := c.State().Process; got != models.ProcessComplete {
		t.Fatalf("expected COMPLETE, got %s", got)
	}
	entries := c.Log()
	if len(entries) != 1 || entries[0].Level != models.LevelSuccess || entries[0].Message != "계량 완료" {
		t.Fatalf("expected one success entry with message text, got %+v", entries)
	}

	loader.waitForCall(t)
	// Give a stray duplicate goroutine a moment to show up.
	time.Sleep(50 * time.Millisecond)
	if got := loader.callCount(); got != 1 {
		t.Fatalf("expected exactly one history reload, got %d", got)
	}
	if got := c.History(); len(got) != 1 || got[0].WeighingID != 7 {
		t.Fatalf("expected reloaded history cached, got %+v", got)
	}
}

func TestOnWeighingUpdate_ReloadFailureIsSwallowed(t *testing.T) {
	loader := newFakeHistoryLoader(nil, errors.New("backend down"))
	n := &recordingNotifier{}
	c := NewController(&fakeCommands{}, loader, n, nil, "SCALE-01")

	c.OnWeighingUpdate(models.WeighingUpdateMessage{ProcessState: models.ProcessComplete})
	loader.waitForCall(t)
	time.Sleep(50 * time.Millisecond)

	if len(n.levels) != 0 {
		t.Fatalf("expected no user-facing signal, got %v", n.messages)
	}
	if got := c.History(); len(got) != 0 {
		t.Fatalf("expected history to stay stale, got %+v", got)
	}
}

func TestOnWeighingUpdate_ReplacesVehicleWholesale(t *testing.T) {
	c, _ := newTestController(&fakeCommands{})
	id := int64(42)

	c.OnWeighingUpdate(models.WeighingUpdateMessage{
		ProcessState: models.ProcessWeighing,
		DispatchID:   &id,
		PlateNumber:  "12가3456",
		CompanyName:  "Hanjin",
		ItemName:     "Scrap",
		DriverName:   "Kim",
	})

	st := c.State()
	if st.Vehicle.PlateNumber != "12가3456" || st.Vehicle.CompanyName != "Hanjin" {
		t.Fatalf("unexpected vehicle: %+v", st.Vehicle)
	}
	if st.Vehicle.DispatchID == nil || *st.Vehicle.DispatchID != 42 {
		t.Fatalf("expected dispatch id 42, got %v", st.Vehicle.DispatchID)
	}

	// A later partial identity message replaces the whole context with
	// default fill, not a merge.
	c.OnWeighingUpdate(models.WeighingUpdateMessage{
		ProcessState: models.ProcessWeighing,
		PlateNumber:  "34나7890",
	})
	st = c.State()
	if st.Vehicle.PlateNumber != "34나7890" {
		t.Fatalf("expected replaced plate, got %q", st.Vehicle.PlateNumber)
	}
	if st.Vehicle.CompanyName != models.UnknownField || st.Vehicle.DriverName != models.UnknownField {
		t.Fatalf("expected default fill, got %+v", st.Vehicle)
	}
}

func TestOnWeighingUpdate_NoIdentityKeepsVehicle(t *testing.T) {
	c, _ := newTestController(&fakeCommands{})
	c.OnWeighingUpdate(models.WeighingUpdateMessage{
		ProcessState: models.ProcessWeighing,
		PlateNumber:  "12가3456",
		CompanyName:  "Hanjin",
	})

	c.OnWeighingUpdate(models.WeighingUpdateMessage{ProcessState: models.ProcessStabilizing})

	st := c.State()
	if st.Process != models.ProcessStabilizing {
		t.Fatalf("expected STABILIZING, got %s", st.Process)
	}
	if st.Vehicle.PlateNumber != "12가3456" {
		t.Fatalf("expected vehicle kept without identity fields, got %+v", st.Vehicle)
	}
}

func TestOnWeighingUpdate_LevelDerivation(t *testing.T) {
	cases := []struct {
		state models.ProcessState
		level models.LogLevel
	}{
		{models.ProcessError, models.LevelError},
		{models.ProcessComplete, models.LevelSuccess},
		{models.ProcessWeighing, models.LevelInfo},
		{models.ProcessIdle, models.LevelInfo},
	}
	for _, tc := range cases {
		c, _ := newTestController(&fakeCommands{})
		c.OnWeighingUpdate(models.WeighingUpdateMessage{ProcessState: tc.state, Message: "msg"})
		if got := c.Log()[0].Level; got != tc.level {
			t.Fatalf("state %s: expected level %s, got %s", tc.state, tc.level, got)
		}
	}
}

func TestOnDeviceStatus_IsIdempotent(t *testing.T) {
	c, _ := newTestController(&fakeCommands{})
	msg := models.DeviceStatusMessage{
		DeviceType: models.DeviceBarrier,
		DeviceName: "barrier-1",
		Status:     models.StatusError,
		Message:    "motor fault",
	}

	c.OnDeviceStatus(msg)
	once := c.State().Devices

	c.OnDeviceStatus(msg)
	twice := c.State().Devices

	if once != twice {
		t.Fatalf("expected identical device state, got %+v vs %+v", once, twice)
	}
	if twice.Barrier != models.StatusError {
		t.Fatalf("expected barrier ERROR, got %s", twice.Barrier)
	}
	// Keys are independent.
	if twice.Scale != models.StatusOffline || twice.Network != models.StatusOffline {
		t.Fatalf("expected other keys untouched, got %+v", twice)
	}
}

func TestOnDeviceStatus_ErrorWithMessageLogsAnnotatedEntry(t *testing.T) {
	c, _ := newTestController(&fakeCommands{})

	c.OnDeviceStatus(models.DeviceStatusMessage{
		DeviceType: models.DeviceScale,
		Status:     models.StatusError,
		Message:    "load cell fault",
	})

	got := c.Log()[0]
	if got.Level != models.LevelError {
		t.Fatalf("expected error entry, got %s", got.Level)
	}
	if got.Message != "Scale: load cell fault" {
		t.Fatalf("expected annotated message, got %q", got.Message)
	}

	// ONLINE without message adds nothing to the trace.
	before := len(c.Log())
	c.OnDeviceStatus(models.DeviceStatusMessage{DeviceType: models.DeviceScale, Status: models.StatusOnline})
	if len(c.Log()) != before {
		t.Fatalf("expected no new entry for plain status update")
	}
}

func TestOnDeviceStatus_UnknownTagDropped(t *testing.T) {
	c, _ := newTestController(&fakeCommands{})
	before := c.State().Devices

	c.OnDeviceStatus(models.DeviceStatusMessage{DeviceType: "PRINTER", Status: models.StatusError, Message: "jam"})

	if c.State().Devices != before {
		t.Fatalf("expected unknown device tag ignored")
	}
	if len(c.Log()) != 0 {
		t.Fatalf("expected no trace entry for unknown tag")
	}
}

func TestTransportTransitions(t *testing.T) {
	c, _ := newTestController(&fakeCommands{})
	c.OnScaleStatus(models.ScaleStatusMessage{CurrentWeight: 100, StabilityStatus: models.StabilityStable})

	c.OnTransportUp()
	if got := c.State().Devices.Network; got != models.StatusOnline {
		t.Fatalf("expected network ONLINE, got %s", got)
	}

	c.OnTransportDown(errors.New("read: connection reset"))
	st := c.State()
	if st.Devices.Network != models.StatusOffline || st.Devices.Scale != models.StatusOffline {
		t.Fatalf("expected network and scale OFFLINE, got %+v", st.Devices)
	}
	if st.Weight.Stability != models.StabilityDisconnected {
		t.Fatalf("expected DISCONNECTED reading, got %s", st.Weight.Stability)
	}
	// The last reading itself remains visible to the operator.
	if st.Weight.CurrentWeight != 100 {
		t.Fatalf("expected last weight kept, got %.0f", st.Weight.CurrentWeight)
	}
}
