package battery

import (
	"errors"
	"math"
	"syscall"
	"testing"

	"github.com/charlie0129/battmon/pkg/batclass"
	"github.com/charlie0129/battmon/pkg/platform"
)

func TestDecode(t *testing.T) {
	raw := RawStatus{
		PowerState:          batclass.PowerDischarging,
		Capacity:            30000,
		Voltage:             12450,
		Rate:                -9000,
		ACLineStatus:        batclass.ACOffline,
		SaverFlag:           1,
		BatteryFlag:         batclass.FlagLow,
		BatteryLifePercent:  25,
		BatteryLifeTime:     5400,
		BatteryFullLifeTime: 21600,
	}

	st := Decode(raw)

	if math.Abs(st.Voltage-12.45) > 1e-9 {
		t.Errorf("Voltage = %v, want 12.45", st.Voltage)
	}
	if st.ACConnected {
		t.Errorf("ACConnected = true, want false")
	}
	if !st.SaverEnabled {
		t.Errorf("SaverEnabled = false, want true")
	}
	if st.State != "Low level" {
		t.Errorf("State = %q, want %q", st.State, "Low level")
	}
	if st.Percentage != 25 || !st.HasPercentage() {
		t.Errorf("Percentage = %v, want 25", st.Percentage)
	}
	if !st.ShowTimeRemaining || st.TimeRemaining != "1 hours and 30 minutes" {
		t.Errorf("TimeRemaining = %v %q", st.ShowTimeRemaining, st.TimeRemaining)
	}
	if !st.ShowTimeFromFullCharge || st.TimeFromFullCharge != "6 hours and 0 minutes" {
		t.Errorf("TimeFromFullCharge = %v %q", st.ShowTimeFromFullCharge, st.TimeFromFullCharge)
	}
	if st.Rate != -9000 || st.Capacity != 30000 || st.PowerState != batclass.PowerDischarging {
		t.Errorf("raw battery fields = %d %d %d", st.Rate, st.Capacity, st.PowerState)
	}
}

func TestDecodeOptionalFields(t *testing.T) {
	tests := []struct {
		name          string
		percent       uint8
		lifeTime      uint32
		fullLifeTime  uint32
		wantPercent   int
		wantRemaining bool
		wantFull      bool
	}{
		{"all unknown", batclass.UnknownPercentage, batclass.UnknownTime, batclass.UnknownTime, PercentageUnknown, false, false},
		{"only percentage", 50, batclass.UnknownTime, batclass.UnknownTime, 50, false, false},
		{"only remaining", batclass.UnknownPercentage, 0, batclass.UnknownTime, PercentageUnknown, true, false},
		{"only full", batclass.UnknownPercentage, batclass.UnknownTime, 60, PercentageUnknown, false, true},
		{"all known", 0, 0, 0, 0, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Decode(RawStatus{
				BatteryLifePercent:  tt.percent,
				BatteryLifeTime:     tt.lifeTime,
				BatteryFullLifeTime: tt.fullLifeTime,
			})
			if st.Percentage != tt.wantPercent {
				t.Errorf("Percentage = %v, want %v", st.Percentage, tt.wantPercent)
			}
			if st.ShowTimeRemaining != tt.wantRemaining {
				t.Errorf("ShowTimeRemaining = %v, want %v", st.ShowTimeRemaining, tt.wantRemaining)
			}
			if !tt.wantRemaining && st.TimeRemaining != "" {
				t.Errorf("TimeRemaining = %q, want it unformatted", st.TimeRemaining)
			}
			if st.ShowTimeFromFullCharge != tt.wantFull {
				t.Errorf("ShowTimeFromFullCharge = %v, want %v", st.ShowTimeFromFullCharge, tt.wantFull)
			}
			if !tt.wantFull && st.TimeFromFullCharge != "" {
				t.Errorf("TimeFromFullCharge = %q, want it unformatted", st.TimeFromFullCharge)
			}
		})
	}
}

func TestDecodeZeroRemainingTime(t *testing.T) {
	st := Decode(RawStatus{BatteryLifeTime: 0, BatteryFullLifeTime: batclass.UnknownTime})
	if !st.ShowTimeRemaining || st.TimeRemaining != "0 seconds" {
		t.Errorf("TimeRemaining = %v %q, want 0 seconds", st.ShowTimeRemaining, st.TimeRemaining)
	}
}

func TestSample(t *testing.T) {
	m := newBatteryMock()
	h, _, err := Acquire(m)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer h.Close()

	st, err := Sample(h)
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if st.State != "Charging at High level" {
		t.Errorf("State = %q", st.State)
	}
	if !st.ACConnected {
		t.Errorf("ACConnected = false, want true")
	}
	if st.Percentage != 78 {
		t.Errorf("Percentage = %v, want 78", st.Percentage)
	}
	if math.Abs(st.Voltage-12.45) > 1e-9 {
		t.Errorf("Voltage = %v, want 12.45", st.Voltage)
	}
	if st.ShowTimeRemaining || st.ShowTimeFromFullCharge {
		t.Errorf("times should be hidden: %+v", st)
	}

	ins := m.ControlCalls(batclass.IOCTLQueryStatus)
	if len(ins) != 1 || len(ins[0]) != batclass.WaitStatusSize {
		t.Fatalf("status query inputs = %v", ins)
	}
	var w batclass.WaitStatus
	if err := batclass.Decode(ins[0], &w); err != nil || w.BatteryTag != 7 || w.Timeout != 0 {
		t.Errorf("status query = %+v, %v", w, err)
	}
}

func TestSampleFailures(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(m *platform.Mock)
		wantKind ErrorKind
	}{
		{
			name: "status query fails",
			setup: func(m *platform.Mock) {
				m.QueueReply(batclass.IOCTLQueryStatus, platform.Reply{Err: syscall.Errno(170)})
			},
			wantKind: StatusQueryFailed,
		},
		{
			name: "short status",
			setup: func(m *platform.Mock) {
				m.QueueReply(batclass.IOCTLQueryStatus, platform.Reply{Out: make([]byte, 4)})
			},
			wantKind: StatusQueryFailed,
		},
		{
			name:     "system state unavailable",
			setup:    func(m *platform.Mock) { m.PowerErr = syscall.Errno(1) },
			wantKind: SystemStateUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newBatteryMock()
			h, _, err := Acquire(m)
			if err != nil {
				t.Fatalf("Acquire() error = %v", err)
			}
			defer h.Close()
			tt.setup(m)

			st, err := Sample(h)
			if st != nil {
				t.Errorf("Sample() returned a status on failure")
			}
			var berr *Error
			if !errors.As(err, &berr) || berr.Kind != tt.wantKind {
				t.Fatalf("Sample() error = %v, want kind %v", err, tt.wantKind)
			}
			if !berr.Kind.Retryable() {
				t.Errorf("Kind %v should be retryable", berr.Kind)
			}
		})
	}
}

func TestSampleRetryKeepsTag(t *testing.T) {
	m := newBatteryMock()
	h, _, err := Acquire(m)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer h.Close()

	m.QueueReply(batclass.IOCTLQueryStatus, platform.Reply{Err: syscall.Errno(170)})
	if _, err := Sample(h); !errors.Is(err, ErrStatusQueryFailed) {
		t.Fatalf("first Sample() error = %v, want %v", err, ErrStatusQueryFailed)
	}
	if _, err := Sample(h); err != nil {
		t.Fatalf("second Sample() error = %v", err)
	}

	ins := m.ControlCalls(batclass.IOCTLQueryStatus)
	if len(ins) != 2 {
		t.Fatalf("status queries = %d, want 2", len(ins))
	}
	if string(ins[0]) != string(ins[1]) {
		t.Errorf("status query input changed after a failure: %x != %x", ins[0], ins[1])
	}
	if h.Tag() != 7 {
		t.Errorf("Tag() = %v, want 7", h.Tag())
	}
}

func TestSampleClosedHandle(t *testing.T) {
	m := newBatteryMock()
	h, _, err := Acquire(m)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	_ = h.Close()

	if _, err := Sample(h); !errors.Is(err, ErrStatusQueryFailed) {
		t.Errorf("Sample() on a closed handle error = %v", err)
	}
}
