//go:build !windows

package platform

import (
	"errors"
	"testing"

	"github.com/distatus/battery"

	"github.com/charlie0129/battmon/pkg/batclass"
)

func newEmulated(bats ...*battery.Battery) *Emulated {
	return &Emulated{
		getAll: func() ([]*battery.Battery, error) { return bats, nil },
		get: func(idx int) (*battery.Battery, error) {
			if idx >= len(bats) {
				return nil, errors.New("no such battery")
			}
			return bats[idx], nil
		},
	}
}

func TestEmulatedNoBattery(t *testing.T) {
	set, err := newEmulated().Enumerate(BatteryClass)
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}
	if _, err := set.Interface(0); !errors.Is(err, ErrNoMoreItems) {
		t.Errorf("Interface(0) error = %v, want %v", err, ErrNoMoreItems)
	}
}

func TestEmulatedProtocol(t *testing.T) {
	e := newEmulated(&battery.Battery{
		State:      battery.Discharging,
		Current:    25000,
		Full:       50000,
		Design:     60000,
		ChargeRate: 10000,
		Voltage:    12.45,
	})

	set, err := e.Enumerate(BatteryClass)
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}
	iface, err := set.Interface(0)
	if err != nil {
		t.Fatalf("Interface() error = %v", err)
	}
	_, required, err := set.InterfacePath(iface, nil)
	if !errors.Is(err, ErrInsufficientBuffer) {
		t.Fatalf("InterfacePath() probe error = %v, want %v", err, ErrInsufficientBuffer)
	}
	path, _, err := set.InterfacePath(iface, make([]byte, required))
	if err != nil {
		t.Fatalf("InterfacePath() error = %v", err)
	}

	ch, err := e.Open(path)
	if err != nil {
		t.Fatalf("Open(%q) error = %v", path, err)
	}

	out := make([]byte, batclass.TagSize)
	if _, err := ch.Control(batclass.IOCTLQueryTag, nil, out); err != nil {
		t.Fatalf("tag query error = %v", err)
	}
	tag, _ := batclass.DecodeTag(out)

	stale := batclass.Encode(batclass.WaitStatus{BatteryTag: tag + 1})
	if _, err := ch.Control(batclass.IOCTLQueryStatus, stale, make([]byte, batclass.StatusSize)); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("status query with stale tag error = %v, want %v", err, ErrFileNotFound)
	}

	out = make([]byte, batclass.StatusSize)
	if _, err := ch.Control(batclass.IOCTLQueryStatus, batclass.Encode(batclass.WaitStatus{BatteryTag: tag}), out); err != nil {
		t.Fatalf("status query error = %v", err)
	}
	var st batclass.Status
	if err := batclass.Decode(out, &st); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if st.Voltage != 12450 || st.Rate != -10000 || st.PowerState != batclass.PowerDischarging {
		t.Errorf("status = %+v", st)
	}

	ps, err := e.SystemPowerStatus()
	if err != nil {
		t.Fatalf("SystemPowerStatus() error = %v", err)
	}
	want := PowerStatus{
		ACLineStatus:        batclass.ACOffline,
		BatteryFlag:         0,
		BatteryLifePercent:  50,
		BatteryLifeTime:     9000,
		BatteryFullLifeTime: 18000,
	}
	if ps != want {
		t.Errorf("SystemPowerStatus() = %+v, want %+v", ps, want)
	}
}

func TestPowerStatusFlags(t *testing.T) {
	tests := []struct {
		name string
		bat  battery.Battery
		want uint8
	}{
		{"charging low", battery.Battery{State: battery.Charging, Current: 10, Full: 100}, batclass.FlagCharging | batclass.FlagLow},
		{"critical", battery.Battery{State: battery.Discharging, Current: 3, Full: 100}, batclass.FlagCritical},
		{"high", battery.Battery{State: battery.Full, Current: 100, Full: 100}, batclass.FlagHigh},
		{"unknown capacity", battery.Battery{State: battery.Unknown}, batclass.FlagUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := powerStatusOf(&tt.bat).BatteryFlag; got != tt.want {
				t.Errorf("BatteryFlag = %#x, want %#x", got, tt.want)
			}
		})
	}
}
