package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fatih/color"

	"github.com/charlie0129/battmon/pkg/battery"
)

func init() {
	color.NoColor = true
}

func TestIdentity(t *testing.T) {
	tests := []struct {
		name string
		id   *battery.Identity
		want string
	}{
		{
			name: "type only",
			id:   &battery.Identity{Chemistry: "Li-ion"},
			want: "Battery type: Li-ion\n",
		},
		{
			name: "with capacities",
			id:   &battery.Identity{Chemistry: "NiCad", DesignedCapacity: 50000, FullChargedCapacity: 42000, CycleCount: 300},
			want: "Battery type: NiCad\nDesigned capacity: 50000 mWh\nFull charge capacity: 42000 mWh\nCycle count: 300\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Identity(&buf, tt.id)
			if got := buf.String(); got != tt.want {
				t.Errorf("Identity() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		st   *battery.Status
		want string
	}{
		{
			name: "discharging",
			st: &battery.Status{
				Voltage:           12.45,
				State:             "High level",
				Percentage:        78,
				ShowTimeRemaining: true,
				TimeRemaining:     "2 hours 5 minutes",
			},
			want: "AC is disconnected\nBattery saver is disabled\n\n" +
				"Current state: 78% (High level)\nCurrent voltage: 12.45 V\n\n" +
				"Estimate time remaining: 2 hours 5 minutes\n",
		},
		{
			name: "unknown percentage and empty label",
			st: &battery.Status{
				Voltage:                11,
				ACConnected:            true,
				SaverEnabled:           true,
				Percentage:             battery.PercentageUnknown,
				ShowTimeFromFullCharge: true,
				TimeFromFullCharge:     "30 seconds",
			},
			want: "AC is connected\nBattery saver is enabled\n\n" +
				"Current state: unknown (Normal)\nCurrent voltage: 11 V\n\n" +
				"Time from full charge: 30 seconds\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Status(&buf, tt.st)
			if got := buf.String(); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, &battery.Status{Voltage: 12.45, Percentage: 50}); err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	var got battery.Status
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Voltage != 12.45 || got.Percentage != 50 {
		t.Errorf("JSON() round trip = %+v", got)
	}
}
