// Package battery acquires the battery device of the host and decodes its
// status into human readable telemetry.
package battery

import (
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battmon/pkg/platform"
)

// Handle is an open channel to the battery device plus the tag the
// driver assigned to the battery. It is not safe for concurrent use:
// exactly one polling context may own it.
type Handle struct {
	ch     platform.Channel
	power  platform.Platform
	tag    uint32
	path   string
	closed bool
}

// Tag returns the driver-assigned battery tag.
func (h *Handle) Tag() uint32 {
	return h.tag
}

// Path returns the device path the channel was opened on.
func (h *Handle) Path() string {
	return h.path
}

// Close releases the channel. Only the first call has an effect.
func (h *Handle) Close() error {
	if h == nil || h.closed {
		return nil
	}
	h.closed = true

	logrus.WithField("path", h.path).Debug("closing battery channel")
	return h.ch.Close()
}

// Identity is the static description of the battery, fetched once.
type Identity struct {
	Chemistry           string  `json:"chemistry"`
	ChemistryCode       [4]byte `json:"-"`
	Rechargeable        bool    `json:"rechargeable"`
	Capabilities        uint32  `json:"capabilities"`
	DesignedCapacity    uint32  `json:"designedCapacity"`
	FullChargedCapacity uint32  `json:"fullChargedCapacity"`
	CycleCount          uint32  `json:"cycleCount"`
}

// RawStatus is one poll worth of driver and system readings.
type RawStatus struct {
	// Battery status query.
	PowerState uint32
	Capacity   uint32
	Voltage    uint32
	Rate       int32

	// System power state.
	ACLineStatus        uint8
	SaverFlag           uint8
	BatteryFlag         uint8
	BatteryLifePercent  uint8
	BatteryLifeTime     uint32
	BatteryFullLifeTime uint32
}

// PercentageUnknown is Status.Percentage when the system does not know it.
const PercentageUnknown = -1

// Status is the decoded telemetry of one poll. The percentage and both
// times are present or absent independently of each other.
type Status struct {
	Voltage      float64 `json:"voltage"`
	ACConnected  bool    `json:"acConnected"`
	SaverEnabled bool    `json:"saverEnabled"`
	State        string  `json:"state"`
	Percentage   int     `json:"percentage"`

	ShowTimeRemaining      bool   `json:"showTimeRemaining"`
	TimeRemaining          string `json:"timeRemaining,omitempty"`
	ShowTimeFromFullCharge bool   `json:"showTimeFromFullCharge"`
	TimeFromFullCharge     string `json:"timeFromFullCharge,omitempty"`

	PowerState uint32 `json:"powerState"`
	Capacity   uint32 `json:"capacity"`
	Rate       int32  `json:"rate"`
}

// HasPercentage reports whether Percentage holds a value.
func (s *Status) HasPercentage() bool {
	return s.Percentage != PercentageUnknown
}
