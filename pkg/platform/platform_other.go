//go:build !windows

package platform

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/distatus/battery"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battmon/pkg/batclass"
)

const pathPrefix = `\\?\battery#`

// Emulated serves the battery class protocol from the battery readings
// of the OS (sysfs, IOKit, ...) so that battmon runs on hosts without
// a battery class driver.
type Emulated struct {
	getAll func() ([]*battery.Battery, error)
	get    func(idx int) (*battery.Battery, error)
}

// New returns the platform of this host.
func New() Platform {
	return &Emulated{
		getAll: battery.GetAll,
		get:    battery.Get,
	}
}

func (e *Emulated) Enumerate(_ GUID) (DeviceSet, error) {
	logrus.Tracef("Enumerate called")

	batteries, err := e.getAll()
	if err != nil && len(batteries) == 0 {
		return nil, pkgerrors.Wrap(err, "failed to list batteries")
	}

	return &emulatedSet{count: len(batteries)}, nil
}

func (e *Emulated) Open(path string) (Channel, error) {
	logrus.WithField("path", path).Trace("Open called")

	idx, err := strconv.Atoi(strings.TrimPrefix(path, pathPrefix))
	if err != nil || !strings.HasPrefix(path, pathPrefix) {
		return nil, ErrFileNotFound
	}
	if _, err := e.get(idx); err != nil {
		return nil, pkgerrors.Wrapf(ErrFileNotFound, "battery %d: %v", idx, err)
	}

	return &emulatedChannel{e: e, idx: idx}, nil
}

func (e *Emulated) SystemPowerStatus() (PowerStatus, error) {
	logrus.Tracef("SystemPowerStatus called")

	batteries, err := e.getAll()
	if err != nil && len(batteries) == 0 {
		return PowerStatus{}, pkgerrors.Wrap(err, "failed to list batteries")
	}

	for _, bat := range batteries {
		if bat != nil {
			return powerStatusOf(bat), nil
		}
	}

	return PowerStatus{
		ACLineStatus:        batclass.ACOnline,
		BatteryFlag:         batclass.FlagNoBattery,
		BatteryLifePercent:  batclass.UnknownPercentage,
		BatteryLifeTime:     batclass.UnknownTime,
		BatteryFullLifeTime: batclass.UnknownTime,
	}, nil
}

func powerStatusOf(bat *battery.Battery) PowerStatus {
	st := PowerStatus{
		ACLineStatus:        batclass.ACOffline,
		BatteryLifePercent:  batclass.UnknownPercentage,
		BatteryLifeTime:     batclass.UnknownTime,
		BatteryFullLifeTime: batclass.UnknownTime,
	}

	if bat.State == battery.Charging || bat.State == battery.Full {
		st.ACLineStatus = batclass.ACOnline
	}

	if bat.Full <= 0 {
		st.BatteryFlag = batclass.FlagUnknown
		return st
	}

	pct := bat.Current / bat.Full * 100
	st.BatteryLifePercent = uint8(math.Min(100, math.Max(0, math.Round(pct))))

	switch {
	case pct < 5:
		st.BatteryFlag = batclass.FlagCritical
	case pct < 33:
		st.BatteryFlag = batclass.FlagLow
	case pct > 66:
		st.BatteryFlag = batclass.FlagHigh
	}
	if bat.State == battery.Charging {
		st.BatteryFlag |= batclass.FlagCharging
	}

	if bat.State == battery.Discharging && bat.ChargeRate > 0 {
		st.BatteryLifeTime = uint32(bat.Current / bat.ChargeRate * 3600)
		st.BatteryFullLifeTime = uint32(bat.Full / bat.ChargeRate * 3600)
	}

	return st
}

type emulatedSet struct {
	count int
}

func (s *emulatedSet) Interface(index int) (Interface, error) {
	if index >= s.count {
		return Interface{}, ErrNoMoreItems
	}
	return Interface{ClassGUID: BatteryClass, Reserved: uintptr(index)}, nil
}

func (s *emulatedSet) InterfacePath(iface Interface, buf []byte) (string, int, error) {
	path := fmt.Sprintf("%s%d", pathPrefix, iface.Reserved)
	if len(buf) < len(path) {
		return "", len(path), ErrInsufficientBuffer
	}
	return string(buf[:copy(buf, path)]), len(path), nil
}

func (s *emulatedSet) Close() error {
	return nil
}

type emulatedChannel struct {
	e   *Emulated
	idx int
}

// tag is never batclass.TagInvalid.
func (c *emulatedChannel) tag() uint32 {
	return uint32(c.idx) + 1
}

func (c *emulatedChannel) Control(code uint32, in, out []byte) (int, error) {
	logrus.Tracef("Control(%#x) called", code)

	switch code {
	case batclass.IOCTLQueryTag:
		return copy(out, batclass.EncodeTag(c.tag())), nil
	case batclass.IOCTLQueryInformation:
		var q batclass.QueryInformation
		if err := batclass.Decode(in, &q); err != nil {
			return 0, ErrInsufficientBuffer
		}
		if q.BatteryTag != c.tag() {
			return 0, ErrFileNotFound
		}
		bat, err := c.e.get(c.idx)
		if err != nil {
			return 0, pkgerrors.Wrap(err, "failed to read battery")
		}
		return copy(out, batclass.Encode(informationOf(bat))), nil
	case batclass.IOCTLQueryStatus:
		var w batclass.WaitStatus
		if err := batclass.Decode(in, &w); err != nil {
			return 0, ErrInsufficientBuffer
		}
		if w.BatteryTag != c.tag() {
			return 0, ErrFileNotFound
		}
		bat, err := c.e.get(c.idx)
		if err != nil {
			return 0, pkgerrors.Wrap(err, "failed to read battery")
		}
		return copy(out, batclass.Encode(statusOf(bat))), nil
	default:
		return 0, fmt.Errorf("unsupported control code %#x", code)
	}
}

func (c *emulatedChannel) Close() error {
	return nil
}

// The OS battery API does not expose the chemistry, so the code is left
// zeroed and reads as unrecognized.
func informationOf(bat *battery.Battery) batclass.Information {
	return batclass.Information{
		Technology:          1,
		DesignedCapacity:    uint32(bat.Design),
		FullChargedCapacity: uint32(bat.Full),
	}
}

func statusOf(bat *battery.Battery) batclass.Status {
	st := batclass.Status{
		Capacity: uint32(bat.Current),
		Voltage:  uint32(math.Round(bat.Voltage * 1000)),
		Rate:     int32(bat.ChargeRate),
	}

	switch bat.State {
	case battery.Charging:
		st.PowerState = batclass.PowerOnLine | batclass.PowerCharging
	case battery.Discharging:
		st.PowerState = batclass.PowerDischarging
		st.Rate = -st.Rate
	case battery.Full:
		st.PowerState = batclass.PowerOnLine
	}

	if bat.Voltage <= 0 {
		st.Voltage = batclass.UnknownVoltage
	}

	return st
}
