package battery

import (
	"errors"

	"github.com/charlie0129/battmon/pkg/batclass"
)

var errClosed = errors.New("battery handle is closed")

// Sample reads the current battery status through h. Failures are of
// kind StatusQueryFailed or SystemStateUnavailable and leave h usable
// for the next poll.
func Sample(h *Handle) (*Status, error) {
	raw, err := ReadRaw(h)
	if err != nil {
		return nil, err
	}
	return Decode(raw), nil
}

// ReadRaw issues the status query scoped to the handle's tag and reads
// the system power state.
func ReadRaw(h *Handle) (RawStatus, error) {
	if h.closed {
		return RawStatus{}, newError(StatusQueryFailed, "query battery status", errClosed)
	}

	in := batclass.Encode(batclass.WaitStatus{BatteryTag: h.tag})
	out := make([]byte, batclass.StatusSize)
	n, err := h.ch.Control(batclass.IOCTLQueryStatus, in, out)
	if err != nil {
		return RawStatus{}, newError(StatusQueryFailed, "query battery status", err)
	}
	var st batclass.Status
	if err := batclass.Decode(out[:n], &st); err != nil {
		return RawStatus{}, newError(StatusQueryFailed, "query battery status", err)
	}

	ps, err := h.power.SystemPowerStatus()
	if err != nil {
		return RawStatus{}, newError(SystemStateUnavailable, "read system power status", err)
	}

	return RawStatus{
		PowerState:          st.PowerState,
		Capacity:            st.Capacity,
		Voltage:             st.Voltage,
		Rate:                st.Rate,
		ACLineStatus:        ps.ACLineStatus,
		SaverFlag:           ps.SystemStatusFlag,
		BatteryFlag:         ps.BatteryFlag,
		BatteryLifePercent:  ps.BatteryLifePercent,
		BatteryLifeTime:     ps.BatteryLifeTime,
		BatteryFullLifeTime: ps.BatteryFullLifeTime,
	}, nil
}

// Decode builds a Status from raw readings.
func Decode(raw RawStatus) *Status {
	st := &Status{
		Voltage:      float64(raw.Voltage) / 1000,
		ACConnected:  raw.ACLineStatus == batclass.ACOnline,
		SaverEnabled: raw.SaverFlag > 0,
		State:        DecodeState(raw.BatteryFlag),
		Percentage:   PercentageUnknown,
		PowerState:   raw.PowerState,
		Capacity:     raw.Capacity,
		Rate:         raw.Rate,
	}

	if raw.BatteryLifePercent <= 100 {
		st.Percentage = int(raw.BatteryLifePercent)
	}

	if raw.BatteryLifeTime != batclass.UnknownTime {
		st.ShowTimeRemaining = true
		st.TimeRemaining = FormatDuration(raw.BatteryLifeTime)
	}
	if raw.BatteryFullLifeTime != batclass.UnknownTime {
		st.ShowTimeFromFullCharge = true
		st.TimeFromFullCharge = FormatDuration(raw.BatteryFullLifeTime)
	}

	return st
}
