package battery

import "github.com/charlie0129/battmon/pkg/batclass"

// DecodeState turns the system battery flag into a label.
//
// The level bits are tested in order high, low, critical and each match
// replaces the previous one, so the last set bit wins. An unmodeled bit
// combination yields "".
func DecodeState(flag uint8) string {
	switch flag {
	case batclass.FlagNoBattery:
		return "No battery"
	case batclass.FlagUnknown:
		return "Unknown state"
	case 0:
		return "Normal, not charging"
	}

	charging := flag&batclass.FlagCharging != 0

	level := ""
	if flag&batclass.FlagHigh != 0 {
		level = "High"
	}
	if flag&batclass.FlagLow != 0 {
		level = "Low"
	}
	if flag&batclass.FlagCritical != 0 {
		level = "Critical"
	}

	switch {
	case charging && level != "":
		return "Charging at " + level + " level"
	case charging:
		return "Charging"
	case level != "":
		return level + " level"
	default:
		return ""
	}
}
