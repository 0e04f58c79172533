// Package render prints battery telemetry for people and for scripts.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/charlie0129/battmon/pkg/battery"
)

// stateNormal is shown when no level bit is set.
const stateNormal = "Normal"

var (
	good = color.New(color.FgGreen)
	warn = color.New(color.FgYellow)
	bad  = color.New(color.Bold, color.FgRed)
)

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}

// Identity writes the static description of the battery.
func Identity(w io.Writer, id *battery.Identity) {
	fmt.Fprintf(w, "Battery type: %s\n", bold("%s", id.Chemistry))
	if id.DesignedCapacity > 0 {
		fmt.Fprintf(w, "Designed capacity: %d mWh\n", id.DesignedCapacity)
	}
	if id.FullChargedCapacity > 0 {
		fmt.Fprintf(w, "Full charge capacity: %d mWh\n", id.FullChargedCapacity)
	}
	if id.CycleCount > 0 {
		fmt.Fprintf(w, "Cycle count: %d\n", id.CycleCount)
	}
}

// Status writes one decoded sample. Times are only printed when present.
func Status(w io.Writer, st *battery.Status) {
	if st.ACConnected {
		fmt.Fprintf(w, "AC is %s\n", good.Sprint("connected"))
	} else {
		fmt.Fprintf(w, "AC is %s\n", warn.Sprint("disconnected"))
	}
	if st.SaverEnabled {
		fmt.Fprintf(w, "Battery saver is %s\n", warn.Sprint("enabled"))
	} else {
		fmt.Fprintln(w, "Battery saver is disabled")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Current state: %s (%s)\n", percentage(st), state(st.State))
	fmt.Fprintf(w, "Current voltage: %s V\n", strconv.FormatFloat(st.Voltage, 'f', -1, 64))
	fmt.Fprintln(w)

	if st.ShowTimeRemaining {
		fmt.Fprintf(w, "Estimate time remaining: %s\n", st.TimeRemaining)
	}
	if st.ShowTimeFromFullCharge {
		fmt.Fprintf(w, "Time from full charge: %s\n", st.TimeFromFullCharge)
	}
}

func percentage(st *battery.Status) string {
	if !st.HasPercentage() {
		return "unknown"
	}
	s := strconv.Itoa(st.Percentage) + "%"
	switch {
	case st.Percentage < 10:
		return bad.Sprint(s)
	case st.Percentage < 33:
		return warn.Sprint(s)
	default:
		return bold("%s", s)
	}
}

func state(label string) string {
	switch {
	case label == "":
		return stateNormal
	case strings.Contains(label, "Critical"):
		return bad.Sprint(label)
	case strings.Contains(label, "Low"):
		return warn.Sprint(label)
	}
	return label
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
