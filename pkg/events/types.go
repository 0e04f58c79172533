package events

import (
	"encoding/json"

	"github.com/charlie0129/battmon/pkg/battery"
)

// Event name constants
const (
	StatusSampled = "battery.status"
	SampleFailed  = "battery.error"
)

// Event is a generic SSE event from daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// StatusEvent is the typed payload for battery.status.
type StatusEvent struct {
	Status *battery.Status `json:"status"`
	Ts     int64           `json:"ts"`
}

// SampleErrorEvent is the typed payload for battery.error.
type SampleErrorEvent struct {
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Failures int    `json:"failures"`
	Ts       int64  `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// It ignores the event name and simply unmarshals Data into T. If Data is empty,
// it returns the zero value of T with a nil error.
//
// Example:
//
//	payload, err := events.DecodeAs[events.StatusEvent](ev)
//	if err != nil { /* handle */ }
//	fmt.Println(payload.Status.Percentage)
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
