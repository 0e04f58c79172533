// Package monitor polls a battery handle on a fixed cadence.
package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battmon/pkg/battery"
	"github.com/charlie0129/battmon/pkg/events"
)

// failureStreakThreshold is the number of consecutive failed polls after
// which failures are logged as errors instead of warnings.
const failureStreakThreshold = 10

// Options configures a Monitor.
type Options struct {
	Interval    time.Duration
	HistorySize int
	// Hub receives an event for every poll. May be nil.
	Hub *events.EventHub
}

// Monitor owns a battery handle and samples it periodically. Only the
// goroutine running Run touches the handle; the other methods only read
// the results.
type Monitor struct {
	handle   *battery.Handle
	identity *battery.Identity
	recorder *Recorder
	hub      *events.EventHub

	mu       sync.RWMutex
	interval time.Duration
	latest   *battery.Status
	sampled  time.Time
	failures int
}

// New returns a Monitor of h. The Monitor does not close h.
func New(h *battery.Handle, id *battery.Identity, opts Options) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	return &Monitor{
		handle:   h,
		identity: id,
		recorder: NewRecorder(opts.HistorySize),
		hub:      opts.Hub,
		interval: opts.Interval,
	}
}

// Identity returns the identity of the monitored battery.
func (m *Monitor) Identity() *battery.Identity {
	return m.identity
}

// Recorder returns the history of successful samples.
func (m *Monitor) Recorder() *Recorder {
	return m.recorder
}

// Interval returns the polling interval.
func (m *Monitor) Interval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.interval
}

// SetInterval changes the polling interval from the next cycle on.
func (m *Monitor) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interval = d
}

// Latest returns the last successful sample and when it was taken.
func (m *Monitor) Latest() (*battery.Status, time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest, m.sampled, m.latest != nil
}

// Failures returns the number of consecutive failed polls.
func (m *Monitor) Failures() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.failures
}

// Poll samples the battery once. Retryable failures are logged and
// returned; they do not affect later polls.
func (m *Monitor) Poll() (*battery.Status, error) {
	now := time.Now()
	st, err := battery.Sample(m.handle)
	if err != nil {
		m.mu.Lock()
		m.failures++
		failures := m.failures
		m.mu.Unlock()

		entry := logrus.WithFields(logrus.Fields{
			"failures": failures,
			"tag":      m.handle.Tag(),
		})
		if failures >= failureStreakThreshold {
			entry.Errorf("battery poll failed: %v", err)
		} else {
			entry.Warnf("battery poll failed: %v", err)
		}

		kind := ""
		var berr *battery.Error
		if errors.As(err, &berr) {
			kind = berr.Kind.String()
		}
		m.hub.Publish(events.SampleFailed, events.SampleErrorEvent{
			Kind:     kind,
			Message:  err.Error(),
			Failures: failures,
			Ts:       now.Unix(),
		})
		return nil, err
	}

	m.mu.Lock()
	if m.failures > 0 {
		logrus.Infof("battery poll recovered after %d failures", m.failures)
	}
	m.failures = 0
	m.latest = st
	m.sampled = now
	m.mu.Unlock()

	m.recorder.Add(now, st)
	m.hub.Publish(events.StatusSampled, events.StatusEvent{Status: st, Ts: now.Unix()})

	logrus.WithFields(logrus.Fields{
		"percentage": st.Percentage,
		"state":      st.State,
		"voltage":    st.Voltage,
	}).Trace("battery sampled")

	return st, nil
}

// Run polls until ctx is done, calling onSample after every successful
// poll. onSample may be nil. A poll blocks for as long as the driver
// does; ctx is only checked between polls.
func (m *Monitor) Run(ctx context.Context, onSample func(*battery.Status)) error {
	logrus.WithField("interval", m.Interval()).Debug("monitor loop starts")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Debug("monitor loop stopped")
			return nil
		case <-timer.C:
		}
		if ctx.Err() != nil {
			logrus.Debug("monitor loop stopped")
			return nil
		}

		st, err := m.Poll()
		if err != nil {
			var berr *battery.Error
			if errors.As(err, &berr) && berr.Kind.Fatal() {
				return err
			}
		} else if onSample != nil {
			onSample(st)
		}

		timer.Reset(m.Interval())
	}
}
