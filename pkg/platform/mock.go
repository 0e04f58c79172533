package platform

import (
	"bytes"
	"fmt"
	"sync"
)

// Reply is a canned response to a control request.
type Reply struct {
	Out []byte
	Err error
}

// Call records one primitive invoked on a Mock.
type Call struct {
	Op   string
	Code uint32
	In   []byte
}

// Mock is an in-memory Platform with scripted responses. It records
// every call so that tests can check which steps ran.
type Mock struct {
	// Paths are the device paths of the enumerated interfaces.
	Paths []string

	EnumerateErr error
	InterfaceErr error
	// ProbeErr replaces the size-probe failure of InterfacePath.
	ProbeErr error
	PathErr  error
	OpenErr  error
	Power    PowerStatus
	PowerErr error

	mu       sync.Mutex
	replies  map[uint32]Reply
	queued   map[uint32][]Reply
	calls    []Call
	channels []*MockChannel
}

var _ Platform = &Mock{}

// NewMock returns a Mock exposing the given device paths.
func NewMock(paths ...string) *Mock {
	return &Mock{
		Paths:   paths,
		replies: make(map[uint32]Reply),
		queued:  make(map[uint32][]Reply),
	}
}

// SetReply sets the default reply to control code.
func (m *Mock) SetReply(code uint32, r Reply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies[code] = r
}

// QueueReply queues a one-shot reply to control code that takes
// precedence over the default reply.
func (m *Mock) QueueReply(code uint32, r Reply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued[code] = append(m.queued[code], r)
}

// Calls returns the recorded calls in order.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// ControlCalls returns the inputs of every control request with code.
func (m *Mock) ControlCalls(code uint32) [][]byte {
	var ins [][]byte
	for _, c := range m.Calls() {
		if c.Op == "control" && c.Code == code {
			ins = append(ins, c.In)
		}
	}
	return ins
}

// Channels returns the channels opened so far.
func (m *Mock) Channels() []*MockChannel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MockChannel(nil), m.channels...)
}

func (m *Mock) record(c Call) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

func (m *Mock) Enumerate(_ GUID) (DeviceSet, error) {
	m.record(Call{Op: "enumerate"})
	if m.EnumerateErr != nil {
		return nil, m.EnumerateErr
	}
	return &mockSet{m: m}, nil
}

func (m *Mock) Open(path string) (Channel, error) {
	m.record(Call{Op: "open", In: []byte(path)})
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	ch := &MockChannel{m: m, Path: path}
	m.mu.Lock()
	m.channels = append(m.channels, ch)
	m.mu.Unlock()
	return ch, nil
}

func (m *Mock) SystemPowerStatus() (PowerStatus, error) {
	m.record(Call{Op: "power"})
	return m.Power, m.PowerErr
}

func (m *Mock) control(code uint32, in, out []byte) (int, error) {
	m.record(Call{Op: "control", Code: code, In: bytes.Clone(in)})

	m.mu.Lock()
	r, ok := m.replies[code]
	if q := m.queued[code]; len(q) > 0 {
		r, ok = q[0], true
		m.queued[code] = q[1:]
	}
	m.mu.Unlock()

	if !ok {
		return 0, fmt.Errorf("no reply scripted for control code %#x", code)
	}
	if r.Err != nil {
		return 0, r.Err
	}
	return copy(out, r.Out), nil
}

type mockSet struct {
	m *Mock
}

func (s *mockSet) Interface(index int) (Interface, error) {
	s.m.record(Call{Op: "interface"})
	if s.m.InterfaceErr != nil {
		return Interface{}, s.m.InterfaceErr
	}
	if index >= len(s.m.Paths) {
		return Interface{}, ErrNoMoreItems
	}
	return Interface{ClassGUID: BatteryClass, Reserved: uintptr(index)}, nil
}

func (s *mockSet) InterfacePath(iface Interface, buf []byte) (string, int, error) {
	s.m.record(Call{Op: "path"})
	path := s.m.Paths[iface.Reserved]
	if len(buf) < len(path) {
		if s.m.ProbeErr != nil {
			return "", 0, s.m.ProbeErr
		}
		return "", len(path), ErrInsufficientBuffer
	}
	if s.m.PathErr != nil {
		return "", 0, s.m.PathErr
	}
	return path, len(path), nil
}

func (s *mockSet) Close() error {
	return nil
}

// MockChannel is a Channel opened on a Mock.
type MockChannel struct {
	m      *Mock
	Path   string
	closed int
}

func (c *MockChannel) Control(code uint32, in, out []byte) (int, error) {
	if c.closed > 0 {
		return 0, fmt.Errorf("control on closed channel %s", c.Path)
	}
	return c.m.control(code, in, out)
}

func (c *MockChannel) Close() error {
	c.m.record(Call{Op: "close"})
	c.closed++
	return nil
}

// CloseCount reports how many times the channel was closed.
func (c *MockChannel) CloseCount() int {
	return c.closed
}
