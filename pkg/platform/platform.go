// Package platform abstracts the OS primitives battmon needs to talk to a
// battery device: device class enumeration, interface path resolution,
// device channels with control requests, and the system power state.
package platform

import (
	"errors"
	"syscall"
)

// Error codes the core branches on. They carry the same numeric values
// as the Windows error codes so that the Windows backend can return its
// errors unchanged.
var (
	ErrNoMoreItems        error = syscall.Errno(259)
	ErrInsufficientBuffer error = syscall.Errno(122)
	ErrFileNotFound       error = syscall.Errno(2)
)

// GUID has the memory layout of a Windows GUID.
type GUID struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

// BatteryClass is GUID_DEVCLASS_BATTERY.
var BatteryClass = GUID{
	Data1: 0x72631e54,
	Data2: 0x78a4,
	Data3: 0x11d0,
	Data4: [8]byte{0xbc, 0xf7, 0x00, 0xaa, 0x00, 0xb7, 0xb3, 0x2a},
}

// Interface references one device interface of an enumerated set.
// It has the memory layout of SP_DEVICE_INTERFACE_DATA and is only
// meaningful to the DeviceSet that produced it.
type Interface struct {
	Size      uint32
	ClassGUID GUID
	Flags     uint32
	Reserved  uintptr
}

// PowerStatus is the system-wide power state. It has the memory layout
// of SYSTEM_POWER_STATUS.
type PowerStatus struct {
	ACLineStatus        uint8
	BatteryFlag         uint8
	BatteryLifePercent  uint8
	SystemStatusFlag    uint8
	BatteryLifeTime     uint32
	BatteryFullLifeTime uint32
}

// Platform is the entry point to the OS primitives.
type Platform interface {
	// Enumerate lists the present devices of the given class that expose
	// a device interface.
	Enumerate(class GUID) (DeviceSet, error)
	// Open opens a read/write channel to an existing device path with
	// shared read/write access.
	Open(path string) (Channel, error)
	// SystemPowerStatus reads the system-wide power state.
	SystemPowerStatus() (PowerStatus, error)
}

// DeviceSet is an enumerated set of device interfaces.
type DeviceSet interface {
	// Interface returns the interface at index. It fails with
	// ErrNoMoreItems past the last interface.
	Interface(index int) (Interface, error)
	// InterfacePath resolves iface into its device path using buf as
	// scratch space. When buf is too small it fails with
	// ErrInsufficientBuffer and reports the required size.
	InterfacePath(iface Interface, buf []byte) (path string, required int, err error)
	Close() error
}

// Channel is an open device channel.
type Channel interface {
	// Control sends a control request and returns the number of bytes
	// written to out.
	Control(code uint32, in, out []byte) (int, error)
	Close() error
}

// Code extracts the platform error code from err, or 0 if there is none.
func Code(err error) uint32 {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return uint32(errno)
	}
	return 0
}
