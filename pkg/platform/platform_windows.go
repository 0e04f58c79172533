//go:build windows

package platform

import (
	"unsafe"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
)

var (
	modsetupapi = windows.NewLazySystemDLL("setupapi.dll")
	modkernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procSetupDiEnumDeviceInterfaces      = modsetupapi.NewProc("SetupDiEnumDeviceInterfaces")
	procSetupDiGetDeviceInterfaceDetailW = modsetupapi.NewProc("SetupDiGetDeviceInterfaceDetailW")
	procGetSystemPowerStatus             = modkernel32.NewProc("GetSystemPowerStatus")
)

// detailDataSize is sizeof(SP_DEVICE_INTERFACE_DETAIL_DATA_W): a DWORD
// followed by one WCHAR, padded to pointer alignment on 64-bit.
var detailDataSize = func() uint32 {
	if unsafe.Sizeof(uintptr(0)) == 8 {
		return 8
	}
	return 6
}()

// Windows talks to the battery class driver through SetupAPI and
// DeviceIoControl.
type Windows struct{}

// New returns the platform of this host.
func New() Platform {
	return &Windows{}
}

func (*Windows) Enumerate(class GUID) (DeviceSet, error) {
	logrus.Tracef("Enumerate called")

	guid := windows.GUID(class)
	info, err := windows.SetupDiGetClassDevsEx(&guid, "", 0, windows.DIGCF_PRESENT|windows.DIGCF_DEVICEINTERFACE, 0, "")
	if err != nil {
		return nil, err
	}

	return &windowsSet{info: info, class: guid}, nil
}

func (*Windows) Open(path string) (Channel, error) {
	logrus.WithField("path", path).Trace("Open called")

	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}

	h, err := windows.CreateFile(
		p,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err != nil {
		return nil, err
	}

	return &windowsChannel{h: h}, nil
}

func (*Windows) SystemPowerStatus() (PowerStatus, error) {
	logrus.Tracef("SystemPowerStatus called")

	var st PowerStatus
	r1, _, e1 := procGetSystemPowerStatus.Call(uintptr(unsafe.Pointer(&st)))
	if r1 == 0 {
		return PowerStatus{}, e1
	}

	return st, nil
}

type windowsSet struct {
	info  windows.DevInfo
	class windows.GUID
}

func (s *windowsSet) Interface(index int) (Interface, error) {
	logrus.Tracef("Interface(%d) called", index)

	iface := Interface{}
	iface.Size = uint32(unsafe.Sizeof(iface))

	r1, _, e1 := procSetupDiEnumDeviceInterfaces.Call(
		uintptr(s.info),
		0,
		uintptr(unsafe.Pointer(&s.class)),
		uintptr(index),
		uintptr(unsafe.Pointer(&iface)),
	)
	if r1 == 0 {
		return Interface{}, e1
	}

	return iface, nil
}

func (s *windowsSet) InterfacePath(iface Interface, buf []byte) (string, int, error) {
	logrus.Tracef("InterfacePath called with a %d byte buffer", len(buf))

	var required uint32
	if len(buf) < int(detailDataSize) {
		r1, _, e1 := procSetupDiGetDeviceInterfaceDetailW.Call(
			uintptr(s.info),
			uintptr(unsafe.Pointer(&iface)),
			0,
			0,
			uintptr(unsafe.Pointer(&required)),
			0,
		)
		if r1 == 0 {
			return "", int(required), e1
		}
		return "", int(required), ErrInsufficientBuffer
	}

	*(*uint32)(unsafe.Pointer(&buf[0])) = detailDataSize
	r1, _, e1 := procSetupDiGetDeviceInterfaceDetailW.Call(
		uintptr(s.info),
		uintptr(unsafe.Pointer(&iface)),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)),
		uintptr(unsafe.Pointer(&required)),
		0,
	)
	if r1 == 0 {
		return "", int(required), e1
	}

	chars := unsafe.Slice((*uint16)(unsafe.Pointer(&buf[4])), (len(buf)-4)/2)
	return windows.UTF16ToString(chars), len(buf), nil
}

func (s *windowsSet) Close() error {
	return s.info.Close()
}

type windowsChannel struct {
	h windows.Handle
}

func (c *windowsChannel) Control(code uint32, in, out []byte) (int, error) {
	logrus.Tracef("Control(%#x) called", code)

	var inPtr, outPtr *byte
	if len(in) > 0 {
		inPtr = &in[0]
	}
	if len(out) > 0 {
		outPtr = &out[0]
	}

	var returned uint32
	err := windows.DeviceIoControl(c.h, code, inPtr, uint32(len(in)), outPtr, uint32(len(out)), &returned, nil)
	if err != nil {
		return 0, err
	}

	return int(returned), nil
}

func (c *windowsChannel) Close() error {
	return windows.CloseHandle(c.h)
}
