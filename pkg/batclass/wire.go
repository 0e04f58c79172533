package batclass

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// QueryInformation is the input of IOCTLQueryInformation.
type QueryInformation struct {
	BatteryTag       uint32
	InformationLevel InformationLevel
	AtRate           int32
}

// Information is the output of IOCTLQueryInformation at LevelInformation.
type Information struct {
	Capabilities        uint32
	Technology          uint8
	Reserved            [3]uint8
	Chemistry           [4]byte
	DesignedCapacity    uint32
	FullChargedCapacity uint32
	DefaultAlert1       uint32
	DefaultAlert2       uint32
	CriticalBias        uint32
	CycleCount          uint32
}

// WaitStatus is the input of IOCTLQueryStatus. A zero Timeout asks
// for the current status without waiting.
type WaitStatus struct {
	BatteryTag   uint32
	Timeout      uint32
	PowerState   uint32
	LowCapacity  uint32
	HighCapacity uint32
}

// Status is the output of IOCTLQueryStatus.
// Capacity is in mWh, Voltage in mV and Rate in mW (negative when discharging).
type Status struct {
	PowerState uint32
	Capacity   uint32
	Voltage    uint32
	Rate       int32
}

// Encode serializes v, which must be one of the fixed-size layouts
// of this package, in the driver's byte order.
func Encode(v any) []byte {
	buf := &bytes.Buffer{}
	// Writing fixed-size values into a bytes.Buffer cannot fail.
	_ = binary.Write(buf, binary.LittleEndian, v)
	return buf.Bytes()
}

// Decode fills v from b. b must hold at least binary.Size(v) bytes.
func Decode(b []byte, v any) error {
	size := binary.Size(v)
	if len(b) < size {
		return fmt.Errorf("short buffer: got %d bytes, want %d", len(b), size)
	}
	return binary.Read(bytes.NewReader(b[:size]), binary.LittleEndian, v)
}

// EncodeTag serializes a battery tag as returned by IOCTLQueryTag.
func EncodeTag(tag uint32) []byte {
	b := make([]byte, TagSize)
	binary.LittleEndian.PutUint32(b, tag)
	return b
}

// DecodeTag reads a battery tag from the IOCTLQueryTag output.
func DecodeTag(b []byte) (uint32, error) {
	if len(b) < TagSize {
		return 0, fmt.Errorf("short buffer: got %d bytes, want %d", len(b), TagSize)
	}
	return binary.LittleEndian.Uint32(b), nil
}
