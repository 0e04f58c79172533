package batclass

// Control codes understood by the battery class driver.
// CTL_CODE(FILE_DEVICE_BATTERY, fn, METHOD_BUFFERED, FILE_READ_ACCESS).
const (
	IOCTLQueryTag         uint32 = 0x294040
	IOCTLQueryInformation uint32 = 0x294044
	IOCTLQueryStatus      uint32 = 0x29404c
)

// InformationLevel selects what IOCTLQueryInformation returns.
type InformationLevel uint32

// Information levels. Only LevelInformation is requested by battmon.
const (
	LevelInformation InformationLevel = iota
	LevelGranularity
	LevelTemperature
	LevelEstimatedTime
	LevelDeviceName
	LevelManufactureDate
	LevelManufactureName
	LevelUniqueID
	LevelSerialNumber
)

// Exact buffer sizes of every request and response.
const (
	TagSize              = 4
	QueryInformationSize = 12
	InformationSize      = 36
	WaitStatusSize       = 20
	StatusSize           = 16
)

// TagInvalid is returned by the driver when no battery is behind the channel.
const TagInvalid uint32 = 0

// UnknownTime marks a remaining/full-charge time that does not apply.
const UnknownTime uint32 = 0xFFFFFFFF

// Flags of the system-wide battery state bitfield.
const (
	FlagHigh      uint8 = 0x1
	FlagLow       uint8 = 0x2
	FlagCritical  uint8 = 0x4
	FlagCharging  uint8 = 0x8
	FlagNoBattery uint8 = 128
	FlagUnknown   uint8 = 0xFF
)

// UnknownPercentage is reported when the charge percentage is not known.
const UnknownPercentage uint8 = 255

// AC line states.
const (
	ACOffline uint8 = 0
	ACOnline  uint8 = 1
	ACUnknown uint8 = 255
)

// Power state bits reported by IOCTLQueryStatus.
const (
	PowerOnLine      uint32 = 0x1
	PowerDischarging uint32 = 0x2
	PowerCharging    uint32 = 0x4
	PowerCritical    uint32 = 0x8
)

// Sentinels of the status response.
const (
	UnknownVoltage uint32 = 0xFFFFFFFF
	UnknownRate    int32  = -0x80000000
)
