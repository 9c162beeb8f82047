package vehicle

// Enumerated attribute states as reported by vehicle backends. Backends
// that cannot tell report the Unknown variant, never a zero value.

type ChargingState string

const (
	ChargingOff          ChargingState = "off"
	ChargingReady        ChargingState = "ready_for_charging"
	ChargingCharging     ChargingState = "charging"
	ChargingDischarging  ChargingState = "discharging"
	ChargingConservation ChargingState = "conservation"
	ChargingError        ChargingState = "error"
	ChargingUnsupported  ChargingState = "unsupported"
	ChargingUnknown      ChargingState = "unknown"
)

type PlugState string

const (
	PlugConnected    PlugState = "connected"
	PlugDisconnected PlugState = "disconnected"
	PlugInvalid      PlugState = "invalid"
	PlugUnknown      PlugState = "unknown"
)

type LockState string

const (
	Locked      LockState = "locked"
	Unlocked    LockState = "unlocked"
	LockInvalid LockState = "invalid"
	LockUnknown LockState = "unknown"
)

type HeatingState string

const (
	HeatingOn      HeatingState = "on"
	HeatingOff     HeatingState = "off"
	HeatingInvalid HeatingState = "invalid"
	HeatingUnknown HeatingState = "unknown"
)

type ClimatizationState string

const (
	ClimatizationOff         ClimatizationState = "off"
	ClimatizationHeating     ClimatizationState = "heating"
	ClimatizationCooling     ClimatizationState = "cooling"
	ClimatizationVentilation ClimatizationState = "ventilation"
	ClimatizationUnknown     ClimatizationState = "unknown"
)

// Battery holds the high voltage battery attributes.
type Battery struct {
	// Level is state of charge in percent
	Level *Attribute[float64]
	// Range is remaining range in km
	Range *Attribute[float64]
}

func NewBattery() *Battery {
	return &Battery{
		Level: NewAttribute[float64]("battery.level"),
		Range: NewAttribute[float64]("battery.range"),
	}
}

type Charging struct {
	State *Attribute[ChargingState]
	// Power is charging power in kW
	Power     *Attribute[float64]
	PlugState *Attribute[PlugState]
	// StartStop takes "start" or "stop"
	StartStop *Command
}

func NewCharging() *Charging {
	return &Charging{
		State:     NewAttribute[ChargingState]("charging.state"),
		Power:     NewAttribute[float64]("charging.power"),
		PlugState: NewAttribute[PlugState]("charging.plug_state"),
		StartStop: NewCommand("charging.start-stop"),
	}
}

type Climatization struct {
	State *Attribute[ClimatizationState]
	// TargetTemperature in °C
	TargetTemperature *Attribute[float64]
	// StartStop takes "start" or "stop"
	StartStop *Command
	// SetTargetTemperature takes the temperature in °C as decimal string
	SetTargetTemperature *Command
}

func NewClimatization() *Climatization {
	return &Climatization{
		State:                NewAttribute[ClimatizationState]("climatization.state"),
		TargetTemperature:    NewAttribute[float64]("climatization.target_temperature"),
		StartStop:            NewCommand("climatization.start-stop"),
		SetTargetTemperature: NewCommand("climatization.set-target-temperature"),
	}
}

type Doors struct {
	LockState *Attribute[LockState]
	// LockUnlock takes "lock" or "unlock"
	LockUnlock *Command
}

func NewDoors() *Doors {
	return &Doors{
		LockState:  NewAttribute[LockState]("doors.lock_state"),
		LockUnlock: NewCommand("doors.lock-unlock"),
	}
}

type WindowHeating struct {
	State *Attribute[HeatingState]
	// StartStop takes "start" or "stop"
	StartStop *Command
}

func NewWindowHeating() *WindowHeating {
	return &WindowHeating{
		State:     NewAttribute[HeatingState]("window_heating.state"),
		StartStop: NewCommand("window_heating.start-stop"),
	}
}

type Position struct {
	Latitude  *Attribute[float64]
	Longitude *Attribute[float64]
}

func NewPosition() *Position {
	return &Position{
		Latitude:  NewAttribute[float64]("position.latitude"),
		Longitude: NewAttribute[float64]("position.longitude"),
	}
}

type Flashing struct {
	// Flash takes "flash", the action is momentary
	Flash *Command
}

func NewFlashing() *Flashing {
	return &Flashing{Flash: NewCommand("flashing.flash")}
}

// Vehicle is one vehicle in the garage. Capability blocks are nil when
// the backend does not support them at all; attributes inside a present
// block may still be disabled until first reported.
type Vehicle struct {
	vin string

	Name            *Attribute[string]
	Model           *Attribute[string]
	Manufacturer    *Attribute[string]
	SoftwareVersion *Attribute[string]

	Battery       *Battery
	Charging      *Charging
	Climatization *Climatization
	Doors         *Doors
	WindowHeating *WindowHeating
	Position      *Position
	Flashing      *Flashing
	// OutsideTemperature in °C
	OutsideTemperature *Attribute[float64]
}

// New creates a vehicle with identification attributes only. The
// connector attaches capability blocks before adding it to the garage.
func New(vin string) *Vehicle {
	return &Vehicle{
		vin:             vin,
		Name:            NewAttribute[string]("name"),
		Model:           NewAttribute[string]("model"),
		Manufacturer:    NewAttribute[string]("manufacturer"),
		SoftwareVersion: NewAttribute[string]("software_version"),
	}
}

func (v *Vehicle) VIN() string { return v.vin }

// DisplayName returns the user visible name, falling back to the VIN
// when the backend did not report one.
func (v *Vehicle) DisplayName() string {
	if name, ok := v.Name.Get(); ok && name != "" {
		return name
	}
	return v.vin
}
