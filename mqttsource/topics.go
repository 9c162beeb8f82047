package mqttsource

import (
	"fmt"
	"strconv"

	"github.com/mlehmann/car2hap/vehicle"
)

// attrHandler applies one topic payload to the vehicle model. Handlers
// are pure so they can be tested without a broker.
type attrHandler func(v *vehicle.Vehicle, payload string) error

// topicHandlers maps the per-car topic suffix (TeslaMate layout,
// teslamate/cars/<id>/<suffix>) to the attribute it feeds. The vin
// suffix is special-cased in the source, it drives vehicle lifecycle.
var topicHandlers = map[string]attrHandler{
	"display_name": stringAttr(func(v *vehicle.Vehicle) *vehicle.Attribute[string] { return v.Name }),
	"model":        stringAttr(func(v *vehicle.Vehicle) *vehicle.Attribute[string] { return v.Model }),
	"version":      stringAttr(func(v *vehicle.Vehicle) *vehicle.Attribute[string] { return v.SoftwareVersion }),

	"state":                handleState,
	"battery_level":        floatAttr(func(v *vehicle.Vehicle) *vehicle.Attribute[float64] { return v.Battery.Level }),
	"est_battery_range_km": floatAttr(func(v *vehicle.Vehicle) *vehicle.Attribute[float64] { return v.Battery.Range }),
	"charger_power":        floatAttr(func(v *vehicle.Vehicle) *vehicle.Attribute[float64] { return v.Charging.Power }),
	"plugged_in":           handlePluggedIn,
	"locked":               handleLocked,
	"is_climate_on":        handleClimateOn,
	"outside_temp":         floatAttr(func(v *vehicle.Vehicle) *vehicle.Attribute[float64] { return v.OutsideTemperature }),
	"latitude":             floatAttr(func(v *vehicle.Vehicle) *vehicle.Attribute[float64] { return v.Position.Latitude }),
	"longitude":            floatAttr(func(v *vehicle.Vehicle) *vehicle.Attribute[float64] { return v.Position.Longitude }),
}

func stringAttr(pick func(*vehicle.Vehicle) *vehicle.Attribute[string]) attrHandler {
	return func(v *vehicle.Vehicle, payload string) error {
		pick(v).Set(payload)
		return nil
	}
}

func floatAttr(pick func(*vehicle.Vehicle) *vehicle.Attribute[float64]) attrHandler {
	return func(v *vehicle.Vehicle, payload string) error {
		f, err := strconv.ParseFloat(payload, 64)
		if err != nil {
			return fmt.Errorf("error parsing [%s]: %w", payload, err)
		}
		pick(v).Set(f)
		return nil
	}
}

func parseBool(payload string) (bool, error) {
	b, err := strconv.ParseBool(payload)
	if err != nil {
		return false, fmt.Errorf("error parsing [%s]: %w", payload, err)
	}
	return b, nil
}

// handleState feeds the charging state from the coarse car state. The
// transport only distinguishes charging/not-charging/unreachable.
func handleState(v *vehicle.Vehicle, payload string) error {
	switch payload {
	case "charging":
		v.Charging.State.Set(vehicle.ChargingCharging)
	case "offline", "asleep":
		v.Charging.State.Set(vehicle.ChargingUnknown)
	default:
		v.Charging.State.Set(vehicle.ChargingOff)
	}
	return nil
}

func handlePluggedIn(v *vehicle.Vehicle, payload string) error {
	b, err := parseBool(payload)
	if err != nil {
		return err
	}
	if b {
		v.Charging.PlugState.Set(vehicle.PlugConnected)
	} else {
		v.Charging.PlugState.Set(vehicle.PlugDisconnected)
	}
	return nil
}

func handleLocked(v *vehicle.Vehicle, payload string) error {
	b, err := parseBool(payload)
	if err != nil {
		return err
	}
	if b {
		v.Doors.LockState.Set(vehicle.Locked)
	} else {
		v.Doors.LockState.Set(vehicle.Unlocked)
	}
	return nil
}

func handleClimateOn(v *vehicle.Vehicle, payload string) error {
	b, err := parseBool(payload)
	if err != nil {
		return err
	}
	if b {
		v.Climatization.State.Set(vehicle.ClimatizationHeating)
	} else {
		v.Climatization.State.Set(vehicle.ClimatizationOff)
	}
	return nil
}
