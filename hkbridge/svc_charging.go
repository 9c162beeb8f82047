package hkbridge

import (
	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/service"

	"github.com/mlehmann/car2hap/vehicle"
)

// Elgato Eve consumption characteristic, the closest thing HomeKit has
// to a charging power readout.
const typeConsumption = "E863F10D-079E-48FF-8F27-9C2605A29F52"

func hasCharging(v *vehicle.Vehicle) bool { return v.Charging != nil }

func stubCharging(v *vehicle.Vehicle) { v.Charging = vehicle.NewCharging() }

// attachCharging exposes charging as an outlet: On follows the charging
// state and starts/stops charging, OutletInUse follows the plug.
func attachCharging(va *VehicleAccessory, v *vehicle.Vehicle) {
	svc := service.NewOutlet()
	va.a.AddS(svc.S)
	fault := newFaultChar(svc.S)

	on := bind(va, v.Charging.State, chargingOn,
		svc.On.Value, svc.On.SetValue)
	svc.On.OnValueRemoteUpdate(on.writable(v.Charging.StartStop, fault, startStopArg))

	bind(va, v.Charging.PlugState, plugConnected,
		svc.OutletInUse.Value, svc.OutletInUse.SetValue)

	consumption := newConsumptionChar()
	svc.S.AddC(consumption.C)
	bind(va, v.Charging.Power, kilowattsToWatts,
		consumption.Value, consumption.SetValue)
}

func newConsumptionChar() *characteristic.Float {
	c := characteristic.NewFloat(typeConsumption)
	c.Format = characteristic.FormatFloat
	c.Permissions = []string{characteristic.PermissionRead, characteristic.PermissionEvents}
	c.Description = "Consumption"
	c.Unit = "W"
	c.SetMinValue(0)
	return c
}

func chargingOn(s vehicle.ChargingState) bool {
	switch s {
	case vehicle.ChargingCharging, vehicle.ChargingDischarging, vehicle.ChargingConservation:
		return true
	default:
		return false
	}
}

func plugConnected(s vehicle.PlugState) bool {
	return s == vehicle.PlugConnected
}

func kilowattsToWatts(kw float64) float64 { return kw * 1000 }

func startStopArg(on bool) (string, bool) {
	if on {
		return "start", true
	}
	return "stop", true
}
