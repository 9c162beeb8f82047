package hkbridge

import (
	"math"

	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/service"

	"github.com/mlehmann/car2hap/vehicle"
)

func hasBattery(v *vehicle.Vehicle) bool { return v.Battery != nil }

func stubBattery(v *vehicle.Vehicle) { v.Battery = vehicle.NewBattery() }

func attachBattery(va *VehicleAccessory, v *vehicle.Vehicle) {
	svc := service.NewBatteryService()
	va.a.AddS(svc.S)

	bind(va, v.Battery.Level, batteryLevel,
		svc.BatteryLevel.Value, dropErr(svc.BatteryLevel.SetValue))
	bind(va, v.Battery.Level, lowBatteryStatus,
		svc.StatusLowBattery.Value, dropErr(svc.StatusLowBattery.SetValue))

	if v.Charging != nil {
		bind(va, v.Charging.State, hkChargingState,
			svc.ChargingState.Value, dropErr(svc.ChargingState.SetValue))
	}
}

// batteryLevel converts state of charge to the 0..100 integer HomeKit
// expects.
func batteryLevel(soc float64) int {
	return int(math.Round(math.Min(100, math.Max(0, soc))))
}

// batteries at or below 10% show as low, same threshold the vehicle
// backends use for their own warnings
func lowBatteryStatus(soc float64) int {
	if soc <= 10 {
		return characteristic.StatusLowBatteryBatteryLevelLow
	}
	return characteristic.StatusLowBatteryBatteryLevelNormal
}

func hkChargingState(s vehicle.ChargingState) int {
	switch s {
	case vehicle.ChargingCharging, vehicle.ChargingDischarging, vehicle.ChargingConservation:
		return characteristic.ChargingStateCharging
	case vehicle.ChargingOff, vehicle.ChargingReady:
		return characteristic.ChargingStateNotCharging
	default:
		return characteristic.ChargingStateNotChargeable
	}
}
