package hkbridge

import (
	"strconv"

	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/service"

	"github.com/mlehmann/car2hap/vehicle"
)

func hasClimatization(v *vehicle.Vehicle) bool { return v.Climatization != nil }

func stubClimatization(v *vehicle.Vehicle) { v.Climatization = vehicle.NewClimatization() }

func attachClimatization(va *VehicleAccessory, v *vehicle.Vehicle) {
	svc := service.NewThermostat()
	va.a.AddS(svc.S)
	fault := newFaultChar(svc.S)

	// most backends only accept this window for pre-climatization
	svc.TargetTemperature.SetMinValue(16)
	svc.TargetTemperature.SetMaxValue(29.5)
	svc.TargetTemperature.SetStepValue(0.5)
	svc.TemperatureDisplayUnits.SetValue(characteristic.TemperatureDisplayUnitsCelsius)

	bind(va, v.Climatization.State, hkCurrentHeatingCooling,
		svc.CurrentHeatingCoolingState.Value, dropErr(svc.CurrentHeatingCoolingState.SetValue))

	target := bind(va, v.Climatization.State, hkTargetHeatingCooling,
		svc.TargetHeatingCoolingState.Value, dropErr(svc.TargetHeatingCoolingState.SetValue))
	svc.TargetHeatingCoolingState.OnValueRemoteUpdate(
		target.writable(v.Climatization.StartStop, fault, targetStateArg))

	temp := bind(va, v.Climatization.TargetTemperature, same[float64],
		svc.TargetTemperature.Value, svc.TargetTemperature.SetValue)
	svc.TargetTemperature.OnValueRemoteUpdate(
		temp.writable(v.Climatization.SetTargetTemperature, fault, temperatureArg))

	if v.OutsideTemperature != nil {
		svc.CurrentTemperature.SetMinValue(-50)
		bind(va, v.OutsideTemperature, same[float64],
			svc.CurrentTemperature.Value, svc.CurrentTemperature.SetValue)
	}
}

func hkCurrentHeatingCooling(s vehicle.ClimatizationState) int {
	switch s {
	case vehicle.ClimatizationHeating, vehicle.ClimatizationVentilation:
		return characteristic.CurrentHeatingCoolingStateHeat
	case vehicle.ClimatizationCooling:
		return characteristic.CurrentHeatingCoolingStateCool
	default:
		return characteristic.CurrentHeatingCoolingStateOff
	}
}

func hkTargetHeatingCooling(s vehicle.ClimatizationState) int {
	switch s {
	case vehicle.ClimatizationHeating:
		return characteristic.TargetHeatingCoolingStateHeat
	case vehicle.ClimatizationCooling:
		return characteristic.TargetHeatingCoolingStateCool
	case vehicle.ClimatizationVentilation:
		return characteristic.TargetHeatingCoolingStateAuto
	default:
		return characteristic.TargetHeatingCoolingStateOff
	}
}

func targetStateArg(state int) (string, bool) {
	if state == characteristic.TargetHeatingCoolingStateOff {
		return "stop", true
	}
	return "start", true
}

func temperatureArg(temp float64) (string, bool) {
	return strconv.FormatFloat(temp, 'f', 1, 64), true
}
