package hkbridge

import (
	"github.com/brutella/hap/service"

	"github.com/mlehmann/car2hap/vehicle"
)

func hasOutsideTemperature(v *vehicle.Vehicle) bool { return v.OutsideTemperature != nil }

func stubOutsideTemperature(v *vehicle.Vehicle) {
	v.OutsideTemperature = vehicle.NewAttribute[float64]("outside_temperature")
}

func attachOutsideTemperature(va *VehicleAccessory, v *vehicle.Vehicle) {
	svc := service.NewTemperatureSensor()
	va.a.AddS(svc.S)

	// HomeKit's default floor is 0°C which is useless for a car parked
	// outside
	svc.CurrentTemperature.SetMinValue(-50)

	bind(va, v.OutsideTemperature, same[float64],
		svc.CurrentTemperature.Value, svc.CurrentTemperature.SetValue)
}
