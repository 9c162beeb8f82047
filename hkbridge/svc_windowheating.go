package hkbridge

import (
	"github.com/brutella/hap/service"

	"github.com/mlehmann/car2hap/vehicle"
)

func hasWindowHeating(v *vehicle.Vehicle) bool { return v.WindowHeating != nil }

func stubWindowHeating(v *vehicle.Vehicle) { v.WindowHeating = vehicle.NewWindowHeating() }

func attachWindowHeating(va *VehicleAccessory, v *vehicle.Vehicle) {
	svc := service.NewSwitch()
	va.a.AddS(svc.S)
	fault := newFaultChar(svc.S)

	on := bind(va, v.WindowHeating.State, heatingOn,
		svc.On.Value, svc.On.SetValue)
	svc.On.OnValueRemoteUpdate(on.writable(v.WindowHeating.StartStop, fault, startStopArg))
}

func heatingOn(s vehicle.HeatingState) bool {
	return s == vehicle.HeatingOn
}
