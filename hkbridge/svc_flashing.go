package hkbridge

import (
	"context"

	"github.com/brutella/hap/service"

	"github.com/mlehmann/car2hap/vehicle"
)

func hasFlashing(v *vehicle.Vehicle) bool { return v.Flashing != nil }

func stubFlashing(v *vehicle.Vehicle) { v.Flashing = vehicle.NewFlashing() }

// attachFlashing exposes honk-and-flash as a momentary lightbulb: the
// switch snaps back to off once the command went out. There is no
// attribute behind it, the vehicle does not report flashing state.
func attachFlashing(va *VehicleAccessory, v *vehicle.Vehicle) {
	svc := service.NewLightbulb()
	va.a.AddS(svc.S)
	fault := newFaultChar(svc.S)

	svc.On.OnValueRemoteUpdate(func(on bool) {
		if !on {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		err := v.Flashing.Flash.Execute(ctx, "flash")

		va.guard.Lock()
		svc.On.SetValue(false)
		va.guard.Unlock()

		if err != nil {
			va.log.Errorf("flashing failed: %s", err)
			fault.trip()
			return
		}
		va.log.Info("flashing triggered")
	})
}
