package hkbridge

import (
	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/service"

	"github.com/mlehmann/car2hap/vehicle"
)

func hasDoors(v *vehicle.Vehicle) bool { return v.Doors != nil }

func stubDoors(v *vehicle.Vehicle) { v.Doors = vehicle.NewDoors() }

func attachDoorLock(va *VehicleAccessory, v *vehicle.Vehicle) {
	svc := service.NewLockMechanism()
	va.a.AddS(svc.S)
	fault := newFaultChar(svc.S)

	bind(va, v.Doors.LockState, hkLockCurrentState,
		svc.LockCurrentState.Value, dropErr(svc.LockCurrentState.SetValue))

	target := bind(va, v.Doors.LockState, hkLockTargetState,
		svc.LockTargetState.Value, dropErr(svc.LockTargetState.SetValue))
	svc.LockTargetState.OnValueRemoteUpdate(
		target.writable(v.Doors.LockUnlock, fault, lockUnlockArg))
}

func hkLockCurrentState(s vehicle.LockState) int {
	switch s {
	case vehicle.Locked:
		return characteristic.LockCurrentStateSecured
	case vehicle.Unlocked:
		return characteristic.LockCurrentStateUnsecured
	default:
		return characteristic.LockCurrentStateUnknown
	}
}

// the target state has no unknown variant, anything uncertain shows as
// secured so the user is nudged to lock explicitly
func hkLockTargetState(s vehicle.LockState) int {
	if s == vehicle.Unlocked {
		return characteristic.LockTargetStateUnsecured
	}
	return characteristic.LockTargetStateSecured
}

func lockUnlockArg(target int) (string, bool) {
	switch target {
	case characteristic.LockTargetStateSecured:
		return "lock", true
	case characteristic.LockTargetStateUnsecured:
		return "unlock", true
	default:
		return "", false
	}
}
