package hkbridge

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mlehmann/car2hap/vehicle"
)

const (
	// commandTimeout bounds a single command round trip to the backend.
	commandTimeout = 30 * time.Second
	// faultResetTimeout is how long StatusFault stays raised after a
	// failed command.
	faultResetTimeout = 120 * time.Second
)

// binding is the accessory's view of one attribute/characteristic pair.
type binding interface {
	refresh()
}

// attributeBinding pairs exactly one vehicle attribute with one HomeKit
// characteristic. The characteristic is reached only through the get/set
// closures and only under the owning accessory's guard.
//
// Telemetry updates and hub writes arrive on threads we do not control,
// the guard serializes both against each other per accessory.
type attributeBinding[A comparable, C comparable] struct {
	acc     *VehicleAccessory
	attr    *vehicle.Attribute[A]
	forward func(A) C
	get     func() C
	set     func(C)

	cmd    *vehicle.Command
	cmdArg func(C) (string, bool)
	fault  *faultChar

	log *zap.SugaredLogger
}

// bind wires attr to a characteristic and registers the binding with the
// accessory. The change observer is registered unconditionally, even when
// the attribute is currently disabled, so that an attribute appearing
// later still reaches the hub.
func bind[A comparable, C comparable](acc *VehicleAccessory, attr *vehicle.Attribute[A],
	forward func(A) C, get func() C, set func(C)) *attributeBinding[A, C] {
	b := &attributeBinding[A, C]{
		acc:     acc,
		attr:    attr,
		forward: forward,
		get:     get,
		set:     set,
		log:     acc.log,
	}
	attr.OnChange(b.onVehicleUpdate)
	acc.bindings = append(acc.bindings, b)
	return b
}

// dropErr adapts hap setters that return a validation error to the
// error-less set signature bind expects.
func dropErr[C any](set func(C) error) func(C) {
	return func(v C) { set(v) }
}

// writable routes hub writes of this characteristic into cmd. It returns
// the callback to hang on the characteristic's remote update hook.
func (b *attributeBinding[A, C]) writable(cmd *vehicle.Command, fault *faultChar,
	cmdArg func(C) (string, bool)) func(C) {
	b.cmd = cmd
	b.cmdArg = cmdArg
	b.fault = fault
	return b.onCharacteristicWrite
}

// onVehicleUpdate runs on the telemetry callback thread. The set is
// skipped when the transformed value matches the characteristic, a
// repeated update must not produce a second HAP notification.
func (b *attributeBinding[A, C]) onVehicleUpdate(v A) {
	next := b.forward(v)
	b.acc.guard.Lock()
	defer b.acc.guard.Unlock()
	if b.get() == next {
		return
	}
	b.set(next)
}

// refresh re-pushes the current attribute value. Disabled attributes are
// left alone, the characteristic keeps whatever it has instead of being
// forced to a made-up zero.
func (b *attributeBinding[A, C]) refresh() {
	v, ok := b.attr.Get()
	if !ok {
		return
	}
	b.onVehicleUpdate(v)
}

// onCharacteristicWrite runs on the HAP server thread. The command goes
// out without holding the accessory guard, only the rollback of the
// characteristic value is guarded. Failures are logged and shown via
// StatusFault, never escalated to the hub.
func (b *attributeBinding[A, C]) onCharacteristicWrite(v C) {
	arg, ok := b.cmdArg(v)
	if !ok {
		b.log.Errorf("%s: hub write %v not understood", b.attr.Name(), v)
		b.tripFault()
		return
	}
	if b.cmd == nil || !b.cmd.Enabled() {
		b.log.Errorf("%s cannot be controlled, reverting hub write", b.attr.Name())
		b.rollback()
		b.tripFault()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := b.cmd.Execute(ctx, arg); err != nil {
		b.log.Errorf("%s: command %q failed: %s", b.attr.Name(), arg, err)
		b.rollback()
		b.tripFault()
		return
	}
	b.log.Infof("%s: sent %q", b.attr.Name(), arg)
}

// rollback resets the characteristic to the last telemetry derived value.
func (b *attributeBinding[A, C]) rollback() {
	v, ok := b.attr.Get()
	if !ok {
		return
	}
	b.onVehicleUpdate(v)
}

func (b *attributeBinding[A, C]) tripFault() {
	if b.fault != nil {
		b.fault.trip()
	}
}
