package hkbridge

import (
	"sync"
	"time"

	"github.com/brutella/hap/accessory"
	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/service"
	"go.uber.org/zap"
)

// VehicleAccessory is the per-vehicle aggregate: one HAP accessory with
// one service per supported capability. It owns the guard that
// serializes telemetry updates against hub writes for all of its
// characteristics.
type VehicleAccessory struct {
	vin      string
	a        *accessory.A
	guard    sync.Mutex
	bindings []binding
	services []string
	// placeholder accessories are rebuilt from the persisted snapshot
	// at startup and replaced once the real vehicle reports in
	placeholder bool
	log         *zap.SugaredLogger
}

func (va *VehicleAccessory) VIN() string { return va.vin }

// A exposes the underlying HAP accessory for server registration.
func (va *VehicleAccessory) A() *accessory.A { return va.a }

// Services lists the attached catalog service types in creation order.
func (va *VehicleAccessory) Services() []string { return va.services }

// RefreshAll re-pushes every bound attribute's current value to its
// characteristic. Used once at startup so the hub does not keep showing
// stale defaults.
func (va *VehicleAccessory) RefreshAll() {
	for _, b := range va.bindings {
		b.refresh()
	}
}

// faultChar is a StatusFault characteristic with a timed reset, one per
// controllable service.
type faultChar struct {
	mu    sync.Mutex
	c     *characteristic.StatusFault
	timer *time.Timer
}

func newFaultChar(s *service.S) *faultChar {
	f := &faultChar{c: characteristic.NewStatusFault()}
	s.AddC(f.c.C)
	return f
}

// trip raises the fault and schedules the reset. A second trip while
// raised restarts the timer.
func (f *faultChar) trip() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
	}
	f.c.SetValue(1)
	f.timer = time.AfterFunc(faultResetTimeout, func() {
		f.c.SetValue(0)
	})
}
