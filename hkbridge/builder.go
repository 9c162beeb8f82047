package hkbridge

import (
	"github.com/brutella/hap/accessory"
	"go.uber.org/zap"

	"github.com/mlehmann/car2hap/vehicle"
)

// serviceSpec is one entry of the fixed service catalog: a vehicle
// capability the bridge can expose, with its ignore-list key, a
// capability probe, the wiring code and a stub that attaches an empty
// capability block for placeholder accessories.
type serviceSpec struct {
	name    string
	applies func(*vehicle.Vehicle) bool
	attach  func(*VehicleAccessory, *vehicle.Vehicle)
	stub    func(*vehicle.Vehicle)
}

// catalog order is load-bearing: it fixes the order in which services
// are added to an accessory and with it the instance ids the HAP layer
// assigns on first pairing.
var catalog = []serviceSpec{
	{"Battery", hasBattery, attachBattery, stubBattery},
	{"Charging", hasCharging, attachCharging, stubCharging},
	{"Climatization", hasClimatization, attachClimatization, stubClimatization},
	{"WindowHeating", hasWindowHeating, attachWindowHeating, stubWindowHeating},
	{"DoorLock", hasDoors, attachDoorLock, stubDoors},
	{"Flashing", hasFlashing, attachFlashing, stubFlashing},
	{"OutsideTemperature", hasOutsideTemperature, attachOutsideTemperature, stubOutsideTemperature},
	{"Position", hasPosition, attachPosition, stubPosition},
}

// ServiceTypeNames returns the catalog's service type names in
// declaration order.
func ServiceTypeNames() []string {
	names := make([]string, 0, len(catalog))
	for _, spec := range catalog {
		names = append(names, spec.name)
	}
	return names
}

func KnownServiceType(name string) bool {
	for _, spec := range catalog {
		if spec.name == name {
			return true
		}
	}
	return false
}

// Builder turns a vehicle into a VehicleAccessory by walking the
// catalog and attaching every applicable, non-ignored service.
type Builder struct {
	log *zap.SugaredLogger
}

func NewBuilder(log *zap.SugaredLogger) *Builder {
	return &Builder{log: log}
}

func (b *Builder) Build(v *vehicle.Vehicle, rules IgnoreRules) *VehicleAccessory {
	info := accessory.Info{
		Name:         v.DisplayName(),
		SerialNumber: v.VIN(),
		Manufacturer: attrOr(v.Manufacturer, "Unknown"),
		Model:        attrOr(v.Model, "Unknown"),
		Firmware:     attrOr(v.SoftwareVersion, ""),
	}
	va := &VehicleAccessory{
		vin: v.VIN(),
		a:   accessory.New(info, accessory.TypeOther),
		log: b.log.Named(v.VIN()),
	}
	for _, spec := range catalog {
		if rules.TypeIgnored(spec.name) {
			b.log.Debugf("%s: service %s on ignore list", v.VIN(), spec.name)
			continue
		}
		if !spec.applies(v) {
			continue
		}
		spec.attach(va, v)
		va.services = append(va.services, spec.name)
	}
	return va
}

// placeholderVehicle reconstructs a capability skeleton from a persisted
// service list. All attributes stay disabled and no commands are
// installed, the accessory built from it shows defaults until the real
// vehicle reports in.
func placeholderVehicle(vin, name string, services []string) *vehicle.Vehicle {
	v := vehicle.New(vin)
	if name != "" {
		v.Name.Set(name)
	}
	for _, spec := range catalog {
		for _, s := range services {
			if s == spec.name {
				spec.stub(v)
			}
		}
	}
	return v
}

func attrOr(a *vehicle.Attribute[string], fallback string) string {
	if v, ok := a.Get(); ok && v != "" {
		return v
	}
	return fallback
}

// same is the identity transform for attributes that map 1:1 onto their
// characteristic.
func same[T comparable](v T) T { return v }
