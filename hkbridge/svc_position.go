package hkbridge

import (
	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/service"

	"github.com/mlehmann/car2hap/vehicle"
)

// Position has no HomeKit equivalent, so it goes out as a custom
// service with two read-only float characteristics. Apps like Eve and
// Home+ display those fine, the Home app just hides them.
const (
	typePositionService = "F0A10001-9D4A-4C42-8F6A-4D5B9E4C1A01"
	typeLatitude        = "F0A10002-9D4A-4C42-8F6A-4D5B9E4C1A01"
	typeLongitude       = "F0A10003-9D4A-4C42-8F6A-4D5B9E4C1A01"
)

func hasPosition(v *vehicle.Vehicle) bool { return v.Position != nil }

func stubPosition(v *vehicle.Vehicle) { v.Position = vehicle.NewPosition() }

func attachPosition(va *VehicleAccessory, v *vehicle.Vehicle) {
	svc := service.New(typePositionService)
	va.a.AddS(svc)

	lat := newDegreeChar(typeLatitude, "Latitude", 90)
	svc.AddC(lat.C)
	bind(va, v.Position.Latitude, same[float64], lat.Value, lat.SetValue)

	lon := newDegreeChar(typeLongitude, "Longitude", 180)
	svc.AddC(lon.C)
	bind(va, v.Position.Longitude, same[float64], lon.Value, lon.SetValue)
}

func newDegreeChar(typ, description string, limit float64) *characteristic.Float {
	c := characteristic.NewFloat(typ)
	c.Format = characteristic.FormatFloat
	c.Permissions = []string{characteristic.PermissionRead, characteristic.PermissionEvents}
	c.Description = description
	c.SetMinValue(-limit)
	c.SetMaxValue(limit)
	return c
}
