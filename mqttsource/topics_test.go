package mqttsource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlehmann/car2hap/vehicle"
)

func testVehicle() *vehicle.Vehicle {
	v := vehicle.New("5YJ3E1EA1KF000001")
	v.Battery = vehicle.NewBattery()
	v.Charging = vehicle.NewCharging()
	v.Climatization = vehicle.NewClimatization()
	v.Doors = vehicle.NewDoors()
	v.Position = vehicle.NewPosition()
	v.OutsideTemperature = vehicle.NewAttribute[float64]("outside_temperature")
	return v
}

func TestTopicHandlersFloats(t *testing.T) {
	v := testVehicle()
	require.NoError(t, topicHandlers["battery_level"](v, "55"))
	require.NoError(t, topicHandlers["charger_power"](v, "11"))
	require.NoError(t, topicHandlers["outside_temp"](v, "-3.5"))
	require.NoError(t, topicHandlers["latitude"](v, "52.52"))

	level, ok := v.Battery.Level.Get()
	require.True(t, ok)
	assert.Equal(t, 55.0, level)
	power, _ := v.Charging.Power.Get()
	assert.Equal(t, 11.0, power)
	temp, _ := v.OutsideTemperature.Get()
	assert.Equal(t, -3.5, temp)
	lat, _ := v.Position.Latitude.Get()
	assert.Equal(t, 52.52, lat)

	assert.Error(t, topicHandlers["battery_level"](v, "not a number"))
}

func TestTopicHandlersStrings(t *testing.T) {
	v := testVehicle()
	require.NoError(t, topicHandlers["display_name"](v, "my car"))
	require.NoError(t, topicHandlers["model"](v, "Model 3"))
	assert.Equal(t, "my car", v.DisplayName())
	model, _ := v.Model.Get()
	assert.Equal(t, "Model 3", model)
}

func TestHandleState(t *testing.T) {
	v := testVehicle()

	require.NoError(t, handleState(v, "charging"))
	s, _ := v.Charging.State.Get()
	assert.Equal(t, vehicle.ChargingCharging, s)

	require.NoError(t, handleState(v, "online"))
	s, _ = v.Charging.State.Get()
	assert.Equal(t, vehicle.ChargingOff, s)

	require.NoError(t, handleState(v, "asleep"))
	s, _ = v.Charging.State.Get()
	assert.Equal(t, vehicle.ChargingUnknown, s)
}

func TestHandleBooleans(t *testing.T) {
	v := testVehicle()

	require.NoError(t, handlePluggedIn(v, "true"))
	plug, _ := v.Charging.PlugState.Get()
	assert.Equal(t, vehicle.PlugConnected, plug)
	require.NoError(t, handlePluggedIn(v, "false"))
	plug, _ = v.Charging.PlugState.Get()
	assert.Equal(t, vehicle.PlugDisconnected, plug)

	require.NoError(t, handleLocked(v, "true"))
	lock, _ := v.Doors.LockState.Get()
	assert.Equal(t, vehicle.Locked, lock)

	require.NoError(t, handleClimateOn(v, "true"))
	clim, _ := v.Climatization.State.Get()
	assert.Equal(t, vehicle.ClimatizationHeating, clim)
	require.NoError(t, handleClimateOn(v, "false"))
	clim, _ = v.Climatization.State.Get()
	assert.Equal(t, vehicle.ClimatizationOff, clim)

	assert.Error(t, handleLocked(v, "maybe"))
}
