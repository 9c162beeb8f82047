package vehicle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGarageAddRemove(t *testing.T) {
	g := NewGarage()
	var added []string
	var removed []string
	g.OnVehicleAdded(func(v *Vehicle) { added = append(added, v.VIN()) })
	g.OnVehicleRemoved(func(vin string) { removed = append(removed, vin) })

	v := New("WVWZZZ1KZ5W000001")
	g.Add(v)
	g.Add(v) // duplicate, no second notification

	got, ok := g.Get("WVWZZZ1KZ5W000001")
	require.True(t, ok)
	assert.Same(t, v, got)
	assert.Equal(t, []string{"WVWZZZ1KZ5W000001"}, added)

	g.Remove("WVWZZZ1KZ5W000001")
	g.Remove("WVWZZZ1KZ5W000001") // unknown now, no-op
	_, ok = g.Get("WVWZZZ1KZ5W000001")
	assert.False(t, ok)
	assert.Equal(t, []string{"WVWZZZ1KZ5W000001"}, removed)
}

func TestGarageListSorted(t *testing.T) {
	g := NewGarage()
	g.Add(New("WVWZZZ1KZ5W000002"))
	g.Add(New("5YJ3E1EA1KF000001"))
	g.Add(New("WVWZZZ1KZ5W000001"))

	list := g.List()
	require.Len(t, list, 3)
	assert.Equal(t, "5YJ3E1EA1KF000001", list[0].VIN())
	assert.Equal(t, "WVWZZZ1KZ5W000001", list[1].VIN())
	assert.Equal(t, "WVWZZZ1KZ5W000002", list[2].VIN())
}

func TestVehicleDisplayName(t *testing.T) {
	v := New("WVWZZZ1KZ5W000001")
	assert.Equal(t, "WVWZZZ1KZ5W000001", v.DisplayName())
	v.Name.Set("my car")
	assert.Equal(t, "my car", v.DisplayName())
}
