package hkbridge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brutella/hap/characteristic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRegistry(t *testing.T, path string, rules IgnoreRules, onChange func()) *Registry {
	t.Helper()
	r, err := NewRegistry(RegistryConfig{
		Logger:     zap.NewNop().Sugar(),
		Rules:      rules,
		ConfigFile: path,
		OnChange:   onChange,
	})
	require.NoError(t, err)
	return r
}

func TestRegistryAppearDisappear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accessory-config.json")
	changes := 0
	r := testRegistry(t, path, NewIgnoreRules(nil, nil), func() { changes++ })

	v := fullVehicle("WVWZZZ1KZ5W000001")
	r.OnVehicleAppeared(v)
	r.OnVehicleAppeared(v) // duplicate appearance is a no-op

	va, ok := r.Get("WVWZZZ1KZ5W000001")
	require.True(t, ok)
	assert.Equal(t, uint64(100), va.A().Id)
	assert.Len(t, r.Accessories(), 1)
	assert.Equal(t, 1, changes)

	r.OnVehicleDisappeared("WVWZZZ1KZ5W000001")
	r.OnVehicleDisappeared("WVWZZZ1KZ5W000001")
	_, ok = r.Get("WVWZZZ1KZ5W000001")
	assert.False(t, ok)
	assert.Empty(t, r.Accessories())
	assert.Equal(t, 2, changes)
}

func TestRegistryIgnoredVIN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accessory-config.json")
	r := testRegistry(t, path, NewIgnoreRules([]string{"WVWZZZ1KZ5W000001"}, nil), func() {
		t.Fatal("ignored vehicle must not trigger a change")
	})

	r.OnVehicleAppeared(fullVehicle("WVWZZZ1KZ5W000001"))
	_, ok := r.Get("WVWZZZ1KZ5W000001")
	assert.False(t, ok)
	assert.Empty(t, r.Accessories())
}

func TestRegistryAIDStableAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accessory-config.json")

	r := testRegistry(t, path, NewIgnoreRules(nil, nil), func() {})
	r.OnVehicleAppeared(fullVehicle("WVWZZZ1KZ5W000001"))
	r.OnVehicleAppeared(fullVehicle("WVWZZZ1KZ5W000002"))
	va1, _ := r.Get("WVWZZZ1KZ5W000001")
	va2, _ := r.Get("WVWZZZ1KZ5W000002")
	require.NoError(t, r.Persist())

	// new registry over the same store, appearance order reversed
	r = testRegistry(t, path, NewIgnoreRules(nil, nil), func() {})
	r.OnVehicleAppeared(fullVehicle("WVWZZZ1KZ5W000002"))
	r.OnVehicleAppeared(fullVehicle("WVWZZZ1KZ5W000001"))
	got1, _ := r.Get("WVWZZZ1KZ5W000001")
	got2, _ := r.Get("WVWZZZ1KZ5W000002")
	assert.Equal(t, va1.A().Id, got1.A().Id)
	assert.Equal(t, va2.A().Id, got2.A().Id)
}

func TestRegistryKeepsAIDOfDisappearedVehicle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accessory-config.json")
	r := testRegistry(t, path, NewIgnoreRules(nil, nil), func() {})

	r.OnVehicleAppeared(fullVehicle("WVWZZZ1KZ5W000001"))
	va, _ := r.Get("WVWZZZ1KZ5W000001")
	aid := va.A().Id

	r.OnVehicleDisappeared("WVWZZZ1KZ5W000001")
	r.OnVehicleAppeared(fullVehicle("WVWZZZ1KZ5W000002"))
	r.OnVehicleAppeared(fullVehicle("WVWZZZ1KZ5W000001"))

	va, _ = r.Get("WVWZZZ1KZ5W000001")
	assert.Equal(t, aid, va.A().Id, "a returning vehicle keeps its accessory id")
}

func TestRegistryAccessoriesSortedByID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accessory-config.json")
	r := testRegistry(t, path, NewIgnoreRules(nil, nil), func() {})

	r.OnVehicleAppeared(fullVehicle("WVWZZZ1KZ5W000002"))
	r.OnVehicleAppeared(fullVehicle("WVWZZZ1KZ5W000001"))

	list := r.Accessories()
	require.Len(t, list, 2)
	assert.Less(t, list[0].Id, list[1].Id)
}

func TestRegistryPreloadsPlaceholders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accessory-config.json")

	r := testRegistry(t, path, NewIgnoreRules(nil, nil), func() {})
	v := fullVehicle("WVWZZZ1KZ5W000001")
	v.Name.Set("my car")
	r.OnVehicleAppeared(v)
	va, _ := r.Get("WVWZZZ1KZ5W000001")
	aid := va.A().Id
	services := va.Services()
	require.NoError(t, r.Persist())

	// fresh registry over the same store: the paired hub must keep
	// seeing the accessory before any telemetry arrived
	changes := 0
	r = testRegistry(t, path, NewIgnoreRules(nil, nil), func() { changes++ })
	va, ok := r.Get("WVWZZZ1KZ5W000001")
	require.True(t, ok)
	assert.True(t, va.placeholder)
	assert.Equal(t, aid, va.A().Id)
	assert.Equal(t, services, va.Services())
	assert.Equal(t, "my car", findStringChar(t, va, characteristic.TypeName),
		"placeholder carries the configured name")
	require.Len(t, r.Accessories(), 1)

	// the real vehicle replaces the placeholder under the same id
	r.OnVehicleAppeared(fullVehicle("WVWZZZ1KZ5W000001"))
	va, _ = r.Get("WVWZZZ1KZ5W000001")
	assert.False(t, va.placeholder)
	assert.Equal(t, aid, va.A().Id)
	assert.Equal(t, 1, changes)
}

func TestRegistryDoesNotPreloadIgnoredVIN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accessory-config.json")

	r := testRegistry(t, path, NewIgnoreRules(nil, nil), func() {})
	r.OnVehicleAppeared(fullVehicle("WVWZZZ1KZ5W000001"))
	require.NoError(t, r.Persist())

	r = testRegistry(t, path, NewIgnoreRules([]string{"WVWZZZ1KZ5W000001"}, nil), func() {})
	_, ok := r.Get("WVWZZZ1KZ5W000001")
	assert.False(t, ok)
	assert.Empty(t, r.Accessories())
}

func TestRegistryCorruptSnapshotFailsStartup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "accessory-config.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))

	_, err := NewRegistry(RegistryConfig{
		Logger:     zap.NewNop().Sugar(),
		ConfigFile: path,
	})
	assert.Error(t, err)
}
