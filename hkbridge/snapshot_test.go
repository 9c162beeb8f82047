package hkbridge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectAIDStable(t *testing.T) {
	c := newAccessoryConfig()
	a := c.SelectAID("VIN_A")
	b := c.SelectAID("VIN_B")
	assert.Equal(t, uint64(100), a)
	assert.Equal(t, uint64(101), b)
	assert.Equal(t, a, c.SelectAID("VIN_A"), "repeated selection keeps the id")
}

func TestConfigStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accessory-config.json")
	store := NewConfigStore(path)

	c := newAccessoryConfig()
	c.SelectAID("VIN_A")
	c.SelectAID("VIN_B")
	c.SetServices("VIN_A", []string{"Battery", "DoorLock"})
	c.SetName("VIN_A", "my car")
	require.NoError(t, store.Save(c))

	got, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, snapshotVersion, got.Version)
	assert.Equal(t, uint64(100), got.SelectAID("VIN_A"))
	assert.Equal(t, uint64(101), got.SelectAID("VIN_B"))
	assert.Equal(t, []string{"Battery", "DoorLock"}, got.Accessories["VIN_A"].Services)
	assert.Equal(t, "my car", got.Accessories["VIN_A"].ConfiguredName)
	assert.Equal(t, uint64(102), got.SelectAID("VIN_C"), "new VINs continue after the loaded ids")
}

func TestConfigStoreLoadMissing(t *testing.T) {
	store := NewConfigStore(filepath.Join(t.TempDir(), "nope.json"))
	got, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestConfigStoreLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accessory-config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err := NewConfigStore(path).Load()
	assert.Error(t, err)
}

func TestConfigStoreRecoversNextAID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accessory-config.json")
	// snapshot written before next_aid existed
	require.NoError(t, os.WriteFile(path, []byte(`{
		"version": 1,
		"accessories": {"VIN_A": {"aid": 100}, "VIN_B": {"aid": 105}}
	}`), 0644))

	got, err := NewConfigStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(106), got.NextAID)
	assert.Equal(t, uint64(106), got.SelectAID("VIN_C"))
}

func TestConfigStoreCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "dir", "accessory-config.json")
	require.NoError(t, NewConfigStore(path).Save(newAccessoryConfig()))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
