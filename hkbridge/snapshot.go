package hkbridge

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// snapshotVersion is the current accessory config file format version.
	snapshotVersion = 1

	// firstAID is the first accessory id handed out, ids below are
	// reserved (1 is the bridge itself).
	firstAID = 100
)

// AccessoryConfig is the persisted accessory configuration snapshot. It
// keeps the accessory id per VIN stable across restarts so a paired hub
// keeps recognizing the accessories. Entries are never dropped, a
// vehicle that disappears and comes back gets its old id.
type AccessoryConfig struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`
	NextAID uint64    `json:"next_aid"`

	Accessories map[string]*AccessoryEntry `json:"accessories"`
}

// AccessoryEntry is the persisted per-VIN configuration.
type AccessoryEntry struct {
	AID            uint64   `json:"aid"`
	Services       []string `json:"services,omitempty"`
	ConfiguredName string   `json:"configured_name,omitempty"`
}

func newAccessoryConfig() *AccessoryConfig {
	return &AccessoryConfig{
		NextAID:     firstAID,
		Accessories: map[string]*AccessoryEntry{},
	}
}

// SelectAID returns the persisted accessory id for vin, assigning the
// next free one on first sight. Not safe for concurrent use, the
// registry serializes access.
func (c *AccessoryConfig) SelectAID(vin string) uint64 {
	if e, ok := c.Accessories[vin]; ok && e.AID != 0 {
		return e.AID
	}
	aid := c.NextAID
	c.NextAID++
	if e, ok := c.Accessories[vin]; ok {
		e.AID = aid
	} else {
		c.Accessories[vin] = &AccessoryEntry{AID: aid}
	}
	return aid
}

func (c *AccessoryConfig) SetServices(vin string, services []string) {
	if e, ok := c.Accessories[vin]; ok {
		e.Services = services
		return
	}
	c.Accessories[vin] = &AccessoryEntry{Services: services}
}

func (c *AccessoryConfig) SetName(vin, name string) {
	if e, ok := c.Accessories[vin]; ok {
		e.ConfiguredName = name
		return
	}
	c.Accessories[vin] = &AccessoryEntry{ConfiguredName: name}
}

// ConfigStore persists the accessory configuration snapshot to a JSON
// file.
type ConfigStore struct {
	mu   sync.Mutex
	path string
}

func NewConfigStore(path string) *ConfigStore {
	return &ConfigStore{path: path}
}

// Load reads the snapshot from disk. Returns nil, nil if the file does
// not exist yet.
func (s *ConfigStore) Load() (*AccessoryConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cfg := &AccessoryConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Accessories == nil {
		cfg.Accessories = map[string]*AccessoryEntry{}
	}
	if cfg.NextAID < firstAID {
		cfg.NextAID = firstAID
	}
	// older snapshots may predate next_aid, recover it from the entries
	for _, e := range cfg.Accessories {
		if e.AID >= cfg.NextAID {
			cfg.NextAID = e.AID + 1
		}
	}
	return cfg, nil
}

// Save persists the snapshot to disk.
func (s *ConfigStore) Save(cfg *AccessoryConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	cfg.Version = snapshotVersion
	cfg.SavedAt = time.Now()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
