package hkbridge

import (
	"fmt"
	"sort"
	"sync"

	"github.com/brutella/hap/accessory"
	"go.uber.org/zap"

	"github.com/mlehmann/car2hap/vehicle"
)

// RegistryConfig wires a Registry.
type RegistryConfig struct {
	Logger *zap.SugaredLogger
	Rules  IgnoreRules
	// ConfigFile is the accessory configuration snapshot path.
	ConfigFile string
	// OnChange fires after every structural change (accessory added or
	// removed), outside the registry lock.
	OnChange func()
}

// Registry tracks one VehicleAccessory per discovered, non-ignored VIN
// and owns the persisted accessory configuration snapshot.
type Registry struct {
	log      *zap.SugaredLogger
	rules    IgnoreRules
	builder  *Builder
	store    *ConfigStore
	onChange func()

	mu          sync.Mutex
	snap        *AccessoryConfig
	accessories map[string]*VehicleAccessory
}

// NewRegistry loads the persisted snapshot and preloads a placeholder
// accessory for every known VIN, so a paired hub keeps seeing its
// accessories before the telemetry source reports any vehicle. A
// corrupt snapshot file is an unrecoverable startup error, silently
// reassigning ids would break the existing pairing.
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	store := NewConfigStore(cfg.ConfigFile)
	snap, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("cannot read accessory config %s: %w", cfg.ConfigFile, err)
	}
	if snap == nil {
		snap = newAccessoryConfig()
	}
	onChange := cfg.OnChange
	if onChange == nil {
		onChange = func() {}
	}
	r := &Registry{
		log:         cfg.Logger,
		rules:       cfg.Rules,
		builder:     NewBuilder(cfg.Logger),
		store:       store,
		onChange:    onChange,
		snap:        snap,
		accessories: map[string]*VehicleAccessory{},
	}
	for vin, entry := range snap.Accessories {
		if entry.AID == 0 || len(entry.Services) == 0 || r.rules.VINIgnored(vin) {
			continue
		}
		va := r.builder.Build(placeholderVehicle(vin, entry.ConfiguredName, entry.Services), r.rules)
		va.a.Id = entry.AID
		va.placeholder = true
		r.accessories[vin] = va
		r.log.Debugf("preloaded placeholder accessory %d for %s", entry.AID, vin)
	}
	return r, nil
}

// OnVehicleAppeared builds and registers an accessory for the vehicle
// unless its VIN is ignored or already present. A preloaded placeholder
// is replaced under its persisted id. The updated snapshot is
// persisted, persistence failures keep the in-memory registry usable.
func (r *Registry) OnVehicleAppeared(v *vehicle.Vehicle) {
	vin := v.VIN()
	if r.rules.VINIgnored(vin) {
		r.log.Debugf("vehicle %s is on the ignore list", vin)
		return
	}

	r.mu.Lock()
	if existing, ok := r.accessories[vin]; ok && !existing.placeholder {
		r.mu.Unlock()
		return
	}
	va := r.builder.Build(v, r.rules)
	va.a.Id = r.snap.SelectAID(vin)
	r.snap.SetServices(vin, va.Services())
	r.snap.SetName(vin, v.DisplayName())
	r.accessories[vin] = va
	r.persistLocked()
	r.mu.Unlock()

	va.RefreshAll()
	r.log.Infof("vehicle %s registered as accessory %d with services %v",
		vin, va.a.Id, va.Services())
	r.onChange()
}

// OnVehicleDisappeared removes the accessory. The snapshot entry stays
// so the VIN keeps its accessory id if it ever comes back.
func (r *Registry) OnVehicleDisappeared(vin string) {
	r.mu.Lock()
	if _, ok := r.accessories[vin]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.accessories, vin)
	r.persistLocked()
	r.mu.Unlock()

	r.log.Infof("vehicle %s removed", vin)
	r.onChange()
}

func (r *Registry) Get(vin string) (*VehicleAccessory, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	va, ok := r.accessories[vin]
	return va, ok
}

// Accessories returns the HAP accessories sorted by id, the order the
// server should publish them in.
func (r *Registry) Accessories() []*accessory.A {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*accessory.A, 0, len(r.accessories))
	for _, va := range r.accessories {
		out = append(out, va.a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}

// RefreshAll re-pushes every accessory's bound values.
func (r *Registry) RefreshAll() {
	r.mu.Lock()
	list := make([]*VehicleAccessory, 0, len(r.accessories))
	for _, va := range r.accessories {
		list = append(list, va)
	}
	r.mu.Unlock()

	for _, va := range list {
		va.RefreshAll()
	}
}

// Persist writes the snapshot, used on controlled shutdown.
func (r *Registry) Persist() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Save(r.snap)
}

// persistLocked writes the snapshot and only logs on failure: the
// accessories stay usable for this process lifetime, but a pairing
// may not survive the next restart, which has to show up in the log.
func (r *Registry) persistLocked() {
	if err := r.store.Save(r.snap); err != nil {
		r.log.Errorf("cannot persist accessory config %s (accessory ids may change on restart): %s",
			r.store.path, err)
	}
}
