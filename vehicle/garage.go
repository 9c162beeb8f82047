package vehicle

import (
	"sort"
	"sync"
)

// Garage is the set of vehicles currently known to the telemetry side.
// Connectors add and remove vehicles, the bridge subscribes to both.
type Garage struct {
	mu       sync.Mutex
	vehicles map[string]*Vehicle
	added    []func(*Vehicle)
	removed  []func(vin string)
}

func NewGarage() *Garage {
	return &Garage{vehicles: map[string]*Vehicle{}}
}

// Add registers a vehicle and notifies subscribers. Adding a VIN that
// is already present is a no-op.
func (g *Garage) Add(v *Vehicle) {
	g.mu.Lock()
	if _, ok := g.vehicles[v.VIN()]; ok {
		g.mu.Unlock()
		return
	}
	g.vehicles[v.VIN()] = v
	added := make([]func(*Vehicle), len(g.added))
	copy(added, g.added)
	g.mu.Unlock()

	for _, fn := range added {
		fn(v)
	}
}

// Remove drops a vehicle and notifies subscribers. Unknown VINs are a
// no-op.
func (g *Garage) Remove(vin string) {
	g.mu.Lock()
	if _, ok := g.vehicles[vin]; !ok {
		g.mu.Unlock()
		return
	}
	delete(g.vehicles, vin)
	removed := make([]func(string), len(g.removed))
	copy(removed, g.removed)
	g.mu.Unlock()

	for _, fn := range removed {
		fn(vin)
	}
}

func (g *Garage) Get(vin string) (*Vehicle, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, ok := g.vehicles[vin]
	return v, ok
}

// List returns the current vehicles sorted by VIN.
func (g *Garage) List() []*Vehicle {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Vehicle, 0, len(g.vehicles))
	for _, v := range g.vehicles {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VIN() < out[j].VIN() })
	return out
}

func (g *Garage) OnVehicleAdded(fn func(*Vehicle)) {
	g.mu.Lock()
	g.added = append(g.added, fn)
	g.mu.Unlock()
}

func (g *Garage) OnVehicleRemoved(fn func(vin string)) {
	g.mu.Lock()
	g.removed = append(g.removed, fn)
	g.mu.Unlock()
}
