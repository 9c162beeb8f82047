package hkbridge

import (
	"sort"
	"strings"
)

// IgnoreRules filters vehicles and service types out of the bridge.
// Loaded once from configuration, immutable for the process lifetime.
type IgnoreRules struct {
	vins  map[string]struct{}
	types map[string]struct{}
}

func NewIgnoreRules(vins, types []string) IgnoreRules {
	r := IgnoreRules{
		vins:  make(map[string]struct{}, len(vins)),
		types: make(map[string]struct{}, len(types)),
	}
	for _, vin := range vins {
		r.vins[strings.ToUpper(strings.TrimSpace(vin))] = struct{}{}
	}
	for _, t := range types {
		r.types[strings.TrimSpace(t)] = struct{}{}
	}
	return r
}

func (r IgnoreRules) VINIgnored(vin string) bool {
	_, ok := r.vins[strings.ToUpper(vin)]
	return ok
}

func (r IgnoreRules) TypeIgnored(name string) bool {
	_, ok := r.types[name]
	return ok
}

// UnknownTypes returns ignore entries that match no catalog service
// type, those are configuration errors.
func (r IgnoreRules) UnknownTypes() []string {
	var unknown []string
	for t := range r.types {
		if !KnownServiceType(t) {
			unknown = append(unknown, t)
		}
	}
	sort.Strings(unknown)
	return unknown
}
