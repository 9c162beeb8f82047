package hkbridge

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/brutella/hap"
	"github.com/brutella/hap/accessory"
	"go.uber.org/zap"

	"github.com/mlehmann/car2hap/vehicle"
)

// State is the bridge service lifecycle state.
type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Config wires a bridge Service.
type Config struct {
	Logger *zap.SugaredLogger
	Garage *vehicle.Garage

	// Address is the host:port the HAP server binds to.
	Address string
	// Pincode is the 8 digit pairing pin, dashes allowed.
	Pincode string
	// StateDir holds the HAP library's pairing/identity store.
	StateDir string
	// ConfigFile is the accessory configuration snapshot path.
	ConfigFile string

	IgnoreVINs           []string
	IgnoreAccessoryTypes []string

	// BridgeName is the name the bridge advertises, defaults to car2hap.
	BridgeName string
	// Firmware is the advertised bridge firmware revision.
	Firmware string
}

// Service is the top-level orchestrator: it owns the registry, runs the
// HAP server and relays garage changes into accessory changes.
type Service struct {
	log    *zap.SugaredLogger
	cfg    Config
	garage *vehicle.Garage
	rules  IgnoreRules

	registry *Registry
	state    atomic.Int32
	restart  chan struct{}
	cancel   context.CancelFunc
	done     chan struct{}
}

// New validates the configuration and prepares a stopped service.
func New(cfg Config) (*Service, error) {
	if cfg.Garage == nil {
		return nil, fmt.Errorf("garage must not be nil")
	}
	if cfg.BridgeName == "" {
		cfg.BridgeName = "car2hap"
	}
	rules := NewIgnoreRules(cfg.IgnoreVINs, cfg.IgnoreAccessoryTypes)
	if unknown := rules.UnknownTypes(); len(unknown) > 0 {
		return nil, fmt.Errorf("unknown service types in ignore_accessory_types: %v (known: %v)",
			unknown, ServiceTypeNames())
	}
	return &Service{
		log:     cfg.Logger,
		cfg:     cfg,
		garage:  cfg.Garage,
		rules:   rules,
		restart: make(chan struct{}, 1),
	}, nil
}

func (s *Service) State() State {
	return State(s.state.Load())
}

// Start brings the service to Running: load the persisted snapshot,
// register accessories for every vehicle already in the garage,
// subscribe to garage changes and launch the HAP serve loop.
// Unrecoverable startup errors (corrupt snapshot, bind failure) drop
// the service straight back to Stopped.
func (s *Service) Start(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateStopped), int32(StateStarting)) {
		return fmt.Errorf("cannot start bridge from state %s", s.State())
	}
	fail := func(err error) error {
		s.state.Store(int32(StateStopped))
		return err
	}

	registry, err := NewRegistry(RegistryConfig{
		Logger:     s.log,
		Rules:      s.rules,
		ConfigFile: s.cfg.ConfigFile,
		OnChange:   s.requestRestart,
	})
	if err != nil {
		return fail(err)
	}
	s.registry = registry

	if err := os.MkdirAll(s.cfg.StateDir, 0755); err != nil {
		return fail(fmt.Errorf("cannot create accessory state dir: %w", err))
	}
	// probe the listen address now so bind errors fail Start instead of
	// surfacing asynchronously from the serve loop
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fail(fmt.Errorf("cannot bind %s: %w", s.cfg.Address, err))
	}
	ln.Close()

	// subscribe before listing: a vehicle added in between is seen by
	// both paths, OnVehicleAppeared deduplicates
	s.garage.OnVehicleAdded(s.onVehicleAdded)
	s.garage.OnVehicleRemoved(s.onVehicleRemoved)
	for _, v := range s.garage.List() {
		s.registry.OnVehicleAppeared(v)
	}
	s.registry.RefreshAll()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.serveLoop(runCtx)

	s.state.Store(int32(StateRunning))
	s.log.Infof("bridge %s serving on %s, pairing pincode %s",
		s.cfg.BridgeName, s.cfg.Address, s.cfg.Pincode)
	return nil
}

// Stop persists the snapshot and unblocks the serve loop. In-flight
// updates finish, new garage events are no longer dispatched.
func (s *Service) Stop() {
	if !s.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		return
	}
	s.log.Info("stopping bridge")
	s.cancel()
	<-s.done
	if err := s.registry.Persist(); err != nil {
		s.log.Errorf("cannot persist accessory config on shutdown: %s", err)
	}
	s.state.Store(int32(StateStopped))
	s.log.Info("bridge stopped")
}

// Garage events are accepted from Starting on, a vehicle appearing
// while Start is still underway must not be lost.
func (s *Service) onVehicleAdded(v *vehicle.Vehicle) {
	switch s.State() {
	case StateStarting, StateRunning:
		s.registry.OnVehicleAppeared(v)
	}
}

func (s *Service) onVehicleRemoved(vin string) {
	switch s.State() {
	case StateStarting, StateRunning:
		s.registry.OnVehicleDisappeared(vin)
	}
}

// requestRestart asks the serve loop to bounce the HAP server so a
// changed accessory table gets published. Coalesces bursts.
func (s *Service) requestRestart() {
	select {
	case s.restart <- struct{}{}:
	default:
	}
}

func (s *Service) serveLoop(ctx context.Context) {
	defer close(s.done)
	for ctx.Err() == nil {
		if err := s.serveOnce(ctx); err != nil && ctx.Err() == nil {
			s.log.Errorf("HAP server stopped: %s, restarting", err)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
		}
	}
}

// serveOnce runs one HAP server incarnation over the current accessory
// table. The HAP library fixes the accessory set at server construction,
// so structural changes cancel this incarnation and the loop rebuilds.
// Pairing state lives in the fs store and survives the bounce.
func (s *Service) serveOnce(ctx context.Context) error {
	// drop a stale restart request from before this incarnation, the
	// accessory table read below already reflects it
	select {
	case <-s.restart:
	default:
	}

	bridge := accessory.NewBridge(accessory.Info{
		Name:         s.cfg.BridgeName,
		SerialNumber: "car2hap-bridge",
		Manufacturer: "car2hap",
		Model:        "car2hap",
		Firmware:     s.cfg.Firmware,
	})
	bridge.A.Id = 1

	server, err := hap.NewServer(hap.NewFsStore(s.cfg.StateDir), bridge.A, s.registry.Accessories()...)
	if err != nil {
		return fmt.Errorf("cannot create HAP server: %w", err)
	}
	server.Pin = strings.ReplaceAll(s.cfg.Pincode, "-", "")
	server.Addr = s.cfg.Address

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.restart:
			s.log.Debug("accessory table changed, bouncing HAP server")
			cancel()
		case <-serveCtx.Done():
		}
	}()

	err = server.ListenAndServe(serveCtx)
	if serveCtx.Err() != nil {
		return nil
	}
	return err
}
