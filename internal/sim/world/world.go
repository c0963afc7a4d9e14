package world

import (
	"fmt"
	"log"
	"math/rand"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"

	"vacuumsim.ai/internal/persistence/snapshot"
	"vacuumsim.ai/internal/protocol"
	"vacuumsim.ai/internal/sim/layout"
	"vacuumsim.ai/internal/sim/physics"
	"vacuumsim.ai/internal/sim/tasks"
	"vacuumsim.ai/internal/sim/tuning"
)

type WorldConfig struct {
	ID         string
	TickRateHz int
	Seed       int64
	// Mode is tuning.ModeAuto (task controller drives) or tuning.ModeManual (DRIVE commands).
	Mode string

	Layout  layout.Config
	Debris  layout.DebrisConfig
	Robot   RobotConfig
	Physics physics.Params
	Tasks   tasks.Params

	SnapshotEveryTicks int

	// Optional (may be nil).
	Logger *log.Logger
}

// DriveCommand is a manual velocity request from a driver session.
type DriveCommand struct {
	SessionID string  `json:"session_id"`
	VX        float64 `json:"vx"`
	VZ        float64 `json:"vz"`
}

type DriverJoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan DriverJoinResponse
}

type DriverJoinResponse struct {
	Welcome protocol.WelcomeMsg
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type EventLogger interface {
	WriteEvent(ev Event) error
}

type TickLogEntry struct {
	Tick   uint64         `json:"tick"`
	Drives []DriveCommand `json:"drives,omitempty"`
	Events []Event        `json:"events,omitempty"`
	Digest string         `json:"digest"`
}

type driverState struct {
	Name string
	Out  chan []byte
}

// World is a single-threaded authoritative simulation of the robot and its rooms.
// All state must be accessed only from the world loop goroutine; other goroutines use
// Frame/Metrics or the request channels.
type World struct {
	cfg WorldConfig
	log *log.Logger

	tick atomic.Uint64

	reg       *layout.Registry
	zoneMap   physics.Zones
	debris    *layout.DebrisSet
	debrisAll []*layout.Debris
	robot     *physics.Body
	onFloor   bool
	ctl       *tasks.Controller
	collected int

	drivers   map[string]*driverState
	observers map[string]*observerClient

	inbox         chan DriveCommand
	join          chan DriverJoinRequest
	leave         chan string
	observerJoin  chan ObserverJoinRequest
	observerSub   chan ObserverSubscribeRequest
	observerLeave chan string
	admin         chan snapshotRequest
	stop          chan struct{}

	nextDriverNum atomic.Uint64

	// Optional loggers (may be nil). Implemented in internal/persistence/*.
	tickLogger  TickLogger
	eventLogger EventLogger

	// Optional snapshot sink (may be nil). Snapshot writing should be off-thread.
	snapshotSink chan<- snapshot.SnapshotV1

	frame   atomic.Value // Frame
	metrics atomic.Value // WorldMetrics
}

func New(cfg WorldConfig) (*World, error) {
	if cfg.TickRateHz <= 0 {
		return nil, fmt.Errorf("tick rate must be > 0, got %d", cfg.TickRateHz)
	}
	switch cfg.Mode {
	case "":
		cfg.Mode = tuning.ModeAuto
	case tuning.ModeAuto, tuning.ModeManual:
	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}

	// Occupancy is drawn before debris so a seed always yields the same layout.
	rng := rand.New(rand.NewSource(cfg.Seed))
	reg := layout.NewRegistry(cfg.Layout, rng)
	debris := layout.GenerateDebris(reg, cfg.Debris, rng)

	w := &World{
		cfg:       cfg,
		log:       cfg.Logger,
		reg:       reg,
		zoneMap:   reg.Map(),
		debris:    debris,
		debrisAll: append([]*layout.Debris(nil), debris.All()...),
		robot: physics.NewBody(
			cfg.Robot.Start,
			cfg.Robot.Dims,
			mgl64.Vec3{0, cfg.Robot.InitialVelocityY, 0},
			cfg.Robot.Gravity,
		),
		ctl:           tasks.New(reg, debris, cfg.Tasks),
		drivers:       map[string]*driverState{},
		observers:     map[string]*observerClient{},
		inbox:         make(chan DriveCommand, 1024),
		join:          make(chan DriverJoinRequest, 64),
		leave:         make(chan string, 64),
		observerJoin:  make(chan ObserverJoinRequest, 16),
		observerSub:   make(chan ObserverSubscribeRequest, 64),
		observerLeave: make(chan string, 16),
		admin:         make(chan snapshotRequest, 16),
		stop:          make(chan struct{}),
	}
	w.frame.Store(w.buildFrame(0, nil))
	w.metrics.Store(WorldMetrics{Mode: cfg.Mode, DebrisTotal: len(w.debrisAll), DebrisRemaining: len(w.debrisAll), Battery: 100})
	w.logf("world %s seed=%d mode=%s debris=%d", cfg.ID, cfg.Seed, cfg.Mode, len(w.debrisAll))
	return w, nil
}

func (w *World) SetTickLogger(l TickLogger)   { w.tickLogger = l }
func (w *World) SetEventLogger(l EventLogger) { w.eventLogger = l }

func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }

func (w *World) Config() WorldConfig { return w.cfg }
func (w *World) Mode() string        { return w.cfg.Mode }
func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) Inbox() chan<- DriveCommand                         { return w.inbox }
func (w *World) Join() chan<- DriverJoinRequest                     { return w.join }
func (w *World) Leave() chan<- string                               { return w.leave }
func (w *World) ObserverJoin() chan<- ObserverJoinRequest           { return w.observerJoin }
func (w *World) ObserverSubscribe() chan<- ObserverSubscribeRequest { return w.observerSub }
func (w *World) ObserverLeave() chan<- string                       { return w.observerLeave }

func (w *World) handleDriverJoin(req DriverJoinRequest) {
	id := fmt.Sprintf("D%d", w.nextDriverNum.Add(1))
	name := req.Name
	if name == "" {
		name = "driver"
	}
	w.drivers[id] = &driverState{Name: name, Out: req.Out}
	w.logf("driver joined: %s (%s)", id, name)
	if req.Resp == nil {
		return
	}
	req.Resp <- DriverJoinResponse{Welcome: protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       id,
		Mode:            w.cfg.Mode,
		WorldParams: protocol.WorldParams{
			TickRateHz: w.cfg.TickRateHz,
			Seed:       w.cfg.Seed,
			RoomWidth:  w.cfg.Layout.Room.Width,
			RoomDepth:  w.cfg.Layout.Room.Depth,
			RoomOffset: w.cfg.Layout.Offset,
		},
	}}
}

func (w *World) handleDriverLeave(id string) {
	if _, ok := w.drivers[id]; ok {
		delete(w.drivers, id)
		w.logf("driver left: %s", id)
	}
}

func (w *World) logf(format string, args ...any) {
	if w.log != nil {
		w.log.Printf(format, args...)
	}
}
