package world

import (
	"vacuumsim.ai/internal/observerproto"
)

// ObserverJoinRequest registers a read-only observer session that receives one TICK frame
// per tick (or per Every ticks) on TickOut, encoded with Encoding.
//
// All observer state is maintained by the world loop goroutine.
type ObserverJoinRequest struct {
	SessionID string
	TickOut   chan []byte
	Encoding  string
	Every     int
}

// ObserverSubscribeRequest updates the stride of an existing observer session.
// The encoding is fixed at join.
type ObserverSubscribeRequest struct {
	SessionID string
	Every     int
}

type observerClient struct {
	id       string
	tickOut  chan []byte
	encoding string
	every    uint64
}

func (w *World) handleObserverJoin(req ObserverJoinRequest) {
	if req.SessionID == "" || req.TickOut == nil {
		return
	}
	enc, err := observerproto.NormalizeEncoding(req.Encoding)
	if err != nil {
		enc = observerproto.EncodingJSON
	}
	w.observers[req.SessionID] = &observerClient{
		id:       req.SessionID,
		tickOut:  req.TickOut,
		encoding: enc,
		every:    stride(req.Every),
	}
}

func (w *World) handleObserverSubscribe(req ObserverSubscribeRequest) {
	if o := w.observers[req.SessionID]; o != nil {
		o.every = stride(req.Every)
	}
}

func (w *World) handleObserverLeave(id string) {
	delete(w.observers, id)
}

func stride(every int) uint64 {
	if every < 1 {
		return 1
	}
	return uint64(every)
}

func (w *World) stepObservers(f Frame) {
	if len(w.observers) == 0 {
		return
	}
	msg := TickMsgFromFrame(f)
	frames := map[string][]byte{}
	for _, o := range w.observers {
		if f.Tick%o.every != 0 {
			continue
		}
		b, ok := frames[o.encoding]
		if !ok {
			var err error
			b, err = observerproto.Encode(msg, o.encoding)
			if err != nil {
				w.logf("observer encode (%s): %v", o.encoding, err)
				continue
			}
			frames[o.encoding] = b
		}
		sendLatest(o.tickOut, b)
	}
}

// TickMsgFromFrame converts a published frame into the observer wire shape.
func TickMsgFromFrame(f Frame) observerproto.TickMsg {
	msg := observerproto.TickMsg{
		Type:            observerproto.TypeTick,
		ProtocolVersion: observerproto.Version,
		Tick:            f.Tick,
		Zones:           ZoneStates(f.Zones),
		Debris:          make([]observerproto.DebrisState, 0, len(f.Debris)),
	}
	r := f.Robot
	msg.Robot = observerproto.RobotState{
		Pos:     r.Pos,
		Vel:     r.Vel,
		Dims:    [3]float64{r.Dims.Width, r.Dims.Height, r.Dims.Depth},
		CanMove: [4]bool{r.Perm.NegX, r.Perm.PosX, r.Perm.NegZ, r.Perm.PosZ},
		OnFloor: r.OnFloor,
	}
	for _, d := range f.Debris {
		msg.Debris = append(msg.Debris, observerproto.DebrisState{
			ID:      d.ID,
			Zone:    string(d.Zone),
			Pos:     d.Pos,
			Visible: d.Visible,
		})
	}
	c := f.Controller
	msg.Controller = observerproto.ControllerState{
		Phase:        string(c.Phase),
		Pass:         string(c.Pass),
		Zone:         string(c.Zone),
		CurrentIndex: c.CurrentIndex,
		Pending:      zoneIDsToStrings(c.Pending),
		PendingIndex: c.PendingIndex,
		Cleaned:      zoneIDsToStrings(c.Cleaned),
		Progress:     c.Progress,
		Waiting:      c.Waiting,
		Charging:     c.Charging,
		AllCleaned:   c.AllCleaned,
		Battery:      c.Battery,
	}
	for _, ev := range f.Events {
		msg.Events = append(msg.Events, observerproto.EventState{Kind: ev.Kind, Zone: ev.Zone, DebrisID: ev.DebrisID})
	}
	return msg
}

func ZoneStates(zones []ZoneView) []observerproto.ZoneState {
	out := make([]observerproto.ZoneState, 0, len(zones))
	for _, z := range zones {
		out = append(out, observerproto.ZoneState{
			ID:       string(z.ID),
			Center:   z.Center,
			Dims:     [3]float64{z.Dims.Width, z.Dims.Height, z.Dims.Depth},
			Occupied: z.Occupied,
			Light:    z.LightColor(),
			Entry:    [2]float64{z.Entry.X, z.Entry.Z},
		})
	}
	return out
}

// Bootstrap describes the static scene for a newly connecting observer. Safe from any goroutine.
func (w *World) Bootstrap() observerproto.BootstrapResponse {
	f := w.Frame()
	st := w.reg.Station()
	sd := st.Dims()
	rd := w.cfg.Robot.Dims
	return observerproto.BootstrapResponse{
		ProtocolVersion: observerproto.Version,
		WorldID:         w.cfg.ID,
		Tick:            f.Tick,
		Mode:            w.cfg.Mode,
		WorldParams: observerproto.WorldParams{
			TickRateHz: w.cfg.TickRateHz,
			Seed:       w.cfg.Seed,
		},
		Zones: ZoneStates(f.Zones),
		Station: observerproto.BoxState{
			Center: st.Center,
			Dims:   [3]float64{sd.Width, sd.Height, sd.Depth},
		},
		RobotDims: [3]float64{rd.Width, rd.Height, rd.Depth},
	}
}
