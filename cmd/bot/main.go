package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"vacuumsim.ai/internal/protocol"
)

func main() {
	var (
		url   = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name  = flag.String("name", "bot", "client name")
		speed = flag.Float64("speed", 0.05, "drive speed per tick")
		leg   = flag.Uint64("leg_ticks", 60, "ticks per side of the square")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      *name,
		Capabilities:    protocol.HelloCapabilities{MaxQueue: 8},
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	d := &driver{speed: *speed, leg: *leg}
	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME session_id=%s mode=%s tick_rate=%d seed=%d", w.SessionID, w.Mode, w.WorldParams.TickRateHz, w.WorldParams.Seed)
			if w.Mode != "manual" {
				logger.Printf("world is not in manual mode; watching only")
				d.passive = true
			}

		case protocol.TypeObs:
			var obs protocol.ObsMsg
			if err := json.Unmarshal(msg, &obs); err != nil {
				continue
			}
			if obs.Tick%100 == 0 {
				logger.Printf("tick=%d pos=%.2f,%.2f debris_remaining=%d", obs.Tick, obs.Robot.Pos[0], obs.Robot.Pos[2], obs.DebrisRemaining)
			}
			if drive, ok := d.next(&obs); ok {
				if err := conn.WriteJSON(drive); err != nil {
					logger.Printf("send DRIVE: %v", err)
					return
				}
			}

		case protocol.TypeError:
			var e protocol.ErrorMsg
			if err := json.Unmarshal(msg, &e); err == nil {
				logger.Printf("ERROR %s: %s", e.Code, e.Message)
			}
		}
	}
}

// driver traces a square, turning early when the current direction is blocked.
type driver struct {
	speed   float64
	leg     uint64
	side    int
	left    uint64
	passive bool
}

var square = [4][2]float64{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}

func (d *driver) next(obs *protocol.ObsMsg) (protocol.DriveMsg, bool) {
	if d.passive {
		return protocol.DriveMsg{}, false
	}
	if d.left == 0 {
		d.turn()
	}
	for i := 0; i < len(square) && blocked(obs.Robot.Permissions, square[d.side]); i++ {
		d.turn()
	}
	d.left--
	dir := square[d.side]
	return protocol.DriveMsg{
		Type:            protocol.TypeDrive,
		ProtocolVersion: protocol.Version,
		VX:              dir[0] * d.speed,
		VZ:              dir[1] * d.speed,
	}, true
}

func (d *driver) turn() {
	d.side = (d.side + 1) % len(square)
	d.left = d.leg
}

func blocked(p protocol.Permissions, dir [2]float64) bool {
	switch {
	case dir[0] > 0:
		return !p.PosX
	case dir[0] < 0:
		return !p.NegX
	case dir[1] > 0:
		return !p.PosZ
	case dir[1] < 0:
		return !p.NegZ
	}
	return false
}
