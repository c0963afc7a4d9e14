package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"vacuumsim.ai/internal/protocol"
	"vacuumsim.ai/internal/sim/tuning"
	"vacuumsim.ai/internal/sim/world"
)

// Server exposes the manual-drive session over WebSocket: HELLO -> WELCOME, then OBS per
// tick while the client sends DRIVE.
type Server struct {
	world *world.World
	log   *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	s := &Server{
		world: w,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		welcome, out := s.handshake(conn)
		if welcome.SessionID == "" {
			return
		}
		sessionID := welcome.SessionID

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine. OBS from the world and ERROR replies share out, so only this
		// goroutine writes to the connection.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				reply(out, protocol.ErrProtoBadRequest, "invalid json")
				continue
			}
			if base.Type != protocol.TypeDrive {
				reply(out, protocol.ErrProtoBadRequest, "unexpected message type "+base.Type)
				continue
			}
			if err := protocol.Validate(protocol.TypeDrive, msg); err != nil {
				reply(out, protocol.ErrProtoBadRequest, err.Error())
				continue
			}
			if welcome.Mode != tuning.ModeManual {
				reply(out, protocol.ErrWrongMode, "DRIVE requires manual mode")
				continue
			}
			var d protocol.DriveMsg
			if err := json.Unmarshal(msg, &d); err != nil {
				reply(out, protocol.ErrBadRequest, err.Error())
				continue
			}
			select {
			case s.world.Inbox() <- world.DriveCommand{SessionID: sessionID, VX: d.VX, VZ: d.VZ}:
			default:
				reply(out, protocol.ErrWorldBusy, "drive queue full")
			}
		}

		// Cleanup.
		s.world.Leave() <- sessionID
	}
}

func (s *Server) handshake(conn *websocket.Conn) (protocol.WelcomeMsg, chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return protocol.WelcomeMsg{}, nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return protocol.WelcomeMsg{}, nil
	}
	if err := protocol.Validate(protocol.TypeHello, msg); err != nil {
		_ = writeJSON(conn, protocol.NewError(protocol.ErrProtoBadRequest, err.Error()))
		return protocol.WelcomeMsg{}, nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return protocol.WelcomeMsg{}, nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return protocol.WelcomeMsg{}, nil
	}

	maxQ := hello.Capabilities.MaxQueue
	if maxQ <= 0 {
		maxQ = 8
	}
	if maxQ > 64 {
		maxQ = 64
	}
	out := make(chan []byte, maxQ)

	respCh := make(chan world.DriverJoinResponse, 1)
	s.world.Join() <- world.DriverJoinRequest{Name: hello.ClientName, Out: out, Resp: respCh}
	resp := <-respCh

	if err := writeJSON(conn, resp.Welcome); err != nil {
		s.world.Leave() <- resp.Welcome.SessionID
		return protocol.WelcomeMsg{}, nil
	}
	if s.log != nil {
		s.log.Printf("ws driver %s connected (%s, mode=%s)", resp.Welcome.SessionID, conn.RemoteAddr(), resp.Welcome.Mode)
	}
	return resp.Welcome, out
}

// reply queues an ERROR for the writer goroutine; it is dropped when the queue is full.
func reply(out chan []byte, code, message string) {
	b, err := json.Marshal(protocol.NewError(code, message))
	if err != nil {
		return
	}
	select {
	case out <- b:
	default:
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
