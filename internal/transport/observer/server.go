package observer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"vacuumsim.ai/internal/observerproto"
	"vacuumsim.ai/internal/protocol"
	"vacuumsim.ai/internal/sim/world"
)

// Server streams the world state to read-only observers (renderers, dashboards).
// Both endpoints only accept loopback clients.
type Server struct {
	world *world.World
	log   *log.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	return &Server{
		world: w,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(s.world.Bootstrap())
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		sub, err := decodeSubscribe(msg)
		if err != nil {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()), time.Now().Add(time.Second))
			return
		}

		sid := fmt.Sprintf("O%d", s.nextID.Add(1))
		tickOut := make(chan []byte, 8)
		frameType := websocket.TextMessage
		if sub.Encoding == observerproto.EncodingMsgpack {
			frameType = websocket.BinaryMessage
		}

		joinReq := world.ObserverJoinRequest{
			SessionID: sid,
			TickOut:   tickOut,
			Encoding:  sub.Encoding,
			Every:     sub.Every,
		}
		select {
		case s.world.ObserverJoin() <- joinReq:
		default:
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server busy"), time.Now().Add(time.Second))
			return
		}
		defer func() {
			select {
			case s.world.ObserverLeave() <- sid:
			default:
				// World loop is stopping; nothing else to do.
			}
		}()
		if s.log != nil {
			s.log.Printf("observer %s subscribed (encoding=%s every=%d)", sid, sub.Encoding, sub.Every)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b, ok := <-tickOut:
					if !ok {
						writeErr <- nil
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(frameType, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Reader loop: allow SUBSCRIBE updates of the stride.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			sub, err := decodeSubscribe(msg)
			if err != nil {
				continue
			}
			select {
			case s.world.ObserverSubscribe() <- world.ObserverSubscribeRequest{SessionID: sid, Every: sub.Every}:
			default:
				// Drop updates under load; the client may resend.
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		// Best-effort wait for the writer to stop so it doesn't outlive conn.
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func decodeSubscribe(msg []byte) (observerproto.SubscribeMsg, error) {
	var sub observerproto.SubscribeMsg
	if err := protocol.Validate(observerproto.TypeSubscribe, msg); err != nil {
		return sub, fmt.Errorf("bad subscribe")
	}
	if err := json.Unmarshal(msg, &sub); err != nil {
		return sub, fmt.Errorf("bad subscribe")
	}
	if sub.ProtocolVersion != observerproto.Version {
		return sub, fmt.Errorf("bad protocol_version")
	}
	enc, err := observerproto.NormalizeEncoding(sub.Encoding)
	if err != nil {
		return sub, err
	}
	sub.Encoding = enc
	if sub.Every <= 0 {
		sub.Every = 1
	}
	return sub, nil
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
