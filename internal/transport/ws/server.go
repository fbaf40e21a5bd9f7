// Package ws exposes the simulation to external collaborators over
// websocket: placement and control messages in, per-tick render snapshots
// out. The transport is a thin translation layer; every rule lives in the
// world.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"tileyard/internal/protocol"
	"tileyard/internal/sim/grid"
	"tileyard/internal/sim/world"
)

type Server struct {
	world *world.World
	log   *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	return &Server{
		world: w,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sessionID, ok := s.handshake(conn)
		if !ok {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Snapshots may be dropped under backpressure; results may not.
		snapshots := make(chan []byte, 4)
		results := make(chan []byte, 16)
		obsID := s.world.AddObserver(snapshots)
		defer s.world.RemoveObserver(obsID)

		go func() {
			for {
				var b []byte
				select {
				case <-ctx.Done():
					return
				case b = <-snapshots:
				case b = <-results:
				}
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					cancel()
					return
				}
			}
		}()

		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				continue
			}
			switch base.Type {
			case protocol.TypePlace:
				var m protocol.PlaceMsg
				if err := json.Unmarshal(msg, &m); err != nil {
					continue
				}
				s.handlePlace(ctx, m, results)
			case protocol.TypeCancel:
				var m protocol.CancelMsg
				if err := json.Unmarshal(msg, &m); err != nil {
					continue
				}
				s.handleCancel(ctx, m, results)
			case protocol.TypeSetSpeed:
				var m protocol.SetSpeedMsg
				if err := json.Unmarshal(msg, &m); err != nil || m.Multiplier <= 0 {
					continue
				}
				s.world.EnqueueSetSpeed(m.Multiplier)
			default:
				s.log.Printf("ws %s: ignoring message type %q", sessionID, base.Type)
			}
		}
	}
}

// handshake expects a HELLO and answers with the world parameters.
func (s *Server) handshake(conn *websocket.Conn) (string, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", false
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		return "", false
	}
	cfg := s.world.Config()
	sessionID := "ws-" + time.Now().UTC().Format("150405.000000")
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sessionID,
		WorldParams: protocol.WorldParams{
			TickRateHz: cfg.TickRateHz,
			TileSize:   cfg.TileSize,
			GridWidth:  cfg.GridWidth,
			GridHeight: cfg.GridHeight,
			Seed:       cfg.Seed,
		},
		CatalogDigest: s.world.CatalogDigest(),
	}
	b, err := json.Marshal(welcome)
	if err != nil {
		return "", false
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return "", false
	}
	return sessionID, true
}

func (s *Server) handlePlace(ctx context.Context, m protocol.PlaceMsg, results chan<- []byte) {
	resp := make(chan world.PlacementResponse, 1)
	req := world.PlacementRequest{
		Kind:    m.Kind,
		Anchor:  grid.Cell{X: m.Anchor.X, Y: m.Anchor.Y},
		Rotated: m.Rotated,
		Resp:    resp,
	}
	if err := s.world.EnqueuePlace(req); err != nil {
		sendResult(ctx, results, resultFromErr(m.RequestID, "", err))
		return
	}
	go func() {
		select {
		case <-ctx.Done():
		case r := <-resp:
			sendResult(ctx, results, resultFromErr(m.RequestID, r.StructureID, r.Err))
		}
	}()
}

func (s *Server) handleCancel(ctx context.Context, m protocol.CancelMsg, results chan<- []byte) {
	resp := make(chan error, 1)
	req := world.CancelRequest{StructureID: m.StructureID, Resp: resp}
	if err := s.world.EnqueueCancel(req); err != nil {
		sendResult(ctx, results, resultFromErr(m.RequestID, "", err))
		return
	}
	go func() {
		select {
		case <-ctx.Done():
		case err := <-resp:
			sendResult(ctx, results, resultFromErr(m.RequestID, m.StructureID, err))
		}
	}()
}

func resultFromErr(requestID, structureID string, err error) protocol.ResultMsg {
	res := protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		RequestID:       requestID,
		OK:              err == nil,
		StructureID:     structureID,
	}
	if err == nil {
		return res
	}
	res.StructureID = ""
	res.Message = err.Error()
	res.Code = protocol.ErrInternal

	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		res.Code = coded.Code()
	}
	var conflict *world.ConflictError
	if errors.As(err, &conflict) {
		for _, c := range conflict.Cells {
			res.ConflictCells = append(res.ConflictCells, protocol.CellRef{X: c.X, Y: c.Y})
		}
	}
	return res
}

func sendResult(ctx context.Context, results chan<- []byte, res protocol.ResultMsg) {
	b, err := json.Marshal(res)
	if err != nil {
		return
	}
	select {
	case <-ctx.Done():
	case results <- b:
	}
}
