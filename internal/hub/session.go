// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package hub

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/softbear-oss/tankhub/internal/wire"
	"github.com/softbear-oss/tankhub/internal/world"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// session is the per-connection task: it decodes inbound binary frames
// into UserEvents and forwards them to the hub, and forwards the hub's
// outbound delta batches to the socket. One exists per accepted
// connection; it is handed to a Hub's admission channel before it knows
// its own entity id, and only starts its pumps once the hub assigns one
// (start, called from spawnPlayer).
type session struct {
	conn *websocket.Conn
	once sync.Once
}

// newSession wraps an upgraded websocket connection. It does nothing on
// its own until a Hub admits it and calls start.
func newSession(conn *websocket.Conn) *session {
	return &session{conn: conn}
}

// sendInit writes the one-time UserInit frame, bypassing the write pump
// (which isn't running yet).
func (s *session) sendInit(data []byte) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.BinaryMessage, data)
}

// start launches the read and write pumps once the hub has assigned this
// session an entity id and a broadcast subscription.
func (s *session) start(id world.Id, hubInbound chan<- userMessage, broadcast <-chan []byte) {
	go s.writePump(broadcast)
	go s.readPump(id, hubInbound)
}

// destroy ensures the going-away message is sent to the hub and the
// socket is closed exactly once, regardless of which pump notices the
// connection died first.
func (s *session) destroy(id world.Id, hubInbound chan<- userMessage) {
	s.once.Do(func() {
		select {
		case hubInbound <- userMessage{kind: userMessageGoingAway, user: id}:
		default:
			go func() { hubInbound <- userMessage{kind: userMessageGoingAway, user: id} }()
		}
		_ = s.conn.Close()
	})
}

func (s *session) readPump(id world.Id, hubInbound chan<- userMessage) {
	defer s.destroy(id, hubInbound)

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		kind, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Println("session: close error:", err)
			}
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}

		event, err := wire.DecodeUserEvent(data)
		if err != nil {
			log.Println("session: decode error:", err)
			return
		}

		select {
		case hubInbound <- userMessage{kind: userMessageEvent, user: id, event: event}:
		default:
			// Hub's inbound channel is saturated; per spec.md, a channel
			// send failure ends the session (destroy still sends
			// GoingAway on the way out).
			log.Println("session: inbound channel full, ending session")
			return
		}
	}
}

func (s *session) writePump(broadcast <-chan []byte) {
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case batch, ok := <-broadcast:
			if !ok {
				return
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.BinaryMessage, batch); err != nil {
				return
			}
		case <-pingTicker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
