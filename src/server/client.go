package server

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	frameWriteTimeout = 2 * time.Second
	idleTimeout       = 60 * time.Second
	keepAliveEvery    = idleTimeout * 9 / 10
	maxInboundFrame   = 64 * 1024
)

// subscriber is one push-channel connection. The hub owns outbox and closes
// it when the subscriber is dropped.
type subscriber struct {
	hub    *DashboardServer
	conn   *websocket.Conn
	outbox chan []byte
}

// -----------------------------------------------------------------------------

// drainInbound discards whatever the browser sends and keeps the idle
// deadline moving on pongs. Any read error ends the subscription.
func (sub *subscriber) drainInbound() {
	defer func() {
		select {
		case sub.hub.unregister <- sub:
		case <-sub.hub.done:
		}
		sub.conn.Close()
		sub.hub.Logger.Debug("Push subscriber left")
	}()

	sub.conn.SetReadLimit(maxInboundFrame)
	sub.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	})

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				sub.hub.Logger.Info("Push subscriber read failed: %v", err)
			}
			return
		}
	}
}

// -----------------------------------------------------------------------------

// pumpOutbound writes queued quote frames and pings while idle. A closed
// outbox means the hub dropped us; the peer gets a close frame.
func (sub *subscriber) pumpOutbound() {
	keepAlive := time.NewTicker(keepAliveEvery)
	defer keepAlive.Stop()
	defer sub.conn.Close()

	for {
		select {
		case frame, open := <-sub.outbox:
			sub.conn.SetWriteDeadline(time.Now().Add(frameWriteTimeout))
			if !open {
				sub.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				sub.hub.Logger.Info("Push frame not delivered: %v", err)
				return
			}

		case <-keepAlive.C:
			sub.conn.SetWriteDeadline(time.Now().Add(frameWriteTimeout))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
