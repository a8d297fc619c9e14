package server

import (
	"encoding/json"
	"net/http"

	"market-dashboard/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Subscriber hub
// -----------------------------------------------------------------------------

// runHub owns the client set. Registration and broadcasts share one loop, so
// a new client's snapshot is never interleaved with a broadcast.
func (s *DashboardServer) runHub() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.clientCount.Store(int64(len(s.clients)))
			s.Logger.Info("Push subscriber joined (%d open)", len(s.clients))

			// hello, then the current snapshot
			for _, msg := range [][]byte{s.helloMessage(), s.quotesMessage(s.Deps.State.Quotes.Values())} {
				if msg == nil {
					continue
				}
				select {
				case client.outbox <- msg:
				default:
				}
			}

		case client := <-s.unregister:
			s.drop(client)

		case message := <-s.broadcast:
			for client := range s.clients {
				select {
				case client.outbox <- message:
				default:
					// full outbox: the subscriber is too slow to keep
					s.drop(client)
				}
			}

		case <-s.done:
			for client := range s.clients {
				s.drop(client)
			}
			return
		}
	}
}

func (s *DashboardServer) drop(client *subscriber) {
	if _, ok := s.clients[client]; !ok {
		return
	}
	delete(s.clients, client)
	close(client.outbox)
	s.clientCount.Store(int64(len(s.clients)))
}

// Connections is the number of open subscribers.
func (s *DashboardServer) Connections() int {
	return int(s.clientCount.Load())
}

// -----------------------------------------------------------------------------
// Messages
// -----------------------------------------------------------------------------

func (s *DashboardServer) helloMessage() []byte {
	return s.marshal(models.MHelloMessage{
		Type:    models.MessageHello,
		Symbols: s.Deps.Companies.Symbols(),
	})
}

func (s *DashboardServer) quotesMessage(quotes []models.MQuoteSnapshot) []byte {
	if quotes == nil {
		quotes = []models.MQuoteSnapshot{}
	}
	return s.marshal(models.MQuotesMessage{Type: models.MessageQuotes, Data: quotes})
}

func (s *DashboardServer) marshal(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		s.Logger.Error("Failed to encode push message: %v", err)
		return nil
	}
	return data
}

// -----------------------------------------------------------------------------
// Broadcasting
// -----------------------------------------------------------------------------

// Broadcast serializes the snapshot once and queues it for every subscriber.
func (s *DashboardServer) Broadcast(quotes []models.MQuoteSnapshot) {
	msg := s.quotesMessage(quotes)
	if msg == nil {
		return
	}

	select {
	case s.broadcast <- msg:
	case <-s.done:
	}
}

// -----------------------------------------------------------------------------
// Push channel endpoint
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &subscriber{
		hub:    s,
		conn:   conn,
		outbox: make(chan []byte, 256),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.pumpOutbound()
	go client.drainInbound()
}
