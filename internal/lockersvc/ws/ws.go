package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/widmerroger/cardlock/internal/comm"
)

// Ws is the operator UI feed. Every lock prompt, dismissal and dialog is
// broadcast as a UIEvent to all connected clients; a workstation with no UI
// connected just accumulates log lines, the workflows never block on it.
type Ws struct {
	connMap sync.Map // socketId -> *conn
}

type conn struct {
	mu sync.Mutex // serializes writes per connection
	c  *websocket.Conn
}

func NewWs() *Ws {
	return &Ws{}
}

func (s *Ws) StoreConnection(socketId string, c *websocket.Conn) {
	s.connMap.Store(socketId, &conn{c: c})
}

func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
}

// Notify implements service.Notifier, broadcasting the event to every
// connected UI client.
func (s *Ws) Notify(ev comm.UIEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Errorf("Error [Ws.Notify] unable to marshal event %s", err)
		return
	}

	data, err := json.Marshal(&comm.WSMessage{Type: ev.Type, Data: payload})
	if err != nil {
		log.Errorf("Error [Ws.Notify] unable to marshal message %s", err)
		return
	}

	s.connMap.Range(func(key, value any) bool {
		cn := value.(*conn)
		cn.mu.Lock()
		err := cn.c.WriteMessage(websocket.TextMessage, data)
		cn.mu.Unlock()
		if err != nil {
			log.Warnf("failed to push event to socket %s: %s", key, err)
		}
		return true
	})
}
