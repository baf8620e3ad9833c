package ws

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
)

// CheckInEvent is pushed to teacher/admin dashboards as students check in.
type CheckInEvent struct {
	RecordID    string    `json:"record_id"`
	StudentID   string    `json:"student_id"`
	AcademyID   string    `json:"academy_id"`
	ClassID     string    `json:"class_id,omitempty"`
	Status      string    `json:"status"`
	CheckInTime time.Time `json:"check_in_time"`
}

type feedMessage struct {
	academyID string
	classID   string
	payload   []byte
}

// FeedHub fans live check-in events out to connected dashboards. Clients
// are scoped to their academy and may narrow to a single class.
type FeedHub struct {
	register   chan *feedClient
	unregister chan *feedClient
	broadcast  chan feedMessage
	clients    map[*feedClient]struct{}
}

func NewFeedHub() *FeedHub {
	return &FeedHub{
		register:   make(chan *feedClient),
		unregister: make(chan *feedClient),
		broadcast:  make(chan feedMessage, 256),
		clients:    make(map[*feedClient]struct{}),
	}
}

func (h *FeedHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				client.conn.Close()
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				if !client.allowAll && client.academyID != msg.academyID {
					continue
				}
				if client.classID != "" && client.classID != msg.classID {
					continue
				}
				select {
				case client.send <- msg.payload:
				default:
					delete(h.clients, client)
					close(client.send)
					client.conn.Close()
				}
			}
		}
	}
}

// Broadcast pushes an event to all relevant clients.
func (h *FeedHub) Broadcast(evt CheckInEvent) {
	if h == nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("ws: failed to marshal check-in event: %v", err)
		return
	}
	h.broadcast <- feedMessage{
		academyID: evt.AcademyID,
		classID:   evt.ClassID,
		payload:   data,
	}
}

type feedClient struct {
	hub       *FeedHub
	conn      *websocket.Conn
	send      chan []byte
	academyID string
	classID   string
	allowAll  bool
}

func newFeedClient(hub *FeedHub, conn *websocket.Conn, academyID, classID string, allowAll bool) *feedClient {
	return &feedClient{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		academyID: academyID,
		classID:   classID,
		allowAll:  allowAll,
	}
}

func (c *feedClient) readPump() {
	defer func() {
		c.hub.unregister <- c
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *feedClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
