package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/campusboard/taskboard/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Event describes a task change pushed to the task's team room.
// Delivery is best effort; clients that fall behind are dropped.
type Event struct {
	Type    string `json:"type"` // task_created, task_updated, task_deleted
	TaskID  int64  `json:"task_id"`
	TeamID  int64  `json:"team_id"`
	ActorID int64  `json:"actor_id"`
}

// Hub tracks connected clients grouped by team and fans task events
// out to them
type Hub struct {
	register   chan *Client
	unregister chan *Client
	events     chan Event

	mu    sync.RWMutex
	rooms map[int64]map[*Client]bool

	log *logger.Logger
}

// Client is one websocket subscriber pinned to a team room
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	UserID int64
	TeamID int64
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan Event, 64),
		rooms:      make(map[int64]map[*Client]bool),
		log:        log,
	}
}

// Run is the hub's event loop. Start it once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.TeamID] == nil {
				h.rooms[client.TeamID] = make(map[*Client]bool)
			}
			h.rooms[client.TeamID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.TeamID]; ok {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.send)
					if len(room) == 0 {
						delete(h.rooms, client.TeamID)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.events:
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			h.mu.Lock()
			for client := range h.rooms[event.TeamID] {
				select {
				case client.send <- payload:
				default:
					delete(h.rooms[event.TeamID], client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues an event for the team room. Drops the event when the
// hub is saturated rather than blocking a request.
func (h *Hub) Publish(event Event) {
	select {
	case h.events <- event:
	default:
		h.log.Warn("event queue full, dropping event",
			"type", event.Type, "team_id", event.TeamID)
	}
}

// Subscribe registers conn into the team room and starts its pumps
func (h *Hub) Subscribe(conn *websocket.Conn, userID, teamID int64) {
	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		UserID: userID,
		TeamID: teamID,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains the connection so close and pong frames are
// processed. Inbound payloads are ignored; the stream is one way.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
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

// writePump pushes hub payloads and keepalive pings to the connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
