package web

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"arena-service/pkg/models"
)

// Client WebSocket客户端,固定订阅一场比赛
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	matchID int64
	send    chan []byte
}

// Hub WebSocket Hub,按比赛分房间扇出广播事件。
// 房间在第一个客户端加入时创建,最后一个离开时丢弃。
type Hub struct {
	rooms      map[int64]map[*Client]bool
	broadcast  chan models.Event
	register   chan *Client
	unregister chan *Client
	sendBuffer int
	mu         sync.RWMutex
}

// NewHub 创建新的Hub
func NewHub(sendBuffer int) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = 256
	}
	return &Hub{
		rooms:      make(map[int64]map[*Client]bool),
		broadcast:  make(chan models.Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		sendBuffer: sendBuffer,
	}
}

// Run 运行Hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case ev := <-h.broadcast:
			h.broadcastEvent(ev)
		}
	}
}

// Broadcast 把事件交给Hub扇出
func (h *Hub) Broadcast(ev models.Event) {
	h.broadcast <- ev
}

// addClient 把客户端加入对应比赛的房间
func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[client.matchID]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[client.matchID] = room
	}
	room[client] = true
	log.Printf("Client joined match %d room. Room size: %d", client.matchID, len(room))
}

// removeClient 把客户端移出房间,空房间直接丢弃
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[client.matchID]
	if !ok {
		return
	}
	if _, ok := room[client]; !ok {
		return
	}
	delete(room, client)
	close(client.send)
	if len(room) == 0 {
		delete(h.rooms, client.matchID)
	}
	log.Printf("Client left match %d room. Room size: %d", client.matchID, len(room))
}

// broadcastEvent 向事件所属比赛的房间扇出。发送非阻塞,
// 写不进去的慢客户端当场踢掉,不能拖累同房间的其他客户端。
func (h *Hub) broadcastEvent(ev models.Event) {
	h.mu.RLock()
	room := h.rooms[ev.MatchID]
	clients := make([]*Client, 0, len(room))
	for client := range room {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	var stale []*Client
	for _, client := range clients {
		select {
		case client.send <- ev.Payload:
		default:
			stale = append(stale, client)
		}
	}

	for _, client := range stale {
		log.Printf("Client on match %d too slow, dropping", client.matchID)
		h.removeClient(client)
	}
}

// roomSize 返回房间当前客户端数,0 表示房间不存在
func (h *Hub) roomSize(matchID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[matchID])
}

// readPump 读取客户端消息。客户端不上行业务数据,
// 读循环只用来感知断连。
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump 向客户端写入消息
func (c *Client) writePump() {
	defer func() {
		c.conn.Close()
	}()

	for {
		message, ok := <-c.send
		if !ok {
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}
