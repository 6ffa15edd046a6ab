package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/classpulse/backend/internal/chat"
	"github.com/classpulse/backend/internal/models"
	"github.com/classpulse/backend/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins in dev; restrict in production
	},
}

// WSMessage is the WebSocket message envelope.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client represents a single WebSocket connection in the session.
type Client struct {
	ID   uuid.UUID
	role string // guarded by hub.mu

	hub     *Hub
	coord   *session.Session
	relay   *chat.Relay
	conn    *websocket.Conn
	send    chan WSMessage
	closing bool // guarded by hub.mu
	logger  *zap.Logger
}

// ServeWs handles the WebSocket upgrade and runs the client loop. A
// connection has no role until it sends teacher_join or student_join.
func ServeWs(hub *Hub, coord *session.Session, relay *chat.Relay, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:     uuid.New(),
			hub:    hub,
			coord:  coord,
			relay:  relay,
			conn:   conn,
			send:   make(chan WSMessage, 256),
			logger: logger,
		}
		hub.Register(client)
		go client.writePump()
		client.readPump()
	}
}

type joinRequest struct {
	Name string `json:"name"`
}

type createPollRequest struct {
	Question  string   `json:"question"`
	Options   []string `json:"options"`
	TimeLimit int      `json:"time_limit"`
}

type answerRequest struct {
	Option string `json:"option"`
}

type kickRequest struct {
	Name string `json:"name"`
}

type chatRequest struct {
	Text string `json:"text"`
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.coord.Remove(c.ID)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		return nil
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))

		switch msg.Event {
		case "teacher_join":
			var req joinRequest
			if err := json.Unmarshal(msg.Data, &req); err == nil && req.Name != "" {
				c.hub.SetRole(c.ID, models.RoleTeacher)
				c.coord.RegisterTeacher(c.ID, req.Name)
			}
		case "student_join":
			var req joinRequest
			if err := json.Unmarshal(msg.Data, &req); err == nil && req.Name != "" {
				c.hub.SetRole(c.ID, models.RoleStudent)
				c.coord.RegisterStudent(c.ID, req.Name)
			}
		case "create_poll":
			var req createPollRequest
			if err := json.Unmarshal(msg.Data, &req); err == nil {
				_ = c.coord.CreatePoll(c.ID, req.Question, req.Options, req.TimeLimit)
			}
		case "submit_answer":
			var req answerRequest
			if err := json.Unmarshal(msg.Data, &req); err == nil {
				c.coord.SubmitAnswer(c.ID, req.Option)
			}
		case "kick_student":
			var req kickRequest
			if err := json.Unmarshal(msg.Data, &req); err == nil {
				if kickedID, ok := c.coord.KickStudent(c.ID, req.Name); ok {
					c.hub.CloseClient(kickedID)
				}
			}
		case "chat_message":
			var req chatRequest
			if err := json.Unmarshal(msg.Data, &req); err == nil {
				c.relay.Post(c.ID, req.Text)
			}
		case "get_poll_history":
			c.coord.History(c.ID)
		case "get_chat_history":
			c.relay.History(c.ID)
		default:
			// ignore
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				// channel closed after a kick; buffered messages are
				// already drained at this point
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
