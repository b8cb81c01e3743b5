package v1

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	NoticeParticipantJoined = "participant_joined"
	NoticeParticipantLeft   = "participant_left"
	NoticeEventUpdated      = "event_updated"
	NoticeEventDeleted      = "event_deleted"
	NoticeDrawCompleted     = "draw_completed"
	NoticeDrawDeleted       = "draw_deleted"

	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Notice is pushed to every feed subscriber of an event. It never carries
// pairs.
type Notice struct {
	Type        string    `json:"type"`
	Event       string    `json:"event"`
	Participant string    `json:"participant,omitempty"`
	DrawID      string    `json:"draw_id,omitempty"`
	At          time.Time `json:"at"`
}

type Notifier interface {
	Publish(notice Notice)
}

type subscriber struct {
	conn  *websocket.Conn
	event string
	send  chan []byte
}

type broadcast struct {
	event   string
	payload []byte
}

// FeedHandler fans notices out to websocket subscribers. Run must be started
// before Publish is called.
type FeedHandler struct {
	upgrader    websocket.Upgrader
	subscribers map[*subscriber]struct{}
	broadcast   chan broadcast
	register    chan *subscriber
	unregister  chan *subscriber
}

func NewFeedHandler(checkOrigin func(r *http.Request) bool) *FeedHandler {
	return &FeedHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		subscribers: make(map[*subscriber]struct{}),
		broadcast:   make(chan broadcast, 64),
		register:    make(chan *subscriber),
		unregister:  make(chan *subscriber),
	}
}

func (h *FeedHandler) Run() {
	for {
		select {
		case s := <-h.register:
			h.subscribers[s] = struct{}{}
		case s := <-h.unregister:
			if _, ok := h.subscribers[s]; ok {
				delete(h.subscribers, s)
				close(s.send)
			}
		case b := <-h.broadcast:
			for s := range h.subscribers {
				if s.event != b.event {
					continue
				}
				select {
				case s.send <- b.payload:
				default:
					// Slow subscriber; drop it rather than block the hub.
					delete(h.subscribers, s)
					close(s.send)
				}
			}
		}
	}
}

func (h *FeedHandler) Publish(notice Notice) {
	if notice.At.IsZero() {
		notice.At = time.Now().UTC()
	}

	payload, err := json.Marshal(notice)
	if err != nil {
		zap.L().Error("marshal notice", zap.Error(err))
		return
	}

	h.broadcast <- broadcast{event: notice.Event, payload: payload}
}

// HandleFeed godoc
// @Summary      Subscribe to event notices
// @Description  Upgrades to a websocket that receives roster and draw notices for one event. Browsers pass the token as a query parameter.
// @Tags         events
// @Param        name   path   string  true   "Event name"
// @Param        token  query  string  false  "Bearer token"
// @Success      101  {string}  string  "Switching Protocols"
// @Failure      401  {object}  response.Err
// @Router       /events/{name}/feed [get]
// @Security     BearerAuth
func (h *FeedHandler) HandleFeed(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s := &subscriber{
		conn:  conn,
		event: ctx.Param("name"),
		send:  make(chan []byte, 16),
	}
	h.register <- s

	go s.writePump()
	go s.readPump(h)
}

func (s *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only drains control frames; subscribers never send notices.
func (s *subscriber) readPump(h *FeedHandler) {
	defer func() {
		h.unregister <- s
		s.conn.Close()
	}()

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Debug("feed subscriber closed", zap.String("event", s.event), zap.Error(err))
			}
			return
		}
	}
}
