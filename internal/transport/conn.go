package transport

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"randomchat/internal/logx"
	"randomchat/internal/matchengine"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// sendBuffer is the per-connection outbound queue depth. The adapter
	// makes no ordering guarantee across connections, only within one
	// (spec §4.1); a full buffer means the connection is not keeping up,
	// and further events for it are dropped until it drains (see deliver).
	sendBuffer = 64
)

// Conn is one live connection: component C6's concrete per-connection
// channel. It never touches Engine state directly — every inbound event
// it decodes is handed to the Hub, which calls into matchengine.Engine and
// gets back the Outbound events to deliver.
type Conn struct {
	id      matchengine.ConnectionID
	ws      *websocket.Conn
	hub     *Hub
	send    chan []byte
	limiter *rate.Limiter
	logger  zerolog.Logger

	// tierOverride is the JWT-asserted tier, if the handshake carried a
	// valid bearer token; it takes precedence over whatever tier the
	// join-queue payload itself claims (spec's supplemented bearer-token
	// path, see SPEC_FULL.md).
	tierOverride string
}

func newConn(id matchengine.ConnectionID, ws *websocket.Conn, hub *Hub, limiter *rate.Limiter, tierOverride string) *Conn {
	return &Conn{
		id:           id,
		ws:           ws,
		hub:          hub,
		send:         make(chan []byte, sendBuffer),
		limiter:      limiter,
		tierOverride: tierOverride,
		logger:       logx.Logger().With().Str("connection_id", string(id)).Logger(),
	}
}

// readPump decodes inbound frames and dispatches them to the Hub until the
// connection errors or closes. On exit it always runs disconnect cleanup.
func (c *Conn) readPump() {
	defer c.hub.handleDisconnect(c)

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug().Err(err).Msg("websocket read error")
			}
			return
		}

		if !c.limiter.Allow() {
			// Rate limiting is a transport concern, not a protocol error:
			// the offending event is dropped the same way a malformed one
			// would be (spec §7), with no error event sent to the client.
			c.logger.Debug().Msg("inbound event dropped: rate limit exceeded")
			continue
		}

		var env inboundEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.logger.Debug().Err(err).Msg("dropping malformed event")
			continue
		}

		c.hub.handleInbound(c, env)
	}
}

// writePump drains the send channel to the socket and keeps the
// connection alive with periodic pings.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// deliver best-effort enqueues an encoded event. A full channel means this
// connection cannot keep up; the event is dropped silently per the Transport
// Adapter's contract (spec §4.1: "best-effort delivery; fails silently").
func (c *Conn) deliver(event matchengine.OutboundEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logx.Error(err, "failed to marshal outbound event", "type", string(event.Type))
		return
	}

	select {
	case c.send <- data:
	default:
		c.logger.Warn().Str("event_type", string(event.Type)).Msg("send buffer full, dropping event")
	}
}

func (c *Conn) closeSend() {
	select {
	case <-c.send:
	default:
		close(c.send)
	}
}
