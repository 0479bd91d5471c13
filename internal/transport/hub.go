// Package transport is the Transport Adapter (component C6): it owns the
// WebSocket upgrade, per-connection framing, and best-effort delivery, and
// is the only place that knows gorilla/websocket exists. Everything it
// decodes is handed to matchengine.Engine; everything Engine returns is
// handed back to the right Conn's send channel.
package transport

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"randomchat/internal/logx"
	"randomchat/internal/matchengine"
)

// Hub owns every live Conn and the Engine they all dispatch into.
type Hub struct {
	engine *matchengine.Engine

	mu    sync.RWMutex
	conns map[matchengine.ConnectionID]*Conn

	upgrader websocket.Upgrader

	rateLimit float64
	rateBurst int

	logger zerolog.Logger
}

// NewHub constructs a Hub around an existing Engine. originCheck decides
// whether to accept the WebSocket upgrade for a given request; CORS
// filtering for the HTTP surface happens separately in gin middleware, but
// the upgrade itself needs its own check since gorilla bypasses gin's
// response pipeline during the handshake.
func NewHub(engine *matchengine.Engine, rateLimit float64, rateBurst int, originCheck func(*http.Request) bool) *Hub {
	return &Hub{
		engine:    engine,
		conns:     make(map[matchengine.ConnectionID]*Conn),
		rateLimit: rateLimit,
		rateBurst: rateBurst,
		logger:    logx.Logger().With().Str("component", "transport.Hub").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originCheck,
		},
	}
}

// Accept upgrades an HTTP request to a WebSocket connection, assigns it a
// fresh connection_id, registers it with Engine, and starts its pumps.
// tierOverride carries the JWT-asserted tier, if any (empty string means
// none was presented and the join-queue payload's self-reported tier is
// trusted, per spec §1).
func (h *Hub) Accept(w http.ResponseWriter, r *http.Request, tierOverride string) error {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	id := matchengine.ConnectionID(uuid.New().String())
	limiter := rate.NewLimiter(rate.Limit(h.rateLimit), h.rateBurst)
	conn := newConn(id, ws, h, limiter, tierOverride)

	h.mu.Lock()
	h.conns[id] = conn
	h.mu.Unlock()

	h.engine.Connect(id)
	h.logger.Info().Str("connection_id", string(id)).Msg("connection accepted")

	go conn.writePump()
	go conn.readPump()
	return nil
}

// handleInbound decodes one event and routes it to the right Engine call,
// then dispatches whatever Outbound events come back. This is the only
// place that translates between the wire envelope and Engine's typed API.
func (h *Hub) handleInbound(c *Conn, env inboundEnvelope) {
	var out []matchengine.Outbound

	switch matchengine.EventType(env.Type) {
	case matchengine.EventJoinQueue:
		profile := matchengine.JoinProfile{
			UserID:          env.UserID,
			Username:        env.Username,
			Gender:          matchengine.Gender(env.Gender),
			PreferredGender: matchengine.Preference(env.PreferredGender),
			Tier:            matchengine.Tier(env.Tier),
			Age:             env.Age,
		}
		if c.tierOverride != "" {
			profile.Tier = matchengine.Tier(c.tierOverride)
		}
		out = h.engine.JoinQueue(c.id, profile)

	case matchengine.EventOffer:
		out = h.engine.Offer(c.id, matchengine.ConnectionID(env.TargetID), env.Offer)

	case matchengine.EventAnswer:
		out = h.engine.Answer(c.id, matchengine.ConnectionID(env.TargetID), env.Answer)

	case matchengine.EventICECandidate:
		out = h.engine.ICECandidate(c.id, matchengine.ConnectionID(env.TargetID), env.Candidate)

	case matchengine.EventMessage:
		out = h.engine.Message(c.id, env.Text)

	case matchengine.EventSkip:
		out = h.engine.Skip(c.id)

	case matchengine.EventLeaveQueue:
		out = h.engine.LeaveQueue(c.id)

	default:
		c.logger.Debug().Str("type", env.Type).Msg("dropping unknown event type")
		return
	}

	h.dispatch(out)
}

// handleDisconnect runs when a Conn's readPump exits for any reason: it
// tears the connection out of the Hub's bookkeeping, runs Engine's
// disconnect teardown, and delivers the fallout to whoever is still
// around to receive it (the departed connection never does).
func (h *Hub) handleDisconnect(c *Conn) {
	h.mu.Lock()
	delete(h.conns, c.id)
	h.mu.Unlock()

	out := h.engine.Disconnect(c.id)
	h.dispatch(out)

	c.ws.Close()
	c.closeSend()

	h.logger.Info().Str("connection_id", string(c.id)).Msg("connection removed")
}

// dispatch delivers every Outbound event to its live Conn, if any. This
// runs after Engine's lock has already been released by the caller (every
// matchengine.Engine method returns its events post-unlock), satisfying
// spec §5's "no I/O in critical sections".
func (h *Hub) dispatch(events []matchengine.Outbound) {
	if len(events) == 0 {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ev := range events {
		if conn, ok := h.conns[ev.To]; ok {
			conn.deliver(ev.Event)
		}
	}
}
