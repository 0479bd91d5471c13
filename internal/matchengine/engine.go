package matchengine

import (
	"encoding/json"
	"sync"
	"time"
)

// Engine owns the Connection Registry, the Queue Set, and every mutation
// of partner pointers and lifecycle state, all behind a single coarse
// mutex. Spec §5 endorses this as the simplest correct design: "one coarse
// mutex guarding all three" eliminates any question of lock ordering.
// Every public method here acquires the lock for its critical section,
// mutates state, and returns the outbound events the caller must dispatch
// — strictly after the lock is released, since no critical section may
// contain an I/O wait (spec §5).
type Engine struct {
	mu       sync.Mutex
	registry *registry
	queues   *queueSet

	// now is the clock used to stamp relayed messages; overridable in
	// tests so server_now_iso8601 assertions are deterministic.
	now func() string
}

// NewEngine constructs an empty Engine.
func NewEngine() *Engine {
	return &Engine{
		registry: newRegistry(),
		queues:   newQueueSet(),
		now:      func() string { return time.Now().UTC().Format(time.RFC3339) },
	}
}

// Connect registers a freshly accepted connection as an Idle user with no
// profile yet beyond the free tier and an "any" preference; the profile is
// filled in by the first join-queue event.
func (e *Engine) Connect(id ConnectionID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.registry.register(&User{ConnID: id, State: StateIdle, Tier: TierFree, PreferredGender: PreferAny})
}

// JoinQueue handles the join-queue event (spec §4.4.1). A connection
// already Waiting or Paired ignores a repeated join-queue (idempotence
// law, spec §8): the default behavior is to ignore, not re-queue.
func (e *Engine) JoinQueue(id ConnectionID, profile JoinProfile) []Outbound {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.registry.lookup(id)
	if u == nil {
		return nil
	}
	if u.State != StateIdle {
		return nil
	}

	p := profile.normalize()
	u.UserID = p.UserID
	u.Username = p.Username
	u.Gender = p.Gender
	u.PreferredGender = p.PreferredGender
	u.Tier = p.Tier
	u.Age = p.Age

	return e.matchOrEnqueue(u)
}

// Skip handles the skip event. Idle is a no-op (idempotence law). Waiting
// removes from the queue and replies "skipped". Paired tears the pair
// down, replies "skipped" to the initiator and "partner-skipped" to the
// partner, then re-queues the partner through the same matcher entry
// point used by a fresh join (spec §9).
func (e *Engine) Skip(id ConnectionID) []Outbound {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.registry.lookup(id)
	if u == nil {
		return nil
	}

	switch u.State {
	case StateWaiting:
		e.queues.remove(id)
		u.State = StateIdle
		return []Outbound{{To: id, Event: simpleEvent(EventSkipped)}}

	case StatePaired:
		partner := e.teardown(u)
		out := []Outbound{{To: id, Event: simpleEvent(EventSkipped)}}
		if partner != nil {
			out = append(out, Outbound{To: partner.ConnID, Event: simpleEvent(EventPartnerSkipped)})
			out = append(out, e.matchOrEnqueue(partner)...)
		}
		return out

	default: // Idle
		return nil
	}
}

// LeaveQueue handles the leave-queue event. Idle and Waiting are silent
// no-ops/removals (no reply); Paired tears down and notifies the partner
// with "partner-disconnected" before re-queueing them.
func (e *Engine) LeaveQueue(id ConnectionID) []Outbound {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.registry.lookup(id)
	if u == nil {
		return nil
	}

	switch u.State {
	case StateWaiting:
		e.queues.remove(id)
		u.State = StateIdle
		return nil

	case StatePaired:
		partner := e.teardown(u)
		if partner == nil {
			return nil
		}
		out := []Outbound{{To: partner.ConnID, Event: simpleEvent(EventPartnerDisconnect)}}
		out = append(out, e.matchOrEnqueue(partner)...)
		return out

	default: // Idle
		return nil
	}
}

// Disconnect handles a dropped connection (spec §4.5 step 5 and §3
// invariant 5): teardown runs first, so the partner's fallout is computed
// before the registry entry disappears; the departed connection is then
// removed from the registry and any queue it might still be in. No event
// is ever sent to id itself.
func (e *Engine) Disconnect(id ConnectionID) []Outbound {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.registry.lookup(id)
	if u == nil {
		return nil
	}

	var out []Outbound
	switch u.State {
	case StateWaiting:
		e.queues.remove(id)
	case StatePaired:
		if partner := e.teardown(u); partner != nil {
			out = append(out, Outbound{To: partner.ConnID, Event: simpleEvent(EventPartnerDisconnect)})
			out = append(out, e.matchOrEnqueue(partner)...)
		}
	}

	e.registry.remove(id)
	return out
}

// Offer, Answer, and ICECandidate relay opaque signaling payloads along
// the partner edge only (spec §4.6).
func (e *Engine) Offer(senderID, targetID ConnectionID, payload json.RawMessage) []Outbound {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.relaySignal(EventOffer, senderID, targetID, payload)
}

func (e *Engine) Answer(senderID, targetID ConnectionID, payload json.RawMessage) []Outbound {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.relaySignal(EventAnswer, senderID, targetID, payload)
}

func (e *Engine) ICECandidate(senderID, targetID ConnectionID, payload json.RawMessage) []Outbound {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.relaySignal(EventICECandidate, senderID, targetID, payload)
}

// Message relays a text chat line to the sender's current partner, with a
// server-assigned timestamp (spec §4.6).
func (e *Engine) Message(senderID ConnectionID, text string) []Outbound {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.relayMessage(senderID, text, e.now)
}

// Snapshot reports live diagnostics: total connections, per-bucket queue
// depths, and how many users are currently paired. It is read-only and
// safe to call from the stats sink without affecting matching throughput
// beyond the brief lock hold.
type Snapshot struct {
	Connections int
	QueueDepths map[Preference]int
	Paired      int
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	paired := 0
	for _, u := range e.registry.snapshot() {
		if u.State == StatePaired {
			paired++
		}
	}

	return Snapshot{
		Connections: e.registry.count(),
		QueueDepths: e.queues.depths(),
		Paired:      paired,
	}
}
