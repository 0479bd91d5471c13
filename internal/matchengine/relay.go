package matchengine

import "encoding/json"

// relaySignal implements spec §4.6's signaling relay rule for
// offer/answer/ice-candidate: the sender must be Paired and the declared
// target must be the current partner, otherwise the event is dropped
// silently (target mismatch, spec §7). target_id is stripped on the way
// out and replaced with from_id.
func (e *Engine) relaySignal(kind EventType, senderID, targetID ConnectionID, payload json.RawMessage) []Outbound {
	sender := e.registry.lookup(senderID)
	if sender == nil || sender.State != StatePaired || sender.Partner != targetID {
		return nil
	}

	out := OutboundEvent{Type: kind, FromID: senderID}
	switch kind {
	case EventOffer:
		out.Offer = payload
	case EventAnswer:
		out.Answer = payload
	case EventICECandidate:
		out.Candidate = payload
	}

	return []Outbound{{To: sender.Partner, Event: out}}
}

// relayMessage implements spec §4.6's text relay rule: the sender must be
// Paired; the timestamp is always server-assigned, never trusted from the
// client.
func (e *Engine) relayMessage(senderID ConnectionID, text string, now func() string) []Outbound {
	sender := e.registry.lookup(senderID)
	if sender == nil || sender.State != StatePaired {
		return nil
	}

	out := OutboundEvent{
		Type:      EventMessage,
		Text:      text,
		Sender:    senderID,
		Timestamp: now(),
	}
	return []Outbound{{To: sender.Partner, Event: out}}
}
