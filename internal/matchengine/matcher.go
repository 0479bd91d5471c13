package matchengine

// eligible implements spec §4.4's eligibility rules between an incoming
// candidate C and an existing waiter W. Preferences are mutual: a premium
// side's stated preference (if not "any") must be satisfied by the other
// side's gender; a free side's preference has already been normalized to
// "any" at ingestion, so it imposes no constraint here.
func eligible(c, w *User) bool {
	if w.ConnID == c.ConnID {
		return false
	}

	if c.Tier == TierPremium && c.PreferredGender != PreferAny {
		want, _ := c.PreferredGender.gender()
		if w.Gender != want {
			return false
		}
	}

	if w.Tier == TierPremium && w.PreferredGender != PreferAny {
		want, _ := w.PreferredGender.gender()
		if c.Gender != want {
			return false
		}
	}

	return true
}

// matchOrEnqueue is the single matcher entry point (spec §9): both a fresh
// join-queue and a re-queue after a partner left funnel through here. It
// must be called while Engine's lock is held.
//
// On match, it atomically removes the waiter from its pool, links both
// partner pointers, transitions both to Paired, and returns a "matched"
// event for each. On no match, it transitions the candidate to Waiting,
// enqueues it, and returns a single "waiting" event.
func (e *Engine) matchOrEnqueue(candidate *User) []Outbound {
	if waiter := e.queues.scan(candidate); waiter != nil {
		candidate.Partner = waiter.ConnID
		waiter.Partner = candidate.ConnID
		candidate.State = StatePaired
		waiter.State = StatePaired

		return []Outbound{
			{To: candidate.ConnID, Event: matchedEvent(waiter)},
			{To: waiter.ConnID, Event: matchedEvent(candidate)},
		}
	}

	candidate.State = StateWaiting
	e.queues.enqueue(candidate)
	return []Outbound{
		{To: candidate.ConnID, Event: simpleEvent(EventWaiting)},
	}
}
