package matchengine

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
)

// checkInvariants asserts every structural invariant spec §8 calls
// universal, by walking Engine's internal state directly rather than
// through its public API. It must be called only while no other
// goroutine is touching e (the concurrency test below quiesces first).
func checkInvariants(t *testing.T, e *Engine) {
	t.Helper()

	inAQueue := map[ConnectionID]Preference{}
	for bucket, p := range e.queues.pools {
		for elem := p.order.Front(); elem != nil; elem = elem.Next() {
			u := elem.Value.(*User)
			if prior, dup := inAQueue[u.ConnID]; dup {
				t.Fatalf("connection %s appears in both %q and %q pools", u.ConnID, prior, bucket)
			}
			inAQueue[u.ConnID] = bucket
		}
	}

	for id, u := range e.registry.byID {
		if u.ConnID != id {
			t.Fatalf("registry key %s does not match stored ConnID %s", id, u.ConnID)
		}

		_, queued := inAQueue[id]

		switch u.State {
		case StateWaiting:
			if !queued {
				t.Fatalf("%s is Waiting but not present in any queue pool", id)
			}
			if u.Partner != "" {
				t.Fatalf("%s is Waiting but has a non-empty partner %s", id, u.Partner)
			}
		case StatePaired:
			if queued {
				t.Fatalf("%s is Paired but still sitting in queue pool %q (exclusion invariant)", id, inAQueue[id])
			}
			if u.Partner == "" {
				t.Fatalf("%s is Paired but has no partner", id)
			}
			partner := e.registry.lookup(u.Partner)
			if partner == nil {
				t.Fatalf("%s's partner %s is not a live connection (teardown completeness)", id, u.Partner)
			}
			if partner.Partner != id {
				t.Fatalf("partner symmetry broken: %s points at %s but %s points at %s", id, u.Partner, u.Partner, partner.Partner)
			}
			if partner.State != StatePaired {
				t.Fatalf("%s is Paired but its partner %s is in state %q", id, u.Partner, partner.State)
			}
			if u.Tier == TierPremium && u.PreferredGender != PreferAny {
				if want, _ := u.PreferredGender.gender(); partner.Gender != want {
					t.Fatalf("%s prefers %q but is paired with %s of gender %q (preference honor)", id, u.PreferredGender, u.Partner, partner.Gender)
				}
			}
		case StateIdle:
			if queued {
				t.Fatalf("%s is Idle but still sitting in queue pool %q", id, inAQueue[id])
			}
			if u.Partner != "" {
				t.Fatalf("%s is Idle but has a non-empty partner %s", id, u.Partner)
			}
		}

		// Preference-honor invariant (the paired case is checked above): a
		// waiting premium user's bucket must match its own stated preference,
		// and a free user's preference must always have been normalized to
		// "any" before it is ever stored.
		if u.Tier != TierPremium && u.PreferredGender != PreferAny {
			t.Fatalf("%s is free tier but has a live non-any preference %q", id, u.PreferredGender)
		}
		if u.State == StateWaiting && u.Tier == TierPremium && u.PreferredGender != PreferAny {
			if inAQueue[id] != u.PreferredGender {
				t.Fatalf("%s is a premium waiter preferring %q but sits in pool %q", id, u.PreferredGender, inAQueue[id])
			}
		}
	}
}

// TestUniversalInvariantsHoldAcrossRandomInterleavings drives a large
// number of connections through randomly ordered join-queue, skip,
// leave-queue, and disconnect events and checks every invariant after
// each step. This is the property-based exercise spec §8 asks for in
// place of enumerating every interleaving by hand.
func TestUniversalInvariantsHoldAcrossRandomInterleavings(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	e := NewEngine()

	genders := []Gender{GenderMale, GenderFemale, GenderOther}
	prefs := []Preference{PreferAny, PreferMale, PreferFemale, PreferOther}
	tiers := []Tier{TierFree, TierPremium}

	const population = 24
	ids := make([]ConnectionID, population)
	connected := make([]bool, population)
	for i := range ids {
		ids[i] = ConnectionID(fmt.Sprintf("u%d", i))
	}

	for step := 0; step < 4000; step++ {
		i := rng.Intn(population)
		id := ids[i]

		switch rng.Intn(5) {
		case 0:
			if !connected[i] {
				e.Connect(id)
				connected[i] = true
			}
		case 1:
			if connected[i] {
				e.JoinQueue(id, JoinProfile{
					UserID:          string(id),
					Username:        string(id),
					Gender:          genders[rng.Intn(len(genders))],
					PreferredGender: prefs[rng.Intn(len(prefs))],
					Tier:            tiers[rng.Intn(len(tiers))],
					Age:             18 + rng.Intn(40),
				})
			}
		case 2:
			if connected[i] {
				e.Skip(id)
			}
		case 3:
			if connected[i] {
				e.LeaveQueue(id)
			}
		case 4:
			if connected[i] {
				e.Disconnect(id)
				connected[i] = false
			}
		}

		checkInvariants(t, e)
	}
}

// TestConcurrentAccessIsRaceFree hammers a shared Engine from many
// goroutines at once. It does not assert matching outcomes (those are
// nondeterministic under concurrent scheduling) — only that Engine's
// coarse lock keeps every call serialized and the invariants hold once
// everything settles. Run with -race to catch any missed critical
// section.
func TestConcurrentAccessIsRaceFree(t *testing.T) {
	e := NewEngine()
	const population = 16

	ids := make([]ConnectionID, population)
	for i := range ids {
		ids[i] = ConnectionID(fmt.Sprintf("c%d", i))
		e.Connect(ids[i])
	}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id ConnectionID) {
			defer wg.Done()
			gender := []Gender{GenderMale, GenderFemale, GenderOther}[i%3]
			pref := []Preference{PreferAny, PreferMale, PreferFemale}[i%3]
			tier := TierFree
			if i%2 == 0 {
				tier = TierPremium
			}
			for round := 0; round < 50; round++ {
				e.JoinQueue(id, JoinProfile{
					UserID:          string(id),
					Username:        string(id),
					Gender:          gender,
					PreferredGender: pref,
					Tier:            tier,
					Age:             20 + i,
				})
				e.Skip(id)
				e.JoinQueue(id, JoinProfile{
					UserID:          string(id),
					Username:        string(id),
					Gender:          gender,
					PreferredGender: pref,
					Tier:            tier,
					Age:             20 + i,
				})
				e.LeaveQueue(id)
			}
		}(i, id)
	}
	wg.Wait()

	checkInvariants(t, e)
}

// TestRelayConfinementAcrossStates checks that signaling relays only ever
// cross the live partner edge: a target that isn't the sender's current
// partner never receives anything, whether because they're unpaired,
// paired with someone else, or disconnected entirely.
func TestRelayConfinementAcrossStates(t *testing.T) {
	e := NewEngine()
	connect(t, e, "c1")
	connect(t, e, "c2")
	connect(t, e, "c3")
	connect(t, e, "c4")

	join(e, "c1", "A", GenderMale, PreferAny, TierFree, 20)
	join(e, "c2", "B", GenderFemale, PreferAny, TierFree, 21) // c1-c2 paired
	join(e, "c3", "C", GenderMale, PreferAny, TierFree, 22)
	join(e, "c4", "D", GenderFemale, PreferAny, TierFree, 23) // c3-c4 paired

	// c1 tries to relay to c3, who is paired with someone else entirely.
	if out := e.Offer("c1", "c3", nil); len(out) != 0 {
		t.Fatalf("relay to a non-partner who is paired elsewhere must be dropped, got %+v", out)
	}

	// c1 tries to relay to an idle connection that never joined.
	connect(t, e, "c5")
	if out := e.Answer("c1", "c5", nil); len(out) != 0 {
		t.Fatalf("relay to an idle connection must be dropped, got %+v", out)
	}

	// c3 tries to relay to its former partner c4, which no longer exists.
	e.Disconnect("c4")
	if out := e.ICECandidate("c3", "c4", nil); len(out) != 0 {
		t.Fatalf("relay to a disconnected connection must be dropped, got %+v", out)
	}
}
