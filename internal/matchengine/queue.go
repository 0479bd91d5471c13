package matchengine

import "container/list"

// queueSet holds the four FIFO waiting pools keyed by bucket (component
// C2): any, male, female, other. Like registry, it performs no locking of
// its own; Engine's single lock makes enqueue/remove/scan atomic.
type queueSet struct {
	pools map[Preference]*pool
	// locatedIn tracks which bucket (if any) a connection currently waits
	// in, so remove() is O(1) without scanning all four pools.
	locatedIn map[ConnectionID]Preference
}

// pool is a FIFO of waiting Users: a doubly-linked list for O(1)
// removal-from-middle, plus an index from connection_id to its node.
type pool struct {
	order *list.List
	index map[ConnectionID]*list.Element
}

func newPool() *pool {
	return &pool{
		order: list.New(),
		index: make(map[ConnectionID]*list.Element),
	}
}

func newQueueSet() *queueSet {
	qs := &queueSet{
		pools:     make(map[Preference]*pool),
		locatedIn: make(map[ConnectionID]Preference),
	}
	for _, bucket := range []Preference{PreferAny, PreferMale, PreferFemale, PreferOther} {
		qs.pools[bucket] = newPool()
	}
	return qs
}

// bucketFor implements spec §4.3.1: a premium user with a specific
// preference waits in the pool named by that preference; everyone else
// waits in "any".
func bucketFor(u *User) Preference {
	if u.Tier == TierPremium && u.PreferredGender != PreferAny {
		return u.PreferredGender
	}
	return PreferAny
}

// enqueue inserts u into its bucket. Idempotent: if u is already in a
// pool, it is moved rather than duplicated, so a connection_id never
// appears in more than one pool (invariant 1).
func (qs *queueSet) enqueue(u *User) {
	qs.remove(u.ConnID)

	bucket := bucketFor(u)
	p := qs.pools[bucket]
	elem := p.order.PushBack(u)
	p.index[u.ConnID] = elem
	qs.locatedIn[u.ConnID] = bucket
}

// remove drops id from whichever pool (if any) holds it. O(1).
func (qs *queueSet) remove(id ConnectionID) {
	bucket, ok := qs.locatedIn[id]
	if !ok {
		return
	}
	p := qs.pools[bucket]
	if elem, ok := p.index[id]; ok {
		p.order.Remove(elem)
		delete(p.index, id)
	}
	delete(qs.locatedIn, id)
}

// scanOrder returns which pools to inspect, in order, for a candidate.
//
// A premium candidate with a specific preference only ever wants that
// gender, so it scans its own bucket first, then "any" (where a matching
// free-tier waiter may be sitting unbucketed).
//
// Otherwise the candidate scans the bucket named after its own gender
// before "any": that bucket is exactly where a waiting premium user who
// specifically wants this candidate's gender is sitting, and such a
// waiter has been constrained the whole time it's been queued, whereas
// an "any" waiter has no constraint and loses nothing by being found
// second. Scanning "any" first would let every free-tier candidate
// starve premium preference-holders whenever an unconstrained waiter
// happens to be sitting in "any" first.
func (qs *queueSet) scanOrder(candidate *User) []Preference {
	if candidate.Tier == TierPremium && candidate.PreferredGender != PreferAny {
		return []Preference{candidate.PreferredGender, PreferAny}
	}

	own := Preference(candidate.Gender)
	order := []Preference{own, PreferAny}
	for _, bucket := range []Preference{PreferMale, PreferFemale, PreferOther} {
		if bucket != own {
			order = append(order, bucket)
		}
	}
	return order
}

// scan walks the pools in scanOrder, oldest-waiter-first within each pool,
// and returns the first waiter for which eligible(candidate, waiter) holds,
// removing it from its pool. Returns nil if no waiter qualifies.
func (qs *queueSet) scan(candidate *User) *User {
	for _, bucket := range qs.scanOrder(candidate) {
		p := qs.pools[bucket]
		for elem := p.order.Front(); elem != nil; elem = elem.Next() {
			waiter := elem.Value.(*User)
			if eligible(candidate, waiter) {
				p.order.Remove(elem)
				delete(p.index, waiter.ConnID)
				delete(qs.locatedIn, waiter.ConnID)
				return waiter
			}
		}
	}
	return nil
}

func (qs *queueSet) depths() map[Preference]int {
	out := make(map[Preference]int, len(qs.pools))
	for bucket, p := range qs.pools {
		out[bucket] = p.order.Len()
	}
	return out
}
