package resource

// Guard hands out tickets for a logical request slot. Issuing a new ticket
// invalidates every earlier one; the superseded request keeps running but its
// completion must be dropped. Guards are not safe for concurrent use and are
// meant to be touched only from the event loop goroutine.
type Guard[K comparable] struct {
	seq uint64
	key K
}

type Ticket[K comparable] struct {
	guard *Guard[K]
	seq   uint64
	key   K
}

func (g *Guard[K]) Issue(key K) Ticket[K] {
	g.seq++
	g.key = key
	return Ticket[K]{guard: g, seq: g.seq, key: key}
}

// Invalidate drops the outstanding ticket without issuing a new request.
func (g *Guard[K]) Invalidate() {
	g.seq++
	var zero K
	g.key = zero
}

// Current reports whether no newer ticket was issued since this one.
func (t Ticket[K]) Current() bool {
	return t.guard != nil && t.guard.seq == t.seq
}

func (t Ticket[K]) Key() K {
	return t.key
}

// Memo remembers the key of the last successful resolution so unchanged
// inputs do not trigger another round trip.
type Memo[K comparable] struct {
	key K
	set bool
}

func (m *Memo[K]) Matches(key K) bool {
	return m.set && m.key == key
}

func (m *Memo[K]) Record(key K) {
	m.key = key
	m.set = true
}

func (m *Memo[K]) Clear() {
	var zero K
	m.key = zero
	m.set = false
}
