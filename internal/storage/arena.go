package storage

// handle addresses an entry slot in the arena. Handles stay valid until the
// slot is released, after which they may be reused for a new entry.
type handle uint32

// arena is the sole owner of entries. The indexes only hold handles.
type arena struct {
	slots []Entry
	live  []bool
	free  []handle
	count int
}

func (a *arena) alloc(e Entry) handle {
	var h handle
	if n := len(a.free); n > 0 {
		h = a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[h] = e
		a.live[h] = true
	} else {
		h = handle(len(a.slots))
		a.slots = append(a.slots, e)
		a.live = append(a.live, true)
	}
	a.count++
	return h
}

func (a *arena) get(h handle) *Entry {
	return &a.slots[h]
}

func (a *arena) release(h handle) {
	if !a.live[h] {
		return
	}
	a.slots[h] = Entry{} // drop key/value references
	a.live[h] = false
	a.free = append(a.free, h)
	a.count--
}

func (a *arena) len() int {
	return a.count
}
