package simplelru

// entry is one slot of the arena. prev and next are slot indices; slot 0 is
// the sentinel of the ring, so an index of 0 means "no entry".
type entry[K comparable, V any] struct {
	key   K
	value V
	prev  int
	next  int
}

// lruList is a doubly linked ring over arena slots. The element after the
// sentinel is the most recently used, the one before it the least.
type lruList[K comparable, V any] struct {
	slots []entry[K, V]
	free  []int
	len   int
}

func newList[K comparable, V any]() *lruList[K, V] {
	l := &lruList[K, V]{}
	l.init()
	return l
}

// init drops every slot and resets the sentinel.
func (l *lruList[K, V]) init() {
	l.slots = make([]entry[K, V], 1)
	l.free = nil
	l.len = 0
}

func (l *lruList[K, V]) length() int { return l.len }

// front returns the most recently used slot, or 0.
func (l *lruList[K, V]) front() int { return l.slots[0].next }

// back returns the least recently used slot, or 0.
func (l *lruList[K, V]) back() int { return l.slots[0].prev }

func (l *lruList[K, V]) at(i int) *entry[K, V] { return &l.slots[i] }

// alloc hands out a free slot, growing the arena when none is left.
func (l *lruList[K, V]) alloc() int {
	if n := len(l.free); n > 0 {
		i := l.free[n-1]
		l.free = l.free[:n-1]
		return i
	}
	l.slots = append(l.slots, entry[K, V]{})
	return len(l.slots) - 1
}

// link inserts slot i right after slot at.
func (l *lruList[K, V]) link(i, at int) {
	n := l.slots[at].next
	l.slots[i].prev = at
	l.slots[i].next = n
	l.slots[at].next = i
	l.slots[n].prev = i
}

func (l *lruList[K, V]) unlink(i int) {
	p, n := l.slots[i].prev, l.slots[i].next
	l.slots[p].next = n
	l.slots[n].prev = p
}

// pushFront stores key/value in a slot at the front and returns its index.
func (l *lruList[K, V]) pushFront(key K, value V) int {
	i := l.alloc()
	l.slots[i].key = key
	l.slots[i].value = value
	l.link(i, 0)
	l.len++
	return i
}

func (l *lruList[K, V]) moveToFront(i int) {
	if l.slots[0].next == i {
		return
	}
	l.unlink(i)
	l.link(i, 0)
}

// remove unlinks slot i, returns its contents and releases the slot.
func (l *lruList[K, V]) remove(i int) (key K, value V) {
	l.unlink(i)
	e := &l.slots[i]
	key, value = e.key, e.value
	*e = entry[K, V]{}
	l.free = append(l.free, i)
	l.len--
	return key, value
}
