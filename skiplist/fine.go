package skiplist

import (
	"math"
	"sync/atomic"
)

// Fine is the optimistic-search-plus-per-node-locking variant: contains
// is lock-free; insert and delete run a lockless search, then lock only
// the small set of nodes they must mutate, validate under the lock,
// mutate, and release — retrying locally on validation failure.
// Adapted from a generic concurrent skip list's Upsert/Remove
// (optimistic search, per-node sync.Mutex, marked/fullyLinked
// atomic.Bool), generalized from a merge-on-duplicate upsert API to a
// fixed insert/delete/contains protocol with a level-by-level
// lock/validate/release discipline for tower construction.
type Fine struct {
	head     *Node
	tail     *Node
	maxLevel int
	size     atomic.Int64
	epoch    *epochManager[Node]
}

// NewFine creates an empty list with head/tail sentinels linked at every
// level.
func NewFine() *Fine {
	head := newFineNode(math.MinInt32, 0, MaxLevel)
	tail := newFineNode(math.MaxInt32, 0, MaxLevel)
	head.fullyLinked.Store(true)
	tail.fullyLinked.Store(true)
	for i := 0; i <= MaxLevel; i++ {
		head.next[i].Store(tail)
	}
	return &Fine{head: head, tail: tail, maxLevel: MaxLevel, epoch: newEpochManager[Node]()}
}

// search performs the lockless optimistic walk: marked successors are
// treated as still structurally present, never helped along during
// this walk.
func (l *Fine) search(key int32) (preds, succs [MaxLevel + 1]*Node) {
	pred := l.head
	for level := l.maxLevel; level >= 0; level-- {
		curr := pred.next[level].Load()
		for curr != l.tail && curr.key < key {
			pred = curr
			curr = pred.next[level].Load()
		}
		preds[level] = pred
		succs[level] = curr
	}
	return
}

// findPredAtLevel re-finds a predecessor at a single level, for when an
// upper-level validation fails mid tower-build: a walk from head
// restricted to one level.
func (l *Fine) findPredAtLevel(key int32, level int) *Node {
	pred := l.head
	curr := pred.next[level].Load()
	for curr != l.tail && curr.key < key {
		pred = curr
		curr = pred.next[level].Load()
	}
	return pred
}

// Contains reports whether key is live: present, fully linked, and not
// marked for deletion. Wait-free: no locks, no retries.
func (l *Fine) Contains(key int32) bool {
	e := l.epoch.enter()
	defer l.epoch.exit(e)

	_, succs := l.search(key)
	n := succs[0]
	return n != l.tail && n.key == key && n.fullyLinked.Load() && !n.marked.Load()
}

// Insert adds key/value. It returns true iff no live entry for key was
// present. A key whose only node is marked ("zombie", still physically
// present but logically deleted) is treated as not-found, so the insert
// does not fail on it: validation rejects a marked level-0 successor, so
// the loop retries until the deleter has unlinked that node at level 0
// and the fresh node is then linked in its place.
func (l *Fine) Insert(key, value int32) bool {
	for {
		preds, succs := l.search(key)
		if succs[0] != l.tail && succs[0].key == key && !succs[0].marked.Load() {
			return false
		}

		topLevel := randomLevel()
		node := newFineNode(key, value, topLevel)
		for i := uint8(0); i <= topLevel; i++ {
			node.next[i].Store(succs[i])
		}

		pred0 := preds[0]
		pred0.lock.Lock()
		valid := !pred0.marked.Load() && !succs[0].marked.Load() && pred0.next[0].Load() == succs[0]
		if !valid {
			pred0.lock.Unlock()
			continue
		}

		// Publish at level 0 — linearization point of insert.
		pred0.next[0].Store(node)
		pred0.lock.Unlock()

		for level := uint8(1); level <= topLevel; level++ {
			pred := preds[level]
			expected := succs[level]
			for {
				pred.lock.Lock()
				succ := pred.next[level].Load()
				if !pred.marked.Load() && succ == expected {
					node.next[level].Store(succ)
					pred.next[level].Store(node)
					pred.lock.Unlock()
					break
				}
				pred.lock.Unlock()
				pred = l.findPredAtLevel(key, int(level))
				expected = pred.next[level].Load()
			}
		}

		node.fullyLinked.Store(true)
		l.size.Add(1)
		return true
	}
}

// Delete removes key. It returns true iff a live, fully-linked entry was
// removed; a victim that is marked or still mid tower-build is treated
// as not removable (returns false).
func (l *Fine) Delete(key int32) bool {
	for {
		preds, succs := l.search(key)
		victim := succs[0]
		if victim == l.tail || victim.key != key {
			return false
		}

		victim.lock.Lock()
		if victim.marked.Load() {
			victim.lock.Unlock()
			return false
		}
		if !victim.fullyLinked.Load() {
			victim.lock.Unlock()
			return false
		}
		victim.marked.Store(true) // linearization point of delete
		victim.lock.Unlock()

		for level := int(victim.topLevel); level >= 0; level-- {
			pred := preds[level]
			for {
				pred.lock.Lock()
				if !pred.marked.Load() && pred.next[level].Load() == victim {
					pred.next[level].Store(victim.next[level].Load())
					pred.lock.Unlock()
					break
				}
				pred.lock.Unlock()
				pred = l.findPredAtLevel(key, level)
			}
		}

		l.size.Add(-1)
		l.epoch.retire(victim)
		l.epoch.tryAdvance()
		return true
	}
}

// Size returns an approximate count of live entries.
func (l *Fine) Size() int64 {
	return l.size.Load()
}

// Destroy releases list resources. The caller must ensure no other
// goroutine is using list concurrently with or after this call.
func (l *Fine) Destroy() {
	l.head = nil
	l.tail = nil
}
