// Package skiplist implements a concurrent ordered map keyed by signed
// 32-bit integers, storing a single int32 payload per key, as a
// probabilistic skip list. Three synchronization strategies share the
// same node layout and level generator: Coarse (one global mutex), Fine
// (optimistic search plus per-node locking and validation), and Lockfree
// (CAS-only progress with marked next-pointers).
package skiplist

import (
	"sync"
	"sync/atomic"
)

// MaxLevel is the highest level index a node may participate at. Levels
// run 0 (densest, bottom) through MaxLevel (sparsest, top).
const MaxLevel = 16

// cacheLinePad is sized to push a Node's hot fields onto their own cache
// line so two unrelated nodes accessed concurrently by different threads
// don't false-share.
type cacheLinePad [64]byte

// link is the lockfree variant's next-pointer value: a node pointer plus
// the deletion mark for the departing edge, committed together by a
// single atomic.Pointer CAS. Go has no portable raw pointer tagging the
// way C can steal a pointer's low bit, so the mark is modeled as a
// sibling field of an otherwise-immutable value swapped in whole
// (mirroring the reference C node layout's "_Atomic(bool) marked" next to
// "_Atomic(struct Node*) next", just committed atomically as one word
// instead of two).
type link struct {
	to     *lfNode
	marked bool
}

// Node is the fine variant's node type: optimistic lockless search plus
// per-node locking and a fully-linked flag distinguishing a committed
// node from one still mid-tower-build.
type Node struct {
	key         int32
	value       int32
	topLevel    uint8
	marked      atomic.Bool
	fullyLinked atomic.Bool
	lock        sync.Mutex
	next        [MaxLevel + 1]atomic.Pointer[Node]
	_           cacheLinePad
}

func newFineNode(key, value int32, topLevel uint8) *Node {
	n := &Node{key: key, value: value, topLevel: topLevel}
	return n
}

// lfNode is the lockfree variant's node type. Its next-slots hold *link*
// values rather than bare node pointers so a CAS can move both the
// pointer and its mark bit together.
type lfNode struct {
	key      int32
	value    int32
	topLevel uint8
	next     [MaxLevel + 1]atomic.Pointer[link]
	_        cacheLinePad
}

func newLFNode(key, value int32, topLevel uint8) *lfNode {
	return &lfNode{key: key, value: value, topLevel: topLevel}
}

// cNode is the coarse variant's node type. All mutation happens under the
// list's single global mutex, so next-pointers need no atomics for
// correctness; they remain atomic.Pointer only so the type stays
// consistent with the rest of the package and so a future reader-without-
// lock optimization would not silently race.
type cNode struct {
	key      int32
	value    int32
	topLevel uint8
	next     [MaxLevel + 1]atomic.Pointer[cNode]
	_        cacheLinePad
}

func newCoarseNode(key, value int32, topLevel uint8) *cNode {
	return &cNode{key: key, value: value, topLevel: topLevel}
}
