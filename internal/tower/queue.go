package tower

import "container/heap"

// query is a level queued for an invoke call.
type query struct {
	level *Level
	info  *CallInfo
	group Group
	kind  ExplicitReceiverKind
	seq   uint64
}

// invokeQueue is a min-heap by group; equal groups pop in insertion order.
type invokeQueue []*query

func (q invokeQueue) Len() int { return len(q) }

func (q invokeQueue) Less(i, j int) bool {
	if c := q[i].group.Compare(q[j].group); c != 0 {
		return c < 0
	}
	return q[i].seq < q[j].seq
}

func (q invokeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *invokeQueue) Push(x any) { *q = append(*q, x.(*query)) }

func (q *invokeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

func (q invokeQueue) peek() *query {
	if len(q) == 0 {
		return nil
	}
	return q[0]
}

var _ heap.Interface = (*invokeQueue)(nil)
