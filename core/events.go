package core

// EventQueueSize is the capacity of an EventQueue
const EventQueueSize = 8

// EventQueue carries values from interrupt handlers to the main loop.
// Push may be called from an interrupt; Pop only from the main loop.
// When full, new events are dropped and counted.
type EventQueue[T any] struct {
	buf     [EventQueueSize]T
	head    uint8 // next read position
	count   uint8
	dropped uint32
}

// Push queues v, returning false if the queue was full
func (q *EventQueue[T]) Push(v T) bool {
	ok := false
	Critical(func() {
		if int(q.count) == len(q.buf) {
			q.dropped++
			return
		}
		q.buf[(int(q.head)+int(q.count))%len(q.buf)] = v
		q.count++
		ok = true
	})
	return ok
}

// Pop removes the oldest event
func (q *EventQueue[T]) Pop() (T, bool) {
	var v T
	ok := false
	Critical(func() {
		if q.count == 0 {
			return
		}
		v = q.buf[q.head]
		q.head = uint8((int(q.head) + 1) % len(q.buf))
		q.count--
		ok = true
	})
	return v, ok
}

// Len returns the number of queued events
func (q *EventQueue[T]) Len() int {
	n := 0
	Critical(func() { n = int(q.count) })
	return n
}

// Dropped returns the number of events lost to a full queue
func (q *EventQueue[T]) Dropped() uint32 {
	var n uint32
	Critical(func() { n = q.dropped })
	return n
}
