package posixrt

// pendingQueue is a fixed-capacity FIFO ring of raw signal numbers. It never
// allocates after construction. When full, new entries are dropped and
// counted; the oldest pending signals are kept so delivery order is never
// rewritten.
//
// This is the second place a burst can be lost. The first is the os/signal
// channel feeding the trampoline, which drops without telling anyone when
// its buffer is full. That buffer is sized to the queue capacity.
type pendingQueue struct {
	buf     []int
	head    int
	size    int
	dropped int
}

func newPendingQueue(capacity int) *pendingQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &pendingQueue{buf: make([]int, capacity)}
}

func (q *pendingQueue) enqueue(sig int) bool {
	if q.size == len(q.buf) {
		q.dropped++
		return false
	}
	q.buf[(q.head+q.size)%len(q.buf)] = sig
	q.size++
	return true
}

func (q *pendingQueue) dequeue() (int, bool) {
	if q.size == 0 {
		return 0, false
	}
	sig := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return sig, true
}

func (q *pendingQueue) len() int {
	return q.size
}

// takeDropped returns and resets the overflow counter.
func (q *pendingQueue) takeDropped() int {
	n := q.dropped
	q.dropped = 0
	return n
}
