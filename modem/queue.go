package modem

import "sync"

// TxQueue is the ordered set of audio frames awaiting transmission,
// with the exclusivity lock that guards every drain.  The zero value
// is an empty, ready-to-use queue.
type TxQueue struct {
	mu     sync.Mutex
	frames [][]byte
}

// Push appends a frame to the queue.
func (q *TxQueue) Push(frame []byte) {
	q.mu.Lock()
	q.frames = append(q.frames, frame)
	q.mu.Unlock()
}

// Pop removes and returns the oldest frame, if any.
func (q *TxQueue) Pop() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.frames) == 0 {
		return nil, false
	}
	frame := q.frames[0]
	q.frames = q.frames[1:]
	return frame, true
}

// Len returns the number of queued frames.
func (q *TxQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames)
}

// Drain empties the queue while holding its lock.  When pre is
// non-nil it runs under the same lock before the queue empties, so no
// observer can see the pre step done but frames still queued.  If pre
// fails the queue is left untouched.
func (q *TxQueue) Drain(pre func() error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if pre != nil {
		if err := pre(); err != nil {
			return err
		}
	}
	q.frames = nil
	return nil
}
