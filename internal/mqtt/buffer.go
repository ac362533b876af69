package mqtt

import "log/slog"

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer keeps the newest messages published while disconnected.
// Callers synchronise access.
type ringBuffer struct {
	buf      []bufferedMsg
	capacity int
	head     int // next write position
	count    int
	overflow bool // set once a message is dropped, cleared by drainAll
	logger   *slog.Logger
}

func newRingBuffer(capacity int, logger *slog.Logger) *ringBuffer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ringBuffer{
		buf:      make([]bufferedMsg, capacity),
		capacity: capacity,
		logger:   logger,
	}
}

func (r *ringBuffer) push(msg bufferedMsg) {
	if r.count == r.capacity {
		if !r.overflow {
			r.logger.Warn("buffer full, dropping oldest", "capacity", r.capacity)
			r.overflow = true
		}
	} else {
		r.count++
	}
	// when full, head already points at the oldest entry
	r.buf[r.head] = msg
	r.head = (r.head + 1) % r.capacity
}

func (r *ringBuffer) drainAll() []bufferedMsg {
	if r.count == 0 {
		return nil
	}

	start := (r.head - r.count + r.capacity) % r.capacity
	result := make([]bufferedMsg, 0, r.count)
	for i := range r.count {
		result = append(result, r.buf[(start+i)%r.capacity])
	}

	r.count = 0
	r.head = 0
	r.overflow = false
	return result
}

func (r *ringBuffer) len() int {
	return r.count
}
