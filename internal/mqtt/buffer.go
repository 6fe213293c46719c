package mqtt

import "log"

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox holds messages published while the broker is unreachable.
// When full, the oldest message is dropped to make room.
// Not safe for concurrent use; the caller must synchronize.
type outbox struct {
	msgs     []bufferedMsg
	capacity int
	dropped  int
}

func newOutbox(capacity int) *outbox {
	return &outbox{
		msgs:     make([]bufferedMsg, 0, capacity),
		capacity: capacity,
	}
}

func (o *outbox) push(msg bufferedMsg) {
	if len(o.msgs) == o.capacity {
		if o.dropped == 0 {
			log.Printf("mqtt: outbox full (%d messages), dropping oldest", o.capacity)
		}
		o.dropped++
		copy(o.msgs, o.msgs[1:])
		o.msgs[len(o.msgs)-1] = msg
		return
	}
	o.msgs = append(o.msgs, msg)
}

// drain returns queued messages oldest first and empties the outbox.
func (o *outbox) drain() []bufferedMsg {
	if len(o.msgs) == 0 {
		return nil
	}
	out := make([]bufferedMsg, len(o.msgs))
	copy(out, o.msgs)
	o.msgs = o.msgs[:0]
	if o.dropped > 0 {
		log.Printf("mqtt: %d messages were dropped while disconnected", o.dropped)
		o.dropped = 0
	}
	return out
}

func (o *outbox) len() int {
	return len(o.msgs)
}
