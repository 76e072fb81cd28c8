package research

// notifierBuffer is the pending-event capacity per run. Runs emit a few
// events per query plus one event per report fragment, so the buffer only
// fills when the sink is slower than the research loop.
const notifierBuffer = 64

// notifier delivers progress events to a caller-supplied sink from a single
// consumer goroutine. The research loop publishes without blocking: when the
// buffer is full the oldest pending event is dropped. A panic in the sink is
// recovered and permanently disables delivery for the rest of the run, so a
// broken sink degrades to "no progress observed" rather than a failed run.
//
// A nil *notifier is valid and discards everything, which is how runs without
// a progress sink are handled.
type notifier struct {
	events chan string
	done   chan struct{}
}

// newNotifier starts a notifier for sink. Returns nil when sink is nil.
func newNotifier(sink func(string)) *notifier {
	if sink == nil {
		return nil
	}
	n := &notifier{
		events: make(chan string, notifierBuffer),
		done:   make(chan struct{}),
	}
	go n.consume(sink)
	return n
}

func (n *notifier) consume(sink func(string)) {
	defer close(n.done)
	for ev := range n.events {
		if !deliver(sink, ev) {
			// Sink is broken. Keep draining so publishers never block
			// and Close still returns promptly.
			for range n.events {
			}
			return
		}
	}
}

// deliver invokes the sink, converting a panic into a false return.
func deliver(sink func(string), ev string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	sink(ev)
	return true
}

// Publish enqueues an event, dropping the oldest pending event when full.
func (n *notifier) Publish(ev string) {
	if n == nil {
		return
	}
	for {
		select {
		case n.events <- ev:
			return
		default:
		}
		// Buffer full: shed the oldest event and retry. The consumer may
		// have drained in between, so the receive is also non-blocking.
		select {
		case <-n.events:
		default:
		}
	}
}

// Close stops the notifier after delivering all pending events. Run calls
// this before returning so callers observe a complete event sequence.
func (n *notifier) Close() {
	if n == nil {
		return
	}
	close(n.events)
	<-n.done
}
