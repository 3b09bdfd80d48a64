package tracker

type Event string

const (
	// Payment accepted by the provider, foreground polling started
	EventProcessing Event = "processing"
	// Foreground bound exhausted. Informational, not a failure
	EventBackground Event = "background"
	EventCompleted  Event = "completed"
	EventFailed     Event = "failed"
	// Local tracking stopped at the caller's request
	EventCancelled Event = "cancelled"
	// Payment confirmed but the wallet credit failed. The transaction sits
	// in the unsettled queue until reconciled by hand
	EventUnsettled Event = "unsettled"
)

type Update struct {
	Event       Event
	Transaction Transaction
	// Set on EventUnsettled, wrapping ErrSideEffectFailed
	Err error
}

// Subscribe registers fn for every update of a transaction id. The returned
// function removes the registration and is safe to call more than once.
// Callbacks run on the polling goroutine of the transaction and must not block
func (c *Controller) Subscribe(id string, fn func(Update)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	subs, found := c.subscribers[id]
	if !found {
		subs = make(map[uint64]func(Update))
		c.subscribers[id] = subs
	}

	token := c.nextSub
	c.nextSub++
	subs[token] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		subs, found := c.subscribers[id]
		if !found {
			return
		}
		delete(subs, token)
		if len(subs) == 0 {
			delete(c.subscribers, id)
		}
	}
}

func (c *Controller) publish(update Update) {
	c.mu.Lock()
	fns := make([]func(Update), 0, len(c.subscribers[update.Transaction.Id]))
	for _, fn := range c.subscribers[update.Transaction.Id] {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(update)
	}
}
