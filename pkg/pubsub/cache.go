package pubsub

// CacheSubscriber is a passive Subscriber that records, per topic, the most
// recent record seen. Reads are synchronous and lock-free by construction:
// the whole system is single-threaded, so there is no concurrent writer to
// guard against.
type CacheSubscriber[R any] struct {
	byTopic map[string]*R
	order   []string
}

// NewCacheSubscriber constructs an empty cache.
func NewCacheSubscriber[R any]() *CacheSubscriber[R] {
	return &CacheSubscriber[R]{byTopic: make(map[string]*R)}
}

// Notify overwrites the cached record for topic and, when consumer is
// non-nil, subscribes to it so every later publish on topic overwrites the
// cached record too.
func (c *CacheSubscriber[R]) Notify(consumer Consumer[R], topic string, record R) {
	slot, ok := c.byTopic[topic]
	if ok {
		*slot = record
	} else {
		slot = new(R)
		*slot = record
		c.byTopic[topic] = slot
		c.order = append(c.order, topic)
	}
	if consumer != nil {
		consumer.Subscribe(topic, func(_ string, r R) { *slot = r })
	}
}

// EndOfBatch is a no-op: the cache has nothing to reconcile at a batch
// boundary, it is already current.
func (c *CacheSubscriber[R]) EndOfBatch(Consumer[R]) {}

// Get returns the cached record for topic, if any.
func (c *CacheSubscriber[R]) Get(topic string) (R, bool) {
	if r, ok := c.byTopic[topic]; ok {
		return *r, true
	}
	var zero R
	return zero, false
}

// Topics returns the set of topics seen so far, in first-seen order.
func (c *CacheSubscriber[R]) Topics() []string {
	return c.order
}
