// Package pubsub implements the multi-record pub/sub dispatch fabric:
// Consumer/Subscriber/Publisher/PublisherEntry contracts plus three
// concrete participants (DirectConsumer, CacheSubscriber, Proxy). The
// fabric is parameterized by a record kind via Go generics so that
// TopOfBook and Position flow through structurally identical, but
// compile-time separate, instantiations — no shared dynamic channel and no
// cross-typing.
package pubsub

// Callback is invoked by a Consumer to deliver a record update on a topic.
// It is safe to keep the record after the callback returns: implementers
// must hand over a value, never a reference into storage that outlives the
// call.
type Callback[R any] func(topic string, record R)

// Consumer lets late-binding interested parties subscribe to topic updates.
type Consumer[R any] interface {
	Subscribe(topic string, cb Callback[R])
}

// Subscriber receives notification of new (publisher, topic) pairs and of
// batch boundaries.
type Subscriber[R any] interface {
	// Notify fires when a new (publisher, topic) pair first appears, or a
	// participant re-announces its current record on that pair.
	Notify(consumer Consumer[R], topic string, record R)
	// EndOfBatch fires after a group of simultaneous updates so the
	// subscriber can perform a consistent multi-field read.
	EndOfBatch(consumer Consumer[R])
}

// PublisherEntry is a handle representing "I am the sink for this
// (publisher, topic) pair". It is created once and reused for all
// subsequent updates.
type PublisherEntry interface {
	// Publish re-fires the entry's current record to its downstream
	// subscriber. The record read is whatever the address passed to
	// CreateEntry currently holds — publishers are expected to mutate that
	// storage in place before calling Publish, not to recreate the entry.
	Publish()
}

// Publisher emits records to a Subscriber via PublisherEntry handles.
type Publisher[R any] interface {
	// CreateEntry returns the entry for topic, creating it on first call.
	// record must point at storage the caller owns and will keep current;
	// the entry reads through this pointer on every Publish.
	CreateEntry(topic string, record *R) PublisherEntry
	// EndBatch marks the end of a group of concurrent updates.
	EndBatch()
}
