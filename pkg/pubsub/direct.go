package pubsub

// DirectConsumer is a fan-in from one upstream sink to one downstream
// subscriber. It implements both Consumer and Publisher: producers call
// CreateEntry/EndBatch on it, and the wrapped Subscriber installs real
// callbacks via Subscribe once notified.
type DirectConsumer[R any] struct {
	subscriber Subscriber[R]
	entries    map[string]*directEntry[R]
	gotUpdates bool
}

// NewDirectConsumer wraps subscriber as a Publisher/Consumer pair.
func NewDirectConsumer[R any](subscriber Subscriber[R]) *DirectConsumer[R] {
	return &DirectConsumer[R]{
		subscriber: subscriber,
		entries:    make(map[string]*directEntry[R]),
	}
}

type directEntry[R any] struct {
	topic      string
	data       *R
	callback   Callback[R]
	gotUpdates *bool
}

func (e *directEntry[R]) Publish() {
	if e.callback != nil {
		e.callback(e.topic, *e.data)
		*e.gotUpdates = true
	}
}

// CreateEntry creates the entry for topic on first call (with a no-op
// callback), then unconditionally notifies the subscriber so it can install
// a real callback via Subscribe. Callers that already hold the entry from a
// prior CreateEntry should call Publish directly instead of creating again.
func (d *DirectConsumer[R]) CreateEntry(topic string, record *R) PublisherEntry {
	e := d.getOrCreate(topic)
	e.data = record
	d.subscriber.Notify(d, topic, *record)
	return e
}

func (d *DirectConsumer[R]) getOrCreate(topic string) *directEntry[R] {
	e, ok := d.entries[topic]
	if !ok {
		e = &directEntry[R]{topic: topic, callback: func(string, R) {}, gotUpdates: &d.gotUpdates}
		d.entries[topic] = e
	}
	return e
}

// EndBatch calls the subscriber's EndOfBatch only if at least one Publish
// fired since the last batch boundary.
func (d *DirectConsumer[R]) EndBatch() {
	if d.gotUpdates {
		d.gotUpdates = false
		d.subscriber.EndOfBatch(d)
	}
}

// Subscribe installs or replaces the callback for topic, creating the entry
// if it does not already exist.
func (d *DirectConsumer[R]) Subscribe(topic string, cb Callback[R]) {
	e := d.getOrCreate(topic)
	e.callback = cb
}
